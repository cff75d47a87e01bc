package models

import "time"

// Transaction types
const (
	TypeIncome  = "income"
	TypeOutcome = "outcome"
)

// Transaction represents a single income or outcome record
type Transaction struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Value      float64   `json:"value"`
	Type       string    `json:"type"`
	CategoryID string    `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
