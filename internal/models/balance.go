package models

// Balance represents the derived running totals across all transactions
type Balance struct {
	Income  float64 `json:"income"`
	Outcome float64 `json:"outcome"`
	Total   float64 `json:"total"`
}
