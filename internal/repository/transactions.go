package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkovalev/transactions-api/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const balanceQuery = `
	SELECT
		COALESCE(SUM(CASE WHEN type = 'income' THEN value ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN type = 'outcome' THEN value ELSE 0 END), 0)
	FROM transactions`

// AggregateBalance computes income, outcome and total over all transactions
func (r *Repository) AggregateBalance() (*models.Balance, error) {
	balance := &models.Balance{}
	err := r.db.QueryRow(balanceQuery).Scan(&balance.Income, &balance.Outcome)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate balance: %w", err)
	}
	balance.Total = balance.Income - balance.Outcome
	return balance, nil
}

// CreateTransaction creates a new transaction in the database
func (r *Repository) CreateTransaction(transaction *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, title, value, type, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, uuid.New().String(), transaction.Title, transaction.Value,
		transaction.Type, transaction.CategoryID).
		Scan(&transaction.ID, &transaction.CreatedAt, &transaction.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// CreateOutcomeTransaction creates an outcome transaction only if the current
// balance covers its value. The balance read and the insert run in one
// serializable database transaction, so two writers racing for the same funds
// cannot both succeed. Returns ok=false when the balance is insufficient.
func (r *Repository) CreateOutcomeTransaction(transaction *models.Transaction) (bool, error) {
	tx, err := r.db.BeginTx(context.Background(), &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var income, outcome float64
	if err := tx.QueryRow(balanceQuery).Scan(&income, &outcome); err != nil {
		return false, fmt.Errorf("failed to aggregate balance: %w", err)
	}
	if income-outcome < transaction.Value {
		return false, nil
	}

	query := `
		INSERT INTO transactions (id, title, value, type, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(query, uuid.New().String(), transaction.Title, transaction.Value,
		transaction.Type, transaction.CategoryID).
		Scan(&transaction.ID, &transaction.CreatedAt, &transaction.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// CreateTransactions creates all given transactions in a single statement,
// preserving slice order. The slice is updated in place with generated ids
// and timestamps.
func (r *Repository) CreateTransactions(transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	query := `
		INSERT INTO transactions (id, title, value, type, category_id, created_at, updated_at)
		SELECT unnest($1::uuid[]), unnest($2::text[]), unnest($3::float8[]),
		       unnest($4::text[]), unnest($5::uuid[]), CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at`

	ids := make([]string, len(transactions))
	titles := make([]string, len(transactions))
	values := make([]float64, len(transactions))
	types := make([]string, len(transactions))
	categoryIDs := make([]string, len(transactions))
	for i, t := range transactions {
		ids[i] = uuid.New().String()
		titles[i] = t.Title
		values[i] = t.Value
		types[i] = t.Type
		categoryIDs[i] = t.CategoryID
	}

	rows, err := r.db.Query(query, pq.Array(ids), pq.Array(titles), pq.Array(values),
		pq.Array(types), pq.Array(categoryIDs))
	if err != nil {
		return fmt.Errorf("failed to create transactions: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i >= len(transactions) {
			return fmt.Errorf("unexpected extra row creating transactions")
		}
		t := &transactions[i]
		if err := rows.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan created transaction: %w", err)
		}
		i++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read created transactions: %w", err)
	}
	return nil
}

// ListTransactions retrieves all transactions ordered by creation time
func (r *Repository) ListTransactions() ([]models.Transaction, error) {
	query := `
		SELECT id, title, value, type, category_id, created_at, updated_at
		FROM transactions
		ORDER BY created_at, id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Title, &t.Value, &t.Type, &t.CategoryID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return transactions, nil
}

// DeleteTransaction removes a transaction by id
func (r *Repository) DeleteTransaction(id string) error {
	result, err := r.db.Exec(`DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction not found")
	}
	return nil
}
