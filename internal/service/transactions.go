package service

import (
	"github.com/dkovalev/transactions-api/internal/models"
)

// CreateTransactionInput holds the fields for a single transaction
type CreateTransactionInput struct {
	Title    string  `json:"title"`
	Value    float64 `json:"value"`
	Type     string  `json:"type"`
	Category string  `json:"category"`
}

// CreateTransaction validates and persists a single transaction, resolving
// its category by title. Outcome transactions are rejected with
// ErrInsufficientFunds when the running balance does not cover their value;
// the check and the insert are atomic at the store level, so concurrent
// outcomes cannot overdraw the balance. A value equal to the balance is
// allowed and drives it to exactly zero.
func (s *Service) CreateTransaction(input CreateTransactionInput) (*models.Transaction, error) {
	if input.Title == "" {
		return nil, ErrEmptyTitle
	}
	if input.Value <= 0 {
		return nil, ErrInvalidValue
	}
	if input.Type != models.TypeIncome && input.Type != models.TypeOutcome {
		return nil, ErrInvalidType
	}

	category, err := s.resolveCategory(input.Category)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		Title:      input.Title,
		Value:      input.Value,
		Type:       input.Type,
		CategoryID: category.ID,
	}

	if input.Type == models.TypeOutcome {
		ok, err := s.transactions.CreateOutcomeTransaction(transaction)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInsufficientFunds
		}
	} else {
		if err := s.transactions.CreateTransaction(transaction); err != nil {
			return nil, err
		}
	}

	s.log.Infof("Transaction created: %s %s %.2f", transaction.Type, transaction.Title, transaction.Value)
	return transaction, nil
}

// ListTransactions returns all transactions together with the balance aggregate
func (s *Service) ListTransactions() ([]models.Transaction, *models.Balance, error) {
	transactions, err := s.transactions.ListTransactions()
	if err != nil {
		return nil, nil, err
	}
	balance, err := s.transactions.AggregateBalance()
	if err != nil {
		return nil, nil, err
	}
	return transactions, balance, nil
}

// Balance returns the derived income/outcome/total aggregate
func (s *Service) Balance() (*models.Balance, error) {
	return s.transactions.AggregateBalance()
}

// DeleteTransaction removes a transaction by id
func (s *Service) DeleteTransaction(id string) error {
	if err := s.transactions.DeleteTransaction(id); err != nil {
		return err
	}
	s.log.Infof("Transaction deleted: %s", id)
	return nil
}
