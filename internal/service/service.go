package service

import (
	"errors"
	"io"

	"github.com/dkovalev/transactions-api/internal/config"
	"github.com/dkovalev/transactions-api/internal/models"
	"github.com/sirupsen/logrus"
)

// Service errors surfaced to callers
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrEmptyTitle        = errors.New("title is required")
	ErrInvalidValue      = errors.New("value must be positive")
	ErrInvalidType       = errors.New("type must be income or outcome")
	ErrMalformedCSV      = errors.New("malformed CSV file")
)

// UserStore provides user persistence
type UserStore interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
}

// CategoryStore provides category persistence
type CategoryStore interface {
	FindCategoryByTitle(title string) (*models.Category, error)
	FindCategoriesByTitles(titles []string) ([]models.Category, error)
	CreateCategory(category *models.Category) error
	CreateCategories(categories []models.Category) error
}

// TransactionStore provides transaction persistence
type TransactionStore interface {
	AggregateBalance() (*models.Balance, error)
	CreateTransaction(transaction *models.Transaction) error
	CreateOutcomeTransaction(transaction *models.Transaction) (bool, error)
	CreateTransactions(transactions []models.Transaction) error
	ListTransactions() ([]models.Transaction, error)
	DeleteTransaction(id string) error
}

// FileStore provides access to uploaded files
type FileStore interface {
	Open(name string) (io.ReadCloser, error)
	Remove(name string) error
}

// Notifier sends email notifications. Optional; may be nil.
type Notifier interface {
	SendImportSummary(to string, imported int, balance *models.Balance) error
}

// Service handles business logic
type Service struct {
	users        UserStore
	categories   CategoryStore
	transactions TransactionStore
	files        FileStore
	notifier     Notifier
	log          *logrus.Logger
	config       *config.Config
}

// NewService initializes a new service
func NewService(users UserStore, categories CategoryStore, transactions TransactionStore,
	files FileStore, notifier Notifier, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		users:        users,
		categories:   categories,
		transactions: transactions,
		files:        files,
		notifier:     notifier,
		log:          log,
		config:       cfg,
	}
}
