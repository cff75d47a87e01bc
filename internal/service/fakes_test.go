package service

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/dkovalev/transactions-api/internal/config"
	"github.com/dkovalev/transactions-api/internal/models"
	"github.com/sirupsen/logrus"
)

type fakeUserStore struct {
	users []models.User
}

func (f *fakeUserStore) CreateUser(user *models.User) error {
	user.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserStore) FindUserByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

type fakeCategoryStore struct {
	mu              sync.Mutex
	categories      []models.Category
	createCalls     int
	bulkCreateCalls int
}

func (f *fakeCategoryStore) FindCategoryByTitle(title string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.Title == title {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryStore) FindCategoriesByTitles(titles []string) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[string]bool, len(titles))
	for _, t := range titles {
		want[t] = true
	}
	var found []models.Category
	for _, c := range f.categories {
		if want[c.Title] {
			found = append(found, c)
		}
	}
	return found, nil
}

func (f *fakeCategoryStore) CreateCategory(category *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	category.ID = fmt.Sprintf("cat-%d", len(f.categories)+1)
	f.categories = append(f.categories, *category)
	return nil
}

func (f *fakeCategoryStore) CreateCategories(categories []models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkCreateCalls++
	for i := range categories {
		categories[i].ID = fmt.Sprintf("cat-%d", len(f.categories)+1)
		f.categories = append(f.categories, categories[i])
	}
	return nil
}

type fakeTransactionStore struct {
	mu           sync.Mutex
	transactions []models.Transaction
	nextID       int
}

func (f *fakeTransactionStore) balanceLocked() *models.Balance {
	balance := &models.Balance{}
	for _, t := range f.transactions {
		if t.Type == models.TypeIncome {
			balance.Income += t.Value
		} else {
			balance.Outcome += t.Value
		}
	}
	balance.Total = balance.Income - balance.Outcome
	return balance
}

func (f *fakeTransactionStore) AggregateBalance() (*models.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balanceLocked(), nil
}

func (f *fakeTransactionStore) append(transaction *models.Transaction) {
	f.nextID++
	transaction.ID = fmt.Sprintf("tx-%d", f.nextID)
	f.transactions = append(f.transactions, *transaction)
}

func (f *fakeTransactionStore) CreateTransaction(transaction *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.append(transaction)
	return nil
}

func (f *fakeTransactionStore) CreateOutcomeTransaction(transaction *models.Transaction) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceLocked().Total < transaction.Value {
		return false, nil
	}
	f.append(transaction)
	return true, nil
}

func (f *fakeTransactionStore) CreateTransactions(transactions []models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range transactions {
		f.append(&transactions[i])
	}
	return nil
}

func (f *fakeTransactionStore) ListTransactions() ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Transaction(nil), f.transactions...), nil
}

func (f *fakeTransactionStore) DeleteTransaction(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.transactions {
		if t.ID == id {
			f.transactions = append(f.transactions[:i], f.transactions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction not found")
}

type fakeFileStore struct {
	files     map[string][]byte
	removed   []string
	removeErr error
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: map[string][]byte{}}
}

func (f *fakeFileStore) Open(name string) (io.ReadCloser, error) {
	data, ok := f.files[name]
	if !ok {
		return nil, fmt.Errorf("file %s not found", name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeFileStore) Remove(name string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	if _, ok := f.files[name]; !ok {
		return fmt.Errorf("file %s not found", name)
	}
	delete(f.files, name)
	f.removed = append(f.removed, name)
	return nil
}

type fakeNotifier struct {
	to       string
	imported int
	balance  *models.Balance
	calls    int
	err      error
}

func (f *fakeNotifier) SendImportSummary(to string, imported int, balance *models.Balance) error {
	f.calls++
	f.to = to
	f.imported = imported
	f.balance = balance
	return f.err
}

type testEnv struct {
	svc          *Service
	users        *fakeUserStore
	categories   *fakeCategoryStore
	transactions *fakeTransactionStore
	files        *fakeFileStore
	notifier     *fakeNotifier
	cfg          *config.Config
}

func newTestEnv() *testEnv {
	log := logrus.New()
	log.SetOutput(io.Discard)

	env := &testEnv{
		users:        &fakeUserStore{},
		categories:   &fakeCategoryStore{},
		transactions: &fakeTransactionStore{},
		files:        newFakeFileStore(),
		notifier:     &fakeNotifier{},
		cfg:          &config.Config{JWTSecret: "test-secret"},
	}
	env.svc = NewService(env.users, env.categories, env.transactions, env.files,
		env.notifier, log, env.cfg)
	return env
}
