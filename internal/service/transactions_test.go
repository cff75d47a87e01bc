package service

import (
	"sync"
	"testing"

	"github.com/dkovalev/transactions-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransaction_Income(t *testing.T) {
	env := newTestEnv()

	transaction, err := env.svc.CreateTransaction(CreateTransactionInput{
		Title: "Salary", Value: 2000, Type: "income", Category: "Job",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, transaction.ID)
	assert.Equal(t, "Salary", transaction.Title)
	assert.Equal(t, models.TypeIncome, transaction.Type)
	assert.NotEmpty(t, transaction.CategoryID)

	category, err := env.categories.FindCategoryByTitle("Job")
	require.NoError(t, err)
	require.NotNil(t, category)
	assert.Equal(t, category.ID, transaction.CategoryID)
}

func TestCreateTransaction_OutcomeWithinBalance(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CreateTransaction(CreateTransactionInput{
		Title: "Salary", Value: 100, Type: "income", Category: "Job",
	})
	require.NoError(t, err)

	_, err = env.svc.CreateTransaction(CreateTransactionInput{
		Title: "Lunch", Value: 40, Type: "outcome", Category: "Food",
	})
	require.NoError(t, err)

	balance, err := env.svc.Balance()
	require.NoError(t, err)
	assert.Equal(t, 60.0, balance.Total)
}

func TestCreateTransaction_OutcomeExactBalance(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CreateTransaction(CreateTransactionInput{
		Title: "Salary", Value: 100, Type: "income", Category: "Job",
	})
	require.NoError(t, err)

	_, err = env.svc.CreateTransaction(CreateTransactionInput{
		Title: "Rent", Value: 100, Type: "outcome", Category: "Housing",
	})
	require.NoError(t, err)

	balance, err := env.svc.Balance()
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance.Total)
}

func TestCreateTransaction_InsufficientFunds(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CreateTransaction(CreateTransactionInput{
		Title: "Salary", Value: 100, Type: "income", Category: "Job",
	})
	require.NoError(t, err)

	_, err = env.svc.CreateTransaction(CreateTransactionInput{
		Title: "Rent", Value: 100.01, Type: "outcome", Category: "Housing",
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	balance, err := env.svc.Balance()
	require.NoError(t, err)
	assert.Equal(t, 100.0, balance.Total)
}

func TestCreateTransaction_Validation(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CreateTransaction(CreateTransactionInput{
		Title: "", Value: 10, Type: "income", Category: "Job",
	})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = env.svc.CreateTransaction(CreateTransactionInput{
		Title: "Refund", Value: -5, Type: "income", Category: "Job",
	})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = env.svc.CreateTransaction(CreateTransactionInput{
		Title: "Nothing", Value: 0, Type: "income", Category: "Job",
	})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = env.svc.CreateTransaction(CreateTransactionInput{
		Title: "Lunch", Value: 10, Type: "transfer", Category: "Food",
	})
	assert.ErrorIs(t, err, ErrInvalidType)

	assert.Empty(t, env.transactions.transactions)
}

func TestBalance_MatchesIndependentSums(t *testing.T) {
	env := newTestEnv()

	inputs := []CreateTransactionInput{
		{Title: "Salary", Value: 2500, Type: "income", Category: "Job"},
		{Title: "Rent", Value: 900, Type: "outcome", Category: "Housing"},
		{Title: "Freelance", Value: 300.50, Type: "income", Category: "Job"},
		{Title: "Groceries", Value: 120.25, Type: "outcome", Category: "Food"},
	}
	var income, outcome float64
	for _, input := range inputs {
		_, err := env.svc.CreateTransaction(input)
		require.NoError(t, err)
		if input.Type == models.TypeIncome {
			income += input.Value
		} else {
			outcome += input.Value
		}
	}

	balance, err := env.svc.Balance()
	require.NoError(t, err)
	assert.Equal(t, income, balance.Income)
	assert.Equal(t, outcome, balance.Outcome)
	assert.Equal(t, income-outcome, balance.Total)
}

// Two writers racing for the same funds: the store checks and inserts
// atomically, so exactly one outcome for the full balance may win.
func TestCreateTransaction_ConcurrentOutcomes(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CreateTransaction(CreateTransactionInput{
		Title: "Salary", Value: 100, Type: "income", Category: "Job",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.CreateTransaction(CreateTransactionInput{
				Title: "Withdrawal", Value: 100, Type: "outcome", Category: "Cash",
			})
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrInsufficientFunds):
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	balance, err := env.svc.Balance()
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance.Total)
}

func TestListTransactions(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CreateTransaction(CreateTransactionInput{
		Title: "Salary", Value: 2000, Type: "income", Category: "Job",
	})
	require.NoError(t, err)
	_, err = env.svc.CreateTransaction(CreateTransactionInput{
		Title: "Lunch", Value: 50, Type: "outcome", Category: "Food",
	})
	require.NoError(t, err)

	transactions, balance, err := env.svc.ListTransactions()
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, "Salary", transactions[0].Title)
	assert.Equal(t, "Lunch", transactions[1].Title)
	assert.Equal(t, 1950.0, balance.Total)
}

func TestDeleteTransaction(t *testing.T) {
	env := newTestEnv()

	transaction, err := env.svc.CreateTransaction(CreateTransactionInput{
		Title: "Salary", Value: 2000, Type: "income", Category: "Job",
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteTransaction(transaction.ID))
	assert.Error(t, env.svc.DeleteTransaction(transaction.ID))

	transactions, _, err := env.svc.ListTransactions()
	require.NoError(t, err)
	assert.Empty(t, transactions)
}
