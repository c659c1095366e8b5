package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/repository/memory"
)

func newAccountService() (*AccountService, *memory.InMemoryRepo) {
	repo := memory.New()
	return NewAccountService(repo, discardLogger()), repo
}

func TestCreateAccountDefaults(t *testing.T) {
	svc, _ := newAccountService()

	account, err := svc.CreateAccount(context.Background(), CreateAccountInput{
		Name: "Checking", Type: models.AccountChecking, Balance: dec("100"),
	})
	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.Equal(t, "USD", account.Currency)
	assert.True(t, account.IsActive)
	assert.True(t, account.Balance.Equal(dec("100")))
}

func TestCreateAccountValidation(t *testing.T) {
	svc, _ := newAccountService()

	_, err := svc.CreateAccount(context.Background(), CreateAccountInput{Type: models.AccountChecking})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateAccount(context.Background(), CreateAccountInput{Name: "X", Type: "offshore"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateAccountPartial(t *testing.T) {
	svc, _ := newAccountService()
	ctx := context.Background()

	account, err := svc.CreateAccount(ctx, CreateAccountInput{
		Name: "Checking", Type: models.AccountChecking, Institution: "First Bank",
	})
	require.NoError(t, err)

	name := "Joint Checking"
	inactive := false
	updated, err := svc.UpdateAccount(ctx, account.ID, UpdateAccountInput{
		Name: &name, IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Joint Checking", updated.Name)
	assert.False(t, updated.IsActive)
	// untouched fields survive
	assert.Equal(t, "First Bank", updated.Institution)
	assert.Equal(t, models.AccountChecking, updated.Type)
}

func TestUpdateAccountRejectsEmptyName(t *testing.T) {
	svc, _ := newAccountService()
	ctx := context.Background()

	account, err := svc.CreateAccount(ctx, CreateAccountInput{Name: "Checking", Type: models.AccountChecking})
	require.NoError(t, err)

	empty := ""
	_, err = svc.UpdateAccount(ctx, account.ID, UpdateAccountInput{Name: &empty})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateAccountNotFound(t *testing.T) {
	svc, _ := newAccountService()
	name := "X"
	_, err := svc.UpdateAccount(context.Background(), 999, UpdateAccountInput{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAccount(t *testing.T) {
	svc, _ := newAccountService()
	ctx := context.Background()

	account, err := svc.CreateAccount(ctx, CreateAccountInput{Name: "Checking", Type: models.AccountChecking})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, account.ID))
	_, err = svc.GetAccount(ctx, account.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, account.ID), ErrNotFound)
}

func TestListAccounts(t *testing.T) {
	svc, _ := newAccountService()
	ctx := context.Background()

	for _, name := range []string{"Checking", "Savings", "Brokerage"} {
		_, err := svc.CreateAccount(ctx, CreateAccountInput{Name: name, Type: models.AccountOther})
		require.NoError(t, err)
	}

	accounts, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 3)
}

func TestAccountDisplayName(t *testing.T) {
	a := models.Account{Name: "Checking", Institution: "First Bank"}
	assert.Equal(t, "Checking (First Bank)", a.DisplayName())
	a.Institution = ""
	assert.Equal(t, "Checking", a.DisplayName())
}
