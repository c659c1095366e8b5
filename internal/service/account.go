package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/repository"
)

// AccountService coordinates account lifecycle and balance bookkeeping.
type AccountService struct {
	repo   repository.AccountRepository
	now    func() time.Time
	logger *logrus.Entry
}

func NewAccountService(repo repository.AccountRepository, logger *logrus.Logger) *AccountService {
	return &AccountService{
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.WithField("component", "account-service"),
	}
}

// CreateAccountInput is the DTO consumed by CreateAccount.
type CreateAccountInput struct {
	Name        string
	Type        models.AccountType
	Balance     decimal.Decimal
	Currency    string
	Description string
	Institution string
	Number      string
}

func (s *AccountService) CreateAccount(ctx context.Context, input CreateAccountInput) (models.Account, error) {
	if input.Name == "" {
		return models.Account{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !input.Type.Valid() {
		return models.Account{}, fmt.Errorf("%w: unknown account type %q", ErrValidation, input.Type)
	}
	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	account := models.Account{
		Name:        input.Name,
		Type:        input.Type,
		Balance:     input.Balance,
		Currency:    currency,
		Description: input.Description,
		Institution: input.Institution,
		Number:      input.Number,
		IsActive:    true,
		CreatedAt:   s.now(),
	}

	created, err := s.repo.CreateAccount(ctx, account)
	if err != nil {
		return models.Account{}, err
	}
	s.logger.WithFields(logrus.Fields{"accountId": created.ID, "type": created.Type}).Info("account created")
	return created, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id int64) (models.Account, error) {
	return s.repo.GetAccount(ctx, id)
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// UpdateAccountInput carries optional field updates; nil pointers leave the
// existing value untouched.
type UpdateAccountInput struct {
	Name        *string
	Type        *models.AccountType
	Currency    *string
	Description *string
	Institution *string
	Number      *string
	IsActive    *bool
}

func (s *AccountService) UpdateAccount(ctx context.Context, id int64, input UpdateAccountInput) (models.Account, error) {
	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return models.Account{}, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return models.Account{}, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		account.Name = *input.Name
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return models.Account{}, fmt.Errorf("%w: unknown account type %q", ErrValidation, *input.Type)
		}
		account.Type = *input.Type
	}
	if input.Currency != nil {
		account.Currency = *input.Currency
	}
	if input.Description != nil {
		account.Description = *input.Description
	}
	if input.Institution != nil {
		account.Institution = *input.Institution
	}
	if input.Number != nil {
		account.Number = *input.Number
	}
	if input.IsActive != nil {
		account.IsActive = *input.IsActive
	}
	account.UpdatedAt = s.now()

	return s.repo.UpdateAccount(ctx, account)
}

func (s *AccountService) DeleteAccount(ctx context.Context, id int64) error {
	if err := s.repo.DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("accountId", id).Info("account deleted")
	return nil
}
