package memory

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/repository"
)

func (r *InMemoryRepo) CreateTransaction(ctx context.Context, t models.Transaction, balanceDelta decimal.Decimal) (models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[t.AccountID]
	if !ok {
		return models.Transaction{}, repository.ErrNotFound
	}

	r.nextTxnID++
	t.ID = r.nextTxnID
	r.transactions[t.ID] = t

	account.Balance = account.Balance.Add(balanceDelta)
	r.accounts[account.ID] = account
	return t, nil
}

func (r *InMemoryRepo) GetTransaction(ctx context.Context, id int64) (models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.transactions[id]
	if !ok {
		return models.Transaction{}, repository.ErrNotFound
	}
	return t, nil
}

func (r *InMemoryRepo) ListTransactions(ctx context.Context, f repository.TransactionFilter) ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	transactions := []models.Transaction{}
	for _, t := range r.transactions {
		if f.AccountID != nil && t.AccountID != *f.AccountID {
			continue
		}
		if f.Type != nil && t.Type != *f.Type {
			continue
		}
		if f.From != nil && t.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && t.Date.After(*f.To) {
			continue
		}
		transactions = append(transactions, t)
	}
	slices.SortFunc(transactions, func(a, b models.Transaction) int {
		if !a.Date.Equal(b.Date) {
			if a.Date.After(b.Date) {
				return -1
			}
			return 1
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		if a.CreatedAt.Before(b.CreatedAt) {
			return 1
		}
		return 0
	})
	if f.Limit > 0 && len(transactions) > f.Limit {
		transactions = transactions[:f.Limit]
	}
	return transactions, nil
}

func (r *InMemoryRepo) UpdateTransaction(ctx context.Context, t models.Transaction, balanceDelta decimal.Decimal) (models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.transactions[t.ID]
	if !ok {
		return models.Transaction{}, repository.ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	r.transactions[t.ID] = t

	if account, ok := r.accounts[t.AccountID]; ok {
		account.Balance = account.Balance.Add(balanceDelta)
		r.accounts[account.ID] = account
	}
	return t, nil
}

func (r *InMemoryRepo) DeleteTransaction(ctx context.Context, id int64, balanceDelta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.transactions[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.transactions, id)

	if account, ok := r.accounts[t.AccountID]; ok {
		account.Balance = account.Balance.Add(balanceDelta)
		r.accounts[account.ID] = account
	}
	return nil
}
