package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/repository"
)

func (r *InMemoryRepo) CreateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextAccountID++
	a.ID = r.nextAccountID
	a.UpdatedAt = a.CreatedAt
	r.accounts[a.ID] = a
	return a, nil
}

func (r *InMemoryRepo) GetAccount(ctx context.Context, id int64) (models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return models.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (r *InMemoryRepo) ListAccounts(ctx context.Context) ([]models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]models.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		accounts = append(accounts, a)
	}
	slices.SortFunc(accounts, func(a, b models.Account) int {
		return strings.Compare(a.Name, b.Name)
	})
	return accounts, nil
}

func (r *InMemoryRepo) UpdateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.accounts[a.ID]
	if !ok {
		return models.Account{}, repository.ErrNotFound
	}
	a.CreatedAt = existing.CreatedAt
	r.accounts[a.ID] = a
	return a, nil
}

func (r *InMemoryRepo) DeleteAccount(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.accounts, id)
	for txnID, t := range r.transactions {
		if t.AccountID == id {
			delete(r.transactions, txnID)
		}
	}
	for holdingID, h := range r.holdings {
		if h.AccountID == id {
			delete(r.holdingIndex, pairKey{h.AccountID, h.StockID})
			delete(r.holdings, holdingID)
		}
	}
	for tradeID, t := range r.trades {
		if t.AccountID == id {
			delete(r.trades, tradeID)
		}
	}
	return nil
}
