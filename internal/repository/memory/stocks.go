package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/repository"
)

func (r *InMemoryRepo) CreateStock(ctx context.Context, s models.Stock) (models.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.symbolIndex[s.Symbol]; exists {
		return models.Stock{}, repository.ErrDuplicateSymbol
	}

	r.nextStockID++
	s.ID = r.nextStockID
	s.UpdatedAt = s.CreatedAt
	r.stocks[s.ID] = s
	r.symbolIndex[s.Symbol] = s.ID
	return s, nil
}

func (r *InMemoryRepo) GetStock(ctx context.Context, id int64) (models.Stock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stocks[id]
	if !ok {
		return models.Stock{}, repository.ErrNotFound
	}
	return s, nil
}

func (r *InMemoryRepo) GetStockBySymbol(ctx context.Context, symbol string) (models.Stock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.symbolIndex[symbol]
	if !ok {
		return models.Stock{}, repository.ErrNotFound
	}
	return r.stocks[id], nil
}

func (r *InMemoryRepo) ListStocks(ctx context.Context) ([]models.Stock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stocks := make([]models.Stock, 0, len(r.stocks))
	for _, s := range r.stocks {
		stocks = append(stocks, s)
	}
	slices.SortFunc(stocks, func(a, b models.Stock) int {
		return strings.Compare(a.Symbol, b.Symbol)
	})
	return stocks, nil
}

func (r *InMemoryRepo) UpdateStockPrice(ctx context.Context, id int64, price decimal.Decimal, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stocks[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.UpdatePrice(price, at)
	s.UpdatedAt = at
	r.stocks[id] = s
	return nil
}

func (r *InMemoryRepo) GetHolding(ctx context.Context, accountID, stockID int64) (models.Holding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.holdingIndex[pairKey{accountID, stockID}]
	if !ok {
		return models.Holding{}, repository.ErrNotFound
	}
	return r.holdings[id], nil
}

func (r *InMemoryRepo) ListHoldings(ctx context.Context, f repository.HoldingFilter) ([]models.Holding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	holdings := []models.Holding{}
	for _, h := range r.holdings {
		if f.AccountID != nil && h.AccountID != *f.AccountID {
			continue
		}
		if f.StockID != nil && h.StockID != *f.StockID {
			continue
		}
		holdings = append(holdings, h)
	}
	slices.SortFunc(holdings, func(a, b models.Holding) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return holdings, nil
}

func (r *InMemoryRepo) RecordTrade(ctx context.Context, t models.StockTransaction, mut repository.HoldingMutation) (models.StockTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[t.AccountID]; !ok {
		return models.StockTransaction{}, repository.ErrNotFound
	}
	if _, ok := r.stocks[t.StockID]; !ok {
		return models.StockTransaction{}, repository.ErrNotFound
	}

	r.nextTradeID++
	t.ID = r.nextTradeID
	r.trades[t.ID] = t
	r.applyHoldingMutation(mut)
	return t, nil
}

func (r *InMemoryRepo) GetTrade(ctx context.Context, id int64) (models.StockTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trades[id]
	if !ok {
		return models.StockTransaction{}, repository.ErrNotFound
	}
	return t, nil
}

func (r *InMemoryRepo) ListTrades(ctx context.Context, f repository.TradeFilter) ([]models.StockTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trades := []models.StockTransaction{}
	for _, t := range r.trades {
		if f.AccountID != nil && t.AccountID != *f.AccountID {
			continue
		}
		if f.StockID != nil && t.StockID != *f.StockID {
			continue
		}
		if f.Type != nil && t.Type != *f.Type {
			continue
		}
		trades = append(trades, t)
	}
	slices.SortFunc(trades, func(a, b models.StockTransaction) int {
		if !a.Date.Equal(b.Date) {
			if a.Date.After(b.Date) {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if f.Limit > 0 && len(trades) > f.Limit {
		trades = trades[:f.Limit]
	}
	return trades, nil
}

func (r *InMemoryRepo) DeleteTrade(ctx context.Context, id int64, mut repository.HoldingMutation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trades[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.trades, id)
	r.applyHoldingMutation(mut)
	return nil
}

func (r *InMemoryRepo) applyHoldingMutation(mut repository.HoldingMutation) {
	key := pairKey{mut.Holding.AccountID, mut.Holding.StockID}
	switch mut.Op {
	case repository.HoldingUpsert:
		h := mut.Holding
		if id, ok := r.holdingIndex[key]; ok {
			h.ID = id
			h.CreatedAt = r.holdings[id].CreatedAt
		} else {
			r.nextHoldingID++
			h.ID = r.nextHoldingID
			r.holdingIndex[key] = h.ID
		}
		r.holdings[h.ID] = h
	case repository.HoldingDelete:
		if id, ok := r.holdingIndex[key]; ok {
			delete(r.holdings, id)
			delete(r.holdingIndex, key)
		}
	}
}
