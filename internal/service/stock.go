package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/marketdata"
	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/repository"
)

// PriceSource supplies last-known prices, instrument metadata and symbol
// search. Lookups never fail hard: a false result means "no data available"
// and the caller carries on with stale or missing prices.
type PriceSource interface {
	Price(ctx context.Context, symbol string) (marketdata.Quote, bool)
	Info(ctx context.Context, symbol string) (marketdata.Info, bool)
	Search(ctx context.Context, query string) ([]marketdata.SearchResult, bool)
}

// StockService manages stocks, holdings and stock transactions. It owns the
// weighted-average cost bookkeeping: buys fold into the holding's average
// cost, sells reduce shares without touching it, and a trade plus its holding
// mutation are persisted as one atomic unit.
type StockService struct {
	repo     repository.StockRepository
	accounts repository.AccountRepository
	prices   PriceSource
	now      func() time.Time
	logger   *logrus.Entry
}

func NewStockService(repo repository.StockRepository, accounts repository.AccountRepository, prices PriceSource, logger *logrus.Logger) *StockService {
	return &StockService{
		repo:     repo,
		accounts: accounts,
		prices:   prices,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.WithField("component", "stock-service"),
	}
}

// CreateStockInput is the DTO consumed by CreateStock.
type CreateStockInput struct {
	Symbol      string
	Name        string
	Exchange    string
	Sector      string
	Industry    string
	Currency    string
	Description string
	FetchInfo   bool
}

// CreateStock registers a new stock. When a stock with the symbol already
// exists it is returned unchanged. With FetchInfo set, missing metadata and
// the initial price are filled from the price source; lookups that fail leave
// the fields empty rather than failing the create.
func (s *StockService) CreateStock(ctx context.Context, input CreateStockInput) (models.Stock, error) {
	symbol := models.NormalizeSymbol(input.Symbol)
	if symbol == "" {
		return models.Stock{}, fmt.Errorf("%w: symbol is required", ErrValidation)
	}

	if existing, err := s.repo.GetStockBySymbol(ctx, symbol); err == nil {
		s.logger.WithField("symbol", symbol).Debug("stock already exists")
		return existing, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return models.Stock{}, err
	}

	stock := models.Stock{
		Symbol:      symbol,
		Name:        input.Name,
		Exchange:    input.Exchange,
		Sector:      input.Sector,
		Industry:    input.Industry,
		Currency:    input.Currency,
		Description: input.Description,
		CreatedAt:   s.now(),
	}

	if input.FetchInfo {
		if info, ok := s.prices.Info(ctx, symbol); ok {
			if stock.Name == "" {
				stock.Name = info.Name
			}
			if stock.Exchange == "" {
				stock.Exchange = info.Exchange
			}
			if stock.Sector == "" {
				stock.Sector = info.Sector
			}
			if stock.Industry == "" {
				stock.Industry = info.Industry
			}
			if stock.Currency == "" {
				stock.Currency = info.Currency
			}
			if stock.Description == "" {
				stock.Description = info.Description
			}
		}
		if quote, ok := s.prices.Price(ctx, symbol); ok {
			stock.UpdatePrice(quote.Price, quote.AsOf)
		}
	}
	if stock.Name == "" {
		return models.Stock{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if stock.Currency == "" {
		stock.Currency = "USD"
	}

	created, err := s.repo.CreateStock(ctx, stock)
	if err != nil {
		return models.Stock{}, err
	}
	s.logger.WithFields(logrus.Fields{"stockId": created.ID, "symbol": created.Symbol}).Info("stock created")
	return created, nil
}

// SearchStocks looks up instruments by symbol or name through the price
// source. No matches is not an error; the caller gets an empty list.
func (s *StockService) SearchStocks(ctx context.Context, query string) ([]marketdata.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrValidation)
	}
	results, ok := s.prices.Search(ctx, query)
	if !ok {
		s.logger.WithField("query", query).Debug("search returned no matches")
		return []marketdata.SearchResult{}, nil
	}
	return results, nil
}

func (s *StockService) GetStock(ctx context.Context, id int64) (models.Stock, error) {
	return s.repo.GetStock(ctx, id)
}

func (s *StockService) ListStocks(ctx context.Context) ([]models.Stock, error) {
	return s.repo.ListStocks(ctx)
}

// RefreshPrice fetches a fresh quote for the stock. A failed lookup is not an
// error: the stock keeps its last known price and the caller sees it stale.
func (s *StockService) RefreshPrice(ctx context.Context, id int64) (models.Stock, error) {
	stock, err := s.repo.GetStock(ctx, id)
	if err != nil {
		return models.Stock{}, err
	}

	quote, ok := s.prices.Price(ctx, stock.Symbol)
	if !ok {
		s.logger.WithField("symbol", stock.Symbol).Warn("price refresh failed, keeping last known price")
		return stock, nil
	}
	if err := s.repo.UpdateStockPrice(ctx, stock.ID, quote.Price, quote.AsOf); err != nil {
		return models.Stock{}, err
	}
	stock.UpdatePrice(quote.Price, quote.AsOf)
	return stock, nil
}

// RefreshAllPrices refreshes every stock and reports per-symbol success.
func (s *StockService) RefreshAllPrices(ctx context.Context) (map[string]bool, error) {
	stocks, err := s.repo.ListStocks(ctx)
	if err != nil {
		return nil, err
	}

	results := make(map[string]bool, len(stocks))
	for _, stock := range stocks {
		quote, ok := s.prices.Price(ctx, stock.Symbol)
		if !ok {
			results[stock.Symbol] = false
			continue
		}
		if err := s.repo.UpdateStockPrice(ctx, stock.ID, quote.Price, quote.AsOf); err != nil {
			s.logger.WithError(err).WithField("symbol", stock.Symbol).Warn("failed to store refreshed price")
			results[stock.Symbol] = false
			continue
		}
		results[stock.Symbol] = true
	}
	return results, nil
}

// RecordTradeInput is the DTO consumed by RecordTrade.
type RecordTradeInput struct {
	AccountID     int64
	StockID       int64
	Type          models.TradeType
	Shares        decimal.Decimal
	PricePerShare decimal.Decimal
	Fees          decimal.Decimal
	Date          time.Time
	Notes         string
	UpdateHolding bool
}

// RecordTrade stores an immutable trade event and, for buys and sells with
// UpdateHolding set, propagates it to the holding for the (account, stock)
// pair. The trade and the holding change are committed atomically.
func (s *StockService) RecordTrade(ctx context.Context, input RecordTradeInput) (models.StockTransaction, error) {
	if !input.Type.Valid() {
		return models.StockTransaction{}, fmt.Errorf("%w: unknown trade type %q", ErrValidation, input.Type)
	}
	if input.Shares.Sign() <= 0 {
		return models.StockTransaction{}, fmt.Errorf("%w: shares must be positive", ErrValidation)
	}
	if input.PricePerShare.Sign() < 0 || input.Fees.Sign() < 0 {
		return models.StockTransaction{}, fmt.Errorf("%w: price and fees cannot be negative", ErrValidation)
	}
	if _, err := s.accounts.GetAccount(ctx, input.AccountID); err != nil {
		return models.StockTransaction{}, err
	}
	if _, err := s.repo.GetStock(ctx, input.StockID); err != nil {
		return models.StockTransaction{}, err
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}

	trade := models.StockTransaction{
		AccountID:     input.AccountID,
		StockID:       input.StockID,
		Type:          input.Type,
		Shares:        input.Shares,
		PricePerShare: input.PricePerShare,
		TotalAmount:   models.TradeTotal(input.Type, input.Shares, input.PricePerShare, input.Fees),
		Fees:          input.Fees,
		Date:          date,
		Notes:         input.Notes,
		CreatedAt:     s.now(),
	}

	mut := repository.HoldingMutation{Op: repository.HoldingNone}
	if input.UpdateHolding && trade.Type.MovesShares() {
		delta := trade.Shares
		if trade.Type == models.TradeSell {
			delta = delta.Neg()
		}
		var err error
		mut, err = s.holdingMutation(ctx, trade.AccountID, trade.StockID, delta, trade.PricePerShare, date)
		if err != nil {
			return models.StockTransaction{}, err
		}
	}

	created, err := s.repo.RecordTrade(ctx, trade, mut)
	if err != nil {
		return models.StockTransaction{}, err
	}
	s.logger.WithFields(logrus.Fields{
		"tradeId":   created.ID,
		"type":      created.Type,
		"shares":    created.Shares.String(),
		"accountId": created.AccountID,
		"stockId":   created.StockID,
	}).Info("trade recorded")
	return created, nil
}

func (s *StockService) GetTrade(ctx context.Context, id int64) (models.StockTransaction, error) {
	return s.repo.GetTrade(ctx, id)
}

func (s *StockService) ListTrades(ctx context.Context, f repository.TradeFilter) ([]models.StockTransaction, error) {
	return s.repo.ListTrades(ctx, f)
}

// DeleteTrade removes a trade and reverses its effect on the holding by
// applying the inverse share delta at the original trade price. Without
// per-lot tracking the restored average cost is approximate whenever other
// trades on the same pair happened in between.
func (s *StockService) DeleteTrade(ctx context.Context, id int64) error {
	trade, err := s.repo.GetTrade(ctx, id)
	if err != nil {
		return err
	}

	mut := repository.HoldingMutation{Op: repository.HoldingNone}
	if trade.Type.MovesShares() {
		delta := trade.Shares.Neg()
		if trade.Type == models.TradeSell {
			delta = trade.Shares
		}
		mut, err = s.holdingMutation(ctx, trade.AccountID, trade.StockID, delta, trade.PricePerShare, trade.Date)
		if err != nil {
			return err
		}
	}

	if err := s.repo.DeleteTrade(ctx, id, mut); err != nil {
		return err
	}
	s.logger.WithField("tradeId", id).Info("trade deleted")
	return nil
}

// holdingMutation runs the weighted-average cost update for a signed share
// delta against the current holding, if any, and translates the outcome into
// the persistence operation: create or update the holding, or delete it when
// no shares remain. A negative delta with no existing holding is a no-op;
// whether the caller holds enough shares is not validated here.
func (s *StockService) holdingMutation(ctx context.Context, accountID, stockID int64, delta, price decimal.Decimal, date time.Time) (repository.HoldingMutation, error) {
	holding, err := s.repo.GetHolding(ctx, accountID, stockID)
	if errors.Is(err, repository.ErrNotFound) {
		if delta.Sign() <= 0 {
			return repository.HoldingMutation{Op: repository.HoldingNone}, nil
		}
		return repository.HoldingMutation{
			Op: repository.HoldingUpsert,
			Holding: models.Holding{
				AccountID:    accountID,
				StockID:      stockID,
				Shares:       delta,
				AverageCost:  price,
				PurchaseDate: &date,
			},
		}, nil
	}
	if err != nil {
		return repository.HoldingMutation{}, err
	}

	holding.ApplyTrade(delta, price)
	if holding.Shares.Sign() <= 0 {
		return repository.HoldingMutation{Op: repository.HoldingDelete, Holding: holding}, nil
	}
	return repository.HoldingMutation{Op: repository.HoldingUpsert, Holding: holding}, nil
}

func (s *StockService) GetHolding(ctx context.Context, accountID, stockID int64) (models.Holding, error) {
	return s.repo.GetHolding(ctx, accountID, stockID)
}

func (s *StockService) ListHoldings(ctx context.Context, f repository.HoldingFilter) ([]models.Holding, error) {
	return s.repo.ListHoldings(ctx, f)
}
