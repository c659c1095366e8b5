package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/models"
)

var (
	// ErrNotFound indicates a referenced row does not exist.
	ErrNotFound = fmt.Errorf("not found")
	// ErrDuplicateSymbol indicates a stock with the same symbol already exists.
	ErrDuplicateSymbol = fmt.Errorf("duplicate symbol")
)

// AccountRepository abstracts persistence for financial accounts.
type AccountRepository interface {
	CreateAccount(ctx context.Context, a models.Account) (models.Account, error)
	GetAccount(ctx context.Context, id int64) (models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	UpdateAccount(ctx context.Context, a models.Account) (models.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	AccountID *int64
	Type      *models.TransactionType
	From      *time.Time
	To        *time.Time
	Limit     int
}

// TransactionRepository abstracts persistence for cash transactions. The
// balance delta on create/update/delete is applied to the owning account in
// the same unit of work, so the ledger and the balance cannot drift apart.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, t models.Transaction, balanceDelta decimal.Decimal) (models.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (models.Transaction, error)
	ListTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error)
	UpdateTransaction(ctx context.Context, t models.Transaction, balanceDelta decimal.Decimal) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64, balanceDelta decimal.Decimal) error
}

// HoldingOp describes what a trade does to the affected holding.
type HoldingOp int

const (
	// HoldingNone leaves holdings untouched (dividends, or propagation off).
	HoldingNone HoldingOp = iota
	// HoldingUpsert creates or replaces the holding for its (account, stock) pair.
	HoldingUpsert
	// HoldingDelete removes the holding for its (account, stock) pair.
	HoldingDelete
)

// HoldingMutation carries the holding change that must be persisted
// atomically with a trade insert or delete.
type HoldingMutation struct {
	Op      HoldingOp
	Holding models.Holding
}

// HoldingFilter narrows holding listings.
type HoldingFilter struct {
	AccountID *int64
	StockID   *int64
}

// TradeFilter narrows stock transaction listings.
type TradeFilter struct {
	AccountID *int64
	StockID   *int64
	Type      *models.TradeType
	Limit     int
}

// StockRepository abstracts persistence for stocks, holdings and stock
// transactions. RecordTrade and DeleteTrade apply the trade row and its
// holding mutation as one atomic unit.
type StockRepository interface {
	CreateStock(ctx context.Context, s models.Stock) (models.Stock, error)
	GetStock(ctx context.Context, id int64) (models.Stock, error)
	GetStockBySymbol(ctx context.Context, symbol string) (models.Stock, error)
	ListStocks(ctx context.Context) ([]models.Stock, error)
	UpdateStockPrice(ctx context.Context, id int64, price decimal.Decimal, at time.Time) error

	GetHolding(ctx context.Context, accountID, stockID int64) (models.Holding, error)
	ListHoldings(ctx context.Context, f HoldingFilter) ([]models.Holding, error)

	RecordTrade(ctx context.Context, t models.StockTransaction, mut HoldingMutation) (models.StockTransaction, error)
	GetTrade(ctx context.Context, id int64) (models.StockTransaction, error)
	ListTrades(ctx context.Context, f TradeFilter) ([]models.StockTransaction, error)
	DeleteTrade(ctx context.Context, id int64, mut HoldingMutation) error
}
