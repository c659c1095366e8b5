// Package memory implements the repository interfaces with in-process maps.
// It backs local runs without a DATABASE_URL and the service tests. Data
// resets on restart.
package memory

import (
	"sync"

	"github.com/fintrack/fintrack/internal/models"
)

type pairKey struct {
	accountID int64
	stockID   int64
}

type InMemoryRepo struct {
	mu sync.RWMutex

	nextAccountID int64
	nextTxnID     int64
	nextStockID   int64
	nextHoldingID int64
	nextTradeID   int64

	accounts     map[int64]models.Account
	transactions map[int64]models.Transaction
	stocks       map[int64]models.Stock
	symbolIndex  map[string]int64
	holdings     map[int64]models.Holding
	holdingIndex map[pairKey]int64
	trades       map[int64]models.StockTransaction
}

func New() *InMemoryRepo {
	return &InMemoryRepo{
		accounts:     make(map[int64]models.Account),
		transactions: make(map[int64]models.Transaction),
		stocks:       make(map[int64]models.Stock),
		symbolIndex:  make(map[string]int64),
		holdings:     make(map[int64]models.Holding),
		holdingIndex: make(map[pairKey]int64),
		trades:       make(map[int64]models.StockTransaction),
	}
}
