package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeType enumerates the kinds of stock transactions.
type TradeType string

const (
	TradeBuy      TradeType = "buy"
	TradeSell     TradeType = "sell"
	TradeDividend TradeType = "dividend"
	TradeSplit    TradeType = "split"
	TradeMerger   TradeType = "merger"
)

// Valid reports whether t is one of the known trade types.
func (t TradeType) Valid() bool {
	switch t {
	case TradeBuy, TradeSell, TradeDividend, TradeSplit, TradeMerger:
		return true
	}
	return false
}

// MovesShares reports whether trades of this type mutate the holding.
// Dividends, splits and mergers are recorded for history only.
func (t TradeType) MovesShares() bool {
	return t == TradeBuy || t == TradeSell
}

// StockTransaction is an immutable log entry of one trade event. Deleting a
// trade reverses its effect on the associated holding.
type StockTransaction struct {
	ID            int64           `json:"id"`
	AccountID     int64           `json:"accountId"`
	StockID       int64           `json:"stockId"`
	Type          TradeType       `json:"type"`
	Shares        decimal.Decimal `json:"shares"`
	PricePerShare decimal.Decimal `json:"pricePerShare"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Fees          decimal.Decimal `json:"fees"`
	Date          time.Time       `json:"date"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// TradeTotal computes the total amount of a trade: shares*price plus fees for
// buys and sells, shares*price for everything else (dividends carry no fees).
func TradeTotal(kind TradeType, shares, price, fees decimal.Decimal) decimal.Decimal {
	total := shares.Mul(price)
	if kind == TradeBuy || kind == TradeSell {
		total = total.Add(fees)
	}
	return total
}
