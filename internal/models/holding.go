package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is the net position in one stock within one account: a share count
// and the weighted-average cost per share. At most one live holding exists
// per (account, stock) pair; a holding whose shares reach zero is deleted
// rather than kept as a zero-row.
type Holding struct {
	ID           int64           `json:"id"`
	AccountID    int64           `json:"accountId"`
	StockID      int64           `json:"stockId"`
	Shares       decimal.Decimal `json:"shares"`
	AverageCost  decimal.Decimal `json:"averageCost"`
	PurchaseDate *time.Time      `json:"purchaseDate,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ApplyTrade mutates the position by a signed share delta at the given trade
// price.
//
// A positive delta (buy) folds the new lot into the weighted average:
// avg' = (shares*avg + delta*price) / (shares + delta). A negative delta
// (sell) only reduces the share count; the average cost of the remaining
// shares is left untouched, so realized gains never feed back into the cost
// basis. Lots are not tracked individually, which also means reversing a buy
// at its original price only approximates the prior average when other
// trades happened in between.
//
// Shares are clamped at zero; the caller deletes the holding when no shares
// remain.
func (h *Holding) ApplyTrade(delta, price decimal.Decimal) {
	if delta.Sign() > 0 {
		totalCost := h.Shares.Mul(h.AverageCost).Add(delta.Mul(price))
		h.Shares = h.Shares.Add(delta)
		if h.Shares.Sign() > 0 {
			h.AverageCost = totalCost.Div(h.Shares)
		}
		return
	}
	h.Shares = h.Shares.Add(delta)
	if h.Shares.Sign() < 0 {
		h.Shares = decimal.Zero
	}
}

// TotalCost returns shares * average cost.
func (h Holding) TotalCost() decimal.Decimal {
	return h.Shares.Mul(h.AverageCost)
}

// CurrentValue returns shares * price, or zero when no price is known.
func (h Holding) CurrentValue(price *decimal.Decimal) decimal.Decimal {
	if price == nil {
		return decimal.Zero
	}
	return h.Shares.Mul(*price)
}

// GainLoss returns the unrealized gain or loss against the cost basis.
func (h Holding) GainLoss(price *decimal.Decimal) decimal.Decimal {
	return h.CurrentValue(price).Sub(h.TotalCost())
}

// GainLossPercentage returns the gain or loss as a percentage of the cost
// basis, or zero when the cost basis is zero.
func (h Holding) GainLossPercentage(price *decimal.Decimal) decimal.Decimal {
	cost := h.TotalCost()
	if cost.IsZero() {
		return decimal.Zero
	}
	return h.GainLoss(price).Div(cost).Mul(decimal.NewFromInt(100))
}
