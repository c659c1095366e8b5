package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Stock represents a tradable security identified by its ticker symbol.
// Many holdings may reference one stock; the last known price is shared.
type Stock struct {
	ID          int64            `json:"id"`
	Symbol      string           `json:"symbol"`
	Name        string           `json:"name"`
	Exchange    string           `json:"exchange,omitempty"`
	Sector      string           `json:"sector,omitempty"`
	Industry    string           `json:"industry,omitempty"`
	Currency    string           `json:"currency"`
	LastPrice   *decimal.Decimal `json:"lastPrice,omitempty"`
	LastUpdated *time.Time       `json:"lastUpdated,omitempty"`
	Description string           `json:"description,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// NormalizeSymbol upper-cases and trims a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// UpdatePrice records a fresh quote on the stock.
func (s *Stock) UpdatePrice(price decimal.Decimal, at time.Time) {
	s.LastPrice = &price
	s.LastUpdated = &at
}
