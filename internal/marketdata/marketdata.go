// Package marketdata fetches quotes and instrument metadata from external
// providers. Lookups go through a fallback chain: providers are tried in
// order and the first success wins. Provider failures are logged and
// swallowed, so callers always get a nullable result instead of an error.
package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("marketdata: not found")

// Quote is the latest known price for a symbol.
type Quote struct {
	Symbol string
	Price  decimal.Decimal
	AsOf   time.Time
}

// Info is descriptive metadata about an instrument.
type Info struct {
	Symbol      string
	Name        string
	Exchange    string
	Sector      string
	Industry    string
	Currency    string
	Description string
}

// SearchResult is one instrument matched by a symbol or name search.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Type     string `json:"type,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// Provider is one external market data source.
type Provider interface {
	Name() string
	Quote(ctx context.Context, symbol string) (Quote, error)
	Info(ctx context.Context, symbol string) (Info, error)
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Chain tries each provider in order and returns the first success.
type Chain struct {
	providers []Provider
	logger    *logrus.Entry
}

func NewChain(logger *logrus.Logger, providers ...Provider) *Chain {
	return &Chain{
		providers: providers,
		logger:    logger.WithField("component", "marketdata"),
	}
}

// Price returns the latest quote for symbol, or ok=false when every provider
// failed. Failures are logged per provider and never propagated.
func (c *Chain) Price(ctx context.Context, symbol string) (Quote, bool) {
	for _, p := range c.providers {
		quote, err := p.Quote(ctx, symbol)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"provider": p.Name(),
				"symbol":   symbol,
			}).Debug("quote lookup failed, trying next provider")
			continue
		}
		return quote, true
	}
	c.logger.WithField("symbol", symbol).Warn("no provider returned a quote")
	return Quote{}, false
}

// Info returns instrument metadata for symbol, or ok=false when every
// provider failed.
func (c *Chain) Info(ctx context.Context, symbol string) (Info, bool) {
	for _, p := range c.providers {
		info, err := p.Info(ctx, symbol)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"provider": p.Name(),
				"symbol":   symbol,
			}).Debug("info lookup failed, trying next provider")
			continue
		}
		return info, true
	}
	return Info{}, false
}

// Search returns instruments matching the query, or ok=false when every
// provider failed. An empty match list counts as a miss so the next provider
// gets a chance.
func (c *Chain) Search(ctx context.Context, query string) ([]SearchResult, bool) {
	for _, p := range c.providers {
		results, err := p.Search(ctx, query)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"provider": p.Name(),
				"query":    query,
			}).Debug("search failed, trying next provider")
			continue
		}
		if len(results) == 0 {
			continue
		}
		return results, true
	}
	return nil, false
}
