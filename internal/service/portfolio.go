package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/repository"
)

// HoldingValuation is one holding priced at the stock's last known quote.
type HoldingValuation struct {
	HoldingID          int64            `json:"holdingId"`
	StockID            int64            `json:"stockId"`
	AccountID          int64            `json:"accountId"`
	Symbol             string           `json:"symbol"`
	Name               string           `json:"name"`
	Shares             decimal.Decimal  `json:"shares"`
	AverageCost        decimal.Decimal  `json:"averageCost"`
	CurrentPrice       *decimal.Decimal `json:"currentPrice,omitempty"`
	CurrentValue       decimal.Decimal  `json:"currentValue"`
	TotalCost          decimal.Decimal  `json:"totalCost"`
	GainLoss           decimal.Decimal  `json:"gainLoss"`
	GainLossPercentage decimal.Decimal  `json:"gainLossPercentage"`
	LastUpdated        *time.Time       `json:"lastUpdated,omitempty"`
}

// PortfolioSummary is a point-in-time valuation over a set of holdings.
type PortfolioSummary struct {
	TotalValue              decimal.Decimal    `json:"totalValue"`
	TotalCost               decimal.Decimal    `json:"totalCost"`
	TotalGainLoss           decimal.Decimal    `json:"totalGainLoss"`
	TotalGainLossPercentage decimal.Decimal    `json:"totalGainLossPercentage"`
	HoldingsCount           int                `json:"holdingsCount"`
	Holdings                []HoldingValuation `json:"holdings"`
}

// PortfolioSummary values the current holdings, filtered by account when
// accountID is set, at each stock's last known price. It is recomputed from
// scratch on every call; holdings without a known price contribute zero
// value, and the percentage is zero when the cost basis is zero.
func (s *StockService) PortfolioSummary(ctx context.Context, accountID *int64) (PortfolioSummary, error) {
	holdings, err := s.repo.ListHoldings(ctx, repository.HoldingFilter{AccountID: accountID})
	if err != nil {
		return PortfolioSummary{}, err
	}

	summary := PortfolioSummary{
		TotalValue:              decimal.Zero,
		TotalCost:               decimal.Zero,
		TotalGainLoss:           decimal.Zero,
		TotalGainLossPercentage: decimal.Zero,
		Holdings:                []HoldingValuation{},
	}

	for _, h := range holdings {
		stock, err := s.repo.GetStock(ctx, h.StockID)
		if err != nil {
			return PortfolioSummary{}, err
		}

		value := h.CurrentValue(stock.LastPrice)
		cost := h.TotalCost()
		summary.TotalValue = summary.TotalValue.Add(value)
		summary.TotalCost = summary.TotalCost.Add(cost)

		summary.Holdings = append(summary.Holdings, HoldingValuation{
			HoldingID:          h.ID,
			StockID:            stock.ID,
			AccountID:          h.AccountID,
			Symbol:             stock.Symbol,
			Name:               stock.Name,
			Shares:             h.Shares,
			AverageCost:        h.AverageCost,
			CurrentPrice:       stock.LastPrice,
			CurrentValue:       value,
			TotalCost:          cost,
			GainLoss:           h.GainLoss(stock.LastPrice),
			GainLossPercentage: h.GainLossPercentage(stock.LastPrice),
			LastUpdated:        stock.LastUpdated,
		})
	}

	summary.HoldingsCount = len(summary.Holdings)
	summary.TotalGainLoss = summary.TotalValue.Sub(summary.TotalCost)
	if summary.TotalCost.Sign() > 0 {
		summary.TotalGainLossPercentage = summary.TotalGainLoss.Div(summary.TotalCost).Mul(decimal.NewFromInt(100))
	}
	return summary, nil
}
