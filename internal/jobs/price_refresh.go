package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/service"
)

// PriceRefreshJob periodically refreshes the last known price of every stock.
// Individual symbol failures are tolerated; the stock keeps its stale price.
type PriceRefreshJob struct {
	stocks  *service.StockService
	timeout time.Duration
	logger  *logrus.Entry
}

func NewPriceRefreshJob(stocks *service.StockService, logger *logrus.Logger) *PriceRefreshJob {
	return &PriceRefreshJob{
		stocks:  stocks,
		timeout: 2 * time.Minute,
		logger:  logger.WithField("component", "price-refresh"),
	}
}

func (j *PriceRefreshJob) Name() string { return "price-refresh" }

func (j *PriceRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	results, err := j.stocks.RefreshAllPrices(ctx)
	if err != nil {
		return err
	}

	refreshed := 0
	for symbol, ok := range results {
		if ok {
			refreshed++
		} else {
			j.logger.WithField("symbol", symbol).Warn("price refresh failed")
		}
	}
	j.logger.WithFields(logrus.Fields{
		"refreshed": refreshed,
		"total":     len(results),
	}).Info("price refresh run finished")
	return nil
}
