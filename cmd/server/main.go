package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/http"
	"github.com/fintrack/fintrack/internal/jobs"
	"github.com/fintrack/fintrack/internal/logger"
	"github.com/fintrack/fintrack/internal/marketdata"
	"github.com/fintrack/fintrack/internal/repository"
	"github.com/fintrack/fintrack/internal/repository/memory"
	"github.com/fintrack/fintrack/internal/repository/postgres"
	"github.com/fintrack/fintrack/internal/service"
)

// repositories groups the three persistence interfaces; both the postgres and
// the in-memory implementations satisfy all of them.
type repositories interface {
	repository.AccountRepository
	repository.TransactionRepository
	repository.StockRepository
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Environment)

	providers := []marketdata.Provider{marketdata.NewYahooProvider(cfg.PriceTTL)}
	if cfg.AlphaVantageKey != "" {
		providers = append(providers, marketdata.NewAlphaVantageProvider(cfg.AlphaVantageKey, cfg.PriceTTL))
	} else {
		log.Info("ALPHAVANTAGE_API_KEY not set, price lookups use Yahoo only")
	}
	prices := marketdata.NewChain(log, providers...)

	var repo repositories
	if cfg.UseInMemoryStore {
		log.Warn("DATABASE_URL not set, using in-memory store. Data will reset on restart.")
		repo = memory.New()
	} else {
		db, err := sql.Open("postgres", cfg.DBURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to postgres")
		}
		if err := db.Ping(); err != nil {
			log.WithError(err).Fatal("postgres ping failed")
		}
		repo = postgres.New(db)
		defer db.Close()
		log.Info("connected to postgres")
	}

	accountSvc := service.NewAccountService(repo, log)
	transactionSvc := service.NewTransactionService(repo, log)
	stockSvc := service.NewStockService(repo, repo, prices, log)

	scheduler := jobs.NewScheduler(log)
	if err := scheduler.Add(cfg.PriceRefreshSchedule, jobs.NewPriceRefreshJob(stockSvc, log)); err != nil {
		log.WithError(err).Fatal("invalid price refresh schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := http.Router(accountSvc, transactionSvc, stockSvc, log)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Infof("fintrack listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
