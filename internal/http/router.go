// Package http wires the gin router and request handlers.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/service"
)

// Router wires all handlers.
func Router(accounts *service.AccountService, transactions *service.TransactionService, stocks *service.StockService, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(logMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/accounts", func(c *gin.Context) { handleCreateAccount(c, accounts) })
	r.GET("/accounts", func(c *gin.Context) { handleListAccounts(c, accounts) })
	r.GET("/accounts/:id", func(c *gin.Context) { handleGetAccount(c, accounts) })
	r.PUT("/accounts/:id", func(c *gin.Context) { handleUpdateAccount(c, accounts) })
	r.DELETE("/accounts/:id", func(c *gin.Context) { handleDeleteAccount(c, accounts) })

	r.POST("/transactions", func(c *gin.Context) { handleCreateTransaction(c, transactions) })
	r.GET("/transactions", func(c *gin.Context) { handleListTransactions(c, transactions) })
	r.GET("/transactions/summary", func(c *gin.Context) { handleTransactionSummary(c, transactions) })
	r.GET("/transactions/export", func(c *gin.Context) { handleExportTransactions(c, transactions) })
	r.POST("/transactions/import", func(c *gin.Context) { handleImportTransactions(c, transactions) })
	r.PUT("/transactions/:id", func(c *gin.Context) { handleUpdateTransaction(c, transactions) })
	r.DELETE("/transactions/:id", func(c *gin.Context) { handleDeleteTransaction(c, transactions) })

	r.POST("/stocks", func(c *gin.Context) { handleCreateStock(c, stocks) })
	r.GET("/stocks", func(c *gin.Context) { handleListStocks(c, stocks) })
	r.GET("/stocks/search", func(c *gin.Context) { handleSearchStocks(c, stocks) })
	r.GET("/stocks/:id", func(c *gin.Context) { handleGetStock(c, stocks) })
	r.POST("/stocks/:id/refresh", func(c *gin.Context) { handleRefreshStock(c, stocks) })
	r.POST("/stocks/refresh-all", func(c *gin.Context) { handleRefreshAllStocks(c, stocks) })

	r.POST("/trades", func(c *gin.Context) { handleRecordTrade(c, stocks) })
	r.GET("/trades", func(c *gin.Context) { handleListTrades(c, stocks) })
	r.DELETE("/trades/:id", func(c *gin.Context) { handleDeleteTrade(c, stocks) })

	r.GET("/holdings", func(c *gin.Context) { handleListHoldings(c, stocks) })
	r.GET("/portfolio", func(c *gin.Context) { handlePortfolio(c, stocks) })

	return r
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateSymbol):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

func queryLimit(c *gin.Context) (int, bool) {
	val := c.Query("limit")
	if val == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(val)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return 0, false
	}
	return limit, true
}

func queryInt64(c *gin.Context, key string) (*int64, error) {
	val := c.Query(key)
	if val == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
