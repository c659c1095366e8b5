package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/repository"
	"github.com/fintrack/fintrack/internal/service"
)

type stockRequest struct {
	Symbol      string `json:"symbol" binding:"required"`
	Name        string `json:"name"`
	Exchange    string `json:"exchange"`
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	FetchInfo   *bool  `json:"fetchInfo"`
}

type tradeRequest struct {
	AccountID     int64      `json:"accountId" binding:"required"`
	StockID       int64      `json:"stockId" binding:"required"`
	Type          string     `json:"type" binding:"required"`
	Shares        string     `json:"shares" binding:"required"`
	PricePerShare string     `json:"pricePerShare" binding:"required"`
	Fees          string     `json:"fees"`
	Date          *time.Time `json:"date"`
	Notes         string     `json:"notes"`
	UpdateHolding *bool      `json:"updateHolding"`
}

func handleCreateStock(c *gin.Context, svc *service.StockService) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fetchInfo := true
	if req.FetchInfo != nil {
		fetchInfo = *req.FetchInfo
	}

	stock, err := svc.CreateStock(c.Request.Context(), service.CreateStockInput{
		Symbol:      req.Symbol,
		Name:        req.Name,
		Exchange:    req.Exchange,
		Sector:      req.Sector,
		Industry:    req.Industry,
		Currency:    req.Currency,
		Description: req.Description,
		FetchInfo:   fetchInfo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stockResponse(stock))
}

func handleListStocks(c *gin.Context, svc *service.StockService) {
	stocks, err := svc.ListStocks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := []gin.H{}
	for _, s := range stocks {
		resp = append(resp, stockResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"stocks": resp})
}

func handleGetStock(c *gin.Context, svc *service.StockService) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	stock, err := svc.GetStock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stockResponse(stock))
}

func handleSearchStocks(c *gin.Context, svc *service.StockService) {
	results, err := svc.SearchStocks(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func handleRefreshStock(c *gin.Context, svc *service.StockService) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	stock, err := svc.RefreshPrice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stockResponse(stock))
}

func handleRefreshAllStocks(c *gin.Context, svc *service.StockService) {
	results, err := svc.RefreshAllPrices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func handleRecordTrade(c *gin.Context, svc *service.StockService) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shares, err := decimal.NewFromString(req.Shares)
	if err != nil || shares.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shares must be a positive decimal string"})
		return
	}
	price, err := decimal.NewFromString(req.PricePerShare)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pricePerShare must be a decimal string"})
		return
	}
	fees := decimal.Zero
	if req.Fees != "" {
		fees, err = decimal.NewFromString(req.Fees)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fees must be a decimal string"})
			return
		}
	}
	updateHolding := true
	if req.UpdateHolding != nil {
		updateHolding = *req.UpdateHolding
	}

	trade, err := svc.RecordTrade(c.Request.Context(), service.RecordTradeInput{
		AccountID:     req.AccountID,
		StockID:       req.StockID,
		Type:          models.TradeType(req.Type),
		Shares:        shares,
		PricePerShare: price,
		Fees:          fees,
		Date:          derefTime(req.Date),
		Notes:         req.Notes,
		UpdateHolding: updateHolding,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tradeResponse(trade))
}

func handleListTrades(c *gin.Context, svc *service.StockService) {
	filter := repository.TradeFilter{}

	accountID, err := queryInt64(c, "accountId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accountId must be an integer"})
		return
	}
	filter.AccountID = accountID

	stockID, err := queryInt64(c, "stockId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stockId must be an integer"})
		return
	}
	filter.StockID = stockID

	if val := c.Query("type"); val != "" {
		tradeType := models.TradeType(val)
		filter.Type = &tradeType
	}

	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	filter.Limit = limit

	trades, err := svc.ListTrades(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := []gin.H{}
	for _, t := range trades {
		resp = append(resp, tradeResponse(t))
	}
	c.JSON(http.StatusOK, gin.H{"trades": resp})
}

func handleDeleteTrade(c *gin.Context, svc *service.StockService) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := svc.DeleteTrade(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func stockResponse(s models.Stock) gin.H {
	resp := gin.H{
		"id":          s.ID,
		"symbol":      s.Symbol,
		"name":        s.Name,
		"exchange":    s.Exchange,
		"sector":      s.Sector,
		"industry":    s.Industry,
		"currency":    s.Currency,
		"description": s.Description,
	}
	if s.LastPrice != nil {
		resp["lastPrice"] = s.LastPrice.StringFixed(4)
	}
	if s.LastUpdated != nil {
		resp["lastUpdated"] = s.LastUpdated
	}
	return resp
}

func tradeResponse(t models.StockTransaction) gin.H {
	return gin.H{
		"id":            t.ID,
		"accountId":     t.AccountID,
		"stockId":       t.StockID,
		"type":          t.Type,
		"shares":        t.Shares.String(),
		"pricePerShare": t.PricePerShare.StringFixed(4),
		"totalAmount":   t.TotalAmount.StringFixed(2),
		"fees":          t.Fees.StringFixed(2),
		"date":          t.Date.Format("2006-01-02"),
		"notes":         t.Notes,
	}
}
