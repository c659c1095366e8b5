package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack/internal/repository"
	"github.com/fintrack/fintrack/internal/service"
)

func handleListHoldings(c *gin.Context, svc *service.StockService) {
	accountID, err := queryInt64(c, "accountId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accountId must be an integer"})
		return
	}

	holdings, err := svc.ListHoldings(c.Request.Context(), repository.HoldingFilter{AccountID: accountID})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := []gin.H{}
	for _, h := range holdings {
		entry := gin.H{
			"id":          h.ID,
			"accountId":   h.AccountID,
			"stockId":     h.StockID,
			"shares":      h.Shares.String(),
			"averageCost": h.AverageCost.StringFixed(4),
			"totalCost":   h.TotalCost().StringFixed(2),
			"notes":       h.Notes,
		}
		if h.PurchaseDate != nil {
			entry["purchaseDate"] = h.PurchaseDate.Format("2006-01-02")
		}
		resp = append(resp, entry)
	}
	c.JSON(http.StatusOK, gin.H{"holdings": resp})
}

func handlePortfolio(c *gin.Context, svc *service.StockService) {
	accountID, err := queryInt64(c, "accountId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accountId must be an integer"})
		return
	}

	summary, err := svc.PortfolioSummary(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	holdings := []gin.H{}
	for _, h := range summary.Holdings {
		entry := gin.H{
			"holdingId":          h.HoldingID,
			"stockId":            h.StockID,
			"accountId":          h.AccountID,
			"symbol":             h.Symbol,
			"name":               h.Name,
			"shares":             h.Shares.String(),
			"averageCost":        h.AverageCost.StringFixed(4),
			"currentValue":       h.CurrentValue.StringFixed(2),
			"totalCost":          h.TotalCost.StringFixed(2),
			"gainLoss":           h.GainLoss.StringFixed(2),
			"gainLossPercentage": h.GainLossPercentage.StringFixed(2),
		}
		if h.CurrentPrice != nil {
			entry["currentPrice"] = h.CurrentPrice.StringFixed(4)
		}
		if h.LastUpdated != nil {
			entry["lastUpdated"] = h.LastUpdated
		}
		holdings = append(holdings, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"totalValue":              summary.TotalValue.StringFixed(2),
		"totalCost":               summary.TotalCost.StringFixed(2),
		"totalGainLoss":           summary.TotalGainLoss.StringFixed(2),
		"totalGainLossPercentage": summary.TotalGainLossPercentage.StringFixed(2),
		"holdingsCount":           summary.HoldingsCount,
		"holdings":                holdings,
	})
}
