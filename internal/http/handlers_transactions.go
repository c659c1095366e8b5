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

type transactionRequest struct {
	AccountID   int64      `json:"accountId" binding:"required"`
	Amount      string     `json:"amount" binding:"required"`
	Type        string     `json:"type" binding:"required"`
	Category    string     `json:"category"`
	Description string     `json:"description" binding:"required"`
	Date        *time.Time `json:"date"`
	Payee       string     `json:"payee"`
	Reference   string     `json:"reference"`
	Tags        string     `json:"tags"`
	IsRecurring bool       `json:"isRecurring"`
	Notes       string     `json:"notes"`
}

func handleCreateTransaction(c *gin.Context, svc *service.TransactionService) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a decimal string"})
		return
	}

	txn, err := svc.CreateTransaction(c.Request.Context(), service.CreateTransactionInput{
		AccountID:   req.AccountID,
		Amount:      amount,
		Type:        models.TransactionType(req.Type),
		Category:    req.Category,
		Description: req.Description,
		Date:        derefTime(req.Date),
		Payee:       req.Payee,
		Reference:   req.Reference,
		Tags:        req.Tags,
		IsRecurring: req.IsRecurring,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transactionResponse(txn))
}

func handleListTransactions(c *gin.Context, svc *service.TransactionService) {
	filter, ok := transactionFilterFromQuery(c)
	if !ok {
		return
	}
	transactions, err := svc.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := []gin.H{}
	for _, t := range transactions {
		resp = append(resp, transactionResponse(t))
	}
	c.JSON(http.StatusOK, gin.H{"transactions": resp})
}

type transactionUpdateRequest struct {
	Amount      *string    `json:"amount"`
	Type        *string    `json:"type"`
	Category    *string    `json:"category"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Payee       *string    `json:"payee"`
	Reference   *string    `json:"reference"`
	Tags        *string    `json:"tags"`
	IsRecurring *bool      `json:"isRecurring"`
	Notes       *string    `json:"notes"`
}

func handleUpdateTransaction(c *gin.Context, svc *service.TransactionService) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req transactionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.UpdateTransactionInput{
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
		Payee:       req.Payee,
		Reference:   req.Reference,
		Tags:        req.Tags,
		IsRecurring: req.IsRecurring,
		Notes:       req.Notes,
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a decimal string"})
			return
		}
		input.Amount = &amount
	}
	if req.Type != nil {
		txnType := models.TransactionType(*req.Type)
		input.Type = &txnType
	}

	txn, err := svc.UpdateTransaction(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionResponse(txn))
}

func handleTransactionSummary(c *gin.Context, svc *service.TransactionService) {
	filter, ok := transactionFilterFromQuery(c)
	if !ok {
		return
	}
	summary, err := svc.Summary(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	spending := gin.H{}
	for category, amount := range summary.CategorySpending {
		spending[category] = amount.StringFixed(2)
	}
	c.JSON(http.StatusOK, gin.H{
		"totalIncome":       summary.TotalIncome.StringFixed(2),
		"totalExpenses":     summary.TotalExpenses.StringFixed(2),
		"netIncome":         summary.NetIncome.StringFixed(2),
		"transactionCounts": summary.TransactionCounts,
		"categorySpending":  spending,
		"totalTransactions": summary.TotalTransactions,
	})
}

// handleImportTransactions reads a CSV request body and creates transactions
// against the account named in the accountId query parameter.
func handleImportTransactions(c *gin.Context, svc *service.TransactionService) {
	accountID, err := queryInt64(c, "accountId")
	if err != nil || accountID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accountId query parameter is required"})
		return
	}

	imported, importErrors, err := svc.ImportCSV(c.Request.Context(), *accountID, c.Request.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"errors":   importErrors,
	})
}

func handleExportTransactions(c *gin.Context, svc *service.TransactionService) {
	filter, ok := transactionFilterFromQuery(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := svc.ExportCSV(c.Request.Context(), c.Writer, filter); err != nil {
		respondError(c, err)
	}
}

func handleDeleteTransaction(c *gin.Context, svc *service.TransactionService) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := svc.DeleteTransaction(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func transactionFilterFromQuery(c *gin.Context) (repository.TransactionFilter, bool) {
	filter := repository.TransactionFilter{}

	accountID, err := queryInt64(c, "accountId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accountId must be an integer"})
		return filter, false
	}
	filter.AccountID = accountID

	if val := c.Query("type"); val != "" {
		txnType := models.TransactionType(val)
		filter.Type = &txnType
	}
	if val := c.Query("from"); val != "" {
		from, err := time.Parse("2006-01-02", val)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return filter, false
		}
		filter.From = &from
	}
	if val := c.Query("to"); val != "" {
		to, err := time.Parse("2006-01-02", val)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return filter, false
		}
		filter.To = &to
	}
	limit, ok := queryLimit(c)
	if !ok {
		return filter, false
	}
	filter.Limit = limit
	return filter, true
}

func transactionResponse(t models.Transaction) gin.H {
	return gin.H{
		"id":          t.ID,
		"accountId":   t.AccountID,
		"amount":      t.Amount.StringFixed(2),
		"type":        t.Type,
		"category":    t.Category,
		"description": t.Description,
		"date":        t.Date.Format("2006-01-02"),
		"payee":       t.Payee,
		"reference":   t.Reference,
		"tags":        t.TagList(),
		"isRecurring": t.IsRecurring,
		"notes":       t.Notes,
	}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
