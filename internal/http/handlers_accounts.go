package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/service"
)

type accountRequest struct {
	Name        string `json:"name" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Balance     string `json:"balance"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	Institution string `json:"institution"`
	Number      string `json:"number"`
}

type accountUpdateRequest struct {
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Currency    *string `json:"currency"`
	Description *string `json:"description"`
	Institution *string `json:"institution"`
	Number      *string `json:"number"`
	IsActive    *bool   `json:"isActive"`
}

func handleCreateAccount(c *gin.Context, svc *service.AccountService) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	balance := decimal.Zero
	if req.Balance != "" {
		parsed, err := decimal.NewFromString(req.Balance)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "balance must be a decimal string"})
			return
		}
		balance = parsed
	}

	account, err := svc.CreateAccount(c.Request.Context(), service.CreateAccountInput{
		Name:        req.Name,
		Type:        models.AccountType(req.Type),
		Balance:     balance,
		Currency:    req.Currency,
		Description: req.Description,
		Institution: req.Institution,
		Number:      req.Number,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, accountResponse(account))
}

func handleListAccounts(c *gin.Context, svc *service.AccountService) {
	accounts, err := svc.ListAccounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := []gin.H{}
	for _, a := range accounts {
		resp = append(resp, accountResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"accounts": resp})
}

func handleGetAccount(c *gin.Context, svc *service.AccountService) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	account, err := svc.GetAccount(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountResponse(account))
}

func handleUpdateAccount(c *gin.Context, svc *service.AccountService) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req accountUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.UpdateAccountInput{
		Name:        req.Name,
		Currency:    req.Currency,
		Description: req.Description,
		Institution: req.Institution,
		Number:      req.Number,
		IsActive:    req.IsActive,
	}
	if req.Type != nil {
		accountType := models.AccountType(*req.Type)
		input.Type = &accountType
	}

	account, err := svc.UpdateAccount(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountResponse(account))
}

func handleDeleteAccount(c *gin.Context, svc *service.AccountService) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := svc.DeleteAccount(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func accountResponse(a models.Account) gin.H {
	return gin.H{
		"id":          a.ID,
		"name":        a.Name,
		"type":        a.Type,
		"balance":     a.Balance.StringFixed(2),
		"currency":    a.Currency,
		"description": a.Description,
		"institution": a.Institution,
		"number":      a.Number,
		"isActive":    a.IsActive,
		"displayName": a.DisplayName(),
		"createdAt":   a.CreatedAt,
		"updatedAt":   a.UpdatedAt,
	}
}
