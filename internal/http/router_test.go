package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack/internal/marketdata"
	"github.com/fintrack/fintrack/internal/repository/memory"
	"github.com/fintrack/fintrack/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// noQuotes is a price source with no data, every lookup misses.
type noQuotes struct{}

func (noQuotes) Price(ctx context.Context, symbol string) (marketdata.Quote, bool) {
	return marketdata.Quote{}, false
}

func (noQuotes) Info(ctx context.Context, symbol string) (marketdata.Info, bool) {
	return marketdata.Info{}, false
}

func (noQuotes) Search(ctx context.Context, query string) ([]marketdata.SearchResult, bool) {
	return nil, false
}

// searchHits layers canned search matches over noQuotes.
type searchHits struct {
	noQuotes
	matches []marketdata.SearchResult
}

func (s searchHits) Search(ctx context.Context, query string) ([]marketdata.SearchResult, bool) {
	return s.matches, len(s.matches) > 0
}

func newTestRouter() *gin.Engine {
	return newTestRouterWith(noQuotes{})
}

func newTestRouterWith(prices service.PriceSource) *gin.Engine {
	log := logrus.New()
	log.SetOutput(io.Discard)
	repo := memory.New()

	accounts := service.NewAccountService(repo, log)
	transactions := service.NewTransactionService(repo, log)
	stocks := service.NewStockService(repo, repo, prices, log)
	return Router(accounts, transactions, stocks, log)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	router := newTestRouter()
	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAccountLifecycle(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/accounts", gin.H{
		"name": "Checking", "type": "checking", "balance": "1000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "1000.00", created["balance"])
	id := int64(created["id"].(float64))

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/accounts/%d", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/accounts/%d", id), gin.H{"name": "Joint Checking"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Joint Checking", decode(t, w)["name"])

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/accounts/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/accounts/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccountValidationErrors(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/accounts", gin.H{"name": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing type fails binding")

	w = doJSON(t, router, http.MethodPost, "/accounts", gin.H{"name": "X", "type": "offshore"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/accounts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionFlow(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/accounts", gin.H{
		"name": "Checking", "type": "checking", "balance": "1000",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	accountID := int64(decode(t, w)["id"].(float64))

	w = doJSON(t, router, http.MethodPost, "/transactions", gin.H{
		"accountId": accountID, "amount": "-42.50", "type": "expense",
		"description": "weekly shop", "category": "groceries",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	txnID := int64(decode(t, w)["id"].(float64))

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/accounts/%d", accountID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "957.50", decode(t, w)["balance"])

	w = doJSON(t, router, http.MethodGet, "/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["transactions"], 1)

	w = doJSON(t, router, http.MethodGet, "/transactions/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "weekly shop")

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/transactions/%d", txnID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/accounts/%d", accountID), nil)
	assert.Equal(t, "1000.00", decode(t, w)["balance"])
}

func TestUpdateTransactionEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/accounts", gin.H{
		"name": "Checking", "type": "checking", "balance": "1000",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	accountID := int64(decode(t, w)["id"].(float64))

	w = doJSON(t, router, http.MethodPost, "/transactions", gin.H{
		"accountId": accountID, "amount": "-42.50", "type": "expense", "description": "weekly shop",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	txnID := int64(decode(t, w)["id"].(float64))

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/transactions/%d", txnID), gin.H{
		"amount": "-60", "description": "monthly shop",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)
	assert.Equal(t, "-60.00", updated["amount"])
	assert.Equal(t, "monthly shop", updated["description"])

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/accounts/%d", accountID), nil)
	assert.Equal(t, "940.00", decode(t, w)["balance"])

	w = doJSON(t, router, http.MethodPut, "/transactions/999", gin.H{"amount": "-1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransactionSummaryEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/accounts", gin.H{"name": "Checking", "type": "checking"})
	require.Equal(t, http.StatusCreated, w.Code)
	accountID := int64(decode(t, w)["id"].(float64))

	for _, body := range []gin.H{
		{"accountId": accountID, "amount": "2500", "type": "income", "description": "salary"},
		{"accountId": accountID, "amount": "-100", "type": "expense", "category": "utilities", "description": "power"},
	} {
		w = doJSON(t, router, http.MethodPost, "/transactions", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/transactions/summary", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode(t, w)
	assert.Equal(t, "2500.00", summary["totalIncome"])
	assert.Equal(t, "100.00", summary["totalExpenses"])
	assert.Equal(t, "2400.00", summary["netIncome"])
	assert.Equal(t, float64(2), summary["totalTransactions"])
	spending := summary["categorySpending"].(map[string]any)
	assert.Equal(t, "100.00", spending["utilities"])
}

func TestImportTransactionsEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/accounts", gin.H{"name": "Checking", "type": "checking"})
	require.Equal(t, http.StatusCreated, w.Code)
	accountID := int64(decode(t, w)["id"].(float64))

	csv := "date,description,amount\n2026-01-05,weekly shop,-42.50\nbad-date,taxi,-12\n"
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/transactions/import?accountId=%d", accountID), strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode(t, w)
	assert.Equal(t, float64(1), result["imported"])
	assert.Len(t, result["errors"], 1)

	w2 := doJSON(t, router, http.MethodPost, "/transactions/import", nil)
	assert.Equal(t, http.StatusBadRequest, w2.Code, "accountId is required")
}

func TestListTransactionsLimit(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/accounts", gin.H{"name": "Checking", "type": "checking"})
	require.Equal(t, http.StatusCreated, w.Code)
	accountID := int64(decode(t, w)["id"].(float64))

	for _, body := range []gin.H{
		{"accountId": accountID, "amount": "-10", "type": "expense", "description": "lunch", "date": "2026-01-05T00:00:00Z"},
		{"accountId": accountID, "amount": "-20", "type": "expense", "description": "dinner", "date": "2026-03-10T00:00:00Z"},
	} {
		w = doJSON(t, router, http.MethodPost, "/transactions", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/transactions?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["transactions"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "dinner", list[0].(map[string]any)["description"])

	w = doJSON(t, router, http.MethodGet, "/transactions?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchStocksEndpoint(t *testing.T) {
	router := newTestRouterWith(searchHits{matches: []marketdata.SearchResult{
		{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ", Type: "EQUITY"},
	}})

	w := doJSON(t, router, http.MethodGet, "/stocks/search?q=apple", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	results := decode(t, w)["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "AAPL", results[0].(map[string]any)["symbol"])

	w = doJSON(t, router, http.MethodGet, "/stocks/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty query is rejected")

	// no matches is an empty list, not an error
	w = doJSON(t, newTestRouter(), http.MethodGet, "/stocks/search?q=apple", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["results"])
}

func TestTradeAndPortfolioFlow(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/accounts", gin.H{"name": "Brokerage", "type": "brokerage"})
	require.Equal(t, http.StatusCreated, w.Code)
	accountID := int64(decode(t, w)["id"].(float64))

	w = doJSON(t, router, http.MethodPost, "/stocks", gin.H{
		"symbol": "aapl", "name": "Apple Inc.", "fetchInfo": false,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	stock := decode(t, w)
	assert.Equal(t, "AAPL", stock["symbol"])
	stockID := int64(stock["id"].(float64))

	w = doJSON(t, router, http.MethodPost, "/trades", gin.H{
		"accountId": accountID, "stockId": stockID, "type": "buy",
		"shares": "10", "pricePerShare": "140", "fees": "9.95",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	trade := decode(t, w)
	assert.Equal(t, "1409.95", trade["totalAmount"])
	tradeID := int64(trade["id"].(float64))

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/holdings?accountId=%d", accountID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	holdings := decode(t, w)["holdings"].([]any)
	require.Len(t, holdings, 1)
	assert.Equal(t, "10", holdings[0].(map[string]any)["shares"])

	w = doJSON(t, router, http.MethodGet, "/portfolio", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode(t, w)
	assert.Equal(t, "1400.00", summary["totalCost"])
	assert.Equal(t, float64(1), summary["holdingsCount"])

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/trades/%d", tradeID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/holdings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["holdings"])
}

func TestTradeValidationErrors(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/accounts", gin.H{"name": "Brokerage", "type": "brokerage"})
	require.Equal(t, http.StatusCreated, w.Code)
	accountID := int64(decode(t, w)["id"].(float64))

	w = doJSON(t, router, http.MethodPost, "/stocks", gin.H{"symbol": "AAPL", "name": "Apple Inc.", "fetchInfo": false})
	require.Equal(t, http.StatusCreated, w.Code)
	stockID := int64(decode(t, w)["id"].(float64))

	w = doJSON(t, router, http.MethodPost, "/trades", gin.H{
		"accountId": accountID, "stockId": stockID, "type": "buy",
		"shares": "-5", "pricePerShare": "140",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/trades", gin.H{
		"accountId": accountID, "stockId": int64(999), "type": "buy",
		"shares": "5", "pricePerShare": "140",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/trades", gin.H{
		"accountId": accountID, "stockId": stockID, "type": "short",
		"shares": "5", "pricePerShare": "140",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStockRefreshWithoutQuote(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/stocks", gin.H{"symbol": "AAPL", "name": "Apple Inc.", "fetchInfo": false})
	require.Equal(t, http.StatusCreated, w.Code)
	stockID := int64(decode(t, w)["id"].(float64))

	// lookups fail soft, the stock comes back unchanged
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/stocks/%d/refresh", stockID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, hasPrice := decode(t, w)["lastPrice"]
	assert.False(t, hasPrice)

	w = doJSON(t, router, http.MethodPost, "/stocks/refresh-all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	results := decode(t, w)["results"].(map[string]any)
	assert.Equal(t, false, results["AAPL"])
}

func TestRequestIDPassthrough(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "test-id-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "test-id-123", w.Header().Get("X-Request-ID"))
}
