package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYahooTestServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{
			"currency":"USD",
			"longName":"Apple Inc.",
			"fullExchangeName":"NasdaqGS",
			"regularMarketPrice":150.25,
			"regularMarketTime":1700000000
		}}]}}`)
	}))
}

func TestYahooQuote(t *testing.T) {
	hits := 0
	srv := newYahooTestServer(t, &hits)
	defer srv.Close()

	p := NewYahooProvider(time.Minute)
	p.baseURL = srv.URL

	quote, err := p.Quote(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.True(t, quote.Price.Equal(decimal.NewFromFloat(150.25)))
	assert.Equal(t, int64(1700000000), quote.AsOf.Unix())
}

func TestYahooQuoteCached(t *testing.T) {
	hits := 0
	srv := newYahooTestServer(t, &hits)
	defer srv.Close()

	p := NewYahooProvider(time.Minute)
	p.baseURL = srv.URL

	_, err := p.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	_, err = p.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "second lookup within the TTL must hit the cache")
}

func TestYahooInfo(t *testing.T) {
	hits := 0
	srv := newYahooTestServer(t, &hits)
	defer srv.Close()

	p := NewYahooProvider(time.Minute)
	p.baseURL = srv.URL

	info, err := p.Info(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", info.Name)
	assert.Equal(t, "NasdaqGS", info.Exchange)
	assert.Equal(t, "USD", info.Currency)
}

func TestYahooEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[]}}`)
	}))
	defer srv.Close()

	p := NewYahooProvider(time.Minute)
	p.baseURL = srv.URL

	_, err := p.Quote(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestYahooSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/finance/search", r.URL.Path)
		assert.Equal(t, "apple", r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"quotes":[
			{"symbol":"AAPL","shortname":"Apple Inc.","longname":"Apple Inc.","exchDisp":"NASDAQ","quoteType":"EQUITY"},
			{"symbol":"","shortname":"ignored"},
			{"symbol":"APLE","shortname":"Apple Hospitality REIT","exchDisp":"NYSE","quoteType":"EQUITY"}
		]}`)
	}))
	defer srv.Close()

	p := NewYahooProvider(time.Minute)
	p.baseURL = srv.URL

	results, err := p.Search(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, results, 2, "entries without a symbol are dropped")
	assert.Equal(t, "AAPL", results[0].Symbol)
	assert.Equal(t, "Apple Inc.", results[0].Name)
	assert.Equal(t, "Apple Hospitality REIT", results[1].Name)
}

func TestYahooHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewYahooProvider(time.Minute)
	p.baseURL = srv.URL

	_, err := p.Quote(context.Background(), "AAPL")
	assert.Error(t, err)
}
