package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/models"
)

var (
	ErrAPIKeyMissing  = errors.New("alphavantage: api key not set")
	ErrAPIRateLimited = errors.New("alphavantage: rate limited")
)

// AlphaVantageProvider serves quotes via GLOBAL_QUOTE and metadata via
// OVERVIEW. Requires an API key; the free tier is heavily rate limited,
// which is why this provider sits behind Yahoo in the chain.
type AlphaVantageProvider struct {
	cli     *http.Client
	baseURL string
	apiKey  string
	ttl     time.Duration

	mu    sync.RWMutex
	cache map[string]cachedQuote
}

func NewAlphaVantageProvider(apiKey string, ttl time.Duration) *AlphaVantageProvider {
	return &AlphaVantageProvider{
		cli:     &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://www.alphavantage.co",
		apiKey:  apiKey,
		ttl:     ttl,
		cache:   make(map[string]cachedQuote),
	}
}

func (p *AlphaVantageProvider) Name() string { return "alphavantage" }

func (p *AlphaVantageProvider) Quote(ctx context.Context, symbol string) (Quote, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return Quote{}, ErrNotFound
	}
	if p.apiKey == "" {
		return Quote{}, ErrAPIKeyMissing
	}

	p.mu.RLock()
	if c, ok := p.cache[symbol]; ok && time.Since(c.fetched) < p.ttl {
		p.mu.RUnlock()
		return c.quote, nil
	}
	p.mu.RUnlock()

	var raw struct {
		GlobalQuote struct {
			Price         string `json:"05. price"`
			LatestTrading string `json:"07. latest trading day"`
		} `json:"Global Quote"`
		Note        string `json:"Note"`
		Information string `json:"Information"`
	}
	if err := p.get(ctx, url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {symbol}}, &raw); err != nil {
		return Quote{}, err
	}
	if raw.Note != "" || raw.Information != "" {
		return Quote{}, ErrAPIRateLimited
	}
	if raw.GlobalQuote.Price == "" {
		return Quote{}, ErrNotFound
	}

	price, err := decimal.NewFromString(raw.GlobalQuote.Price)
	if err != nil || price.Sign() <= 0 {
		return Quote{}, ErrNotFound
	}

	asOf := time.Now()
	if day, err := time.Parse("2006-01-02", raw.GlobalQuote.LatestTrading); err == nil {
		asOf = day
	}
	quote := Quote{Symbol: symbol, Price: price, AsOf: asOf}

	p.mu.Lock()
	p.cache[symbol] = cachedQuote{quote: quote, fetched: time.Now()}
	p.mu.Unlock()

	return quote, nil
}

func (p *AlphaVantageProvider) Info(ctx context.Context, symbol string) (Info, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return Info{}, ErrNotFound
	}
	if p.apiKey == "" {
		return Info{}, ErrAPIKeyMissing
	}

	var raw struct {
		Symbol      string `json:"Symbol"`
		Name        string `json:"Name"`
		Exchange    string `json:"Exchange"`
		Sector      string `json:"Sector"`
		Industry    string `json:"Industry"`
		Currency    string `json:"Currency"`
		Description string `json:"Description"`
		Note        string `json:"Note"`
		Information string `json:"Information"`
	}
	if err := p.get(ctx, url.Values{"function": {"OVERVIEW"}, "symbol": {symbol}}, &raw); err != nil {
		return Info{}, err
	}
	if raw.Note != "" || raw.Information != "" {
		return Info{}, ErrAPIRateLimited
	}
	if raw.Name == "" {
		return Info{}, ErrNotFound
	}
	return Info{
		Symbol:      symbol,
		Name:        raw.Name,
		Exchange:    raw.Exchange,
		Sector:      raw.Sector,
		Industry:    raw.Industry,
		Currency:    raw.Currency,
		Description: raw.Description,
	}, nil
}

// Search uses the SYMBOL_SEARCH function.
func (p *AlphaVantageProvider) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNotFound
	}
	if p.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	var raw struct {
		BestMatches []struct {
			Symbol   string `json:"1. symbol"`
			Name     string `json:"2. name"`
			Type     string `json:"3. type"`
			Region   string `json:"4. region"`
			Currency string `json:"8. currency"`
		} `json:"bestMatches"`
		Note        string `json:"Note"`
		Information string `json:"Information"`
	}
	if err := p.get(ctx, url.Values{"function": {"SYMBOL_SEARCH"}, "keywords": {query}}, &raw); err != nil {
		return nil, err
	}
	if raw.Note != "" || raw.Information != "" {
		return nil, ErrAPIRateLimited
	}

	results := []SearchResult{}
	for _, m := range raw.BestMatches {
		if m.Symbol == "" {
			continue
		}
		results = append(results, SearchResult{
			Symbol:   m.Symbol,
			Name:     m.Name,
			Exchange: m.Region,
			Type:     m.Type,
			Currency: m.Currency,
		})
	}
	return results, nil
}

func (p *AlphaVantageProvider) get(ctx context.Context, params url.Values, out interface{}) error {
	params.Set("apikey", p.apiKey)
	endpoint := p.baseURL + "/query?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := p.cli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("alphavantage http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
