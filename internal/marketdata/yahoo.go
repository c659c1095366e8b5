package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/models"
)

const yahooBaseURL = "https://query2.finance.yahoo.com"

type cachedQuote struct {
	quote   Quote
	fetched time.Time
}

// YahooProvider serves quotes from the Yahoo Finance v8 chart API with a
// per-symbol TTL cache. No API key required.
type YahooProvider struct {
	cli     *http.Client
	baseURL string
	ttl     time.Duration

	mu    sync.RWMutex
	cache map[string]cachedQuote
}

func NewYahooProvider(ttl time.Duration) *YahooProvider {
	return &YahooProvider{
		cli:     &http.Client{Timeout: 8 * time.Second},
		baseURL: yahooBaseURL,
		ttl:     ttl,
		cache:   make(map[string]cachedQuote),
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) Quote(ctx context.Context, symbol string) (Quote, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return Quote{}, ErrNotFound
	}

	p.mu.RLock()
	if c, ok := p.cache[symbol]; ok && time.Since(c.fetched) < p.ttl {
		p.mu.RUnlock()
		return c.quote, nil
	}
	p.mu.RUnlock()

	meta, err := p.fetchChartMeta(ctx, symbol)
	if err != nil {
		return Quote{}, err
	}
	if meta.RegularMarketPrice <= 0 {
		return Quote{}, ErrNotFound
	}

	asOf := time.Unix(meta.RegularMarketTime, 0)
	if meta.RegularMarketTime == 0 {
		asOf = time.Now()
	}
	quote := Quote{
		Symbol: symbol,
		Price:  decimal.NewFromFloat(meta.RegularMarketPrice).Round(4),
		AsOf:   asOf,
	}

	p.mu.Lock()
	p.cache[symbol] = cachedQuote{quote: quote, fetched: time.Now()}
	p.mu.Unlock()

	return quote, nil
}

// Info maps what the chart meta block exposes. Yahoo's chart endpoint has no
// sector/industry data; those stay empty and the next provider can fill them.
func (p *YahooProvider) Info(ctx context.Context, symbol string) (Info, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return Info{}, ErrNotFound
	}
	meta, err := p.fetchChartMeta(ctx, symbol)
	if err != nil {
		return Info{}, err
	}
	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}
	if name == "" {
		return Info{}, ErrNotFound
	}
	return Info{
		Symbol:   symbol,
		Name:     name,
		Exchange: meta.FullExchangeName,
		Currency: meta.Currency,
	}, nil
}

// Search uses the Yahoo search endpoint; non-equity matches (news, options)
// are filtered out.
func (p *YahooProvider) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNotFound
	}

	endpoint := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=10&newsCount=0", p.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "fintrack/1.0")

	resp, err := p.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo http %d", resp.StatusCode)
	}

	var raw struct {
		Quotes []struct {
			Symbol    string `json:"symbol"`
			ShortName string `json:"shortname"`
			LongName  string `json:"longname"`
			ExchDisp  string `json:"exchDisp"`
			QuoteType string `json:"quoteType"`
		} `json:"quotes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	results := []SearchResult{}
	for _, q := range raw.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		results = append(results, SearchResult{
			Symbol:   q.Symbol,
			Name:     name,
			Exchange: q.ExchDisp,
			Type:     q.QuoteType,
		})
	}
	return results, nil
}

type yahooChartMeta struct {
	Currency           string  `json:"currency"`
	LongName           string  `json:"longName"`
	ShortName          string  `json:"shortName"`
	FullExchangeName   string  `json:"fullExchangeName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	RegularMarketTime  int64   `json:"regularMarketTime"`
}

func (p *YahooProvider) fetchChartMeta(ctx context.Context, symbol string) (yahooChartMeta, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1m&range=1d", p.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return yahooChartMeta{}, err
	}
	req.Header.Set("User-Agent", "fintrack/1.0")

	resp, err := p.cli.Do(req)
	if err != nil {
		return yahooChartMeta{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return yahooChartMeta{}, fmt.Errorf("yahoo http %d", resp.StatusCode)
	}

	var raw struct {
		Chart struct {
			Result []struct {
				Meta yahooChartMeta `json:"meta"`
			} `json:"result"`
		} `json:"chart"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return yahooChartMeta{}, err
	}
	if len(raw.Chart.Result) == 0 {
		return yahooChartMeta{}, ErrNotFound
	}
	return raw.Chart.Result[0].Meta, nil
}
