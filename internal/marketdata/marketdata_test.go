package marketdata

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name    string
	quote   Quote
	info    Info
	matches []SearchResult
	err     error
	calls   int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Quote(ctx context.Context, symbol string) (Quote, error) {
	f.calls++
	if f.err != nil {
		return Quote{}, f.err
	}
	return f.quote, nil
}

func (f *fakeProvider) Info(ctx context.Context, symbol string) (Info, error) {
	if f.err != nil {
		return Info{}, f.err
	}
	return f.info, nil
}

func (f *fakeProvider) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestChainFirstProviderWins(t *testing.T) {
	first := &fakeProvider{name: "first", quote: Quote{Symbol: "AAPL", Price: decimal.NewFromInt(150), AsOf: time.Now()}}
	second := &fakeProvider{name: "second", quote: Quote{Symbol: "AAPL", Price: decimal.NewFromInt(999)}}
	chain := NewChain(testLogger(), first, second)

	quote, ok := chain.Price(context.Background(), "AAPL")
	assert.True(t, ok)
	assert.True(t, quote.Price.Equal(decimal.NewFromInt(150)))
	assert.Zero(t, second.calls, "fallback must not be consulted on success")
}

func TestChainFallsBackOnFailure(t *testing.T) {
	first := &fakeProvider{name: "first", err: errors.New("rate limited")}
	second := &fakeProvider{name: "second", quote: Quote{Symbol: "AAPL", Price: decimal.NewFromInt(151)}}
	chain := NewChain(testLogger(), first, second)

	quote, ok := chain.Price(context.Background(), "AAPL")
	assert.True(t, ok)
	assert.True(t, quote.Price.Equal(decimal.NewFromInt(151)))
	assert.Equal(t, 1, first.calls)
}

func TestChainAllProvidersFail(t *testing.T) {
	first := &fakeProvider{name: "first", err: errors.New("down")}
	second := &fakeProvider{name: "second", err: ErrNotFound}
	chain := NewChain(testLogger(), first, second)

	_, ok := chain.Price(context.Background(), "AAPL")
	assert.False(t, ok)

	_, ok = chain.Info(context.Background(), "AAPL")
	assert.False(t, ok)
}

func TestChainNoProviders(t *testing.T) {
	chain := NewChain(testLogger())
	_, ok := chain.Price(context.Background(), "AAPL")
	assert.False(t, ok)
}

func TestChainSearchFallback(t *testing.T) {
	first := &fakeProvider{name: "first", err: errors.New("down")}
	second := &fakeProvider{name: "second", matches: []SearchResult{{Symbol: "AAPL", Name: "Apple Inc."}}}
	chain := NewChain(testLogger(), first, second)

	results, ok := chain.Search(context.Background(), "apple")
	assert.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, "AAPL", results[0].Symbol)
}

func TestChainSearchEmptyResultTriesNext(t *testing.T) {
	first := &fakeProvider{name: "first"}
	second := &fakeProvider{name: "second", matches: []SearchResult{{Symbol: "AAPL", Name: "Apple Inc."}}}
	chain := NewChain(testLogger(), first, second)

	results, ok := chain.Search(context.Background(), "apple")
	assert.True(t, ok, "an empty match list must fall through to the next provider")
	require.Len(t, results, 1)

	_, ok = NewChain(testLogger(), first).Search(context.Background(), "apple")
	assert.False(t, ok)
}

func TestChainInfoFallback(t *testing.T) {
	first := &fakeProvider{name: "first", err: errors.New("down")}
	second := &fakeProvider{name: "second", info: Info{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ"}}
	chain := NewChain(testLogger(), first, second)

	info, ok := chain.Info(context.Background(), "AAPL")
	assert.True(t, ok)
	assert.Equal(t, "Apple Inc.", info.Name)
}
