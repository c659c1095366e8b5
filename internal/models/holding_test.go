package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestApplyTradeBuyWeightedAverage(t *testing.T) {
	h := Holding{Shares: dec("10"), AverageCost: dec("140")}

	h.ApplyTrade(dec("5"), dec("160"))

	// (10*140 + 5*160) / 15
	expected := dec("2200").Div(dec("15"))
	assert.True(t, h.Shares.Equal(dec("15")), "shares = %s", h.Shares)
	assert.True(t, h.AverageCost.Equal(expected), "average cost = %s, want %s", h.AverageCost, expected)
}

func TestApplyTradeBuyOrderIndependent(t *testing.T) {
	buys := []struct {
		shares string
		price  string
	}{
		{"10", "140"},
		{"5", "160"},
		{"20", "95.50"},
	}

	forward := Holding{}
	for _, b := range buys {
		forward.ApplyTrade(dec(b.shares), dec(b.price))
	}
	backward := Holding{}
	for i := len(buys) - 1; i >= 0; i-- {
		backward.ApplyTrade(dec(buys[i].shares), dec(buys[i].price))
	}

	assert.True(t, forward.Shares.Equal(backward.Shares))
	assert.True(t, forward.AverageCost.Equal(backward.AverageCost),
		"forward avg %s != backward avg %s", forward.AverageCost, backward.AverageCost)
}

func TestApplyTradeSellKeepsAverageCost(t *testing.T) {
	h := Holding{Shares: dec("10"), AverageCost: dec("140")}
	h.ApplyTrade(dec("5"), dec("160"))
	avgBefore := h.AverageCost

	h.ApplyTrade(dec("-3"), dec("155"))

	assert.True(t, h.Shares.Equal(dec("12")), "shares = %s", h.Shares)
	assert.True(t, h.AverageCost.Equal(avgBefore), "sell must not move the average cost")
}

func TestApplyTradeSellClampsAtZero(t *testing.T) {
	tests := []struct {
		name  string
		held  string
		sell  string
		wantS string
	}{
		{"sell exactly all", "10", "-10", "0"},
		{"oversell clamps", "10", "-15", "0"},
		{"partial sell", "10", "-4", "6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Holding{Shares: dec(tt.held), AverageCost: dec("100")}
			h.ApplyTrade(dec(tt.sell), dec("90"))
			assert.True(t, h.Shares.Equal(dec(tt.wantS)), "shares = %s, want %s", h.Shares, tt.wantS)
		})
	}
}

func TestApplyTradeFirstBuySetsCost(t *testing.T) {
	h := Holding{}
	h.ApplyTrade(dec("8"), dec("42.25"))

	assert.True(t, h.Shares.Equal(dec("8")))
	assert.True(t, h.AverageCost.Equal(dec("42.25")))
}

func TestHoldingValuation(t *testing.T) {
	h := Holding{Shares: dec("12"), AverageCost: dec("146.50")}
	price := dec("150")

	assert.True(t, h.TotalCost().Equal(dec("1758")))
	assert.True(t, h.CurrentValue(&price).Equal(dec("1800")))
	assert.True(t, h.GainLoss(&price).Equal(dec("42")))

	// no known price values to zero rather than erroring
	assert.True(t, h.CurrentValue(nil).Equal(decimal.Zero))
	assert.True(t, h.GainLoss(nil).Equal(dec("-1758")))
}

func TestGainLossPercentageZeroCost(t *testing.T) {
	h := Holding{Shares: dec("5"), AverageCost: decimal.Zero}
	price := dec("10")
	assert.True(t, h.GainLossPercentage(&price).Equal(decimal.Zero))
}

func TestTradeTotal(t *testing.T) {
	tests := []struct {
		name  string
		kind  TradeType
		total string
	}{
		{"buy includes fees", TradeBuy, "1509.95"},
		{"sell includes fees", TradeSell, "1509.95"},
		{"dividend excludes fees", TradeDividend, "1500"},
		{"split excludes fees", TradeSplit, "1500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := TradeTotal(tt.kind, dec("10"), dec("150"), dec("9.95"))
			require.True(t, total.Equal(dec(tt.total)), "total = %s, want %s", total, tt.total)
		})
	}
}

func TestTradeTypeMovesShares(t *testing.T) {
	assert.True(t, TradeBuy.MovesShares())
	assert.True(t, TradeSell.MovesShares())
	assert.False(t, TradeDividend.MovesShares())
	assert.False(t, TradeSplit.MovesShares())
	assert.False(t, TradeMerger.MovesShares())
}
