package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestExpectedSwapOutput(t *testing.T) {
	tests := []struct {
		name       string
		amountIn   string
		reserveIn  string
		reserveOut string
		feeRate    string
		want       string
		tolerance  string
	}{
		{
			// 100 in against balanced 10k/10k reserves with 0.3% fee:
			// inFee = 99.7, out = 10000*99.7/(10000+99.7) = 98.716
			name:       "balanced_pool",
			amountIn:   "100",
			reserveIn:  "10000",
			reserveOut: "10000",
			feeRate:    "0.003",
			want:       "98.7156",
			tolerance:  "0.001",
		},
		{
			// Tiny trade against a deep pool barely moves the price
			name:       "deep_pool_minimal_impact",
			amountIn:   "1",
			reserveIn:  "1000000",
			reserveOut: "1000000",
			feeRate:    "0.003",
			want:       "0.997",
			tolerance:  "0.00001",
		},
		{
			// Trade the size of the reserve gets badly filled
			name:       "trade_equal_to_reserve",
			amountIn:   "10000",
			reserveIn:  "10000",
			reserveOut: "10000",
			feeRate:    "0",
			want:       "5000",
			tolerance:  "0.001",
		},
		{"zero_amount", "0", "10000", "10000", "0.003", "0", "0"},
		{"zero_reserve_in", "100", "0", "10000", "0.003", "0", "0"},
		{"zero_reserve_out", "100", "10000", "0", "0.003", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpectedSwapOutput(
				decimal.RequireFromString(tt.amountIn),
				decimal.RequireFromString(tt.reserveIn),
				decimal.RequireFromString(tt.reserveOut),
				decimal.RequireFromString(tt.feeRate),
			)
			want := decimal.RequireFromString(tt.want)
			tolerance := decimal.RequireFromString(tt.tolerance)
			if diff := got.Sub(want).Abs(); diff.GreaterThan(tolerance) {
				t.Errorf("ExpectedSwapOutput = %s, want %s (diff %s)", got, want, diff)
			}
		})
	}
}

func TestQuote_ExpectedOutputsUseCorrectReserves(t *testing.T) {
	q := &Quote{
		Venue:    "minswap",
		Pair:     NewPair("CATSKY", "ADA"),
		Price:    decimal.RequireFromString("35"),
		ReserveA: decimal.NewFromInt(10_000),  // CATSKY
		ReserveB: decimal.NewFromInt(350_000), // ADA
	}
	fee := decimal.RequireFromString("0.003")

	// Paying ADA in buys base tokens out of ReserveA
	baseOut := q.ExpectedBaseOut(decimal.NewFromInt(100), fee)
	if baseOut.Sign() <= 0 || baseOut.GreaterThan(decimal.NewFromInt(10_000)) {
		t.Errorf("ExpectedBaseOut = %s, want positive and below the base reserve", baseOut)
	}

	// Paying base tokens in earns ADA out of ReserveB
	quoteOut := q.ExpectedQuoteOut(decimal.NewFromInt(100), fee)
	if quoteOut.Sign() <= 0 || quoteOut.GreaterThan(decimal.NewFromInt(350_000)) {
		t.Errorf("ExpectedQuoteOut = %s, want positive and below the quote reserve", quoteOut)
	}

	// ~100 CATSKY at 35 ADA each is worth far more than 100 ADA buys
	if !quoteOut.GreaterThan(baseOut.Mul(decimal.NewFromInt(30))) {
		t.Errorf("output ratio off: quoteOut=%s baseOut=%s", quoteOut, baseOut)
	}
}

func TestQuote_OrientTo(t *testing.T) {
	pair := NewPair("CATSKY", "ADA")

	aligned := &Quote{
		Pair:     pair,
		Price:    decimal.RequireFromString("35"),
		ReserveA: decimal.NewFromInt(10_000),
		ReserveB: decimal.NewFromInt(350_000),
	}
	if got, ok := aligned.OrientTo(pair); !ok || got != aligned {
		t.Error("aligned quote was not passed through unchanged")
	}

	// ADA-first listing: price in tokens per ADA, ADA reserve in slot A
	inverted := &Quote{
		Pair:     pair.Inverse(),
		Price:    decimal.NewFromInt(1).Div(decimal.RequireFromString("35")),
		ReserveA: decimal.NewFromInt(350_000),
		ReserveB: decimal.NewFromInt(10_000),
	}
	got, ok := inverted.OrientTo(pair)
	if !ok {
		t.Fatal("inverse-direction quote was rejected")
	}
	if !got.Pair.Equals(pair) {
		t.Errorf("oriented pair = %s, want %s", got.Pair, pair)
	}
	if diff := got.Price.Sub(decimal.RequireFromString("35")).Abs(); diff.GreaterThan(decimal.RequireFromString("0.0001")) {
		t.Errorf("oriented price = %s, want ~35", got.Price)
	}
	if !got.ReserveA.Equal(decimal.NewFromInt(10_000)) || !got.ReserveB.Equal(decimal.NewFromInt(350_000)) {
		t.Errorf("oriented reserves = %s/%s, want 10000/350000", got.ReserveA, got.ReserveB)
	}
	// The original quote is untouched
	if !inverted.Pair.Equals(pair.Inverse()) {
		t.Error("OrientTo mutated its receiver")
	}

	foreign := &Quote{Pair: NewPair("SNEK", "ADA"), Price: decimal.RequireFromString("0.05")}
	if _, ok := foreign.OrientTo(pair); ok {
		t.Error("quote for a different market was accepted")
	}

	zeroPrice := &Quote{Pair: pair.Inverse(), Price: decimal.Zero}
	if _, ok := zeroPrice.OrientTo(pair); ok {
		t.Error("zero-price quote was inverted")
	}
}

func TestQuote_IsStale(t *testing.T) {
	fresh := &Quote{ObservedAt: time.Now()}
	if fresh.IsStale(0) {
		t.Error("fresh quote reported stale with default max age")
	}

	old := &Quote{ObservedAt: time.Now().Add(-time.Minute)}
	if !old.IsStale(0) {
		t.Error("minute-old quote not stale with default max age")
	}
	if old.IsStale(2 * time.Minute) {
		t.Error("minute-old quote stale with 2m max age")
	}
}
