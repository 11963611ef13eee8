package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultStaleAfter is how old a quote may be before IsStale reports true.
const DefaultStaleAfter = 30 * time.Second

// Quote is a point-in-time price observation from one venue's pool.
// Transient: quotes are aggregated into opportunities, never persisted
// on their own. Quotes from different ObservedAt instants must not be
// compared without acknowledging staleness.
type Quote struct {
	Venue      string
	Pair       Pair
	Price      decimal.Decimal // units of Quote asset per unit of Base asset
	ReserveA   decimal.Decimal // base asset reserve
	ReserveB   decimal.Decimal // quote asset reserve
	PoolRef    string          // opaque venue-specific pool handle
	ObservedAt time.Time
}

// Age returns how long ago the quote was observed.
func (q *Quote) Age() time.Duration {
	return time.Since(q.ObservedAt)
}

// IsStale reports whether the quote is older than maxAge. A zero maxAge
// uses DefaultStaleAfter.
func (q *Quote) IsStale(maxAge time.Duration) bool {
	if maxAge <= 0 {
		maxAge = DefaultStaleAfter
	}
	return q.Age() > maxAge
}

// OrientTo returns the quote expressed in the given pair direction. A
// quote for the inverse direction has its price inverted and reserves
// swapped. Returns false when the quote is for a different market
// entirely or cannot be inverted.
func (q *Quote) OrientTo(pair Pair) (*Quote, bool) {
	if q.Pair.Equals(pair) {
		return q, true
	}
	if !q.Pair.Matches(pair) || q.Price.Sign() <= 0 {
		return nil, false
	}

	inv := *q
	inv.Pair = q.Pair.Inverse()
	inv.Price = decimal.NewFromInt(1).Div(q.Price)
	inv.ReserveA, inv.ReserveB = q.ReserveB, q.ReserveA
	return &inv, true
}

// Liquidity is the reserve depth of a venue's pool for a pair.
type Liquidity struct {
	Venue     string
	Pair      Pair
	AmountA   decimal.Decimal
	AmountB   decimal.Decimal
	PoolRef   string
	FetchedAt time.Time
}

// ExpectedSwapOutput computes the constant-product output for amountIn
// against the given reserves, after the venue's trading fee. Used for
// minAmountOut protection on submitted swaps; opportunity ranking uses
// the coarser slippage bands instead.
func ExpectedSwapOutput(amountIn, reserveIn, reserveOut, tradingFeeRate decimal.Decimal) decimal.Decimal {
	if amountIn.Sign() <= 0 || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return decimal.Zero
	}

	amountInWithFee := amountIn.Mul(decimal.NewFromInt(1).Sub(tradingFeeRate))
	// out = reserveOut * inFee / (reserveIn + inFee)
	return reserveOut.Mul(amountInWithFee).Div(reserveIn.Add(amountInWithFee))
}

// ExpectedBaseOut is the base-asset output for a swap paying amountIn of
// the quote asset into this pool.
func (q *Quote) ExpectedBaseOut(amountInQuote, tradingFeeRate decimal.Decimal) decimal.Decimal {
	return ExpectedSwapOutput(amountInQuote, q.ReserveB, q.ReserveA, tradingFeeRate)
}

// ExpectedQuoteOut is the quote-asset output for a swap paying amountIn
// of the base asset into this pool.
func (q *Quote) ExpectedQuoteOut(amountInBase, tradingFeeRate decimal.Decimal) decimal.Decimal {
	return ExpectedSwapOutput(amountInBase, q.ReserveA, q.ReserveB, tradingFeeRate)
}
