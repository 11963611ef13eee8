// Package domain contains the core domain types for the arbitrage context.
package domain

import "github.com/shopspring/decimal"

// SlippageEstimator estimates the slippage percentage for a trade of the
// given size in ADA. Must be monotonically non-decreasing in trade size.
type SlippageEstimator func(tradeAmountADA decimal.Decimal) decimal.Decimal

// Step band thresholds and percentages for the default estimator.
var (
	slipSmallMax  = decimal.NewFromInt(100)
	slipMediumMax = decimal.NewFromInt(1_000)
	slipLargeMax  = decimal.NewFromInt(10_000)

	slipSmallPct     = decimal.NewFromFloat(0.10)
	slipMediumPct    = decimal.NewFromFloat(0.30)
	slipLargePct     = decimal.NewFromFloat(0.80)
	slipVeryLargePct = decimal.NewFromFloat(2.00)
)

// DefaultSlippageEstimator is a coarse step function over trade size
// bands. It deliberately ignores pool depth; execution-time protection
// uses the reserve-aware ExpectedOutput in the venue context instead.
func DefaultSlippageEstimator(tradeAmountADA decimal.Decimal) decimal.Decimal {
	switch {
	case tradeAmountADA.LessThanOrEqual(slipSmallMax):
		return slipSmallPct
	case tradeAmountADA.LessThanOrEqual(slipMediumMax):
		return slipMediumPct
	case tradeAmountADA.LessThanOrEqual(slipLargeMax):
		return slipLargePct
	default:
		return slipVeryLargePct
	}
}
