package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SwapRequest describes one swap leg to submit to a venue.
type SwapRequest struct {
	Pair         Pair
	AssetIn      string // ticker of the asset being sold to the pool
	AssetOut     string // ticker of the asset being bought from the pool
	AmountIn     decimal.Decimal
	MinAmountOut decimal.Decimal
	PoolRef      string
}

// SwapReceipt is the venue's acknowledgment of a submitted swap.
type SwapReceipt struct {
	TxHash      string
	Venue       string
	AmountOut   decimal.Decimal // venue's estimate at submission time
	SubmittedAt time.Time
}

// TxStatus reports the on-chain state of a submitted transaction.
type TxStatus struct {
	TxHash    string
	Confirmed bool
	// AmountOut is the settled output amount, only meaningful once
	// Confirmed is true. Zero means the venue did not report it and
	// the submission estimate stands.
	AmountOut decimal.Decimal
	CheckedAt time.Time
}
