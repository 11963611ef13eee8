// Package app contains the venue context's application services and ports.
package app

import (
	"context"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/domain"
)

// PriceSource is a per-venue capability to observe pool prices.
// Implementations return coded apperrors; a missing pool is
// CodePoolNotFound, never a nil quote with nil error.
type PriceSource interface {
	// Venue returns the venue's registry name.
	Venue() string
	// Initialize prepares the adapter (pool discovery, warmup).
	Initialize(ctx context.Context) error
	// GetPrice returns the current quote for the pair.
	GetPrice(ctx context.Context, pair domain.Pair) (*domain.Quote, error)
	// FeeStructure returns the venue's immutable fee structure.
	FeeStructure() domain.FeeStructure
	// GetLiquidity returns the pool's current reserve depth.
	GetLiquidity(ctx context.Context, pair domain.Pair) (*domain.Liquidity, error)
}

// TradeExecutor is a per-venue capability to submit swaps and track
// their confirmation.
type TradeExecutor interface {
	// SubmitSwap submits one swap leg and returns the venue's receipt.
	SubmitSwap(ctx context.Context, req domain.SwapRequest) (*domain.SwapReceipt, error)
	// TransactionStatus reports whether a submitted swap has confirmed.
	TransactionStatus(ctx context.Context, txHash string) (*domain.TxStatus, error)
}

// Venue bundles both capabilities for one DEX.
type Venue interface {
	PriceSource
	TradeExecutor
}
