package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExecutionMode distinguishes live trades from simulated ones.
type ExecutionMode string

const (
	ModeLive   ExecutionMode = "LIVE"
	ModeDryRun ExecutionMode = "DRY_RUN"
)

// ExecutionState is the executor's state machine position.
type ExecutionState string

const (
	StateIdle               ExecutionState = "IDLE"
	StateValidating         ExecutionState = "VALIDATING"
	StateBuying             ExecutionState = "BUYING"
	StateAwaitingBuyConfirm ExecutionState = "AWAITING_BUY_CONFIRMATION"
	StateSelling            ExecutionState = "SELLING"
	StateCompleted          ExecutionState = "COMPLETED"
	StateFailed             ExecutionState = "FAILED"
)

// FailureReason labels why an execution attempt failed.
type FailureReason string

const (
	ReasonNone                FailureReason = ""
	ReasonAlreadyExecuting    FailureReason = "ALREADY_EXECUTING"
	ReasonInvalidOpportunity  FailureReason = "INVALID_OPPORTUNITY"
	ReasonBuyLegFailed        FailureReason = "BUY_LEG_FAILED"
	ReasonConfirmationTimeout FailureReason = "CONFIRMATION_TIMEOUT"
	ReasonSellLegFailed       FailureReason = "SELL_LEG_FAILED"
	ReasonCancelled           FailureReason = "CANCELLED"
)

// ExecutionResult records one execution attempt. Created once, appended
// to the ledger, never mutated.
type ExecutionResult struct {
	Opportunity *Opportunity
	Success     bool
	Reason      FailureReason

	ActualProfitAmount  decimal.Decimal // ADA
	ActualProfitPercent decimal.Decimal

	BuyTxRef  string
	SellTxRef string

	Mode       ExecutionMode
	ExecutedAt time.Time
	DurationMs int64
}

// NewSuccessResult builds the record for a completed execution.
func NewSuccessResult(opp *Opportunity, mode ExecutionMode, profit decimal.Decimal, buyTx, sellTx string, started time.Time) *ExecutionResult {
	profitPct := decimal.Zero
	if opp.TradeAmountIn.Sign() > 0 {
		profitPct = profit.Div(opp.TradeAmountIn).Mul(decimal.NewFromInt(100))
	}
	return &ExecutionResult{
		Opportunity:         opp,
		Success:             true,
		ActualProfitAmount:  profit,
		ActualProfitPercent: profitPct,
		BuyTxRef:            buyTx,
		SellTxRef:           sellTx,
		Mode:                mode,
		ExecutedAt:          started,
		DurationMs:          time.Since(started).Milliseconds(),
	}
}

// NewFailureResult builds the record for a failed execution.
func NewFailureResult(opp *Opportunity, mode ExecutionMode, reason FailureReason, buyTx string, started time.Time) *ExecutionResult {
	return &ExecutionResult{
		Opportunity: opp,
		Success:     false,
		Reason:      reason,
		BuyTxRef:    buyTx,
		Mode:        mode,
		ExecutedAt:  started,
		DurationMs:  time.Since(started).Milliseconds(),
	}
}
