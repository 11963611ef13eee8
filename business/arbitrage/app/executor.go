package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/domain"
	venueApp "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/app"
	venueDomain "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/domain"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/logger"
)

const executorTracerName = "arbitrage.executor"

// VenueLookup resolves a venue adapter by name.
type VenueLookup interface {
	Get(name string) (venueApp.Venue, error)
}

// ExecutorConfig holds execution timing and mode settings.
type ExecutorConfig struct {
	DryRun bool
	// ConfirmationTimeout bounds the wait for the buy leg to confirm;
	// ConfirmationPoll is the fixed poll interval within that deadline.
	ConfirmationTimeout time.Duration
	ConfirmationPoll    time.Duration
	// DryRunLegDelay simulates per-leg latency in dry-run mode.
	DryRunLegDelay time.Duration
}

type executorMetrics struct {
	executionsTotal   metric.Int64Counter
	executionDuration metric.Float64Histogram
}

// Executor drives the two-leg execution state machine for a single
// opportunity: buy, await confirmation, sell. At most one execution is
// in flight system-wide, enforced by the shared Session's single-flight
// guard.
type Executor struct {
	venues  VenueLookup
	session *domain.Session
	ledger  Ledger
	cfg     ExecutorConfig
	logger  logger.LoggerInterface

	tracer  trace.Tracer
	metrics *executorMetrics
}

// NewExecutor creates an Executor sharing the given session.
func NewExecutor(venues VenueLookup, session *domain.Session, ledger Ledger, cfg ExecutorConfig, log logger.LoggerInterface) (*Executor, error) {
	if cfg.ConfirmationTimeout <= 0 {
		cfg.ConfirmationTimeout = 60 * time.Second
	}
	if cfg.ConfirmationPoll <= 0 {
		cfg.ConfirmationPoll = 5 * time.Second
	}
	if cfg.DryRunLegDelay <= 0 {
		cfg.DryRunLegDelay = 2 * time.Second
	}

	e := &Executor{
		venues:  venues,
		session: session,
		ledger:  ledger,
		cfg:     cfg,
		logger:  log,
		tracer:  otel.Tracer(executorTracerName),
	}
	if err := e.initMetrics(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Executor) initMetrics() error {
	meter := otel.Meter(executorTracerName)
	var err error

	e.metrics = &executorMetrics{}

	e.metrics.executionsTotal, err = meter.Int64Counter(
		"arbitrage_executions_total",
		metric.WithDescription("Total execution attempts"),
	)
	if err != nil {
		return err
	}

	e.metrics.executionDuration, err = meter.Float64Histogram(
		"arbitrage_execution_duration_ms",
		metric.WithDescription("Execution attempt duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	return err
}

// Execute runs one arbitrage attempt. A second concurrent call fails
// fast with AlreadyExecuting and does not touch session counters or the
// ledger. Every admitted attempt produces exactly one ExecutionResult.
func (e *Executor) Execute(ctx context.Context, opp *domain.Opportunity) *domain.ExecutionResult {
	started := time.Now()

	if !e.session.TryAcquire() {
		e.logger.Warn(ctx, "execution rejected, another arbitrage is in flight",
			"pair", opp.Pair.String(),
		)
		return domain.NewFailureResult(opp, e.mode(), domain.ReasonAlreadyExecuting, "", started)
	}
	// Guard must never stay set after this call returns, including on a
	// panic escaping a leg.
	defer e.session.Release()

	ctx, span := e.tracer.Start(ctx, "executor.execute",
		trace.WithAttributes(
			attribute.String("pair", opp.Pair.String()),
			attribute.String("buy_venue", opp.BuyVenue),
			attribute.String("sell_venue", opp.SellVenue),
			attribute.Bool("dry_run", e.cfg.DryRun),
		),
	)
	defer span.End()

	var result *domain.ExecutionResult
	if e.cfg.DryRun {
		result = e.executeDryRun(ctx, opp, started)
	} else {
		result = e.executeLive(ctx, opp, started)
	}

	e.finish(ctx, span, result)
	return result
}

func (e *Executor) mode() domain.ExecutionMode {
	if e.cfg.DryRun {
		return domain.ModeDryRun
	}
	return domain.ModeLive
}

// executeDryRun simulates both legs with fixed delays. No TradeExecutor
// is ever contacted; the reported profit equals the estimate.
func (e *Executor) executeDryRun(ctx context.Context, opp *domain.Opportunity, started time.Time) *domain.ExecutionResult {
	state := domain.StateValidating
	e.logState(ctx, opp, state)

	for _, next := range []domain.ExecutionState{domain.StateBuying, domain.StateAwaitingBuyConfirm, domain.StateSelling} {
		state = next
		e.logState(ctx, opp, state)
		select {
		case <-ctx.Done():
			return domain.NewFailureResult(opp, domain.ModeDryRun, domain.ReasonCancelled, "", started)
		case <-time.After(e.cfg.DryRunLegDelay):
		}
	}

	e.logState(ctx, opp, domain.StateCompleted)
	return domain.NewSuccessResult(opp, domain.ModeDryRun, opp.EstimatedProfitAmount, "", "", started)
}

// executeLive performs the real two-leg trade.
func (e *Executor) executeLive(ctx context.Context, opp *domain.Opportunity, started time.Time) *domain.ExecutionResult {
	e.logState(ctx, opp, domain.StateValidating)

	buyVenue, err := e.venues.Get(opp.BuyVenue)
	if err == nil {
		var sellErr error
		_, sellErr = e.venues.Get(opp.SellVenue)
		err = sellErr
	}
	if err != nil {
		e.logger.Error(ctx, "opportunity references unknown venue", "error", err)
		return domain.NewFailureResult(opp, domain.ModeLive, domain.ReasonInvalidOpportunity, "", started)
	}
	sellVenue, _ := e.venues.Get(opp.SellVenue)

	// Buy leg: ADA in, tokens out.
	e.logState(ctx, opp, domain.StateBuying)

	estTokens := opp.TradeAmountIn.Div(opp.BuyPrice).
		Mul(decimal.NewFromInt(1).Sub(buyVenue.FeeStructure().TradingFeeRate))
	buyReceipt, err := buyVenue.SubmitSwap(ctx, venueDomain.SwapRequest{
		Pair:         opp.Pair,
		AssetIn:      opp.Pair.Quote,
		AssetOut:     opp.Pair.Base,
		AmountIn:     opp.TradeAmountIn,
		MinAmountOut: applySlippageFloor(estTokens, opp.SlippagePercent),
		PoolRef:      opp.BuyPoolRef,
	})
	if err != nil {
		e.logger.Error(ctx, "buy leg failed",
			"pair", opp.Pair.String(),
			"venue", opp.BuyVenue,
			"error", err,
		)
		return domain.NewFailureResult(opp, domain.ModeLive, domain.ReasonBuyLegFailed, "", started)
	}

	// Await buy confirmation with a bounded poll loop.
	e.logState(ctx, opp, domain.StateAwaitingBuyConfirm)

	tokensReceived, confirmed := e.awaitConfirmation(ctx, buyVenue, buyReceipt)
	if !confirmed {
		// The buy outcome is unknown: tokens may have been received but
		// unconfirmed. Surfaced distinctly so the operator reconciles
		// wallet state before further trading.
		e.logger.Error(ctx, "buy confirmation timed out, wallet state must be reconciled",
			"pair", opp.Pair.String(),
			"venue", opp.BuyVenue,
			"buy_tx", buyReceipt.TxHash,
			"timeout", e.cfg.ConfirmationTimeout.String(),
		)
		return domain.NewFailureResult(opp, domain.ModeLive, domain.ReasonConfirmationTimeout, buyReceipt.TxHash, started)
	}

	// Sell leg with the tokens actually received, not the estimate.
	e.logState(ctx, opp, domain.StateSelling)

	sellReceipt, err := sellVenue.SubmitSwap(ctx, venueDomain.SwapRequest{
		Pair:         opp.Pair,
		AssetIn:      opp.Pair.Base,
		AssetOut:     opp.Pair.Quote,
		AmountIn:     tokensReceived,
		MinAmountOut: e.sellMinOut(ctx, sellVenue, opp, tokensReceived),
		PoolRef:      opp.SellPoolRef,
	})
	if err != nil {
		// Worst case: capital is stuck in the target token. Never
		// silently retried; a stale pool reference could execute at a
		// worse price.
		e.logger.Error(ctx, "SELL LEG FAILED, capital held in target token",
			"pair", opp.Pair.String(),
			"venue", opp.SellVenue,
			"buy_tx", buyReceipt.TxHash,
			"tokens_held", tokensReceived.String(),
			"error", err,
		)
		return domain.NewFailureResult(opp, domain.ModeLive, domain.ReasonSellLegFailed, buyReceipt.TxHash, started)
	}

	e.logState(ctx, opp, domain.StateCompleted)

	actualProfit := sellReceipt.AmountOut.Sub(opp.TradeAmountIn)
	return domain.NewSuccessResult(opp, domain.ModeLive, actualProfit, buyReceipt.TxHash, sellReceipt.TxHash, started)
}

// awaitConfirmation polls transaction status until confirmed or the
// deadline elapses. Returns the settled token amount (falling back to
// the submission estimate) and whether confirmation arrived.
func (e *Executor) awaitConfirmation(ctx context.Context, venue venueApp.Venue, receipt *venueDomain.SwapReceipt) (decimal.Decimal, bool) {
	deadline := time.NewTimer(e.cfg.ConfirmationTimeout)
	defer deadline.Stop()
	poll := time.NewTicker(e.cfg.ConfirmationPoll)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return receipt.AmountOut, false
		case <-deadline.C:
			return receipt.AmountOut, false
		case <-poll.C:
			status, err := venue.TransactionStatus(ctx, receipt.TxHash)
			if err != nil {
				e.logger.Warn(ctx, "confirmation poll failed", "tx_hash", receipt.TxHash, "error", err)
				continue
			}
			if status.Confirmed {
				if status.AmountOut.Sign() > 0 {
					return status.AmountOut, true
				}
				return receipt.AmountOut, true
			}
		}
	}
}

// sellMinOut computes minAmountOut for the sell leg. Preference is the
// reserve-aware constant-product estimate from a fresh quote; if that
// is unavailable, fall back to the price-based estimate. Either way the
// slippage band is applied as a floor.
func (e *Executor) sellMinOut(ctx context.Context, venue venueApp.Venue, opp *domain.Opportunity, tokensIn decimal.Decimal) decimal.Decimal {
	feeRate := venue.FeeStructure().TradingFeeRate

	if quote, err := venue.GetPrice(ctx, opp.Pair); err == nil {
		expected := quote.ExpectedQuoteOut(tokensIn, feeRate)
		if expected.Sign() > 0 {
			return applySlippageFloor(expected, opp.SlippagePercent)
		}
	}

	estimate := tokensIn.Mul(opp.SellPrice).Mul(decimal.NewFromInt(1).Sub(feeRate))
	return applySlippageFloor(estimate, opp.SlippagePercent)
}

func applySlippageFloor(amount, slippagePercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(slippagePercent.Div(decimal.NewFromInt(100)))
	return amount.Mul(factor)
}

// finish records the attempt in the session, the ledger and metrics.
func (e *Executor) finish(ctx context.Context, span trace.Span, result *domain.ExecutionResult) {
	e.session.RecordResult(result)

	if err := e.ledger.Append(ctx, result); err != nil {
		e.logger.Error(ctx, "failed to append execution result to ledger", "error", err)
	}

	e.metrics.executionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", result.Success),
		attribute.String("mode", string(result.Mode)),
	))
	e.metrics.executionDuration.Record(ctx, float64(result.DurationMs))

	if result.Success {
		span.SetStatus(codes.Ok, "execution completed")
		e.logger.Info(ctx, "execution completed",
			"pair", result.Opportunity.Pair.String(),
			"mode", string(result.Mode),
			"profit", result.ActualProfitAmount.String(),
			"duration_ms", result.DurationMs,
		)
	} else {
		span.SetStatus(codes.Error, string(result.Reason))
		e.logger.Warn(ctx, "execution failed",
			"pair", result.Opportunity.Pair.String(),
			"mode", string(result.Mode),
			"reason", string(result.Reason),
			"duration_ms", result.DurationMs,
		)
	}
}

func (e *Executor) logState(ctx context.Context, opp *domain.Opportunity, state domain.ExecutionState) {
	e.logger.Debug(ctx, "execution state",
		"pair", opp.Pair.String(),
		"state", string(state),
	)
}
