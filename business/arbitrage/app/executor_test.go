package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/domain"
	venueDomain "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/domain"
)

func testOpportunity() *domain.Opportunity {
	return &domain.Opportunity{
		Pair:      testPair,
		BuyVenue:  "minswap",
		SellVenue: "sundaeswap",
		BuyPrice:  decimal.RequireFromString("35"),
		SellPrice: decimal.RequireFromString("37"),

		GrossSpreadPercent:    decimal.RequireFromString("5.71"),
		TotalFeePercent:       decimal.RequireFromString("0.7"),
		SlippagePercent:       decimal.RequireFromString("0.3"),
		NetProfitPercent:      decimal.RequireFromString("4.71"),
		EstimatedProfitAmount: decimal.RequireFromString("4.98"),

		TradeAmountIn: decimal.NewFromInt(100),
		BuyPoolRef:    "minswap-pool",
		SellPoolRef:   "sundaeswap-pool",
		DetectedAt:    time.Now(),
	}
}

func newTestExecutor(t *testing.T, lookup fakeLookup, session *domain.Session, ledger Ledger, cfg ExecutorConfig) *Executor {
	t.Helper()
	e, err := NewExecutor(lookup, session, ledger, cfg, testLogger())
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	return e
}

// liveVenues builds a buy venue confirming after one poll and a sell
// venue paying out the given proceeds.
func liveVenues(tokensReceived, sellProceeds string) (buy, sell *fakeVenue) {
	buy = &fakeVenue{
		name:  "minswap",
		fees:  defaultFees(),
		price: steadyPrice("minswap", "35"),
		submitSwap: func(req venueDomain.SwapRequest) (*venueDomain.SwapReceipt, error) {
			return &venueDomain.SwapReceipt{
				TxHash:      "buy-tx-1",
				Venue:       "minswap",
				AmountOut:   decimal.RequireFromString("2.8"), // submission estimate
				SubmittedAt: time.Now(),
			}, nil
		},
		txStatus: func(txHash string) (*venueDomain.TxStatus, error) {
			return &venueDomain.TxStatus{
				TxHash:    txHash,
				Confirmed: true,
				AmountOut: decimal.RequireFromString(tokensReceived),
				CheckedAt: time.Now(),
			}, nil
		},
	}
	sell = &fakeVenue{
		name:  "sundaeswap",
		fees:  defaultFees(),
		price: steadyPrice("sundaeswap", "37"),
		submitSwap: func(req venueDomain.SwapRequest) (*venueDomain.SwapReceipt, error) {
			return &venueDomain.SwapReceipt{
				TxHash:      "sell-tx-1",
				Venue:       "sundaeswap",
				AmountOut:   decimal.RequireFromString(sellProceeds),
				SubmittedAt: time.Now(),
			}, nil
		},
	}
	return buy, sell
}

func fastLiveConfig() ExecutorConfig {
	return ExecutorConfig{
		DryRun:              false,
		ConfirmationTimeout: 200 * time.Millisecond,
		ConfirmationPoll:    5 * time.Millisecond,
		DryRunLegDelay:      time.Millisecond,
	}
}

func TestExecutor_DryRunNeverTrades(t *testing.T) {
	buy, sell := liveVenues("2.85", "105")
	lookup := fakeLookup{"minswap": buy, "sundaeswap": sell}
	session := domain.NewSession()
	ledger := &memLedger{}

	e := newTestExecutor(t, lookup, session, ledger, ExecutorConfig{
		DryRun:              true,
		ConfirmationTimeout: 100 * time.Millisecond,
		ConfirmationPoll:    5 * time.Millisecond,
		DryRunLegDelay:      time.Millisecond,
	})

	opp := testOpportunity()
	result := e.Execute(context.Background(), opp)

	if !result.Success {
		t.Fatalf("dry run failed: %s", result.Reason)
	}
	if result.Mode != domain.ModeDryRun {
		t.Errorf("Mode = %s, want %s", result.Mode, domain.ModeDryRun)
	}
	if !result.ActualProfitAmount.Equal(opp.EstimatedProfitAmount) {
		t.Errorf("dry-run profit = %s, want estimate %s", result.ActualProfitAmount, opp.EstimatedProfitAmount)
	}
	if result.BuyTxRef != "" || result.SellTxRef != "" {
		t.Error("dry run produced transaction references")
	}
	if len(buy.recordedSwaps()) != 0 || len(sell.recordedSwaps()) != 0 {
		t.Error("dry run submitted real swaps")
	}
	if ledger.count() != 1 {
		t.Errorf("ledger has %d records, want 1", ledger.count())
	}
	if session.IsExecuting() {
		t.Error("single-flight guard still held after completion")
	}
}

func TestExecutor_DryRunCancelledMidLeg(t *testing.T) {
	buy, sell := liveVenues("2.85", "105")
	lookup := fakeLookup{"minswap": buy, "sundaeswap": sell}
	session := domain.NewSession()
	ledger := &memLedger{}

	e := newTestExecutor(t, lookup, session, ledger, ExecutorConfig{
		DryRun:              true,
		ConfirmationTimeout: 100 * time.Millisecond,
		ConfirmationPoll:    5 * time.Millisecond,
		DryRunLegDelay:      time.Second, // long enough that cancel wins
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := e.Execute(ctx, testOpportunity())

	if result.Success {
		t.Fatal("cancelled dry run reported success")
	}
	if result.Reason != domain.ReasonCancelled {
		t.Errorf("Reason = %s, want %s", result.Reason, domain.ReasonCancelled)
	}
	if ledger.count() != 1 {
		t.Errorf("ledger has %d records, want 1", ledger.count())
	}
	if session.IsExecuting() {
		t.Error("single-flight guard still held after cancellation")
	}
}

func TestExecutor_SecondCallerRejectedWithoutSideEffects(t *testing.T) {
	buy, sell := liveVenues("2.85", "105")
	lookup := fakeLookup{"minswap": buy, "sundaeswap": sell}
	session := domain.NewSession()
	ledger := &memLedger{}

	e := newTestExecutor(t, lookup, session, ledger, fastLiveConfig())

	// Simulate an in-flight execution holding the guard
	if !session.TryAcquire() {
		t.Fatal("could not acquire guard for test setup")
	}

	result := e.Execute(context.Background(), testOpportunity())

	if result.Success {
		t.Fatal("second caller succeeded, want rejection")
	}
	if result.Reason != domain.ReasonAlreadyExecuting {
		t.Errorf("Reason = %s, want %s", result.Reason, domain.ReasonAlreadyExecuting)
	}
	if ledger.count() != 0 {
		t.Errorf("rejected attempt wrote %d ledger records, want 0", ledger.count())
	}
	stats := session.Stats()
	if stats.TotalExecutions != 0 {
		t.Errorf("rejected attempt mutated session counters: %+v", stats)
	}
	if !session.IsExecuting() {
		t.Error("rejection cleared a guard it does not hold")
	}
	session.Release()
}

func TestExecutor_LiveSuccess(t *testing.T) {
	buy, sell := liveVenues("2.85", "105")
	lookup := fakeLookup{"minswap": buy, "sundaeswap": sell}
	session := domain.NewSession()
	ledger := &memLedger{}

	e := newTestExecutor(t, lookup, session, ledger, fastLiveConfig())

	opp := testOpportunity()
	result := e.Execute(context.Background(), opp)

	if !result.Success {
		t.Fatalf("live execution failed: %s", result.Reason)
	}
	if result.BuyTxRef != "buy-tx-1" || result.SellTxRef != "sell-tx-1" {
		t.Errorf("tx refs = %q/%q, want buy-tx-1/sell-tx-1", result.BuyTxRef, result.SellTxRef)
	}
	// Profit is sell proceeds minus capital committed: 105 - 100
	if want := decimal.NewFromInt(5); !result.ActualProfitAmount.Equal(want) {
		t.Errorf("ActualProfitAmount = %s, want %s", result.ActualProfitAmount, want)
	}

	buySwaps := buy.recordedSwaps()
	if len(buySwaps) != 1 {
		t.Fatalf("buy venue saw %d swaps, want 1", len(buySwaps))
	}
	if buySwaps[0].AssetIn != "ADA" || buySwaps[0].AssetOut != "CATSKY" {
		t.Errorf("buy leg assets = %s -> %s, want ADA -> CATSKY", buySwaps[0].AssetIn, buySwaps[0].AssetOut)
	}

	sellSwaps := sell.recordedSwaps()
	if len(sellSwaps) != 1 {
		t.Fatalf("sell venue saw %d swaps, want 1", len(sellSwaps))
	}
	// Sell leg trades the confirmed token amount, not the estimate
	if want := decimal.RequireFromString("2.85"); !sellSwaps[0].AmountIn.Equal(want) {
		t.Errorf("sell AmountIn = %s, want confirmed %s", sellSwaps[0].AmountIn, want)
	}
	if sellSwaps[0].AssetIn != "CATSKY" || sellSwaps[0].AssetOut != "ADA" {
		t.Errorf("sell leg assets = %s -> %s, want CATSKY -> ADA", sellSwaps[0].AssetIn, sellSwaps[0].AssetOut)
	}

	stats := session.Stats()
	if stats.SuccessCount != 1 || stats.TotalExecutions != 1 {
		t.Errorf("session stats = %+v, want one success", stats)
	}
}

func TestExecutor_BuyLegMinAmountOutFloor(t *testing.T) {
	buy, sell := liveVenues("2.85", "105")
	lookup := fakeLookup{"minswap": buy, "sundaeswap": sell}

	e := newTestExecutor(t, lookup, domain.NewSession(), &memLedger{}, fastLiveConfig())

	opp := testOpportunity()
	e.Execute(context.Background(), opp)

	buySwaps := buy.recordedSwaps()
	if len(buySwaps) != 1 {
		t.Fatalf("buy venue saw %d swaps, want 1", len(buySwaps))
	}

	// estTokens = 100/35 * (1 - 0.003), floored by 0.3% slippage
	estTokens := opp.TradeAmountIn.Div(opp.BuyPrice).
		Mul(decimal.NewFromInt(1).Sub(decimal.RequireFromString("0.003")))
	want := estTokens.Mul(decimal.RequireFromString("0.997"))
	if diff := buySwaps[0].MinAmountOut.Sub(want).Abs(); diff.GreaterThan(decimal.RequireFromString("0.000001")) {
		t.Errorf("buy MinAmountOut = %s, want %s", buySwaps[0].MinAmountOut, want)
	}
}

func TestExecutor_ConfirmationTimeout(t *testing.T) {
	buy, sell := liveVenues("2.85", "105")
	// Buy submits fine but never confirms
	buy.txStatus = func(txHash string) (*venueDomain.TxStatus, error) {
		return &venueDomain.TxStatus{TxHash: txHash, Confirmed: false}, nil
	}
	lookup := fakeLookup{"minswap": buy, "sundaeswap": sell}
	session := domain.NewSession()
	ledger := &memLedger{}

	e := newTestExecutor(t, lookup, session, ledger, ExecutorConfig{
		ConfirmationTimeout: 20 * time.Millisecond,
		ConfirmationPoll:    5 * time.Millisecond,
		DryRunLegDelay:      time.Millisecond,
	})

	result := e.Execute(context.Background(), testOpportunity())

	if result.Success {
		t.Fatal("execution succeeded despite unconfirmed buy leg")
	}
	if result.Reason != domain.ReasonConfirmationTimeout {
		t.Errorf("Reason = %s, want %s", result.Reason, domain.ReasonConfirmationTimeout)
	}
	// The buy tx is preserved for reconciliation
	if result.BuyTxRef != "buy-tx-1" {
		t.Errorf("BuyTxRef = %q, want buy-tx-1", result.BuyTxRef)
	}
	if len(sell.recordedSwaps()) != 0 {
		t.Error("sell leg attempted after confirmation timeout")
	}
	if session.IsExecuting() {
		t.Error("single-flight guard still held after timeout")
	}
	if ledger.count() != 1 {
		t.Errorf("ledger has %d records, want 1", ledger.count())
	}
}

func TestExecutor_SellLegFailureReleasesGuard(t *testing.T) {
	buy, sell := liveVenues("2.85", "105")
	sell.submitSwap = func(req venueDomain.SwapRequest) (*venueDomain.SwapReceipt, error) {
		return nil, fmt.Errorf("order rejected: slippage exceeded")
	}
	lookup := fakeLookup{"minswap": buy, "sundaeswap": sell}
	session := domain.NewSession()
	ledger := &memLedger{}

	e := newTestExecutor(t, lookup, session, ledger, fastLiveConfig())

	result := e.Execute(context.Background(), testOpportunity())

	if result.Success {
		t.Fatal("execution succeeded despite sell failure")
	}
	if result.Reason != domain.ReasonSellLegFailed {
		t.Errorf("Reason = %s, want %s", result.Reason, domain.ReasonSellLegFailed)
	}
	if result.BuyTxRef != "buy-tx-1" {
		t.Errorf("BuyTxRef = %q, want buy-tx-1 (capital reconciliation needs it)", result.BuyTxRef)
	}
	if session.IsExecuting() {
		t.Error("single-flight guard still held after sell failure")
	}
	if stats := session.Stats(); stats.FailureCount != 1 {
		t.Errorf("FailureCount = %d, want 1", stats.FailureCount)
	}
}

func TestExecutor_UnknownVenueIsInvalidOpportunity(t *testing.T) {
	buy, _ := liveVenues("2.85", "105")
	lookup := fakeLookup{"minswap": buy} // sell venue missing
	session := domain.NewSession()

	e := newTestExecutor(t, lookup, session, &memLedger{}, fastLiveConfig())

	result := e.Execute(context.Background(), testOpportunity())
	if result.Success {
		t.Fatal("execution succeeded with unknown sell venue")
	}
	if result.Reason != domain.ReasonInvalidOpportunity {
		t.Errorf("Reason = %s, want %s", result.Reason, domain.ReasonInvalidOpportunity)
	}
}

func TestExecutor_GuardReleasedOnPanic(t *testing.T) {
	buy, sell := liveVenues("2.85", "105")
	sell.submitSwap = func(req venueDomain.SwapRequest) (*venueDomain.SwapReceipt, error) {
		panic("adapter bug")
	}
	lookup := fakeLookup{"minswap": buy, "sundaeswap": sell}
	session := domain.NewSession()

	e := newTestExecutor(t, lookup, session, &memLedger{}, fastLiveConfig())

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		e.Execute(context.Background(), testOpportunity())
	}()

	if session.IsExecuting() {
		t.Error("single-flight guard still held after panic")
	}
}
