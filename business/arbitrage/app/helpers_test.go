package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/domain"
	venueApp "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/app"
	venueDomain "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/domain"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/logger"
)

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

var testPair = venueDomain.NewPair("CATSKY", "ADA")

// fakeVenue implements both venue ports with scripted behavior.
type fakeVenue struct {
	name string
	fees venueDomain.FeeStructure

	mu         sync.Mutex
	priceCalls int
	// price returns the quote for the n-th GetPrice call (1-based).
	price func(call int) (*venueDomain.Quote, error)

	swaps      []venueDomain.SwapRequest
	submitSwap func(req venueDomain.SwapRequest) (*venueDomain.SwapReceipt, error)
	txStatus   func(txHash string) (*venueDomain.TxStatus, error)
}

func (f *fakeVenue) Venue() string { return f.name }

func (f *fakeVenue) Initialize(ctx context.Context) error { return nil }

func (f *fakeVenue) FeeStructure() venueDomain.FeeStructure { return f.fees }

func (f *fakeVenue) GetPrice(ctx context.Context, pair venueDomain.Pair) (*venueDomain.Quote, error) {
	f.mu.Lock()
	f.priceCalls++
	call := f.priceCalls
	f.mu.Unlock()

	if f.price == nil {
		return nil, fmt.Errorf("no price scripted for %s", f.name)
	}
	return f.price(call)
}

func (f *fakeVenue) GetLiquidity(ctx context.Context, pair venueDomain.Pair) (*venueDomain.Liquidity, error) {
	quote, err := f.GetPrice(ctx, pair)
	if err != nil {
		return nil, err
	}
	return &venueDomain.Liquidity{
		Venue:   f.name,
		Pair:    pair,
		AmountA: quote.ReserveA,
		AmountB: quote.ReserveB,
	}, nil
}

func (f *fakeVenue) SubmitSwap(ctx context.Context, req venueDomain.SwapRequest) (*venueDomain.SwapReceipt, error) {
	f.mu.Lock()
	f.swaps = append(f.swaps, req)
	f.mu.Unlock()

	if f.submitSwap == nil {
		return nil, fmt.Errorf("no swap scripted for %s", f.name)
	}
	return f.submitSwap(req)
}

func (f *fakeVenue) TransactionStatus(ctx context.Context, txHash string) (*venueDomain.TxStatus, error) {
	if f.txStatus == nil {
		return &venueDomain.TxStatus{TxHash: txHash, Confirmed: true}, nil
	}
	return f.txStatus(txHash)
}

func (f *fakeVenue) recordedSwaps() []venueDomain.SwapRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]venueDomain.SwapRequest, len(f.swaps))
	copy(out, f.swaps)
	return out
}

// steadyPrice scripts a venue that always quotes the same price with
// deep reserves.
func steadyPrice(venue string, price string) func(int) (*venueDomain.Quote, error) {
	return func(int) (*venueDomain.Quote, error) {
		p := decimal.RequireFromString(price)
		return &venueDomain.Quote{
			Venue:      venue,
			Pair:       testPair,
			Price:      p,
			ReserveA:   decimal.NewFromInt(1_000_000),
			ReserveB:   decimal.NewFromInt(1_000_000),
			PoolRef:    venue + "-pool",
			ObservedAt: time.Now(),
		}, nil
	}
}

var _ venueApp.Venue = (*fakeVenue)(nil)

// fakeLookup resolves fake venues by name.
type fakeLookup map[string]*fakeVenue

func (l fakeLookup) Get(name string) (venueApp.Venue, error) {
	v, ok := l[name]
	if !ok {
		return nil, fmt.Errorf("unknown venue %q", name)
	}
	return v, nil
}

// memLedger is an in-memory Ledger for executor and controller tests.
type memLedger struct {
	mu      sync.Mutex
	results []*domain.ExecutionResult
}

func (l *memLedger) Append(ctx context.Context, result *domain.ExecutionResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, result)
	return nil
}

func (l *memLedger) Query(ctx context.Context, filter LedgerFilter, limit int) ([]*LedgerRecord, error) {
	return nil, nil
}

func (l *memLedger) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	return 0, nil
}

func (l *memLedger) Close() error { return nil }

func (l *memLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.results)
}

func (l *memLedger) last() *domain.ExecutionResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.results) == 0 {
		return nil
	}
	return l.results[len(l.results)-1]
}

// fakeStop is a toggleable StopSignal.
type fakeStop struct {
	mu     sync.Mutex
	active bool
}

func (s *fakeStop) Active(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *fakeStop) raise() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
}

// countingReporter counts reporter callbacks.
type countingReporter struct {
	mu         sync.Mutex
	scans      int
	executions int
	stats      int
	stopped    int
	stopReason string
}

func (r *countingReporter) ReportScan(ctx context.Context, scanned int, opps []*domain.Opportunity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans++
}

func (r *countingReporter) ReportExecution(ctx context.Context, result *domain.ExecutionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executions++
}

func (r *countingReporter) ReportStats(ctx context.Context, stats ControllerStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats++
}

func (r *countingReporter) ReportStopped(ctx context.Context, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped++
	r.stopReason = reason
}
