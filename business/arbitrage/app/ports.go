// Package app contains the arbitrage context's application services:
// scanner, executor and the autonomous controller.
package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/domain"
)

// LedgerRecord is the flattened, persisted form of an ExecutionResult.
type LedgerRecord struct {
	ID          int64
	Pair        string
	BuyVenue    string
	SellVenue   string
	BuyPrice    decimal.Decimal
	SellPrice   decimal.Decimal
	TradeAmount decimal.Decimal

	NetProfitPercent decimal.Decimal
	ProfitAmount     decimal.Decimal
	ProfitPercent    decimal.Decimal

	Success   bool
	Reason    string
	BuyTxRef  string
	SellTxRef string
	Mode      string

	ExecutedAt time.Time
	DurationMs int64
}

// LedgerFilter narrows a ledger query. Zero values match everything.
type LedgerFilter struct {
	Pair        string
	Venue       string
	OnlySuccess bool
	Mode        string
	Since       time.Time
}

// Ledger persists execution results.
type Ledger interface {
	Append(ctx context.Context, result *domain.ExecutionResult) error
	Query(ctx context.Context, filter LedgerFilter, limit int) ([]*LedgerRecord, error)
	PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error)
	Close() error
}

// StopSignal is the out-of-band emergency stop the operator can raise.
// Checked cooperatively at tick boundaries only.
type StopSignal interface {
	Active(ctx context.Context) bool
}

// Reporter receives controller events for display. Implementations must
// not block the control loop.
type Reporter interface {
	ReportScan(ctx context.Context, scanned int, opportunities []*domain.Opportunity)
	ReportExecution(ctx context.Context, result *domain.ExecutionResult)
	ReportStats(ctx context.Context, stats ControllerStats)
	ReportStopped(ctx context.Context, reason string)
}

// ControllerStats aggregates session counters with loop counters.
type ControllerStats struct {
	Scans                 int64
	OpportunitiesDetected int64
	Session               domain.SessionStats
	WindowCount           int
	StartedAt             time.Time
}
