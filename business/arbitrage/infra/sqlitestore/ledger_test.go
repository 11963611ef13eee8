package sqlitestore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/app"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/domain"
	venueDomain "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/domain"
)

func newMemoryLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:): %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func sampleResult(t *testing.T, pair string, success bool, profit string, executedAt time.Time) *domain.ExecutionResult {
	t.Helper()
	p, err := venueDomain.ParsePair(pair)
	if err != nil {
		t.Fatalf("ParsePair(%s): %v", pair, err)
	}

	opp := &domain.Opportunity{
		Pair:             p,
		BuyVenue:         "minswap",
		SellVenue:        "sundaeswap",
		BuyPrice:         decimal.RequireFromString("35"),
		SellPrice:        decimal.RequireFromString("37"),
		NetProfitPercent: decimal.RequireFromString("3.4"),
		TradeAmountIn:    decimal.NewFromInt(100),
	}

	result := &domain.ExecutionResult{
		Opportunity:         opp,
		Success:             success,
		ActualProfitAmount:  decimal.RequireFromString(profit),
		ActualProfitPercent: decimal.RequireFromString(profit),
		Mode:                domain.ModeDryRun,
		ExecutedAt:          executedAt,
		DurationMs:          1200,
	}
	if success {
		result.BuyTxRef = "buy-tx"
		result.SellTxRef = "sell-tx"
	} else {
		result.Reason = domain.ReasonSellLegFailed
	}
	return result
}

func TestLedger_AppendAndQuery(t *testing.T) {
	l := newMemoryLedger(t)
	ctx := context.Background()

	now := time.Now()
	if err := l.Append(ctx, sampleResult(t, "CATSKY-ADA", true, "4.98", now.Add(-2*time.Hour))); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Append(ctx, sampleResult(t, "CATSKY-ADA", false, "0", now.Add(-time.Hour))); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Append(ctx, sampleResult(t, "MIN-ADA", true, "1.5", now)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	records, err := l.Query(ctx, app.LedgerFilter{}, 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Query returned %d records, want 3", len(records))
	}

	// Newest first
	if records[0].Pair != "MIN-ADA" {
		t.Errorf("first record pair = %s, want MIN-ADA (newest)", records[0].Pair)
	}
	if !records[0].ProfitAmount.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("ProfitAmount = %s, want 1.5", records[0].ProfitAmount)
	}
	if records[0].Mode != string(domain.ModeDryRun) {
		t.Errorf("Mode = %s, want %s", records[0].Mode, domain.ModeDryRun)
	}
}

func TestLedger_QueryFilters(t *testing.T) {
	l := newMemoryLedger(t)
	ctx := context.Background()

	now := time.Now()
	l.Append(ctx, sampleResult(t, "CATSKY-ADA", true, "4.98", now.Add(-3*time.Hour)))
	l.Append(ctx, sampleResult(t, "CATSKY-ADA", false, "0", now.Add(-2*time.Hour)))
	l.Append(ctx, sampleResult(t, "MIN-ADA", true, "1.5", now))

	tests := []struct {
		name   string
		filter app.LedgerFilter
		limit  int
		want   int
	}{
		{"by_pair", app.LedgerFilter{Pair: "CATSKY-ADA"}, 0, 2},
		{"only_success", app.LedgerFilter{OnlySuccess: true}, 0, 2},
		{"pair_and_success", app.LedgerFilter{Pair: "CATSKY-ADA", OnlySuccess: true}, 0, 1},
		{"by_venue", app.LedgerFilter{Venue: "minswap"}, 0, 3},
		{"since_recent", app.LedgerFilter{Since: now.Add(-90 * time.Minute)}, 0, 1},
		{"with_limit", app.LedgerFilter{}, 2, 2},
		{"no_match", app.LedgerFilter{Pair: "SNEK-ADA"}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := l.Query(ctx, tt.filter, tt.limit)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(records) != tt.want {
				t.Errorf("Query returned %d records, want %d", len(records), tt.want)
			}
		})
	}
}

func TestLedger_PurgeOlderThan(t *testing.T) {
	l := newMemoryLedger(t)
	ctx := context.Background()

	now := time.Now()
	l.Append(ctx, sampleResult(t, "CATSKY-ADA", true, "4.98", now.Add(-48*time.Hour)))
	l.Append(ctx, sampleResult(t, "CATSKY-ADA", true, "2.1", now.Add(-36*time.Hour)))
	l.Append(ctx, sampleResult(t, "CATSKY-ADA", true, "1.0", now))

	purged, err := l.PurgeOlderThan(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PurgeOlderThan: %v", err)
	}
	if purged != 2 {
		t.Errorf("purged = %d, want 2", purged)
	}

	records, err := l.Query(ctx, app.LedgerFilter{}, 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("remaining records = %d, want 1", len(records))
	}
}
