package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/domain"
	venueApp "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/app"
	venueDomain "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/domain"
)

func defaultFees() venueDomain.FeeStructure {
	return venueDomain.NewFeeStructure(decimal.RequireFromString("0.003"), 170_000, 500_000)
}

func newTestScanner(t *testing.T, threshold string, venues ...*fakeVenue) *Scanner {
	t.Helper()

	sources := make([]venueApp.PriceSource, len(venues))
	for i, v := range venues {
		sources[i] = v
	}

	s, err := NewScanner(sources, domain.NewCostModel(nil), decimal.RequireFromString(threshold), testLogger())
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	return s
}

func TestScanner_DetectsSpread(t *testing.T) {
	cheap := &fakeVenue{name: "minswap", fees: defaultFees(), price: steadyPrice("minswap", "35")}
	rich := &fakeVenue{name: "sundaeswap", fees: defaultFees(), price: steadyPrice("sundaeswap", "37")}

	s := newTestScanner(t, "2.0", cheap, rich)

	opps := s.Scan(context.Background(), []venueDomain.Pair{testPair}, decimal.NewFromInt(100))
	if len(opps) != 1 {
		t.Fatalf("Scan returned %d opportunities, want 1", len(opps))
	}

	opp := opps[0]
	if opp.BuyVenue != "minswap" || opp.SellVenue != "sundaeswap" {
		t.Errorf("route = %s -> %s, want minswap -> sundaeswap", opp.BuyVenue, opp.SellVenue)
	}
	if opp.BuyVenue == opp.SellVenue {
		t.Error("buy and sell venue must differ")
	}
	if !opp.NetProfitPercent.GreaterThan(decimal.RequireFromString("2.0")) {
		t.Errorf("NetProfitPercent = %s, want > 2.0", opp.NetProfitPercent)
	}
	// 5.714% gross - 0.6% trading - 1.34% fixed - 0.3% slippage = ~3.47%
	if opp.NetProfitPercent.GreaterThan(decimal.NewFromInt(6)) {
		t.Errorf("NetProfitPercent = %s, implausibly high", opp.NetProfitPercent)
	}
}

func TestScanner_InvertedQuoteNormalized(t *testing.T) {
	// minswap's adapter lists the pool ADA-first: pair inverted, price
	// in tokens per ADA, ADA reserve in slot A.
	inverted := &fakeVenue{
		name: "minswap",
		fees: defaultFees(),
		price: func(int) (*venueDomain.Quote, error) {
			return &venueDomain.Quote{
				Venue:      "minswap",
				Pair:       testPair.Inverse(),
				Price:      decimal.NewFromInt(1).Div(decimal.NewFromInt(35)),
				ReserveA:   decimal.NewFromInt(350_000),
				ReserveB:   decimal.NewFromInt(10_000),
				PoolRef:    "minswap-pool",
				ObservedAt: time.Now(),
			}, nil
		},
	}
	straight := &fakeVenue{name: "sundaeswap", fees: defaultFees(), price: steadyPrice("sundaeswap", "37")}

	s := newTestScanner(t, "2.0", inverted, straight)

	opps := s.Scan(context.Background(), []venueDomain.Pair{testPair}, decimal.NewFromInt(100))
	if len(opps) != 1 {
		t.Fatalf("Scan returned %d opportunities, want 1", len(opps))
	}

	opp := opps[0]
	if !opp.Pair.Equals(testPair) {
		t.Errorf("opportunity pair = %s, want %s", opp.Pair, testPair)
	}
	if opp.BuyVenue != "minswap" || opp.SellVenue != "sundaeswap" {
		t.Errorf("route = %s -> %s, want minswap -> sundaeswap", opp.BuyVenue, opp.SellVenue)
	}
	// 1/(1/35) recovers ~35 ADA per token
	if diff := opp.BuyPrice.Sub(decimal.NewFromInt(35)).Abs(); diff.GreaterThan(decimal.RequireFromString("0.0001")) {
		t.Errorf("BuyPrice = %s, want ~35 after orientation", opp.BuyPrice)
	}
}

func TestScanner_ForeignMarketQuoteSkipped(t *testing.T) {
	wrong := &fakeVenue{
		name: "minswap",
		fees: defaultFees(),
		price: func(int) (*venueDomain.Quote, error) {
			return &venueDomain.Quote{
				Venue:      "minswap",
				Pair:       venueDomain.NewPair("SNEK", "ADA"),
				Price:      decimal.RequireFromString("0.05"),
				ReserveA:   decimal.NewFromInt(1_000_000),
				ReserveB:   decimal.NewFromInt(1_000_000),
				PoolRef:    "minswap-pool",
				ObservedAt: time.Now(),
			}, nil
		},
	}
	right := &fakeVenue{name: "sundaeswap", fees: defaultFees(), price: steadyPrice("sundaeswap", "37")}

	s := newTestScanner(t, "2.0", wrong, right)

	// Only one usable quote remains, so no opportunity
	opps := s.Scan(context.Background(), []venueDomain.Pair{testPair}, decimal.NewFromInt(100))
	if len(opps) != 0 {
		t.Errorf("Scan with a foreign-market quote returned %d opportunities, want 0", len(opps))
	}
}

func TestScanner_SingleVenueNoOpportunity(t *testing.T) {
	healthy := &fakeVenue{name: "minswap", fees: defaultFees(), price: steadyPrice("minswap", "35")}
	failing := &fakeVenue{
		name: "sundaeswap",
		fees: defaultFees(),
		price: func(int) (*venueDomain.Quote, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}

	s := newTestScanner(t, "2.0", healthy, failing)

	opps := s.Scan(context.Background(), []venueDomain.Pair{testPair}, decimal.NewFromInt(100))
	if len(opps) != 0 {
		t.Errorf("Scan with one live venue returned %d opportunities, want 0", len(opps))
	}
}

func TestScanner_EqualPricesNoOpportunity(t *testing.T) {
	a := &fakeVenue{name: "minswap", fees: defaultFees(), price: steadyPrice("minswap", "35")}
	b := &fakeVenue{name: "sundaeswap", fees: defaultFees(), price: steadyPrice("sundaeswap", "35")}

	s := newTestScanner(t, "0.0", a, b)

	if opp := s.EvaluatePair(context.Background(), testPair, decimal.NewFromInt(100)); opp != nil {
		t.Errorf("EvaluatePair with equal prices returned %+v, want nil", opp)
	}
}

func TestScanner_ThresholdIsStrict(t *testing.T) {
	cheap := &fakeVenue{name: "minswap", fees: defaultFees(), price: steadyPrice("minswap", "35")}
	rich := &fakeVenue{name: "sundaeswap", fees: defaultFees(), price: steadyPrice("sundaeswap", "37")}

	s := newTestScanner(t, "2.0", cheap, rich)

	opp := s.EvaluatePair(context.Background(), testPair, decimal.NewFromInt(100))
	if opp == nil {
		t.Fatal("EvaluatePair returned nil, want opportunity")
	}

	// Exactly equal to the threshold must not emit
	s.threshold = opp.NetProfitPercent
	if got := s.scanPair(context.Background(), testPair, decimal.NewFromInt(100)); got != nil {
		t.Error("scanPair emitted at net == threshold, want strict greater-than")
	}

	// Strictly below the net must emit
	s.threshold = opp.NetProfitPercent.Sub(decimal.RequireFromString("0.001"))
	if got := s.scanPair(context.Background(), testPair, decimal.NewFromInt(100)); got == nil {
		t.Error("scanPair did not emit with net above threshold")
	}
}

func TestScanner_VenueFailureSkipped(t *testing.T) {
	cheap := &fakeVenue{name: "minswap", fees: defaultFees(), price: steadyPrice("minswap", "35")}
	rich := &fakeVenue{name: "sundaeswap", fees: defaultFees(), price: steadyPrice("sundaeswap", "37")}
	broken := &fakeVenue{
		name: "muesliswap",
		fees: defaultFees(),
		price: func(int) (*venueDomain.Quote, error) {
			return nil, fmt.Errorf("HTTP 502")
		},
	}

	s := newTestScanner(t, "2.0", cheap, broken, rich)

	opps := s.Scan(context.Background(), []venueDomain.Pair{testPair}, decimal.NewFromInt(100))
	if len(opps) != 1 {
		t.Fatalf("Scan with one broken venue returned %d opportunities, want 1", len(opps))
	}
	if opps[0].BuyVenue != "minswap" || opps[0].SellVenue != "sundaeswap" {
		t.Errorf("route = %s -> %s, want minswap -> sundaeswap", opps[0].BuyVenue, opps[0].SellVenue)
	}
}

func TestScanner_ThinPoolRejected(t *testing.T) {
	shallow := func(venue, price string) func(int) (*venueDomain.Quote, error) {
		return func(int) (*venueDomain.Quote, error) {
			return &venueDomain.Quote{
				Venue:      venue,
				Pair:       testPair,
				Price:      decimal.RequireFromString(price),
				ReserveA:   decimal.NewFromInt(5_000),
				ReserveB:   decimal.NewFromInt(150), // below 2x the 100 ADA trade
				ObservedAt: time.Now(),
			}, nil
		}
	}

	a := &fakeVenue{name: "minswap", fees: defaultFees(), price: shallow("minswap", "35")}
	b := &fakeVenue{name: "sundaeswap", fees: defaultFees(), price: steadyPrice("sundaeswap", "37")}

	s := newTestScanner(t, "0.0", a, b)

	if opp := s.EvaluatePair(context.Background(), testPair, decimal.NewFromInt(100)); opp != nil {
		t.Errorf("EvaluatePair accepted a thin pool, got %+v", opp)
	}
}

func TestScanner_TieKeepsRegistrationOrder(t *testing.T) {
	first := &fakeVenue{name: "minswap", fees: defaultFees(), price: steadyPrice("minswap", "35")}
	second := &fakeVenue{name: "muesliswap", fees: defaultFees(), price: steadyPrice("muesliswap", "35")}
	high := &fakeVenue{name: "sundaeswap", fees: defaultFees(), price: steadyPrice("sundaeswap", "37")}

	s := newTestScanner(t, "0.0", first, second, high)

	opp := s.EvaluatePair(context.Background(), testPair, decimal.NewFromInt(100))
	if opp == nil {
		t.Fatal("EvaluatePair returned nil, want opportunity")
	}
	if opp.BuyVenue != "minswap" {
		t.Errorf("BuyVenue = %s, want minswap (first registered at tied lowest price)", opp.BuyVenue)
	}
}
