package app

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/domain"
	venueApp "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/app"
	venueDomain "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/domain"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/logger"
)

const scannerTracerName = "arbitrage.scanner"

// minADADepthMultiple gates thin pools: the ADA side of both pools must
// hold at least this multiple of the trade amount.
var minADADepthMultiple = decimal.NewFromInt(2)

type scannerMetrics struct {
	scansTotal    metric.Int64Counter
	oppsDetected  metric.Int64Counter
	scanLatency   metric.Float64Histogram
	venueFailures metric.Int64Counter
}

// Scanner polls all venues for all configured pairs and emits profitable
// opportunities. Emission requires net profit strictly above the
// threshold; the output preserves pair declaration order and is NOT
// sorted by profitability - that is the caller's job.
type Scanner struct {
	sources   []venueApp.PriceSource
	costModel *domain.CostModel
	threshold decimal.Decimal
	logger    logger.LoggerInterface

	tracer  trace.Tracer
	metrics *scannerMetrics
}

// NewScanner creates a Scanner over the given price sources.
func NewScanner(
	sources []venueApp.PriceSource,
	costModel *domain.CostModel,
	profitThreshold decimal.Decimal,
	log logger.LoggerInterface,
) (*Scanner, error) {
	s := &Scanner{
		sources:   sources,
		costModel: costModel,
		threshold: profitThreshold,
		logger:    log,
		tracer:    otel.Tracer(scannerTracerName),
	}
	if err := s.initMetrics(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scanner) initMetrics() error {
	meter := otel.Meter(scannerTracerName)
	var err error

	s.metrics = &scannerMetrics{}

	s.metrics.scansTotal, err = meter.Int64Counter(
		"arbitrage_scans_total",
		metric.WithDescription("Total scan invocations"),
	)
	if err != nil {
		return err
	}

	s.metrics.oppsDetected, err = meter.Int64Counter(
		"arbitrage_opportunities_total",
		metric.WithDescription("Total opportunities detected"),
	)
	if err != nil {
		return err
	}

	s.metrics.scanLatency, err = meter.Float64Histogram(
		"arbitrage_scan_latency_ms",
		metric.WithDescription("Scan latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	s.metrics.venueFailures, err = meter.Int64Counter(
		"arbitrage_scan_venue_failures_total",
		metric.WithDescription("Per-venue quote failures during scans"),
	)
	return err
}

// Threshold returns the configured profit threshold percent.
func (s *Scanner) Threshold() decimal.Decimal {
	return s.threshold
}

// Scan checks every pair across every venue. A venue failure is logged
// and skipped; it never aborts the scan of other pairs or venues.
func (s *Scanner) Scan(ctx context.Context, pairs []venueDomain.Pair, tradeAmount decimal.Decimal) []*domain.Opportunity {
	ctx, span := s.tracer.Start(ctx, "scanner.scan",
		trace.WithAttributes(
			attribute.Int("pairs", len(pairs)),
			attribute.String("trade_amount", tradeAmount.String()),
		),
	)
	defer span.End()

	start := time.Now()
	s.metrics.scansTotal.Add(ctx, 1)

	var opportunities []*domain.Opportunity
	for _, pair := range pairs {
		if opp := s.scanPair(ctx, pair, tradeAmount); opp != nil {
			opportunities = append(opportunities, opp)
		}
	}

	s.metrics.scanLatency.Record(ctx, float64(time.Since(start).Milliseconds()))
	s.metrics.oppsDetected.Add(ctx, int64(len(opportunities)))
	span.SetAttributes(attribute.Int("opportunities", len(opportunities)))

	return opportunities
}

// scanPair evaluates a pair and applies the emission threshold.
func (s *Scanner) scanPair(ctx context.Context, pair venueDomain.Pair, tradeAmount decimal.Decimal) *domain.Opportunity {
	opp := s.EvaluatePair(ctx, pair, tradeAmount)
	if opp == nil {
		return nil
	}

	// Strict comparison: exactly-equal does not emit.
	if !opp.NetProfitPercent.GreaterThan(s.threshold) {
		s.logger.Debug(ctx, "spread below threshold",
			"pair", pair.String(),
			"net_profit_pct", opp.NetProfitPercent.String(),
			"threshold", s.threshold.String(),
		)
		return nil
	}

	s.logger.Info(ctx, "opportunity detected",
		"pair", pair.String(),
		"buy_venue", opp.BuyVenue,
		"sell_venue", opp.SellVenue,
		"gross_spread_pct", opp.GrossSpreadPercent.String(),
		"net_profit_pct", opp.NetProfitPercent.String(),
		"estimated_profit", opp.EstimatedProfitAmount.String(),
	)

	return opp
}

// EvaluatePair fetches fresh quotes from all venues concurrently and
// builds the best candidate for the pair without applying the emission
// threshold. Used both by Scan and by the controller's re-validation
// gate. Returns nil when fewer than two venues answer or the price
// split is degenerate.
func (s *Scanner) EvaluatePair(ctx context.Context, pair venueDomain.Pair, tradeAmount decimal.Decimal) *domain.Opportunity {
	quotes, fees := s.collectQuotes(ctx, pair)
	if len(quotes) < 2 {
		s.logger.Debug(ctx, "insufficient quotes for pair", "pair", pair.String(), "quotes", len(quotes))
		return nil
	}

	// Global min and max by price; ties keep the earliest venue in
	// registration order.
	lowest, highest := quotes[0], quotes[0]
	for _, q := range quotes[1:] {
		if q.Price.LessThan(lowest.Price) {
			lowest = q
		}
		if q.Price.GreaterThan(highest.Price) {
			highest = q
		}
	}

	// Degenerate: all venues agree, or only one venue has valid data.
	if lowest.Venue == highest.Venue {
		return nil
	}

	if !s.hasDepth(lowest, tradeAmount) || !s.hasDepth(highest, tradeAmount) {
		s.logger.Debug(ctx, "pool too thin for trade size",
			"pair", pair.String(),
			"trade_amount", tradeAmount.String(),
		)
		return nil
	}

	grossSpread := domain.GrossSpreadPercent(lowest.Price, highest.Price)

	costs, err := s.costModel.Calculate(tradeAmount, lowest.Price, highest.Price, fees[lowest.Venue], fees[highest.Venue])
	if err != nil {
		s.logger.Warn(ctx, "cost model rejected candidate", "pair", pair.String(), "error", err)
		return nil
	}

	return domain.NewOpportunity(pair, lowest, highest, tradeAmount, grossSpread, costs)
}

// collectQuotes fans out to every venue concurrently and merges results.
// Returned quotes preserve venue registration order so that min/max
// tie-breaks are deterministic.
func (s *Scanner) collectQuotes(ctx context.Context, pair venueDomain.Pair) ([]*venueDomain.Quote, map[string]venueDomain.FeeStructure) {
	results := make([]*venueDomain.Quote, len(s.sources))
	fees := make(map[string]venueDomain.FeeStructure, len(s.sources))

	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, source := range s.sources {
		wg.Add(1)
		go func(idx int, src venueApp.PriceSource) {
			defer wg.Done()

			quote, err := src.GetPrice(ctx, pair)
			if err != nil {
				s.metrics.venueFailures.Add(ctx, 1)
				s.logger.Warn(ctx, "venue quote failed",
					"venue", src.Venue(),
					"pair", pair.String(),
					"error", err,
				)
				return
			}

			// Adapters may quote the pool in either direction.
			oriented, ok := quote.OrientTo(pair)
			if !ok {
				s.metrics.venueFailures.Add(ctx, 1)
				s.logger.Warn(ctx, "venue quote is for a different market",
					"venue", src.Venue(),
					"pair", pair.String(),
					"quote_pair", quote.Pair.String(),
				)
				return
			}

			mu.Lock()
			results[idx] = oriented
			fees[src.Venue()] = src.FeeStructure()
			mu.Unlock()
		}(i, source)
	}
	wg.Wait()

	quotes := make([]*venueDomain.Quote, 0, len(results))
	for _, q := range results {
		if q != nil {
			quotes = append(quotes, q)
		}
	}
	return quotes, fees
}

// hasDepth checks the pool's ADA reserve can absorb the trade.
func (s *Scanner) hasDepth(q *venueDomain.Quote, tradeAmount decimal.Decimal) bool {
	return q.ReserveB.GreaterThanOrEqual(tradeAmount.Mul(minADADepthMultiple))
}
