package app

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/domain"
	venueDomain "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/domain"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/logger"
)

const controllerTracerName = "arbitrage.controller"

// revalidationBand is the hysteresis factor applied to the profit
// threshold when re-validating a detected opportunity: execution
// proceeds only while fresh net profit still clears threshold * 0.8.
var revalidationBand = decimal.NewFromFloat(0.8)

// ControllerConfig holds the control loop settings.
type ControllerConfig struct {
	Pairs                []venueDomain.Pair
	TradeAmount          decimal.Decimal // ADA committed per execution
	MaxTradeAmount       decimal.Decimal // hard cap per execution
	ScanInterval         time.Duration
	MaxExecutionsPerHour int
	AutoExecutionEnabled bool
}

// Controller is the autonomous scheduling loop: scan, rank, gate,
// execute at most once per tick. Ticks never overlap; a long-running
// execution delays the next tick rather than racing it.
type Controller struct {
	cfg      ControllerConfig
	scanner  *Scanner
	executor *Executor
	session  *domain.Session
	window   *domain.RateLimitWindow
	stop     StopSignal
	reporter Reporter
	logger   logger.LoggerInterface

	scans        atomic.Int64
	oppsDetected atomic.Int64
	startedAt    time.Time

	tracer trace.Tracer
}

// NewController assembles the control loop.
func NewController(
	cfg ControllerConfig,
	scanner *Scanner,
	executor *Executor,
	session *domain.Session,
	stop StopSignal,
	reporter Reporter,
	log logger.LoggerInterface,
) *Controller {
	return &Controller{
		cfg:      cfg,
		scanner:  scanner,
		executor: executor,
		session:  session,
		window:   domain.NewRateLimitWindow(cfg.MaxExecutionsPerHour, time.Hour),
		stop:     stop,
		reporter: reporter,
		logger:   log,
		tracer:   otel.Tracer(controllerTracerName),
	}
}

// Run drives the loop until the context is cancelled or the emergency
// stop is raised. The emergency stop is terminal for the session; a
// restart requires a new Run call.
func (c *Controller) Run(ctx context.Context) error {
	c.startedAt = time.Now()

	c.logger.Info(ctx, "controller started",
		"pairs", len(c.cfg.Pairs),
		"scan_interval", c.cfg.ScanInterval.String(),
		"auto_execution", c.cfg.AutoExecutionEnabled,
		"max_executions_per_hour", c.cfg.MaxExecutionsPerHour,
	)

	// Run the first tick immediately, then on the interval. The tick
	// body is synchronous, so ticks cannot overlap.
	if stopped := c.tick(ctx); stopped {
		return nil
	}

	ticker := time.NewTicker(c.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info(ctx, "controller stopping", "reason", "context cancelled")
			return ctx.Err()
		case <-ticker.C:
			if stopped := c.tick(ctx); stopped {
				return nil
			}
		}
	}
}

// tick runs one loop iteration. Returns true when the emergency stop
// was raised, which terminates the loop.
func (c *Controller) tick(ctx context.Context) bool {
	ctx, span := c.tracer.Start(ctx, "controller.tick")
	defer span.End()

	// Emergency stop is checked only at tick boundaries; an in-flight
	// execution is never interrupted.
	if c.stop.Active(ctx) {
		c.logger.Warn(ctx, "emergency stop active, terminating control loop")
		c.reporter.ReportStopped(ctx, "emergency stop signal raised")
		return true
	}

	opportunities := c.scanner.Scan(ctx, c.cfg.Pairs, c.cfg.TradeAmount)
	c.scans.Add(1)
	c.oppsDetected.Add(int64(len(opportunities)))

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].NetProfitPercent.GreaterThan(opportunities[j].NetProfitPercent)
	})

	c.reporter.ReportScan(ctx, len(c.cfg.Pairs), opportunities)
	span.SetAttributes(attribute.Int("opportunities", len(opportunities)))

	if c.cfg.AutoExecutionEnabled {
		c.executeBest(ctx, opportunities)
	} else if len(opportunities) > 0 {
		c.logger.Info(ctx, "auto-execution disabled, reporting only",
			"opportunities", len(opportunities),
		)
	}

	c.reporter.ReportStats(ctx, c.Stats())
	return false
}

// executeBest walks the ranked opportunities and executes the first one
// that passes every gate. At most one execution per tick.
func (c *Controller) executeBest(ctx context.Context, opportunities []*domain.Opportunity) {
	for _, opp := range opportunities {
		if !c.window.Allow() {
			c.logger.Warn(ctx, "rate limit reached, skipping execution",
				"window_count", c.window.Count(),
				"max_per_hour", c.cfg.MaxExecutionsPerHour,
			)
			return
		}

		if opp.TradeAmountIn.GreaterThan(c.cfg.MaxTradeAmount) {
			c.logger.Warn(ctx, "trade size exceeds cap, skipping",
				"pair", opp.Pair.String(),
				"trade_amount", opp.TradeAmountIn.String(),
				"max", c.cfg.MaxTradeAmount.String(),
			)
			continue
		}

		if !c.revalidate(ctx, opp) {
			continue
		}

		c.window.Record()
		result := c.executor.Execute(ctx, opp)
		c.reporter.ReportExecution(ctx, result)
		return
	}
}

// revalidate re-fetches prices for the opportunity's pair and requires
// fresh net profit to clear the hysteresis band. Guards against
// executing on a spread that closed between detection and execution.
func (c *Controller) revalidate(ctx context.Context, opp *domain.Opportunity) bool {
	fresh := c.scanner.EvaluatePair(ctx, opp.Pair, opp.TradeAmountIn)
	if fresh == nil {
		c.logger.Warn(ctx, "re-validation failed, no fresh quotes",
			"pair", opp.Pair.String(),
		)
		return false
	}

	floor := c.scanner.Threshold().Mul(revalidationBand)
	if !fresh.NetProfitPercent.GreaterThan(floor) {
		c.logger.Info(ctx, "spread collapsed since detection, skipping",
			"pair", opp.Pair.String(),
			"detected_net_pct", opp.NetProfitPercent.String(),
			"fresh_net_pct", fresh.NetProfitPercent.String(),
			"floor_pct", floor.String(),
		)
		return false
	}

	return true
}

// Stats returns a snapshot of the controller and session counters.
func (c *Controller) Stats() ControllerStats {
	return ControllerStats{
		Scans:                 c.scans.Load(),
		OpportunitiesDetected: c.oppsDetected.Load(),
		Session:               c.session.Stats(),
		WindowCount:           c.window.Count(),
		StartedAt:             c.startedAt,
	}
}

// RunOnce performs a single scan tick without executing anything.
// Backs the `scan` CLI command.
func (c *Controller) RunOnce(ctx context.Context) []*domain.Opportunity {
	opportunities := c.scanner.Scan(ctx, c.cfg.Pairs, c.cfg.TradeAmount)
	c.scans.Add(1)
	c.oppsDetected.Add(int64(len(opportunities)))

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].NetProfitPercent.GreaterThan(opportunities[j].NetProfitPercent)
	})

	c.reporter.ReportScan(ctx, len(c.cfg.Pairs), opportunities)
	c.reporter.ReportStats(ctx, c.Stats())
	return opportunities
}
