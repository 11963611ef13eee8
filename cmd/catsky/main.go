// Package main is the entry point for the Catsky Cardano Trading Bot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage"
	arbitrageApp "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/app"
	arbitrageDI "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/di"
	arbitrageInfra "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/infra"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue"
	venueApp "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/app"
	venueDI "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/di"
	venueDomain "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/domain"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/apm"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/config"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/health"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/logger"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/metrics"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/monolith"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("catsky-bot %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Subcommands: start (default) runs the control loop, scan performs a
	// single detection pass, stats summarizes the execution ledger.
	command := flag.Arg(0)
	if command == "" {
		command = "start"
	}

	// TUI only makes sense for the long-running loop
	tuiMode := !*cliMode && command == "start"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, command, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, command string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set TUI mode in config so modules know which reporter to build
	cfg.Arbitrage.TUIMode = tuiMode

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if tuiMode {
		// In TUI mode the alt screen owns the terminal; discard logs
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting Catsky Cardano Trading Bot",
			"version", version,
			"environment", cfg.App.Environment,
			"dry_run", cfg.Arbitrage.DryRun,
		)
	}

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled && command == "start" {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(traceProviderName(cfg.Telemetry.TraceProvider), log))
		log.Info(ctx, "tracing initialized", "provider", cfg.Telemetry.TraceProvider)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9464
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	modules := []monolith.Module{
		&venue.Module{},     // Must be first - provides DEX adapters
		&arbitrage.Module{}, // Depends on venue price sources
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	switch command {
	case "stats":
		// Ledger-only: no venue connections needed
		return printStats(ctx, mono, os.Stdout)

	case "scan":
		if err := mono.StartModules(ctx, modules...); err != nil {
			return fmt.Errorf("failed to start modules: %w", err)
		}
		controller := arbitrageDI.GetController(mono.Services())
		opportunities := controller.RunOnce(ctx)
		if !tuiMode && len(opportunities) == 0 {
			fmt.Println("no opportunities above threshold")
		}
		return nil

	case "start":
		// handled below
	default:
		return fmt.Errorf("unknown command %q (want start, scan or stats)", command)
	}

	healthServer := health.NewServer(cfg.Telemetry.HealthPort, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.Telemetry.HealthPort)
	}
	defer healthServer.Stop(ctx)

	if tuiMode {
		model := ui.New(cfg.Arbitrage.Pairs, cfg.Arbitrage.DryRun, cfg.Arbitrage.MaxExecutionsPerHour)
		program := ui.NewProgram(model)

		reporter := arbitrageDI.GetReporter(mono.Services())
		if tuiReporter, ok := reporter.(*arbitrageInfra.TUIReporter); ok {
			tuiReporter.Attach(program)
		}

		startFunc := func(ctx context.Context) error {
			if err := mono.StartModules(ctx, modules...); err != nil {
				return fmt.Errorf("failed to start modules: %w", err)
			}
			program.Send(ui.LogMsg{Level: "info", Message: "modules started, scan interval " + cfg.Arbitrage.ScanInterval.String()})
			if pair, perr := venueDomain.ParsePair(cfg.Arbitrage.Pairs[0]); perr == nil {
				go probeVenueStatus(ctx, venueDI.GetVenueService(mono.Services()), pair, program)
			}
			return arbitrageDI.GetController(mono.Services()).Run(ctx)
		}
		return runTUI(ctx, program, startFunc)
	}

	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	controller := arbitrageDI.GetController(mono.Services())
	if err := controller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info(ctx, "shutting down")
	return nil
}

// runTUI shows the dashboard immediately and drives the controller in
// the background. Quitting the TUI cancels the controller.
func runTUI(ctx context.Context, program *tea.Program, startFunc func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := startFunc(ctx); err != nil && !errors.Is(err, context.Canceled) {
			program.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}
		errCh <- nil
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	cancel()

	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		return nil
	}
}

// probeVenueStatus polls each venue's price endpoint for the lead pair
// and reports reachability and latency to the dashboard.
func probeVenueStatus(ctx context.Context, svc *venueApp.VenueService, pair venueDomain.Pair, program *tea.Program) {
	probe := func() {
		for _, src := range svc.PriceSources() {
			start := time.Now()
			_, err := src.GetPrice(ctx, pair)
			program.Send(ui.VenueStatusMsg{
				Name:    src.Venue(),
				Healthy: err == nil,
				Latency: time.Since(start),
			})
		}
	}

	probe()
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}

// printStats summarizes the last 24 hours of ledger records.
func printStats(ctx context.Context, mono monolith.Monolith, out io.Writer) error {
	ledger := arbitrageDI.GetLedger(mono.Services())

	since := time.Now().Add(-24 * time.Hour)
	records, err := ledger.Query(ctx, arbitrageApp.LedgerFilter{Since: since}, 0)
	if err != nil {
		return fmt.Errorf("failed to query ledger: %w", err)
	}

	var successes int
	profit := decimal.Zero
	for _, rec := range records {
		if rec.Success {
			successes++
			profit = profit.Add(rec.ProfitAmount)
		}
	}

	fmt.Fprintf(out, "Executions (24h): %d\n", len(records))
	fmt.Fprintf(out, "Successful:       %d\n", successes)
	fmt.Fprintf(out, "Failed:           %d\n", len(records)-successes)
	fmt.Fprintf(out, "Realized P&L:     %s ADA\n", profit.StringFixed(4))

	if len(records) > 0 {
		fmt.Fprintln(out, "\nMost recent:")
		max := 10
		if len(records) < max {
			max = len(records)
		}
		for _, rec := range records[:max] {
			status := "FAIL"
			detail := rec.Reason
			if rec.Success {
				status = "OK"
				detail = rec.ProfitAmount.StringFixed(4) + " ADA"
			}
			fmt.Fprintf(out, "  %s  %-12s %-10s [%s] %s\n",
				rec.ExecutedAt.Format("2006-01-02 15:04:05"),
				rec.Pair, status, rec.Mode, detail)
		}
	}

	return nil
}

func traceProviderName(name string) apm.Provider {
	switch name {
	case "otlp":
		return apm.OTLPProvider
	case "console":
		return apm.ConsoleProvider
	case "zipkin":
		return apm.ZipkinProvider
	default:
		return apm.EmptyProvider
	}
}
