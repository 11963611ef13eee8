// Package arbitrage implements the arbitrage bounded context: scanning,
// cost modelling, gated execution and the execution ledger.
package arbitrage

import (
	"context"
	"fmt"
	"time"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/app"
	arbDI "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/di"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/domain"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/infra"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/infra/sqlitestore"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/infra/stopfile"
	venueDI "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/di"
	venueDomain "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/domain"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/config"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/di"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/logger"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/monolith"
)

// Module implements the arbitrage bounded context.
type Module struct{}

// RegisterServices registers arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, arbDI.Session, func(sr di.ServiceRegistry) *domain.Session {
		return domain.NewSession()
	})

	di.RegisterToken(c, arbDI.Ledger, func(sr di.ServiceRegistry) app.Ledger {
		cfg := sr.Get("config").(*config.Config)

		ledger, err := sqlitestore.New(cfg.Ledger.Path)
		if err != nil {
			panic(fmt.Sprintf("failed to open execution ledger: %v", err))
		}
		return ledger
	})

	di.RegisterToken(c, arbDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)

		if cfg.Arbitrage.TUIMode {
			return infra.NewTUIReporter()
		}
		return infra.NewConsoleReporter()
	})

	di.RegisterToken(c, arbDI.Scanner, func(sr di.ServiceRegistry) *app.Scanner {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		venues := venueDI.GetVenueService(sr)
		costModel := domain.NewCostModel(domain.DefaultSlippageEstimator)

		scanner, err := app.NewScanner(
			venues.PriceSources(),
			costModel,
			cfg.Arbitrage.ProfitThresholdDecimal(),
			log,
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create scanner: %v", err))
		}
		return scanner
	})

	di.RegisterToken(c, arbDI.Executor, func(sr di.ServiceRegistry) *app.Executor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		executor, err := app.NewExecutor(
			venueDI.GetVenueService(sr),
			arbDI.GetSession(sr),
			arbDI.GetLedger(sr),
			app.ExecutorConfig{
				DryRun:              cfg.Arbitrage.DryRun,
				ConfirmationTimeout: cfg.Arbitrage.ConfirmationTimeout,
				ConfirmationPoll:    cfg.Arbitrage.ConfirmationPoll,
			},
			log,
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create executor: %v", err))
		}
		return executor
	})

	di.RegisterToken(c, arbDI.Controller, func(sr di.ServiceRegistry) *app.Controller {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		pairs := make([]venueDomain.Pair, 0, len(cfg.Arbitrage.Pairs))
		for _, raw := range cfg.Arbitrage.Pairs {
			pair, err := venueDomain.ParsePair(raw)
			if err != nil {
				panic(fmt.Sprintf("invalid pair %q in configuration: %v", raw, err))
			}
			pairs = append(pairs, pair)
		}

		return app.NewController(
			app.ControllerConfig{
				Pairs:                pairs,
				TradeAmount:          cfg.Arbitrage.TradeAmountDecimal(),
				MaxTradeAmount:       cfg.Arbitrage.MaxTradeAmountDecimal(),
				ScanInterval:         cfg.Arbitrage.ScanInterval,
				MaxExecutionsPerHour: cfg.Arbitrage.MaxExecutionsPerHour,
				AutoExecutionEnabled: cfg.Arbitrage.AutoExecutionEnabled,
			},
			di.GetToken(sr, arbDI.Scanner),
			di.GetToken(sr, arbDI.Executor),
			arbDI.GetSession(sr),
			stopfile.New(cfg.Arbitrage.EmergencyStopFile, log),
			arbDI.GetReporter(sr),
			log,
		)
	})

	return nil
}

// Startup wires the ledger into shutdown and starts the retention loop.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	log := mono.Logger()

	ledger := arbDI.GetLedger(mono.Services())
	mono.AddCloser(ledger.Close)

	if cfg.Ledger.RetentionDays > 0 && cfg.Ledger.PurgeInterval > 0 {
		go m.purgeLoop(ctx, ledger, cfg.Ledger, log)
	}

	log.Info(ctx, "arbitrage module started",
		"pairs", cfg.Arbitrage.Pairs,
		"dry_run", cfg.Arbitrage.DryRun,
		"auto_execution", cfg.Arbitrage.AutoExecutionEnabled,
	)
	return nil
}

// purgeLoop trims ledger records past the retention horizon.
func (m *Module) purgeLoop(ctx context.Context, ledger app.Ledger, cfg config.LedgerConfig, log logger.LoggerInterface) {
	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour

	ticker := time.NewTicker(cfg.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := ledger.PurgeOlderThan(ctx, retention)
			if err != nil {
				log.Warn(ctx, "ledger purge failed", "error", err)
				continue
			}
			if purged > 0 {
				log.Info(ctx, "ledger purged", "records", purged, "retention_days", cfg.RetentionDays)
			}
		}
	}
}
