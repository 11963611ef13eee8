// Package venue implements the venue bounded context: per-DEX adapters
// behind the PriceSource and TradeExecutor ports.
package venue

import (
	"context"
	"fmt"
	"sort"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/app"
	venueDI "github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/di"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/infra/minswap"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/infra/muesliswap"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/infra/sundaeswap"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/asset"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/config"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/di"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/logger"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/monolith"
)

// Module implements the venue bounded context.
type Module struct{}

// RegisterServices registers the venue registry with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, venueDI.VenueService, func(sr di.ServiceRegistry) *app.VenueService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		svc := app.NewVenueService(log)

		// Registration order decides scanner tie-breaks, and map
		// iteration is randomized. Sort so the order is stable
		// across runs.
		names := cfg.EnabledVenues()
		sort.Strings(names)

		for _, name := range names {
			vc := cfg.Venues[name]

			adapter, err := buildAdapter(name, vc, registry, log)
			if err != nil {
				panic(fmt.Sprintf("failed to create %s adapter: %v", name, err))
			}
			if err := svc.Register(adapter); err != nil {
				panic(fmt.Sprintf("failed to register %s adapter: %v", name, err))
			}
		}

		return svc
	})

	return nil
}

// buildAdapter maps a configured venue name to its adapter constructor.
// An unknown name is a configuration error surfaced at startup.
func buildAdapter(name string, vc config.VenueConfig, registry *asset.Registry, log logger.LoggerInterface) (app.Venue, error) {
	switch name {
	case minswap.VenueName:
		return minswap.NewProvider(vc, registry, log)
	case sundaeswap.VenueName:
		return sundaeswap.NewProvider(vc, registry, log)
	case muesliswap.VenueName:
		return muesliswap.NewProvider(vc, registry, log)
	default:
		return nil, fmt.Errorf("no adapter implemented for venue %q", name)
	}
}

// Startup initializes the venue module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	svc := venueDI.GetVenueService(mono.Services())
	svc.InitializeAll(ctx)

	log.Info(ctx, "venue module started", "venues", svc.Names())
	return nil
}
