// Package di contains dependency injection tokens for the venue context.
package di

import (
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/venue/app"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	VenueService = di.NewToken[*app.VenueService]("venue.VenueService")
)

// Helper functions for type-safe access
func GetVenueService(c di.ServiceRegistry) *app.VenueService {
	return di.GetToken(c, VenueService)
}
