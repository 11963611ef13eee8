// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/app"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/domain"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Controller = di.NewToken[*app.Controller]("arbitrage.Controller")
	Scanner    = di.NewToken[*app.Scanner]("arbitrage.Scanner")
	Executor   = di.NewToken[*app.Executor]("arbitrage.Executor")
	Session    = di.NewToken[*domain.Session]("arbitrage.Session")
	Ledger     = di.NewToken[app.Ledger]("arbitrage.Ledger")
	Reporter   = di.NewToken[app.Reporter]("arbitrage.Reporter")
)

// Helper functions for type-safe access
func GetController(c di.ServiceRegistry) *app.Controller {
	return di.GetToken(c, Controller)
}

func GetLedger(c di.ServiceRegistry) app.Ledger {
	return di.GetToken(c, Ledger)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}

func GetSession(c di.ServiceRegistry) *domain.Session {
	return di.GetToken(c, Session)
}
