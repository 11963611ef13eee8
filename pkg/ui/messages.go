// Package ui provides the Bubble Tea TUI for the arbitrage bot.
package ui

import (
	"time"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/app"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/domain"
)

// Message types for TUI updates

// ScanMsg is sent after every scan tick with the ranked opportunities.
type ScanMsg struct {
	PairsScanned  int
	Opportunities []*domain.Opportunity
	At            time.Time
}

// ExecutionMsg is sent when an execution attempt finishes.
type ExecutionMsg struct {
	Result *domain.ExecutionResult
}

// StatsMsg carries a fresh controller/session snapshot.
type StatsMsg struct {
	Stats app.ControllerStats
}

// VenueStatusMsg is sent when a venue's health changes.
type VenueStatusMsg struct {
	Name    string
	Healthy bool
	Latency time.Duration
}

// StoppedMsg signals the control loop has terminated.
type StoppedMsg struct {
	Reason string
}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}
