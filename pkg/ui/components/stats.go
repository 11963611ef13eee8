// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Stats holds session statistics for display.
type Stats struct {
	Scans            int64
	Opportunities    int64
	Executions       int64
	Successes        int64
	CumulativeProfit decimal.Decimal
	WindowCount      int
	WindowMax        int
}

// StatsComponent renders statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Update updates the statistics.
func (s *StatsComponent) Update(stats Stats) {
	s.stats = stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	profitStyle := valueStyle.Foreground(lipgloss.Color("#10B981"))
	if s.stats.CumulativeProfit.Sign() < 0 {
		profitStyle = valueStyle.Foreground(lipgloss.Color("#EF4444"))
	}

	successRate := float64(0)
	if s.stats.Executions > 0 {
		successRate = float64(s.stats.Successes) / float64(s.stats.Executions) * 100
	}

	return style.Render("SESSION") + "\n" +
		fmt.Sprintf("Scans: %s  │  Opportunities: %s  │  Executions: %s (%.0f%% ok)\n",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Scans)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Opportunities)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Executions)),
			successRate,
		) +
		fmt.Sprintf("P&L: %s  │  Rate window: %s",
			profitStyle.Render(fmt.Sprintf("%+.4f ADA", s.stats.CumulativeProfit.InexactFloat64())),
			valueStyle.Render(fmt.Sprintf("%d/%d this hour", s.stats.WindowCount, s.stats.WindowMax)),
		)
}
