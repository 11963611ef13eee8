// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// OpportunityRow represents a detected opportunity in the list.
type OpportunityRow struct {
	Timestamp string
	Pair      string
	BuyVenue  string
	SellVenue string
	NetPct    decimal.Decimal
	ProfitADA decimal.Decimal
}

// OpportunitiesComponent renders the opportunities list.
type OpportunitiesComponent struct {
	rows    []OpportunityRow
	maxRows int
}

// NewOpportunitiesComponent creates a new opportunities component.
func NewOpportunitiesComponent(maxRows int) *OpportunitiesComponent {
	return &OpportunitiesComponent{
		rows:    make([]OpportunityRow, 0),
		maxRows: maxRows,
	}
}

// Add prepends a new opportunity, keeping the newest maxRows.
func (o *OpportunitiesComponent) Add(row OpportunityRow) {
	o.rows = append([]OpportunityRow{row}, o.rows...)
	if len(o.rows) > o.maxRows {
		o.rows = o.rows[:o.maxRows]
	}
}

// Clear clears all opportunities.
func (o *OpportunitiesComponent) Clear() {
	o.rows = make([]OpportunityRow, 0)
}

// View renders the opportunities component.
func (o *OpportunitiesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2563EB"))
	profitStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	if len(o.rows) == 0 {
		return headerStyle.Render("OPPORTUNITIES") + "\n\nNo opportunities detected yet..."
	}

	result := headerStyle.Render(fmt.Sprintf("OPPORTUNITIES (last %d)\n", o.maxRows))
	result += "┌──────────┬────────────┬────────────────────────┬─────────┬───────────┐\n"
	result += "│   Time   │    Pair    │         Route          │   Net   │  Profit   │\n"
	result += "├──────────┼────────────┼────────────────────────┼─────────┼───────────┤\n"

	for _, row := range o.rows {
		route := fmt.Sprintf("%s → %s", row.BuyVenue, row.SellVenue)
		result += fmt.Sprintf("│ %-8s │ %-10s │ %-22s │%8s │%10s │\n",
			row.Timestamp,
			row.Pair,
			route,
			fmt.Sprintf("%.2f%%", row.NetPct.InexactFloat64()),
			profitStyle.Render(fmt.Sprintf("%.2f ADA", row.ProfitADA.InexactFloat64())),
		)
	}

	result += "└──────────┴────────────┴────────────────────────┴─────────┴───────────┘"

	return result
}
