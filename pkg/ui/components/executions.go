// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ExecutionRow represents one execution attempt in the list.
type ExecutionRow struct {
	Timestamp string
	Pair      string
	Mode      string
	Success   bool
	ProfitADA decimal.Decimal
	Reason    string
}

// ExecutionsComponent renders the execution history list.
type ExecutionsComponent struct {
	rows    []ExecutionRow
	maxRows int
}

// NewExecutionsComponent creates a new executions component.
func NewExecutionsComponent(maxRows int) *ExecutionsComponent {
	return &ExecutionsComponent{
		rows:    make([]ExecutionRow, 0),
		maxRows: maxRows,
	}
}

// Add prepends a new execution, keeping the newest maxRows.
func (e *ExecutionsComponent) Add(row ExecutionRow) {
	e.rows = append([]ExecutionRow{row}, e.rows...)
	if len(e.rows) > e.maxRows {
		e.rows = e.rows[:e.maxRows]
	}
}

// Clear clears all executions.
func (e *ExecutionsComponent) Clear() {
	e.rows = make([]ExecutionRow, 0)
}

// View renders the executions component.
func (e *ExecutionsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2563EB"))
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	if len(e.rows) == 0 {
		return headerStyle.Render("EXECUTIONS") + "\n\nNo executions yet..."
	}

	result := headerStyle.Render(fmt.Sprintf("EXECUTIONS (last %d)\n", e.maxRows))

	for _, row := range e.rows {
		if row.Success {
			result += fmt.Sprintf("  %s %s  %-10s [%s]  %s\n",
				okStyle.Render("✓"),
				row.Timestamp,
				row.Pair,
				row.Mode,
				okStyle.Render(fmt.Sprintf("%+.4f ADA", row.ProfitADA.InexactFloat64())),
			)
		} else {
			result += fmt.Sprintf("  %s %s  %-10s [%s]  %s\n",
				failStyle.Render("✗"),
				row.Timestamp,
				row.Pair,
				row.Mode,
				failStyle.Render(row.Reason),
			)
		}
	}

	return result
}
