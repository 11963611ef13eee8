// Package ui provides the Bubble Tea TUI for the arbitrage bot.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/pkg/ui/components"
)

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the dashboard.
type Model struct {
	// Components
	opportunities *components.OpportunitiesComponent
	executions    *components.ExecutionsComponent
	stats         *components.StatsComponent
	status        *components.StatusComponent

	keys KeyMap

	// Config shown in the header
	dryRun      bool
	maxPerHour  int
	pairsLabel  string

	// State
	quitting     bool
	showHelp     bool
	stopped      bool
	stopReason   string
	width        int
	height       int
	lastScan     time.Time
	pairsScanned int
	errors       []ErrorEntry // Persistent error panel (last 3)
	logs         []string     // Recent log messages
}

// New creates a new dashboard model.
func New(pairs []string, dryRun bool, maxPerHour int) Model {
	return Model{
		opportunities: components.NewOpportunitiesComponent(10),
		executions:    components.NewExecutionsComponent(8),
		stats:         components.NewStatsComponent(),
		status:        components.NewStatusComponent(),
		keys:          DefaultKeyMap(),
		dryRun:        dryRun,
		maxPerHour:    maxPerHour,
		pairsLabel:    strings.Join(pairs, ", "),
		logs:          make([]string, 0, 5),
		errors:        make([]ErrorEntry, 0, 3),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd drives periodic redraws so relative timestamps stay fresh.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.opportunities.Clear()
			m.executions.Clear()
			return m, nil
		case key.Matches(msg, m.keys.ClearErrors):
			m.errors = make([]ErrorEntry, 0, 3)
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		return m, tickCmd()

	case ScanMsg:
		m.lastScan = msg.At
		m.pairsScanned = msg.PairsScanned
		for _, opp := range msg.Opportunities {
			m.opportunities.Add(components.OpportunityRow{
				Timestamp: opp.DetectedAt.Format("15:04:05"),
				Pair:      opp.Pair.String(),
				BuyVenue:  opp.BuyVenue,
				SellVenue: opp.SellVenue,
				NetPct:    opp.NetProfitPercent,
				ProfitADA: opp.EstimatedProfitAmount,
			})
		}

	case ExecutionMsg:
		if msg.Result != nil {
			r := msg.Result
			m.executions.Add(components.ExecutionRow{
				Timestamp: r.ExecutedAt.Format("15:04:05"),
				Pair:      r.Opportunity.Pair.String(),
				Mode:      string(r.Mode),
				Success:   r.Success,
				ProfitADA: r.ActualProfitAmount,
				Reason:    string(r.Reason),
			})
		}

	case StatsMsg:
		m.stats.Update(components.Stats{
			Scans:            msg.Stats.Scans,
			Opportunities:    msg.Stats.OpportunitiesDetected,
			Executions:       msg.Stats.Session.TotalExecutions,
			Successes:        msg.Stats.Session.SuccessCount,
			CumulativeProfit: msg.Stats.Session.CumulativeProfit,
			WindowCount:      msg.Stats.WindowCount,
			WindowMax:        m.maxPerHour,
		})

	case VenueStatusMsg:
		m.status.Update(components.VenueStatus{
			Name:       msg.Name,
			Healthy:    msg.Healthy,
			Latency:    msg.Latency,
			LastUpdate: time.Now(),
		})

	case StoppedMsg:
		m.stopped = true
		m.stopReason = msg.Reason

	case ErrorMsg:
		m.logs = addLog(m.logs, "error", msg.Error.Error())
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)
	}

	return m, nil
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logLine := fmt.Sprintf("[%s] %s: %s", timestamp, level, message)
	logs = append(logs, logLine)
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	var b strings.Builder

	mode := "LIVE"
	if m.dryRun {
		mode = "DRY RUN"
	}
	b.WriteString(TitleStyle.Render(fmt.Sprintf(" Catsky Arbitrage · %s ", mode)))
	b.WriteString("\n\n")

	if m.stopped {
		b.WriteString(StoppedBanner.Render(fmt.Sprintf(" STOPPED: %s ", m.stopReason)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	leftCol := m.opportunities.View()

	var rightContent strings.Builder
	rightContent.WriteString(m.executions.View())
	rightContent.WriteString("\n")
	rightContent.WriteString(m.stats.View())
	rightCol := rightContent.String()

	// Side by side if enough width
	if m.width > 110 {
		left := BoxStyle.Width(m.width/2 - 2).Render(leftCol)
		right := BoxStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		b.WriteString(BoxStyle.Width(m.width - 4).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(m.width - 4).Render(rightCol))
	}

	b.WriteString("\n\n")

	// Persistent error panel (last 3 errors)
	if len(m.errors) > 0 {
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		errorStyle := lipgloss.NewStyle().Foreground(ColorDanger)

		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(errorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Recent log lines
	if len(m.logs) > 0 {
		for _, line := range m.logs {
			b.WriteString(MutedValue.Render("  " + line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.showHelp {
		for _, row := range m.keys.FullHelp() {
			var cols []string
			for _, binding := range row {
				cols = append(cols, fmt.Sprintf("%s: %s", binding.Help().Key, binding.Help().Desc))
			}
			b.WriteString(HelpStyle.Render(strings.Join(cols, "  •  ")))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(HelpStyle.Render("q: quit • c: clear • e: clear errors • ?: help"))
	}

	return b.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Pairs: %s", m.pairsLabel))

	if !m.lastScan.IsZero() {
		ago := time.Since(m.lastScan).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Last scan: %s ago (%d pairs)", ago, m.pairsScanned)))
	} else {
		parts = append(parts, MutedValue.Render("Waiting for first scan..."))
	}

	if venues := m.status.View(); venues != "No venues" {
		parts = append(parts, strings.TrimRight(strings.ReplaceAll(venues, "\n", "  "), " "))
	}

	return strings.Join(parts, "  │  ")
}

// NewProgram wraps the model in a Bubble Tea program using the alt screen.
func NewProgram(model Model) *tea.Program {
	return tea.NewProgram(model, tea.WithAltScreen())
}
