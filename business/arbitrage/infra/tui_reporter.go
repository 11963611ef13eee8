package infra

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/app"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/domain"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/pkg/ui"
)

// TUIReporter forwards controller events to a running Bubble Tea
// program. Events arriving before Attach are dropped; Program.Send is
// safe to call from any goroutine once attached.
type TUIReporter struct {
	mu      sync.RWMutex
	program *tea.Program
}

// Ensure TUIReporter implements the port.
var _ app.Reporter = (*TUIReporter)(nil)

// NewTUIReporter creates a reporter with no program attached yet.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{}
}

// Attach binds the running program. Call after tea.NewProgram but
// before the controller starts ticking.
func (r *TUIReporter) Attach(program *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.program = program
}

func (r *TUIReporter) send(msg tea.Msg) {
	r.mu.RLock()
	program := r.program
	r.mu.RUnlock()

	if program != nil {
		program.Send(msg)
	}
}

// ReportScan forwards scan results to the dashboard.
func (r *TUIReporter) ReportScan(ctx context.Context, scanned int, opportunities []*domain.Opportunity) {
	r.send(ui.ScanMsg{
		PairsScanned:  scanned,
		Opportunities: opportunities,
		At:            time.Now(),
	})
}

// ReportExecution forwards an execution result.
func (r *TUIReporter) ReportExecution(ctx context.Context, result *domain.ExecutionResult) {
	r.send(ui.ExecutionMsg{Result: result})
}

// ReportStats forwards a stats snapshot.
func (r *TUIReporter) ReportStats(ctx context.Context, stats app.ControllerStats) {
	r.send(ui.StatsMsg{Stats: stats})
}

// ReportStopped forwards the terminal stop notice.
func (r *TUIReporter) ReportStopped(ctx context.Context, reason string) {
	r.send(ui.StoppedMsg{Reason: reason})
}
