// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/app"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/domain"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// Ensure ConsoleReporter implements the port.
var _ app.Reporter = (*ConsoleReporter)(nil)

// NewConsoleReporter creates a new ConsoleReporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{
		out: os.Stdout,
	}
}

// ReportScan outputs each detected opportunity.
func (r *ConsoleReporter) ReportScan(ctx context.Context, scanned int, opportunities []*domain.Opportunity) {
	if len(opportunities) == 0 {
		fmt.Fprintf(r.out, "[%s] scanned %d pair(s), no opportunities\n",
			time.Now().Format("15:04:05"), scanned)
		return
	}

	for _, opp := range opportunities {
		fmt.Fprintln(r.out, "")
		fmt.Fprintln(r.out, "================================================================================")
		fmt.Fprintln(r.out, "ARBITRAGE OPPORTUNITY DETECTED")
		fmt.Fprintln(r.out, "================================================================================")
		fmt.Fprintf(r.out, "Detected:       %s\n", opp.DetectedAt.Format(time.RFC3339))
		fmt.Fprintf(r.out, "Pair:           %s\n", opp.Pair.String())
		fmt.Fprintf(r.out, "Route:          buy %s @ %s  ->  sell %s @ %s\n",
			opp.BuyVenue, opp.BuyPrice.StringFixed(6),
			opp.SellVenue, opp.SellPrice.StringFixed(6))
		fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
		fmt.Fprintf(r.out, "  Trade Size:     %s ADA\n", opp.TradeAmountIn.StringFixed(2))
		fmt.Fprintf(r.out, "  Gross Spread:   %s%%\n", opp.GrossSpreadPercent.StringFixed(3))
		fmt.Fprintf(r.out, "  Total Fees:     %s%%\n", opp.TotalFeePercent.StringFixed(3))
		fmt.Fprintf(r.out, "  Slippage Est:   %s%%\n", opp.SlippagePercent.StringFixed(3))
		fmt.Fprintf(r.out, "  Net Profit:     %s%% (~%s ADA)\n",
			opp.NetProfitPercent.StringFixed(3), opp.EstimatedProfitAmount.StringFixed(2))
		fmt.Fprintln(r.out, "================================================================================")
	}
}

// ReportExecution outputs the outcome of an execution attempt.
func (r *ConsoleReporter) ReportExecution(ctx context.Context, result *domain.ExecutionResult) {
	status := "FAILED"
	if result.Success {
		status = "COMPLETED"
	}

	fmt.Fprintln(r.out, "")
	fmt.Fprintf(r.out, "EXECUTION %s [%s]\n", status, result.Mode)
	fmt.Fprintf(r.out, "  Pair:      %s (%s -> %s)\n",
		result.Opportunity.Pair.String(), result.Opportunity.BuyVenue, result.Opportunity.SellVenue)
	if result.Success {
		fmt.Fprintf(r.out, "  Profit:    %s ADA (%s%%)\n",
			result.ActualProfitAmount.StringFixed(4), result.ActualProfitPercent.StringFixed(3))
	} else {
		fmt.Fprintf(r.out, "  Reason:    %s\n", result.Reason)
	}
	if result.BuyTxRef != "" {
		fmt.Fprintf(r.out, "  Buy Tx:    %s\n", result.BuyTxRef)
	}
	if result.SellTxRef != "" {
		fmt.Fprintf(r.out, "  Sell Tx:   %s\n", result.SellTxRef)
	}
	fmt.Fprintf(r.out, "  Duration:  %dms\n", result.DurationMs)
}

// ReportStats outputs a compact session summary.
func (r *ConsoleReporter) ReportStats(ctx context.Context, stats app.ControllerStats) {
	fmt.Fprintf(r.out, "[%s] scans=%d opportunities=%d executions=%d success=%d profit=%s ADA window=%d\n",
		time.Now().Format("15:04:05"),
		stats.Scans,
		stats.OpportunitiesDetected,
		stats.Session.TotalExecutions,
		stats.Session.SuccessCount,
		stats.Session.CumulativeProfit.StringFixed(4),
		stats.WindowCount,
	)
}

// ReportStopped outputs the terminal stop notice.
func (r *ConsoleReporter) ReportStopped(ctx context.Context, reason string) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintf(r.out, "CONTROL LOOP STOPPED: %s\n", reason)
}
