// Package report renders the daily paper-trading report as markdown.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aristath/btcquant/internal/domain"
	"github.com/aristath/btcquant/internal/ledger"
)

// Generate renders the performance and composition report from the
// ledger's state. Returns a placeholder when there is no history yet.
func Generate(l *ledger.Ledger, scores domain.Scores) string {
	history := l.History()
	if len(history) == 0 {
		return "No history available.\n"
	}

	latest := history[len(history)-1]
	initial := l.InitialCapital()
	current := latest.Equity

	roi := 0.0
	if initial > 0 {
		roi = (current - initial) / initial * 100
	}

	// Buy & Hold benchmark over the same span
	firstPrice := history[0].Price
	bnhROI := 0.0
	if firstPrice > 0 {
		bnhROI = (latest.Price - firstPrice) / firstPrice * 100
	}

	cashPct, btcPct, debtPct := 0.0, 0.0, 0.0
	if current > 0 {
		cashPct = latest.Cash / current * 100
		btcPct = latest.AssetValue / current * 100
		debtPct = latest.Debt / current * 100
	}

	stats := ledger.ComputeTradeStats(l.Orders())

	var b strings.Builder
	fmt.Fprintf(&b, "# Paper Trading Report: %s\n\n", latest.Date.Format("2006-01-02"))

	fmt.Fprintf(&b, "## Performance\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n| :--- | :--- |\n")
	fmt.Fprintf(&b, "| **Total Equity** | **$%.2f** |\n", current)
	fmt.Fprintf(&b, "| **ROI (Total)** | `%+.2f%%` |\n", roi)
	fmt.Fprintf(&b, "| **Alpha (vs B&H)** | `%+.2f%%` |\n", roi-bnhROI)
	fmt.Fprintf(&b, "| **Win Rate** | `%.1f%%` (%d closed) |\n\n", stats.WinRate, stats.ClosedTrades)

	fmt.Fprintf(&b, "## Portfolio Composition\n\n")
	fmt.Fprintf(&b, "| Asset | Value | Allocation | Details |\n| :--- | :--- | :--- | :--- |\n")
	fmt.Fprintf(&b, "| Cash | $%.2f | **%.1f%%** | - |\n", latest.Cash, cashPct)
	fmt.Fprintf(&b, "| Bitcoin | $%.2f | **%.1f%%** | `%.6f BTC` |\n", latest.AssetValue, btcPct, latest.AssetQuantity)
	fmt.Fprintf(&b, "| Debt | $%.2f | %.1f%% | Interest: `$%.2f` |\n\n", latest.Debt, debtPct, latest.InterestAccrued)

	fmt.Fprintf(&b, "## Signals\n\n")
	fmt.Fprintf(&b, "| Horizon | Score | Reading |\n| :--- | :--- | :--- |\n")
	fmt.Fprintf(&b, "| Long-Term | %.2f | %s |\n", scores.LongTerm.Value, scores.LongTerm.Description)
	fmt.Fprintf(&b, "| Medium-Term | %.2f | %s |\n", scores.MediumTerm.Value, scores.MediumTerm.Description)

	return b.String()
}

// Archive writes the report to <dir>/report_<date>.md and refreshes
// <dir>/latest_report.md.
func Archive(dir, dateStr, content string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	dated := filepath.Join(dir, fmt.Sprintf("report_%s.md", dateStr))
	if err := os.WriteFile(dated, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	latest := filepath.Join(dir, "latest_report.md")
	if err := os.WriteFile(latest, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write latest report: %w", err)
	}

	return nil
}
