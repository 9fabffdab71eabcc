package backtest

import (
	"fmt"
	"io"
	"time"
)

// PrintResult writes a human-readable summary of a run.
func PrintResult(w io.Writer, r Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:          %s\n", r.Start.Format("2006-01-02"))
	fmt.Fprintf(w, "End:            %s\n", r.End.Format("2006-01-02"))
	fmt.Fprintf(w, "Trading Days:   %d\n", r.TradingDays)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Initial:        %s\n", r.InitialCapital.StringFixed(2))
	fmt.Fprintf(w, "Final:          %s\n", r.FinalCapital.StringFixed(2))
	fmt.Fprintf(w, "Net P/L:        %s\n", r.TotalReturn.StringFixed(2))
	fmt.Fprintf(w, "Return:         %.2f%%\n", r.TotalReturnPct)
	fmt.Fprintf(w, "Max Drawdown:   %.2f%%\n", r.MaxDrawdownPct)
	fmt.Fprintf(w, "Sharpe Ratio:   %.2f\n", r.SharpeRatio)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:         %d\n", r.TotalTrades)
	fmt.Fprintf(w, "Wins:           %d\n", r.WinningTrades)
	fmt.Fprintf(w, "Losses:         %d\n", r.LosingTrades)
	fmt.Fprintf(w, "Win Rate:       %.1f%%\n", r.WinRate)
	fmt.Fprintf(w, "Avg Win:        %s\n", r.AvgWin.StringFixed(2))
	fmt.Fprintf(w, "Avg Loss:       %s\n", r.AvgLoss.StringFixed(2))

	if r.SkippedEvaluations > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Skipped symbol evaluations (data gaps): %d\n", r.SkippedEvaluations)
	}

	fmt.Fprintln(w)
}

// FormatDateRange renders the run window compactly for logs.
func FormatDateRange(start, end time.Time) string {
	return fmt.Sprintf("%s..%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}
