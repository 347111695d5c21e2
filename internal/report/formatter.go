// Package report renders holdings and analysis snapshots for people.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"PortfolioTracker/internal/calculator"
	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/recorder"
)

const timeLayout = "2006-01-02 15:04"

func formatQuantity(q float64) string { return strconv.FormatFloat(q, 'f', -1, 64) }

func formatPrice(p float64) string { return calculator.FormatMoney(decimal.NewFromFloat(p)) }

// formatRatio prints a ratio with two decimals, or N/A.
func formatRatio(r model.Result[float64]) string {
	v, ok := r.Get()
	if !ok {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatVolatility prints volatility with four decimals, or N/A.
func FormatVolatility(r model.Result[float64]) string {
	v, ok := r.Get()
	if !ok {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// FormatHoldings renders the holdings table: ticker, quantity, price, value.
func FormatHoldings(holdings []model.Holding) string {
	if len(holdings) == 0 {
		return "No holdings.\n"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Ticker\tQuantity\tPrice\tValue\t")
	for _, h := range holdings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", h.Ticker, formatQuantity(h.Quantity), formatPrice(h.Price),
			calculator.FormatMoney(calculator.CalculatePositionValue(h.Quantity, h.Price)))
	}
	w.Flush()
	return b.String()
}

// FormatText renders a snapshot as aligned plain text.
func FormatText(snap *model.AnalysisSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Portfolio analysis | %s\n\n", snap.GeneratedAt.Format(timeLayout))

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Ticker\tQuantity\tPrice\tValue\t")
	for _, p := range snap.PositionValues {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", p.Ticker, formatQuantity(p.Quantity), formatPrice(p.Price),
			calculator.FormatMoney(p.Value))
	}
	w.Flush()

	fmt.Fprintf(&b, "\nTotal value: %s\n", calculator.FormatMoney(snap.TotalValue))
	fmt.Fprintf(&b, "Volatility: %s (%d observations)\n\n", FormatVolatility(snap.Volatility), snap.Observations)

	if len(snap.Valuations) > 0 {
		w = tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Ticker\tP/E\tP/B\tInd. P/E\tInd. P/B\tStatus")
		for _, v := range snap.Valuations {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", v.Ticker, formatRatio(v.PERatio), formatRatio(v.PBRatio),
				formatRatio(v.IndustryAvgPE), formatRatio(v.IndustryAvgPB), v.Status)
		}
		w.Flush()
	}

	if len(snap.Skipped) > 0 {
		b.WriteString("\nSkipped:\n")
		for _, s := range snap.Skipped {
			fmt.Fprintf(&b, "  %s (%s): %s\n", s.Ticker, s.Stage, s.Reason)
		}
	}
	return b.String()
}

// FormatMarkdown renders a snapshot as Markdown tables.
func FormatMarkdown(snap *model.AnalysisSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio analysis\n\n_%s · run %s_\n\n", snap.GeneratedAt.Format(timeLayout), snap.RunID)

	b.WriteString("## Positions\n\n")
	b.WriteString("| Ticker | Quantity | Price | Value |\n|---|---:|---:|---:|\n")
	for _, p := range snap.PositionValues {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", p.Ticker, formatQuantity(p.Quantity), formatPrice(p.Price),
			calculator.FormatMoney(p.Value))
	}
	fmt.Fprintf(&b, "\n**Total value:** %s\n\n", calculator.FormatMoney(snap.TotalValue))
	fmt.Fprintf(&b, "**Volatility:** %s (%d observations)\n\n", FormatVolatility(snap.Volatility), snap.Observations)

	b.WriteString("## Valuation\n\n")
	if len(snap.Valuations) == 0 {
		b.WriteString("No valuation data.\n")
	} else {
		b.WriteString("| Ticker | P/E | P/B | Industry P/E | Industry P/B | Status |\n|---|---:|---:|---:|---:|---|\n")
		for _, v := range snap.Valuations {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n", v.Ticker, formatRatio(v.PERatio),
				formatRatio(v.PBRatio), formatRatio(v.IndustryAvgPE), formatRatio(v.IndustryAvgPB), v.Status)
		}
	}

	if len(snap.Skipped) > 0 {
		b.WriteString("\n## Skipped\n\n")
		for _, s := range snap.Skipped {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", s.Ticker, s.Stage, s.Reason)
		}
	}
	return b.String()
}

// FormatRuns renders journaled runs, newest first.
func FormatRuns(runs []recorder.RunSummary) string {
	if len(runs) == 0 {
		return "No recorded runs.\n"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Time\tHoldings\tTotal\tVolatility\tOver\tUnder\tUnknown\tSkipped")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%d\t%d\t%d\n", r.GeneratedAt.Format(timeLayout), r.Holdings,
			r.TotalValue, FormatVolatility(r.Volatility), r.Overvalued, r.Undervalued, r.Unknown, r.Skipped)
	}
	w.Flush()
	return b.String()
}

// RenderTerminal renders Markdown for an ANSI terminal.
func RenderTerminal(markdown string) (string, error) {
	out, err := glamour.Render(markdown, "dark")
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
