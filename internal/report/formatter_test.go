package report

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioTracker/internal/calculator"
	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/recorder"
)

func sampleSnapshot() *model.AnalysisSnapshot {
	holdings := []model.Holding{
		{Ticker: "AAPL", Quantity: 3, Price: 10.005},
		{Ticker: "BTC-USD", Quantity: 0.5, Price: 60000},
	}
	values, total := calculator.CalculatePositionValues(holdings)
	return &model.AnalysisSnapshot{
		RunID:          uuid.MustParse("7f1c2a7e-3b7d-4e61-9a55-0d6c1b9f2e10"),
		GeneratedAt:    time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		PositionValues: values,
		TotalValue:     total,
		Volatility:     model.Ok(0.06),
		Observations:   2,
		Valuations: []model.ValuationMetrics{
			{
				Ticker:        "AAPL",
				PERatio:       model.Ok(20.0),
				PBRatio:       model.Unavailable[float64]("missing priceToBook"),
				IndustryAvgPE: model.Ok(15.0),
				IndustryAvgPB: model.Unavailable[float64]("no industry benchmark"),
				Status:        model.Overvalued,
			},
		},
		Skipped: []model.SkippedTicker{{Ticker: "BTC-USD", Stage: model.StageValuation, Reason: "timeout"}},
	}
}

func TestFormatVolatility(t *testing.T) {
	assert.Equal(t, "0.0600", FormatVolatility(model.Ok(0.06)))
	assert.Equal(t, "N/A", FormatVolatility(model.Unavailable[float64]("no return observations")))
}

func TestFormatText(t *testing.T) {
	out := FormatText(sampleSnapshot())

	assert.Contains(t, out, "2024-03-01 09:30")
	assert.Contains(t, out, "30.02")
	assert.Contains(t, out, "30000.00")
	assert.Contains(t, out, "Total value: 30030.02")
	assert.Contains(t, out, "Volatility: 0.0600 (2 observations)")
	assert.Contains(t, out, "20.00")
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "Overvalued")
	assert.Contains(t, out, "BTC-USD (valuation): timeout")
}

func TestFormatMarkdown(t *testing.T) {
	out := FormatMarkdown(sampleSnapshot())

	assert.True(t, strings.HasPrefix(out, "# Portfolio analysis"))
	assert.Contains(t, out, "| AAPL | 3 | 10.01 | 30.02 |")
	assert.Contains(t, out, "| AAPL | 20.00 | N/A | 15.00 | N/A | Overvalued |")
	assert.Contains(t, out, "7f1c2a7e-3b7d-4e61-9a55-0d6c1b9f2e10")
	assert.Contains(t, out, "## Skipped")
}

func TestFormatMarkdown_Empty(t *testing.T) {
	snap := &model.AnalysisSnapshot{
		TotalValue: decimal.Zero,
		Volatility: model.Unavailable[float64]("no return observations"),
	}
	out := FormatMarkdown(snap)
	assert.Contains(t, out, "**Total value:** 0.00")
	assert.Contains(t, out, "**Volatility:** N/A (0 observations)")
	assert.Contains(t, out, "No valuation data.")
	assert.NotContains(t, out, "## Skipped")
}

func TestFormatHoldings(t *testing.T) {
	assert.Equal(t, "No holdings.\n", FormatHoldings(nil))

	out := FormatHoldings([]model.Holding{{Ticker: "MSFT", Quantity: 1.5, Price: 400}})
	assert.Contains(t, out, "MSFT")
	assert.Contains(t, out, "1.5")
	assert.Contains(t, out, "400.00")
	assert.Contains(t, out, "600.00")
}

func TestFormatRuns(t *testing.T) {
	assert.Equal(t, "No recorded runs.\n", FormatRuns(nil))

	out := FormatRuns([]recorder.RunSummary{{
		RunID:       "r1",
		GeneratedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local),
		Holdings:    2,
		TotalValue:  "250.01",
		Volatility:  model.Unavailable[float64]("not recorded"),
	}})
	assert.Contains(t, out, "250.01")
	assert.Contains(t, out, "N/A")
}

func TestRenderTerminal(t *testing.T) {
	out, err := RenderTerminal(FormatMarkdown(sampleSnapshot()))
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL")
}
