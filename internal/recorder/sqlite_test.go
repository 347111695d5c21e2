package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioTracker/internal/model"
)

func sampleSnapshot(at time.Time) *model.AnalysisSnapshot {
	return &model.AnalysisSnapshot{
		RunID:       uuid.New(),
		GeneratedAt: at,
		PositionValues: []model.PositionValue{
			{Ticker: "AAPL", Quantity: 2, Price: 100, Value: decimal.NewFromInt(200)},
			{Ticker: "BTC-USD", Quantity: 1, Price: 50.005, Value: decimal.NewFromFloat(50.005)},
		},
		TotalValue:   decimal.NewFromFloat(250.005),
		Volatility:   model.Ok(0.06),
		Observations: 2,
		Valuations: []model.ValuationMetrics{
			{
				Ticker:        "AAPL",
				PERatio:       model.Ok(20.0),
				PBRatio:       model.Ok(3.0),
				IndustryAvgPE: model.Ok(15.0),
				IndustryAvgPB: model.Unavailable[float64]("no industry P/B"),
				Status:        model.Overvalued,
			},
		},
		Skipped: []model.SkippedTicker{{Ticker: "BTC-USD", Stage: model.StageHistory, Reason: "boom"}},
	}
}

func TestSQLiteRecorder_RecordRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "runs.db")
	rec, err := NewSQLiteRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	defer rec.Close()

	first := sampleSnapshot(time.Unix(1_700_000_000, 0))
	second := sampleSnapshot(time.Unix(1_700_000_600, 0))
	second.Volatility = model.Unavailable[float64]("no return observations")
	second.Observations = 0

	require.NoError(t, rec.RecordRun(first))
	require.NoError(t, rec.RecordRun(second))

	runs, err := rec.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, second.RunID.String(), runs[0].RunID)
	_, ok := runs[0].Volatility.Get()
	assert.False(t, ok)

	got := runs[1]
	assert.Equal(t, first.RunID.String(), got.RunID)
	assert.Equal(t, 2, got.Holdings)
	assert.Equal(t, "250.01", got.TotalValue)
	assert.InDelta(t, 0.06, got.Volatility.OrElse(-1), 1e-12)
	assert.Equal(t, 1, got.Overvalued)
	assert.Equal(t, 0, got.Undervalued)
	assert.Equal(t, 1, got.Skipped)

	var rows int
	require.NoError(t, rec.db.QueryRow(`SELECT COUNT(*) FROM valuation_rows WHERE industry_avg_pb IS NULL`).Scan(&rows))
	assert.Equal(t, 2, rows)
}

func TestSQLiteRecorder_DuplicateRunRejected(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
	require.NoError(t, err)
	defer rec.Close()

	snap := sampleSnapshot(time.Now())
	require.NoError(t, rec.RecordRun(snap))
	require.Error(t, rec.RecordRun(snap))

	var rows int
	require.NoError(t, rec.db.QueryRow(`SELECT COUNT(*) FROM valuation_rows`).Scan(&rows))
	assert.Equal(t, 1, rows, "failed run must not leave partial rows")
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	assert.NoError(t, rec.RecordRun(sampleSnapshot(time.Now())))
	assert.NoError(t, rec.Close())
}
