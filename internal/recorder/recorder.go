package recorder

import (
	"time"

	"PortfolioTracker/internal/model"
)

// RunSummary is one recorded analysis run.
type RunSummary struct {
	RunID        string
	GeneratedAt  time.Time
	Holdings     int
	TotalValue   string
	Volatility   model.Result[float64]
	Observations int
	Overvalued   int
	Undervalued  int
	Unknown      int
	Skipped      int
}

// Recorder persists analysis runs for later review.
type Recorder interface {
	RecordRun(snap *model.AnalysisSnapshot) error
	Close() error
}
