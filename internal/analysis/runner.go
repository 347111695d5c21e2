// Package analysis runs the full analytics pass over a portfolio.
package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"PortfolioTracker/internal/calculator"
	"PortfolioTracker/internal/collector"
	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/valuation"
)

const (
	DefaultWindowDays    = 30
	DefaultMaxConcurrent = 4
)

// Options tunes a Runner.
type Options struct {
	WindowDays    int
	MaxConcurrent int
	Classifier    valuation.Classifier
}

// Runner orchestrates data fetching and analytics computation.
type Runner struct {
	source collector.PriceSource
	opts   Options
	log    zerolog.Logger
	now    func() time.Time
}

// NewRunner creates a new Runner. Non-positive options fall back to defaults.
func NewRunner(source collector.PriceSource, opts Options, log zerolog.Logger) *Runner {
	if opts.WindowDays <= 0 {
		opts.WindowDays = DefaultWindowDays
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	return &Runner{
		source: source,
		opts:   opts,
		log:    log.With().Str("component", "analysis").Logger(),
		now:    time.Now,
	}
}

// tickerData is everything fetched for one unique ticker.
type tickerData struct {
	ticker     string
	closes     []float64
	historyErr error
	metrics    collector.Fundamentals
	metricsErr error
}

// Run fetches history and valuation metrics for every unique ticker and computes a snapshot.
// A failing ticker degrades its own contribution only; Run itself never fails.
func (r *Runner) Run(ctx context.Context, holdings []model.Holding) *model.AnalysisSnapshot {
	start := r.now()
	snap := &model.AnalysisSnapshot{
		RunID:       uuid.New(),
		GeneratedAt: start,
		Valuations:  []model.ValuationMetrics{},
	}
	snap.PositionValues, snap.TotalValue = calculator.CalculatePositionValues(holdings)

	data := r.fetchAll(ctx, uniqueTickers(holdings))
	byTicker := make(map[string]*tickerData, len(data))
	for i := range data {
		d := &data[i]
		byTicker[d.ticker] = d
		if d.historyErr != nil {
			r.log.Warn().Err(d.historyErr).Str("ticker", d.ticker).Str("stage", string(model.StageHistory)).
				Msg("history unavailable, excluded from volatility")
			snap.Skipped = append(snap.Skipped, model.SkippedTicker{
				Ticker: d.ticker, Stage: model.StageHistory, Reason: d.historyErr.Error(),
			})
		}
		if d.metricsErr != nil {
			r.log.Warn().Err(d.metricsErr).Str("ticker", d.ticker).Str("stage", string(model.StageValuation)).
				Msg("valuation metrics unavailable, row skipped")
			snap.Skipped = append(snap.Skipped, model.SkippedTicker{
				Ticker: d.ticker, Stage: model.StageValuation, Reason: d.metricsErr.Error(),
			})
		}
	}

	// Each lot contributes its own series, so duplicates count once per occurrence.
	series := make([][]float64, 0, len(holdings))
	for _, h := range holdings {
		d := byTicker[h.Ticker]
		if d.historyErr == nil {
			series = append(series, d.closes)
		}
		if d.metricsErr == nil {
			snap.Valuations = append(snap.Valuations, r.opts.Classifier.Evaluate(h.Ticker, d.metrics))
		}
	}
	snap.Volatility, snap.Observations = calculator.CalculatePooledVolatility(series)

	r.log.Info().
		Str("run_id", snap.RunID.String()).
		Int("holdings", len(holdings)).
		Int("observations", snap.Observations).
		Int("skipped", len(snap.Skipped)).
		Dur("elapsed", r.now().Sub(start)).
		Msg("analysis complete")
	return snap
}

// fetchAll fans out history and metrics fetches, bounded by MaxConcurrent.
// Branch errors are stored in the ticker's slot so one failure never cancels its siblings.
func (r *Runner) fetchAll(ctx context.Context, tickers []string) []tickerData {
	data := make([]tickerData, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.MaxConcurrent)
	for i, t := range tickers {
		data[i].ticker = t
		g.Go(func() error {
			data[i].closes, data[i].historyErr = r.source.FetchHistoricalCloses(gctx, t, r.opts.WindowDays)
			return nil
		})
		g.Go(func() error {
			data[i].metrics, data[i].metricsErr = r.source.FetchValuationMetrics(gctx, t)
			return nil
		})
	}
	_ = g.Wait()
	return data
}

func uniqueTickers(holdings []model.Holding) []string {
	seen := make(map[string]bool, len(holdings))
	tickers := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if !seen[h.Ticker] {
			seen[h.Ticker] = true
			tickers = append(tickers, h.Ticker)
		}
	}
	return tickers
}
