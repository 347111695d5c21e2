// Package tracker owns a portfolio session: adding holdings, import and export, and analysis.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"PortfolioTracker/internal/analysis"
	"PortfolioTracker/internal/collector"
	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/portfolio"
	"PortfolioTracker/internal/recorder"
)

var (
	// ErrValidation marks user input that was rejected before any side effect.
	ErrValidation = errors.New("invalid holding")
	// ErrFetch marks a price that could not be fetched for a new holding.
	ErrFetch = errors.New("price unavailable")
)

// ParseQuantity parses a user-entered quantity.
func ParseQuantity(s string) (float64, error) {
	q, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: quantity %q is not a number", ErrValidation, s)
	}
	if err := validateQuantity(q); err != nil {
		return 0, err
	}
	return q, nil
}

func validateQuantity(q float64) error {
	if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		return fmt.Errorf("%w: quantity must be a positive number, got %v", ErrValidation, q)
	}
	return nil
}

// Session is one tracker session over a single portfolio.
type Session struct {
	portfolio *portfolio.Portfolio
	source    collector.PriceSource
	runner    *analysis.Runner
	recorder  recorder.Recorder
	log       zerolog.Logger

	mu   sync.RWMutex
	last *model.AnalysisSnapshot
}

// NewSession creates a Session. A nil recorder disables the run journal.
func NewSession(p *portfolio.Portfolio, source collector.PriceSource, runner *analysis.Runner,
	rec recorder.Recorder, log zerolog.Logger) *Session {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Session{
		portfolio: p,
		source:    source,
		runner:    runner,
		recorder:  rec,
		log:       log.With().Str("component", "tracker").Logger(),
	}
}

// Holdings returns a copy of the current holdings in insertion order.
func (s *Session) Holdings() []model.Holding { return s.portfolio.Holdings() }

// AddHolding validates the input, fetches the current price, appends the lot and re-runs
// the analysis. Nothing is mutated when validation or the price fetch fails.
func (s *Session) AddHolding(ctx context.Context, ticker string, quantity float64) (*model.AnalysisSnapshot, error) {
	t := model.NormalizeTicker(ticker)
	if t == "" {
		return nil, fmt.Errorf("%w: ticker is required", ErrValidation)
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	price, err := s.source.FetchCurrentPrice(ctx, t)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", t).Msg("price fetch failed, holding not added")
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, t, err)
	}
	if !collector.ValidPrice(price) {
		s.log.Warn().Str("ticker", t).Float64("price", price).Msg("invalid price, holding not added")
		return nil, fmt.Errorf("%w: %s: invalid price %v", ErrFetch, t, price)
	}

	s.portfolio.Append(model.Holding{Ticker: t, Quantity: quantity, Price: price})
	s.log.Info().Str("ticker", t).Float64("quantity", quantity).Float64("price", price).Msg("holding added")
	return s.Analyze(ctx), nil
}

// Analyze runs a full analysis pass over the current holdings and journals it.
func (s *Session) Analyze(ctx context.Context) *model.AnalysisSnapshot {
	snap := s.runner.Run(ctx, s.portfolio.Holdings())
	if err := s.recorder.RecordRun(snap); err != nil {
		s.log.Error().Err(err).Str("run_id", snap.RunID.String()).Msg("record analysis run")
	}
	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()
	return snap
}

// Latest returns the most recent snapshot, or nil before the first analysis.
func (s *Session) Latest() *model.AnalysisSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Export writes the holdings as a JSON array.
func (s *Session) Export(w io.Writer) error { return s.portfolio.Export(w) }

// Import replaces the holdings from a JSON array. On error the portfolio is unchanged.
// A successful import drops the latest snapshot, which described the old holdings.
func (s *Session) Import(r io.Reader) error {
	if err := s.portfolio.Import(r); err != nil {
		return err
	}
	s.mu.Lock()
	s.last = nil
	s.mu.Unlock()
	s.log.Info().Int("holdings", s.portfolio.Len()).Msg("portfolio imported")
	return nil
}

// SaveFile exports the holdings to path.
func (s *Session) SaveFile(path string) error { return s.portfolio.SaveFile(path) }

// LoadFile imports the holdings from path. A missing file leaves the portfolio as is.
func (s *Session) LoadFile(path string) error { return s.portfolio.LoadFile(path) }
