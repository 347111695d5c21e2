package main

import (
	"fmt"
	"time"

	"PortfolioTracker/internal/analysis"
	"PortfolioTracker/internal/collector"
	"PortfolioTracker/internal/config"
	"PortfolioTracker/internal/portfolio"
	"PortfolioTracker/internal/recorder"
	"PortfolioTracker/internal/tracker"
	"PortfolioTracker/internal/valuation"
)

// app is the wired session for one command invocation.
type app struct {
	session *tracker.Session
	rec     recorder.Recorder
	journal *recorder.SQLiteRecorder // nil when the journal is disabled
}

func newPriceSource(c *config.Config) collector.PriceSource {
	ps := c.PriceSource
	if ps.Provider == config.ProviderMock {
		return &collector.MockSource{BasePrice: ps.MockBasePrice}
	}
	timeout := time.Duration(ps.TimeoutSeconds) * time.Second
	return collector.NewRouter(
		collector.NewYahooFetcher(ps.YahooBaseURL, ps.Proxy, timeout),
		collector.NewCoinbaseFetcher(ps.CoinbaseURL, ps.Proxy, timeout),
		ps.CryptoSuffixes,
	)
}

func newApp(c *config.Config) (*app, error) {
	source := newPriceSource(c)
	log.Info().Str("source", source.Name()).Msg("price source ready")

	a := &app{rec: recorder.NewNoopRecorder()}
	if c.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(c.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			a.rec, a.journal = sr, sr
		}
	}

	runner := analysis.NewRunner(source, analysis.Options{
		WindowDays:    c.Analysis.HistoryWindowDays,
		MaxConcurrent: c.Analysis.MaxConcurrentFetches,
		Classifier: valuation.Classifier{
			Strict:     c.Analysis.StrictValuation,
			Benchmarks: c.Valuation.IndustryBenchmarks,
		},
	}, log)

	a.session = tracker.NewSession(portfolio.New(), source, runner, a.rec, log)
	if err := a.session.LoadFile(c.Portfolio.File); err != nil {
		a.Close()
		return nil, fmt.Errorf("load portfolio %s: %w", c.Portfolio.File, err)
	}
	return a, nil
}

// save writes the holdings back to the configured portfolio file.
func (a *app) save() error {
	if err := a.session.SaveFile(cfg.Portfolio.File); err != nil {
		return fmt.Errorf("save portfolio %s: %w", cfg.Portfolio.File, err)
	}
	return nil
}

func (a *app) Close() {
	if err := a.rec.Close(); err != nil {
		log.Error().Err(err).Msg("close recorder")
	}
}
