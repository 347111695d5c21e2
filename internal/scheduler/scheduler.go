package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"PortfolioTracker/internal/model"
)

// Analyzer runs one analysis pass.
type Analyzer interface {
	Analyze(ctx context.Context) *model.AnalysisSnapshot
}

// Scheduler re-runs the portfolio analysis on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer Analyzer
	// OnSnapshot, when set, receives every completed snapshot.
	OnSnapshot func(*model.AnalysisSnapshot)
	Ctx        context.Context

	log zerolog.Logger
	mu  sync.Mutex // one pass at a time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, analyzer Analyzer, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: analyzer,
		Ctx:      ctx,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Register schedules the analysis task.
func (s *Scheduler) Register(analysisCron string) error {
	if _, err := s.Cron.AddFunc(analysisCron, s.analysisTask); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes the analysis task immediately. It returns nil once the context is done.
func (s *Scheduler) RunNow() *model.AnalysisSnapshot {
	if s.Ctx.Err() != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Info().Msg("running analysis")
	snap := s.Analyzer.Analyze(s.Ctx)
	if s.OnSnapshot != nil {
		s.OnSnapshot(snap)
	}
	return snap
}

func (s *Scheduler) analysisTask() { s.RunNow() }
