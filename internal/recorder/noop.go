package recorder

import "PortfolioTracker/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *model.AnalysisSnapshot) error { return nil }
func (n *NoopRecorder) Close() error                              { return nil }
