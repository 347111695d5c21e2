package collector

import (
	"context"
	"fmt"
	"sync"

	"PortfolioTracker/internal/model"
)

// MockSource returns controllable fixed data for development and testing.
// Tickers without configured data get a deterministic generated series around BasePrice.
type MockSource struct {
	BasePrice float64
	Prices    map[string]float64
	Closes    map[string][]float64
	Metrics   map[string]Fundamentals
	// Fail lists tickers for which every call returns ErrFetch.
	Fail map[string]bool

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockSource) Name() string { return "mock" }

// Calls returns how many provider calls were made for a ticker.
func (m *MockSource) Calls(ticker string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[ticker]
}

// TotalCalls returns the number of provider calls made for all tickers.
func (m *MockSource) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *MockSource) record(ticker string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[ticker]++
	if m.Fail[ticker] {
		return fmt.Errorf("%w: mock failure for %s", ErrFetch, ticker)
	}
	return nil
}

func (m *MockSource) FetchCurrentPrice(_ context.Context, ticker string) (float64, error) {
	if err := m.record(ticker); err != nil {
		return 0, err
	}
	if p, ok := m.Prices[ticker]; ok {
		return p, nil
	}
	return m.BasePrice, nil
}

func (m *MockSource) FetchHistoricalCloses(_ context.Context, ticker string, windowDays int) ([]float64, error) {
	if err := m.record(ticker); err != nil {
		return nil, err
	}
	if c, ok := m.Closes[ticker]; ok {
		return c, nil
	}
	return generateMockCloses(m.BasePrice, windowDays), nil
}

func (m *MockSource) FetchValuationMetrics(_ context.Context, ticker string) (Fundamentals, error) {
	if err := m.record(ticker); err != nil {
		return Fundamentals{}, err
	}
	if f, ok := m.Metrics[ticker]; ok {
		return f, nil
	}
	return Fundamentals{
		PERatio: model.Unavailable[float64]("mock has no ratios"),
		PBRatio: model.Unavailable[float64]("mock has no ratios"),
	}, nil
}

func generateMockCloses(basePrice float64, count int) []float64 {
	if count <= 0 || basePrice <= 0 {
		return nil
	}
	closes := make([]float64, count)
	for i := 0; i < count; i++ {
		swing := 0.002
		if i%2 == 1 {
			swing = -swing
		}
		closes[i] = basePrice * (1 + float64(i-count/2)*0.001 + swing)
	}
	return closes
}
