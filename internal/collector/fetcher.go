package collector

import (
	"context"
	"errors"
	"fmt"
	"math"

	"PortfolioTracker/internal/model"
)

// ErrFetch marks any failure to obtain price data: network, status, malformed or empty body.
var ErrFetch = errors.New("price fetch failed")

// Fundamentals holds the valuation ratios a provider reports for a ticker.
type Fundamentals struct {
	PERatio model.Result[float64]
	PBRatio model.Result[float64]
}

// SpotFetcher fetches a current price.
type SpotFetcher interface {
	FetchCurrentPrice(ctx context.Context, ticker string) (float64, error)
	Name() string
}

// PriceSource is everything the analytics core consumes from market data providers.
type PriceSource interface {
	SpotFetcher
	// FetchHistoricalCloses returns time-ordered daily closes for the trailing windowDays.
	FetchHistoricalCloses(ctx context.Context, ticker string, windowDays int) ([]float64, error)
	FetchValuationMetrics(ctx context.Context, ticker string) (Fundamentals, error)
}

// ValidPrice reports whether p can be held as a spot price: finite and not negative.
func ValidPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0
}

func checkPrice(source, ticker string, p float64) (float64, error) {
	if !ValidPrice(p) {
		return 0, fmt.Errorf("%w: %s spot %s: invalid price %v", ErrFetch, source, ticker, p)
	}
	return p, nil
}
