// Package valuation classifies holdings as over- or undervalued against industry benchmarks.
package valuation

import (
	"PortfolioTracker/internal/collector"
	"PortfolioTracker/internal/model"
)

// Benchmark holds industry-average ratios for a ticker.
type Benchmark struct {
	PE float64 `yaml:"pe"`
	PB float64 `yaml:"pb"`
}

// Classifier applies the P/E comparison rule.
//
// In the default mode a holding is Overvalued only when both its P/E and the industry
// average P/E are known and non-zero and P/E exceeds the average; every other case is
// Undervalued, including missing data. Strict mode reports Unknown instead when either
// side of the comparison is missing.
type Classifier struct {
	Strict     bool
	Benchmarks map[string]Benchmark
}

// Classify returns the valuation status for a P/E against an industry average.
func (c Classifier) Classify(pe, avgPE model.Result[float64]) model.ValuationStatus {
	p, okP := pe.Get()
	a, okA := avgPE.Get()
	if !okP || !okA || p == 0 || a == 0 {
		if c.Strict {
			return model.Unknown
		}
		return model.Undervalued
	}
	if p > a {
		return model.Overvalued
	}
	return model.Undervalued
}

// benchmark returns the configured industry averages for a ticker.
func (c Classifier) benchmark(ticker string) (pe, pb model.Result[float64]) {
	b, ok := c.Benchmarks[ticker]
	if !ok {
		na := model.Unavailable[float64]("no industry benchmark")
		return na, na
	}
	pe, pb = model.Ok(b.PE), model.Ok(b.PB)
	if b.PE == 0 {
		pe = model.Unavailable[float64]("no industry P/E")
	}
	if b.PB == 0 {
		pb = model.Unavailable[float64]("no industry P/B")
	}
	return pe, pb
}

// Evaluate builds the valuation row for one holding from fetched fundamentals.
func (c Classifier) Evaluate(ticker string, f collector.Fundamentals) model.ValuationMetrics {
	avgPE, avgPB := c.benchmark(ticker)
	return model.ValuationMetrics{
		Ticker:        ticker,
		PERatio:       f.PERatio,
		PBRatio:       f.PBRatio,
		IndustryAvgPE: avgPE,
		IndustryAvgPB: avgPB,
		Status:        c.Classify(f.PERatio, avgPE),
	}
}
