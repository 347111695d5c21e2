package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValuationStatus classifies a holding against its industry benchmark.
type ValuationStatus string

const (
	Overvalued  ValuationStatus = "Overvalued"
	Undervalued ValuationStatus = "Undervalued"
	Unknown     ValuationStatus = "Unknown"
)

// ValuationMetrics is one valuation row of an analysis run.
type ValuationMetrics struct {
	Ticker        string          `json:"ticker"`
	PERatio       Result[float64] `json:"pe_ratio"`
	PBRatio       Result[float64] `json:"pb_ratio"`
	IndustryAvgPE Result[float64] `json:"industry_avg_pe"`
	IndustryAvgPB Result[float64] `json:"industry_avg_pb"`
	Status        ValuationStatus `json:"status"`
}

// PositionValue is quantity times last known price for one holding.
type PositionValue struct {
	Ticker   string          `json:"ticker"`
	Quantity float64         `json:"quantity"`
	Price    float64         `json:"price"`
	Value    decimal.Decimal `json:"value"`
}

// Stage names the analysis step a ticker was dropped from.
type Stage string

const (
	StageHistory   Stage = "history"
	StageValuation Stage = "valuation"
)

// SkippedTicker records a degraded per-ticker contribution.
type SkippedTicker struct {
	Ticker string `json:"ticker"`
	Stage  Stage  `json:"stage"`
	Reason string `json:"reason"`
}

// AnalysisSnapshot is the complete output of one analysis pass.
type AnalysisSnapshot struct {
	RunID          uuid.UUID          `json:"run_id"`
	GeneratedAt    time.Time          `json:"generated_at"`
	PositionValues []PositionValue    `json:"position_values"`
	TotalValue     decimal.Decimal    `json:"total_value"`
	Volatility     Result[float64]    `json:"volatility"`
	Observations   int                `json:"observations"`
	Valuations     []ValuationMetrics `json:"valuations"`
	Skipped        []SkippedTicker    `json:"skipped,omitempty"`
}

// CountStatus returns how many valuation rows carry the given status.
func (s *AnalysisSnapshot) CountStatus(status ValuationStatus) int {
	n := 0
	for _, v := range s.Valuations {
		if v.Status == status {
			n++
		}
	}
	return n
}
