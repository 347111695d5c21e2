package calculator

import (
	"errors"

	"gonum.org/v1/gonum/stat"

	"PortfolioTracker/internal/model"
)

// ErrNoObservations is returned when the pooled return sample is empty.
var ErrNoObservations = errors.New("no return observations")

// CalculatePopulationStdDev returns the population standard deviation (divide by N).
func CalculatePopulationStdDev(sample []float64) (float64, error) {
	if len(sample) == 0 {
		return 0, ErrNoObservations
	}
	_, std := stat.PopMeanStdDev(sample, nil)
	return std, nil
}

// CalculatePooledVolatility pools the daily returns of every series and returns their
// population standard deviation together with the number of observations used.
func CalculatePooledVolatility(series [][]float64) (model.Result[float64], int) {
	pooled := PoolReturns(series)
	std, err := CalculatePopulationStdDev(pooled)
	if err != nil {
		return model.Unavailable[float64](err.Error()), 0
	}
	return model.Ok(std), len(pooled)
}
