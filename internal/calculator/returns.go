package calculator

// CalculateDailyReturns returns simple returns r[i] = (c[i]-c[i-1]) / c[i-1] for i = 1..n-1.
// A step whose previous close is zero yields no observation.
func CalculateDailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			continue
		}
		returns = append(returns, (closes[i]-prev)/prev)
	}
	return returns
}

// PoolReturns concatenates the daily returns of every series into one unweighted sample.
// Series with fewer than two closes contribute nothing.
func PoolReturns(series [][]float64) []float64 {
	var pooled []float64
	for _, closes := range series {
		pooled = append(pooled, CalculateDailyReturns(closes)...)
	}
	return pooled
}
