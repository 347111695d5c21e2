package calculator

import (
	"github.com/shopspring/decimal"

	"PortfolioTracker/internal/model"
)

// CalculatePositionValue returns quantity * price without float rounding drift.
func CalculatePositionValue(quantity, price float64) decimal.Decimal {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(price))
}

// CalculatePositionValues values every holding in order and sums the total.
func CalculatePositionValues(holdings []model.Holding) ([]model.PositionValue, decimal.Decimal) {
	values := make([]model.PositionValue, len(holdings))
	total := decimal.Zero
	for i, h := range holdings {
		v := CalculatePositionValue(h.Quantity, h.Price)
		values[i] = model.PositionValue{
			Ticker:   h.Ticker,
			Quantity: h.Quantity,
			Price:    h.Price,
			Value:    v,
		}
		total = total.Add(v)
	}
	return values, total
}

// FormatMoney renders an amount with two decimals, rounding half away from zero
// (half-up for the non-negative values a portfolio holds).
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
