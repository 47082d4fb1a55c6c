package calculator

import (
	"errors"

	"MarketPulse/internal/model"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateSMA50 returns the 50-bar simple moving average of closes.
func CalculateSMA50(points []model.PricePoint) (float64, error) {
	return CalculateSMA(Closes(points), 50)
}

// CalculateSMA200 returns the 200-bar simple moving average of closes.
func CalculateSMA200(points []model.PricePoint) (float64, error) {
	return CalculateSMA(Closes(points), 200)
}

// Closes returns the close of every point in order.
func Closes(points []model.PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}
