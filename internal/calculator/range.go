package calculator

import (
	"errors"
	"math"
	"time"

	"MarketPulse/internal/model"
)

// TrailingYear returns the points dated within 365 days before now. When none
// qualify, the last point alone stands in for the window.
func TrailingYear(points []model.PricePoint, now time.Time) []model.PricePoint {
	if len(points) == 0 {
		return nil
	}
	cutoff := now.AddDate(0, 0, -365)
	start := len(points)
	for start > 0 && !points[start-1].Date.Before(cutoff) {
		start--
	}
	if start == len(points) {
		return points[len(points)-1:]
	}
	return points[start:]
}

// CalculateRange returns the highest high and lowest low of the points.
func CalculateRange(points []model.PricePoint) (high, low float64, err error) {
	if len(points) == 0 {
		return 0, 0, errors.New("no price points provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range points {
		if p.High > high {
			high = p.High
		}
		if p.Low < low {
			low = p.Low
		}
	}
	return high, low, nil
}

// CalculateAverageVolume returns the mean volume rounded to the nearest share.
func CalculateAverageVolume(points []model.PricePoint) (int64, error) {
	if len(points) == 0 {
		return 0, errors.New("no price points provided")
	}
	var sum float64
	for _, p := range points {
		sum += float64(p.Volume)
	}
	return int64(math.Round(sum / float64(len(points)))), nil
}

// CalculateRangePosition returns where the current price sits within the range (0.0~1.0).
func CalculateRangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
