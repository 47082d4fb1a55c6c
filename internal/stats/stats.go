package stats

import (
	"fmt"
	"time"

	"MarketPulse/internal/calculator"
	"MarketPulse/internal/model"
)

const (
	rsiPeriod = 14
)

// Calculator reduces a price slice into MarketStats.
type Calculator struct {
	ratios RatioSource
}

// NewCalculator builds a Calculator. A nil source falls back to CompanyRatios.
func NewCalculator(ratios RatioSource) *Calculator {
	if ratios == nil {
		ratios = CompanyRatios{}
	}
	return &Calculator{ratios: ratios}
}

// Summarize computes current and previous close, the trailing-year range and
// average volume, moving averages, RSI and valuation ratios. points must be in
// ascending date order. The trailing year is measured from now regardless of
// how points were selected.
func (c *Calculator) Summarize(company model.Company, points []model.PricePoint, now time.Time) (*model.MarketStats, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("stats %s: no price data: %w", company.Symbol, model.ErrUnavailable)
	}

	current := points[len(points)-1].Close
	previous := current
	if len(points) > 1 {
		previous = points[len(points)-2].Close
	}
	change := current - previous
	changePct := 0.0
	if previous != 0 {
		changePct = change / previous * 100
	}

	window := calculator.TrailingYear(points, now)
	high, low, err := calculator.CalculateRange(window)
	if err != nil {
		return nil, fmt.Errorf("stats %s: %w", company.Symbol, err)
	}
	position, err := calculator.CalculateRangePosition(current, high, low)
	if err != nil {
		return nil, fmt.Errorf("stats %s: %w", company.Symbol, err)
	}
	avgVolume, err := calculator.CalculateAverageVolume(window)
	if err != nil {
		return nil, fmt.Errorf("stats %s: %w", company.Symbol, err)
	}
	rsi, err := calculator.CalculateRSI(calculator.Closes(window), rsiPeriod)
	if err != nil {
		return nil, fmt.Errorf("stats %s: %w", company.Symbol, err)
	}

	r := c.ratios.Ratios(company, current)
	st := &model.MarketStats{
		Symbol:           company.Symbol,
		CurrentPrice:     current,
		PreviousClose:    previous,
		Change:           round2(change),
		ChangePercent:    round2(changePct),
		High52w:          high,
		Low52w:           low,
		Position52w:      position,
		AvgVolume:        avgVolume,
		MarketCap:        r.MarketCap,
		MarketCapDisplay: FormatMarketCap(r.MarketCap),
		PERatio:          r.PERatio,
		DividendYield:    r.DividendYield,
		Beta:             r.Beta,
		EPS:              r.EPS,
		RSI14:            round2(rsi),
	}
	if v, err := calculator.CalculateSMA50(window); err == nil {
		v = round2(v)
		st.SMA50 = &v
	}
	if v, err := calculator.CalculateSMA200(window); err == nil {
		v = round2(v)
		st.SMA200 = &v
	}
	return st, nil
}
