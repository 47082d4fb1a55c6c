package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Company is a listed symbol and its static reference data.
type Company struct {
	Symbol        string   `json:"symbol" yaml:"symbol"`
	Name          string   `json:"name" yaml:"name"`
	Sector        string   `json:"sector" yaml:"sector"`
	BasePrice     float64  `json:"base_price" yaml:"base_price"`
	MarketCap     *float64 `json:"market_cap,omitempty" yaml:"market_cap"`
	PERatio       *float64 `json:"pe_ratio,omitempty" yaml:"pe_ratio"`
	DividendYield *float64 `json:"dividend_yield,omitempty" yaml:"dividend_yield"`
	Beta          *float64 `json:"beta,omitempty" yaml:"beta"`
	EPS           *float64 `json:"eps,omitempty" yaml:"eps"`
}

// PricePoint is one daily OHLCV bar.
type PricePoint struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Validate checks the OHLC invariants of a single bar.
func (p PricePoint) Validate() error {
	switch {
	case p.Open <= 0 || p.High <= 0 || p.Low <= 0 || p.Close <= 0:
		return fmt.Errorf("%s %s: non-positive price", p.Symbol, p.Date.Format(DateLayout))
	case p.High < p.Open || p.High < p.Close:
		return fmt.Errorf("%s %s: high %.2f below open/close", p.Symbol, p.Date.Format(DateLayout), p.High)
	case p.Low > p.Open || p.Low > p.Close:
		return fmt.Errorf("%s %s: low %.2f above open/close", p.Symbol, p.Date.Format(DateLayout), p.Low)
	case p.Volume < 0:
		return fmt.Errorf("%s %s: negative volume", p.Symbol, p.Date.Format(DateLayout))
	}
	return nil
}

// DerivedPoint is a bar plus its change against the previous bar of the same slice.
// Change fields are nil on the first bar of a slice.
type DerivedPoint struct {
	PricePoint
	Change        *float64 `json:"change"`
	ChangePercent *float64 `json:"change_percent"`
}

// CompanySummary is a company with display fields derived from its latest bars.
type CompanySummary struct {
	Company
	MarketCapDisplay string   `json:"market_cap_display,omitempty"`
	CurrentPrice     *float64 `json:"current_price"`
	Change           *float64 `json:"change"`
	ChangePercent    *float64 `json:"change_percent"`
	Volume           *int64   `json:"volume"`
}

// SearchResult is one search hit.
type SearchResult struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

// MarketStats summarizes one symbol over the trailing year.
type MarketStats struct {
	Symbol           string   `json:"symbol"`
	CurrentPrice     float64  `json:"current_price"`
	PreviousClose    float64  `json:"previous_close"`
	Change           float64  `json:"change"`
	ChangePercent    float64  `json:"change_percent"`
	High52w          float64  `json:"fifty_two_week_high"`
	Low52w           float64  `json:"fifty_two_week_low"`
	Position52w      float64  `json:"fifty_two_week_position"`
	AvgVolume        int64    `json:"avg_volume"`
	MarketCap        *float64 `json:"market_cap"`
	MarketCapDisplay string   `json:"market_cap_display"`
	PERatio          *float64 `json:"pe_ratio"`
	DividendYield    *float64 `json:"dividend_yield"`
	Beta             *float64 `json:"beta"`
	EPS              *float64 `json:"eps"`
	SMA50            *float64 `json:"sma_50"`
	SMA200           *float64 `json:"sma_200"`
	RSI14            float64  `json:"rsi_14"`
}

// DatasetStats describes the currently served generation.
type DatasetStats struct {
	GenerationID   string    `json:"generation_id"`
	CreatedAt      time.Time `json:"created_at"`
	CompaniesCount int       `json:"companies_count"`
	PointsCount    int       `json:"stock_data_count"`
	FirstDate      string    `json:"first_date,omitempty"`
	LastDate       string    `json:"last_date,omitempty"`
}
