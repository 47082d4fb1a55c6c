package stats

import (
	"math"
	"sync"

	"MarketPulse/internal/generator"
	"MarketPulse/internal/model"
)

// Ratios are the valuation fields of a MarketStats. Nil means not available.
type Ratios struct {
	MarketCap     *float64
	PERatio       *float64
	DividendYield *float64
	Beta          *float64
	EPS           *float64
}

// RatioSource supplies valuation ratios for a company at a given price.
type RatioSource interface {
	Ratios(company model.Company, price float64) Ratios
}

// CompanyRatios reads the ratios stored on the company record.
type CompanyRatios struct{}

func (CompanyRatios) Ratios(company model.Company, _ float64) Ratios {
	return Ratios{
		MarketCap:     company.MarketCap,
		PERatio:       company.PERatio,
		DividendYield: company.DividendYield,
		Beta:          company.Beta,
		EPS:           company.EPS,
	}
}

// SyntheticRatios draws placeholder ratios on every call. Beta and EPS come
// from the company record.
type SyntheticRatios struct {
	mu   sync.Mutex
	rand generator.Rand
}

func NewSyntheticRatios(rnd generator.Rand) *SyntheticRatios {
	return &SyntheticRatios{rand: rnd}
}

func (s *SyntheticRatios) Ratios(company model.Company, price float64) Ratios {
	s.mu.Lock()
	shares := math.Floor(100+s.rand.Float64()*901) * 1e6
	pe := 10 + 20*s.rand.Float64()
	yield := 0.5 + 4.5*s.rand.Float64()
	s.mu.Unlock()

	marketCap := math.Round(price * shares)
	pe = round2(pe)
	yield = round2(yield)
	return Ratios{
		MarketCap:     &marketCap,
		PERatio:       &pe,
		DividendYield: &yield,
		Beta:          company.Beta,
		EPS:           company.EPS,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
