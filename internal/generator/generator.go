package generator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"MarketPulse/internal/model"
)

const (
	// drift is the fixed daily upward bias applied after the volatility shock.
	drift = 0.0002

	minVolume = 10_000_000
	maxVolume = 100_000_000
)

// Rand is the random source the generator draws from. Implementations need not be goroutine-safe.
type Rand interface {
	Float64() float64
}

// Clock anchors generated history; the last bar lands on the day before Now.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// NewRand returns a seeded PCG source. A zero seed is replaced by the current time.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generator produces synthetic daily OHLCV series.
type Generator struct {
	rand  Rand
	clock Clock
}

// NewGenerator creates a Generator. It is not safe for concurrent use.
func NewGenerator(rnd Rand, clock Clock) *Generator {
	return &Generator{rand: rnd, clock: clock}
}

// Generate returns numDays calendar days of bars ending the day before the clock's
// current date, skipping Saturdays and Sundays when skipWeekends is set.
func (g *Generator) Generate(symbol string, seedPrice, volatility float64, numDays int, skipWeekends bool) ([]model.PricePoint, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	switch {
	case symbol == "":
		return nil, fmt.Errorf("generate: empty symbol: %w", model.ErrInvalidParameter)
	case seedPrice <= 0 || math.IsNaN(seedPrice) || math.IsInf(seedPrice, 0):
		return nil, fmt.Errorf("generate %s: seed price %v must be positive: %w", symbol, seedPrice, model.ErrInvalidParameter)
	case volatility < 0 || volatility >= 1 || math.IsNaN(volatility):
		return nil, fmt.Errorf("generate %s: volatility %v outside [0, 1): %w", symbol, volatility, model.ErrInvalidParameter)
	case numDays < 0:
		return nil, fmt.Errorf("generate %s: negative day count %d: %w", symbol, numDays, model.ErrInvalidParameter)
	}

	now := g.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -numDays)
	noise := volatility / 2

	points := make([]model.PricePoint, 0, numDays)
	price := seedPrice
	for i := 0; i < numDays; i++ {
		date := start.AddDate(0, 0, i)
		if skipWeekends && (date.Weekday() == time.Saturday || date.Weekday() == time.Sunday) {
			continue
		}

		price *= 1 + g.uniform(-volatility, volatility)
		price *= 1 + drift + g.uniform(-noise, noise)

		open := price * g.uniform(0.995, 1.005)
		high := math.Max(open, price) * g.uniform(1.0, 1.02)
		low := math.Min(open, price) * g.uniform(0.98, 1.0)

		p := model.PricePoint{
			Symbol: symbol,
			Date:   date,
			Open:   roundPrice(open),
			High:   roundPrice(high),
			Low:    roundPrice(low),
			Close:  roundPrice(price),
			Volume: minVolume + int64(g.rand.Float64()*float64(maxVolume-minVolume+1)),
		}
		if p.Volume > maxVolume {
			p.Volume = maxVolume
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("generate: %v: %w", err, model.ErrCorrupt)
		}
		points = append(points, p)
	}
	return points, nil
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.rand.Float64()
}

// roundPrice rounds to cents with a one-cent floor. Both steps are monotone,
// so orderings between open, high, low and close survive rounding.
func roundPrice(v float64) float64 {
	r := math.Round(v*100) / 100
	if r < 0.01 {
		return 0.01
	}
	return r
}
