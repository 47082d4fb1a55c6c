package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MarketPulse/internal/model"
	"MarketPulse/internal/store"
)

// DefaultPeriod is what the HTTP layer uses when the client sends no period.
const DefaultPeriod = "1mo"

var periodDays = map[string]int{
	"1d":  1,
	"1wk": 7,
	"1mo": 30,
	"3mo": 90,
	"6mo": 180,
	"1y":  365,
	"2y":  730,
}

// Periods lists the accepted tags, shortest first.
func Periods() []string {
	return []string{"1d", "1wk", "1mo", "3mo", "6mo", "1y", "2y"}
}

// ResolvePeriod converts a period tag into the earliest instant it covers.
func ResolvePeriod(tag string, now time.Time) (time.Time, error) {
	days, ok := periodDays[tag]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown period %q: %w", tag, model.ErrInvalidParameter)
	}
	return now.AddDate(0, 0, -days), nil
}

// Engine answers range queries against the store.
type Engine struct {
	store *store.Store
	now   func() time.Time
}

func NewEngine(s *store.Store, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{store: s, now: now}
}

// Fetch returns the bars of symbol inside period, each annotated with its change
// against the preceding bar of the result. All reads use one dataset generation.
func (e *Engine) Fetch(ctx context.Context, symbol, period string) ([]model.DerivedPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	from, err := ResolvePeriod(period, e.now())
	if err != nil {
		return nil, err
	}
	ds := e.store.Current()
	if !ds.Exists(symbol) {
		return nil, fmt.Errorf("symbol %s: %w", symbol, model.ErrNotFound)
	}
	return Derive(ds.Query(symbol, from)), nil
}

// Derive attaches change and change percent relative to the previous point of the
// slice. The first point carries no change. Values are not rounded.
func Derive(points []model.PricePoint) []model.DerivedPoint {
	out := make([]model.DerivedPoint, len(points))
	for i, p := range points {
		out[i].PricePoint = p
		if i == 0 {
			continue
		}
		prev := points[i-1].Close
		change := p.Close - prev
		out[i].Change = &change
		if prev != 0 {
			pct := change / prev * 100
			out[i].ChangePercent = &pct
		}
	}
	return out
}
