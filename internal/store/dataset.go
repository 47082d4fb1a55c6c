package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"MarketPulse/internal/model"
)

// Dataset is one immutable generation of companies and their price series.
// Nothing may modify a Dataset after NewDataset returns it.
type Dataset struct {
	ID        string
	CreatedAt time.Time

	companies []model.Company
	bySymbol  map[string]int
	series    map[string][]model.PricePoint
}

// NewDataset validates and indexes a generation. An empty id is replaced by a fresh uuid.
// Series for symbols without a company are rejected, as are unordered or duplicate dates.
func NewDataset(id string, createdAt time.Time, companies []model.Company, series map[string][]model.PricePoint) (*Dataset, error) {
	if id == "" {
		id = uuid.New().String()
	}
	ds := &Dataset{
		ID:        id,
		CreatedAt: createdAt,
		companies: make([]model.Company, 0, len(companies)),
		bySymbol:  make(map[string]int, len(companies)),
		series:    make(map[string][]model.PricePoint, len(series)),
	}

	for _, c := range companies {
		c.Symbol = strings.ToUpper(strings.TrimSpace(c.Symbol))
		if c.Symbol == "" {
			return nil, fmt.Errorf("company %q has no symbol: %w", c.Name, model.ErrInvalidParameter)
		}
		if _, dup := ds.bySymbol[c.Symbol]; dup {
			return nil, fmt.Errorf("duplicate company %s: %w", c.Symbol, model.ErrInvalidParameter)
		}
		ds.bySymbol[c.Symbol] = len(ds.companies)
		ds.companies = append(ds.companies, c)
	}
	sort.SliceStable(ds.companies, func(i, j int) bool { return ds.companies[i].Name < ds.companies[j].Name })
	for i, c := range ds.companies {
		ds.bySymbol[c.Symbol] = i
	}

	for symbol, points := range series {
		symbol = strings.ToUpper(symbol)
		if _, ok := ds.bySymbol[symbol]; !ok {
			return nil, fmt.Errorf("series for unregistered symbol %s: %w", symbol, model.ErrInvalidParameter)
		}
		checked, err := checkSeries(symbol, points)
		if err != nil {
			return nil, err
		}
		ds.series[symbol] = checked
	}
	return ds, nil
}

// checkSeries copies points, normalizing dates to UTC midnight, and enforces the bar
// invariants plus strictly increasing dates.
func checkSeries(symbol string, points []model.PricePoint) ([]model.PricePoint, error) {
	out := make([]model.PricePoint, len(points))
	for i, p := range points {
		p.Symbol = symbol
		p.Date = Day(p.Date)
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%v: %w", err, model.ErrInvalidParameter)
		}
		if i > 0 && !p.Date.After(out[i-1].Date) {
			return nil, fmt.Errorf("%s: date %s not after %s: %w", symbol,
				p.Date.Format(model.DateLayout), out[i-1].Date.Format(model.DateLayout), model.ErrInvalidParameter)
		}
		out[i] = p
	}
	return out, nil
}

// Day truncates t to midnight UTC of its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Companies returns the companies ordered by name.
func (d *Dataset) Companies() []model.Company {
	out := make([]model.Company, len(d.companies))
	copy(out, d.companies)
	return out
}

// Company looks up one company by symbol.
func (d *Dataset) Company(symbol string) (model.Company, bool) {
	i, ok := d.bySymbol[strings.ToUpper(symbol)]
	if !ok {
		return model.Company{}, false
	}
	return d.companies[i], true
}

// Exists reports whether symbol is registered, regardless of whether it has data.
func (d *Dataset) Exists(symbol string) bool {
	_, ok := d.bySymbol[strings.ToUpper(symbol)]
	return ok
}

// Query returns the points of symbol dated on or after the calendar day of from, ascending.
// Unknown symbols yield an empty slice.
func (d *Dataset) Query(symbol string, from time.Time) []model.PricePoint {
	points := d.series[strings.ToUpper(symbol)]
	cutoff := Day(from)
	i := sort.Search(len(points), func(i int) bool { return !points[i].Date.Before(cutoff) })
	out := make([]model.PricePoint, len(points)-i)
	copy(out, points[i:])
	return out
}

// Latest returns up to n most recent points of symbol, ascending.
func (d *Dataset) Latest(symbol string, n int) []model.PricePoint {
	points := d.series[strings.ToUpper(symbol)]
	if n > len(points) {
		n = len(points)
	}
	out := make([]model.PricePoint, n)
	copy(out, points[len(points)-n:])
	return out
}

// Stats summarizes the dataset for the admin endpoint.
func (d *Dataset) Stats() model.DatasetStats {
	st := model.DatasetStats{
		GenerationID:   d.ID,
		CreatedAt:      d.CreatedAt,
		CompaniesCount: len(d.companies),
	}
	var first, last time.Time
	for _, points := range d.series {
		if len(points) == 0 {
			continue
		}
		st.PointsCount += len(points)
		if first.IsZero() || points[0].Date.Before(first) {
			first = points[0].Date
		}
		if points[len(points)-1].Date.After(last) {
			last = points[len(points)-1].Date
		}
	}
	if !first.IsZero() {
		st.FirstDate = first.Format(model.DateLayout)
		st.LastDate = last.Format(model.DateLayout)
	}
	return st
}

// withSeries returns a copy of d whose series for symbol is replaced by points.
// The copy shares the untouched series slices, which are never written.
func (d *Dataset) withSeries(symbol string, points []model.PricePoint) *Dataset {
	next := &Dataset{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		companies: d.companies,
		bySymbol:  d.bySymbol,
		series:    make(map[string][]model.PricePoint, len(d.series)+1),
	}
	for s, p := range d.series {
		next.series[s] = p
	}
	next.series[symbol] = points
	return next
}
