package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"MarketPulse/internal/model"
	"MarketPulse/internal/sentiment"
)

// DefaultTopMovers is the number of movers included in an overview.
const DefaultTopMovers = 5

// Collector builds quotes and market overviews from the latest bars of every company.
type Collector struct {
	source    Source
	topMovers int
	now       func() time.Time
	log       *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(source Source, topMovers int, now func() time.Time, log *zap.Logger) *Collector {
	if topMovers <= 0 {
		topMovers = DefaultTopMovers
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{source: source, topMovers: topMovers, now: now, log: log}
}

// Quotes returns the latest quote of every company with data, in company order,
// and the id of the generation they were read from.
func (c *Collector) Quotes(ctx context.Context) ([]model.Quote, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	ds := c.source.Current()
	companies := ds.Companies()
	quotes := make([]model.Quote, 0, len(companies))
	for _, co := range companies {
		last := ds.Latest(co.Symbol, 2)
		if len(last) == 0 {
			c.log.Warn("no price data for company", zap.String("symbol", co.Symbol))
			continue
		}
		quotes = append(quotes, quote(co, last))
	}
	if len(quotes) == 0 {
		return nil, ds.ID, fmt.Errorf("quotes: dataset %s has no price data: %w", ds.ID, model.ErrUnavailable)
	}
	return quotes, ds.ID, nil
}

// Collect builds one market overview.
func (c *Collector) Collect(ctx context.Context) (*model.MarketOverview, error) {
	quotes, genID, err := c.Quotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect overview: %w", err)
	}
	now := c.now()
	return &model.MarketOverview{
		Timestamp:    now,
		GenerationID: genID,
		Summary:      sentiment.Summarize(quotes, now),
		TopMovers:    sentiment.TopMovers(quotes, c.topMovers),
		Sectors:      sentiment.Sectors(quotes),
	}, nil
}

// quote compares the last bar against the one before it. A lone bar is unchanged.
func quote(co model.Company, last []model.PricePoint) model.Quote {
	cur := last[len(last)-1]
	q := model.Quote{
		Symbol: co.Symbol,
		Name:   co.Name,
		Sector: co.Sector,
		Date:   cur.Date,
		Price:  cur.Close,
		Volume: cur.Volume,
	}
	if len(last) > 1 && last[0].Close != 0 {
		prev := last[0].Close
		q.Change = round2(cur.Close - prev)
		q.ChangePercent = round2((cur.Close - prev) / prev * 100)
	}
	q.Momentum = sentiment.MapTier(q.ChangePercent).Label
	return q
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
