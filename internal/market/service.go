package market

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"MarketPulse/internal/collector"
	"MarketPulse/internal/generator"
	"MarketPulse/internal/model"
	"MarketPulse/internal/query"
	"MarketPulse/internal/recorder"
	"MarketPulse/internal/stats"
	"MarketPulse/internal/store"
)

// Options controls dataset generation and the read models built on top of it.
type Options struct {
	Days         int
	Volatility   float64
	SkipWeekends bool
	TopMovers    int

	// Rand drives the generator. It is only used while holding the refresh lock.
	Rand   generator.Rand
	Clock  generator.Clock
	Ratios stats.RatioSource
}

// Service is the façade the transport layer calls.
type Service struct {
	store     *store.Store
	recorder  recorder.Recorder
	companies []model.Company
	opts      Options
	log       *zap.Logger

	engine    *query.Engine
	calc      *stats.Calculator
	collector *collector.Collector

	mu  sync.Mutex
	gen *generator.Generator
}

func NewService(st *store.Store, rec recorder.Recorder, companies []model.Company, opts Options, log *zap.Logger) *Service {
	if opts.Clock == nil {
		opts.Clock = generator.RealClock{}
	}
	if opts.Rand == nil {
		opts.Rand = generator.NewRand(0)
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if log == nil {
		log = zap.NewNop()
	}
	normalized := make([]model.Company, len(companies))
	for i, c := range companies {
		c.Symbol = strings.ToUpper(strings.TrimSpace(c.Symbol))
		normalized[i] = c
	}
	return &Service{
		store:     st,
		recorder:  rec,
		companies: normalized,
		opts:      opts,
		log:       log,
		engine:    query.NewEngine(st, opts.Clock.Now),
		calc:      stats.NewCalculator(opts.Ratios),
		collector: collector.NewCollector(st, opts.TopMovers, opts.Clock.Now, log.Named("collector")),
		gen:       generator.NewGenerator(opts.Rand, opts.Clock),
	}
}

// Collector exposes the overview collector, which also feeds the broadcaster.
func (s *Service) Collector() *collector.Collector { return s.collector }

// Bootstrap serves the persisted generation if it is intact and matches the
// configured companies. Otherwise a new generation is built.
func (s *Service) Bootstrap(ctx context.Context) error {
	g, err := s.recorder.LoadGeneration(ctx)
	switch {
	case errors.Is(err, model.ErrNotFound):
		s.log.Info("no persisted generation, generating")
	case err != nil:
		s.log.Warn("load persisted generation failed, regenerating", zap.Error(err))
	default:
		ds, err := store.NewDataset(g.ID, g.CreatedAt, g.Companies, g.Series)
		if err != nil {
			s.log.Warn("persisted generation is corrupt, regenerating",
				zap.String("generation", g.ID), zap.Error(fmt.Errorf("%v: %w", err, model.ErrCorrupt)))
			break
		}
		if !s.sameUniverse(ds) {
			s.log.Info("configured companies changed, regenerating", zap.String("generation", g.ID))
			break
		}
		s.store.Replace(ds)
		s.log.Info("persisted generation loaded",
			zap.String("generation", ds.ID),
			zap.Int("points", ds.Stats().PointsCount))
		return nil
	}
	_, err = s.Refresh(ctx)
	return err
}

func (s *Service) sameUniverse(ds *store.Dataset) bool {
	if len(ds.Companies()) != len(s.companies) {
		return false
	}
	for _, c := range s.companies {
		if !ds.Exists(c.Symbol) {
			return false
		}
	}
	return true
}

// Refresh regenerates every series, persists the result and swaps it in.
// Concurrent readers keep the previous generation until the swap.
func (s *Service) Refresh(ctx context.Context) (*model.DatasetStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	series := make(map[string][]model.PricePoint, len(s.companies))
	for _, c := range s.companies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		points, err := s.gen.Generate(c.Symbol, c.BasePrice, s.opts.Volatility, s.opts.Days, s.opts.SkipWeekends)
		if err != nil {
			return nil, fmt.Errorf("refresh: %w", err)
		}
		series[c.Symbol] = points
	}
	ds, err := store.NewDataset("", s.opts.Clock.Now(), s.companies, series)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if err := s.recorder.SaveGeneration(ctx, toGeneration(ds)); err != nil {
		return nil, fmt.Errorf("refresh: persist: %v: %w", err, model.ErrUnavailable)
	}
	s.store.Replace(ds)

	st := ds.Stats()
	s.log.Info("dataset refreshed",
		zap.String("generation", ds.ID),
		zap.Int("companies", st.CompaniesCount),
		zap.Int("points", st.PointsCount),
		zap.Duration("took", time.Since(start)))
	return &st, nil
}

// RegenerateSymbol replaces the series of one company and persists the result.
func (s *Service) RegenerateSymbol(ctx context.Context, symbol string) (*model.DatasetStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	c, ok := s.store.Current().Company(symbol)
	if !ok {
		return nil, fmt.Errorf("regenerate %s: %w", symbol, model.ErrNotFound)
	}
	points, err := s.gen.Generate(c.Symbol, c.BasePrice, s.opts.Volatility, s.opts.Days, s.opts.SkipWeekends)
	if err != nil {
		return nil, fmt.Errorf("regenerate %s: %w", symbol, err)
	}
	if err := s.store.Put(symbol, points); err != nil {
		return nil, fmt.Errorf("regenerate %s: %w", symbol, err)
	}
	ds := s.store.Current()
	if err := s.recorder.SaveGeneration(ctx, toGeneration(ds)); err != nil {
		s.log.Error("persist regenerated series failed", zap.String("symbol", symbol), zap.Error(err))
	}
	st := ds.Stats()
	s.log.Info("series regenerated", zap.String("symbol", symbol), zap.String("generation", ds.ID))
	return &st, nil
}

func toGeneration(ds *store.Dataset) *recorder.Generation {
	companies := ds.Companies()
	g := &recorder.Generation{
		ID:        ds.ID,
		CreatedAt: ds.CreatedAt,
		Companies: companies,
		Series:    make(map[string][]model.PricePoint, len(companies)),
	}
	for _, c := range companies {
		if points := ds.Query(c.Symbol, time.Time{}); len(points) > 0 {
			g.Series[c.Symbol] = points
		}
	}
	return g
}

// ListCompanies returns every company ordered by name with its latest quote.
func (s *Service) ListCompanies(ctx context.Context) ([]model.CompanySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds := s.store.Current()
	companies := ds.Companies()
	out := make([]model.CompanySummary, len(companies))
	for i, c := range companies {
		out[i] = summarizeCompany(ds, c)
	}
	return out, nil
}

// GetCompany returns one company with its latest quote.
func (s *Service) GetCompany(ctx context.Context, symbol string) (*model.CompanySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	ds := s.store.Current()
	c, ok := ds.Company(symbol)
	if !ok {
		return nil, fmt.Errorf("company %s: %w", symbol, model.ErrNotFound)
	}
	cs := summarizeCompany(ds, c)
	return &cs, nil
}

func summarizeCompany(ds *store.Dataset, c model.Company) model.CompanySummary {
	cs := model.CompanySummary{Company: c, MarketCapDisplay: stats.FormatMarketCap(c.MarketCap)}
	last := ds.Latest(c.Symbol, 2)
	if len(last) == 0 {
		return cs
	}
	derived := query.Derive(last)
	cur := derived[len(derived)-1]
	price, volume := cur.Close, cur.Volume
	cs.CurrentPrice = &price
	cs.Volume = &volume
	cs.Change = cur.Change
	cs.ChangePercent = cur.ChangePercent
	return cs
}

// GetSeries returns the bars of symbol within period with per-bar changes.
func (s *Service) GetSeries(ctx context.Context, symbol, period string) ([]model.DerivedPoint, error) {
	return s.engine.Fetch(ctx, symbol, period)
}

// GetStats summarizes the full history of symbol over the trailing year.
func (s *Service) GetStats(ctx context.Context, symbol string) (*model.MarketStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	ds := s.store.Current()
	c, ok := ds.Company(symbol)
	if !ok {
		return nil, fmt.Errorf("stats %s: %w", symbol, model.ErrNotFound)
	}
	points := ds.Query(symbol, time.Time{})
	if len(points) == 0 {
		return nil, fmt.Errorf("stats %s: no price data: %w", symbol, model.ErrNotFound)
	}
	return s.calc.Summarize(c, points, s.opts.Clock.Now())
}

// Search matches q case-insensitively against symbols and names, ordered by name.
func (s *Service) Search(ctx context.Context, q string) ([]model.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil, fmt.Errorf("search: empty query: %w", model.ErrInvalidParameter)
	}
	out := []model.SearchResult{}
	for _, c := range s.store.Current().Companies() {
		if strings.Contains(strings.ToLower(c.Symbol), q) || strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, model.SearchResult{Symbol: c.Symbol, Name: c.Name, Sector: c.Sector})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Overview builds the same snapshot the broadcaster pushes.
func (s *Service) Overview(ctx context.Context) (*model.MarketOverview, error) {
	return s.collector.Collect(ctx)
}

// DatasetStats describes the generation currently served.
func (s *Service) DatasetStats(ctx context.Context) (*model.DatasetStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st := s.store.Current().Stats()
	return &st, nil
}

// GenerationID returns the id of the generation currently served.
func (s *Service) GenerationID() string {
	return s.store.Current().ID
}
