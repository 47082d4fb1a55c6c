package sentiment

import (
	"math"
	"sort"
	"time"

	"MarketPulse/internal/model"
)

// Tiers maps a daily change percentage to a momentum label, strongest first.
var Tiers = []model.MomentumTier{
	{Label: "Strong Rally", MinChange: 3.0},
	{Label: "Rally", MinChange: 1.0},
	{Label: "Gaining", MinChange: 0.25},
	{Label: "Flat", MinChange: -0.25},
	{Label: "Slipping", MinChange: -1.0},
	{Label: "Decline", MinChange: -3.0},
}

// DefaultTier is the lowest tier for changes below -3%.
var DefaultTier = model.MomentumTier{Label: "Selloff", MinChange: math.Inf(-1)}

// MapTier maps a change percentage to a MomentumTier.
func MapTier(changePct float64) model.MomentumTier {
	for _, t := range Tiers {
		if changePct >= t.MinChange {
			return t
		}
	}
	return DefaultTier
}

// Summarize counts gainers, losers and unchanged quotes. Trading status follows
// the local clock of now: open from 09:00 until 15:59.
func Summarize(quotes []model.Quote, now time.Time) model.MarketSummary {
	s := model.MarketSummary{
		TotalCompanies: len(quotes),
		LastUpdated:    now,
		TradingStatus:  "Closed",
	}
	for _, q := range quotes {
		switch {
		case q.Change > 0:
			s.Gainers++
		case q.Change < 0:
			s.Losers++
		default:
			s.Unchanged++
		}
	}
	switch {
	case s.Gainers > s.Losers:
		s.Sentiment = model.SentimentBullish
	case s.Losers > s.Gainers:
		s.Sentiment = model.SentimentBearish
	default:
		s.Sentiment = model.SentimentNeutral
	}
	if h := now.Hour(); h >= 9 && h <= 15 {
		s.TradingStatus = "Open"
	}
	return s
}

// Sectors averages the change percentage of each sector, ordered by sector name.
func Sectors(quotes []model.Quote) []model.SectorPerformance {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, q := range quotes {
		sums[q.Sector] += q.ChangePercent
		counts[q.Sector]++
	}

	out := make([]model.SectorPerformance, 0, len(counts))
	for sector, n := range counts {
		avg := math.Round(sums[sector]/float64(n)*100) / 100
		perf := "Neutral"
		switch {
		case avg > 0:
			perf = "Positive"
		case avg < 0:
			perf = "Negative"
		}
		out = append(out, model.SectorPerformance{
			Sector:        sector,
			AverageChange: avg,
			Companies:     n,
			Performance:   perf,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sector < out[j].Sector })
	return out
}

// TopMovers returns up to n quotes with the largest absolute change percentage.
// Ties keep symbol order.
func TopMovers(quotes []model.Quote, n int) []model.Quote {
	sorted := make([]model.Quote, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		ai, aj := math.Abs(sorted[i].ChangePercent), math.Abs(sorted[j].ChangePercent)
		if ai != aj {
			return ai > aj
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
