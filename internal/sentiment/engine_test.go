package sentiment

import (
	"testing"
	"time"

	"MarketPulse/internal/model"
)

func TestMapTier_AllBoundaries(t *testing.T) {
	tests := []struct {
		change float64
		label  string
	}{
		{5.0, "Strong Rally"},
		{3.0, "Strong Rally"},
		{2.99, "Rally"},
		{1.0, "Rally"},
		{0.5, "Gaining"},
		{0.25, "Gaining"},
		{0.0, "Flat"},
		{-0.25, "Flat"},
		{-0.5, "Slipping"},
		{-1.0, "Slipping"},
		{-2.0, "Decline"},
		{-3.0, "Decline"},
		{-3.01, "Selloff"},
		{-20.0, "Selloff"},
	}
	for _, tt := range tests {
		tier := MapTier(tt.change)
		if tier.Label != tt.label {
			t.Errorf("change=%.2f: expected %s, got %s", tt.change, tt.label, tier.Label)
		}
	}
}

func TestTiers_DescendingThresholds(t *testing.T) {
	for i := 1; i < len(Tiers); i++ {
		if Tiers[i].MinChange >= Tiers[i-1].MinChange {
			t.Errorf("tier %s threshold %.2f not below %s %.2f",
				Tiers[i].Label, Tiers[i].MinChange, Tiers[i-1].Label, Tiers[i-1].MinChange)
		}
	}
	for _, tier := range Tiers {
		if got := MapTier(tier.MinChange); got != tier {
			t.Errorf("threshold %.2f: expected %+v, got %+v", tier.MinChange, tier, got)
		}
	}
	if DefaultTier.MinChange >= Tiers[len(Tiers)-1].MinChange {
		t.Error("expected default tier below the table")
	}
}

func quotes() []model.Quote {
	return []model.Quote{
		{Symbol: "AAA", Sector: "Technology", Change: 2, ChangePercent: 2},
		{Symbol: "BBB", Sector: "Technology", Change: -1, ChangePercent: -1},
		{Symbol: "CCC", Sector: "Healthcare", Change: -3, ChangePercent: -4},
		{Symbol: "DDD", Sector: "Energy", Change: 0, ChangePercent: 0},
		{Symbol: "EEE", Sector: "Healthcare", Change: 1, ChangePercent: 4},
	}
}

func TestSummarize(t *testing.T) {
	open := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.Local)
	s := Summarize(quotes(), open)
	if s.TotalCompanies != 5 || s.Gainers != 2 || s.Losers != 2 || s.Unchanged != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if s.Sentiment != model.SentimentNeutral {
		t.Errorf("expected Neutral, got %s", s.Sentiment)
	}
	if s.TradingStatus != "Open" {
		t.Errorf("expected Open at 10:00, got %s", s.TradingStatus)
	}

	closed := time.Date(2024, time.March, 15, 16, 0, 0, 0, time.Local)
	if got := Summarize(quotes()[:1], closed); got.Sentiment != model.SentimentBullish || got.TradingStatus != "Closed" {
		t.Errorf("expected Bullish and Closed, got %s / %s", got.Sentiment, got.TradingStatus)
	}
	if got := Summarize(quotes()[1:3], closed); got.Sentiment != model.SentimentBearish {
		t.Errorf("expected Bearish, got %s", got.Sentiment)
	}
}

func TestSectors(t *testing.T) {
	got := Sectors(quotes())
	want := []model.SectorPerformance{
		{Sector: "Energy", AverageChange: 0, Companies: 1, Performance: "Neutral"},
		{Sector: "Healthcare", AverageChange: 0, Companies: 2, Performance: "Neutral"},
		{Sector: "Technology", AverageChange: 0.5, Companies: 2, Performance: "Positive"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d sectors, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sector %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestTopMovers(t *testing.T) {
	got := TopMovers(quotes(), 3)
	want := []string{"CCC", "EEE", "AAA"}
	if len(got) != len(want) {
		t.Fatalf("expected %d movers, got %d", len(want), len(got))
	}
	for i, sym := range want {
		if got[i].Symbol != sym {
			t.Errorf("position %d: expected %s, got %s", i, sym, got[i].Symbol)
		}
	}
	if all := TopMovers(quotes(), 10); len(all) != 5 {
		t.Errorf("expected all 5 quotes, got %d", len(all))
	}
}
