package model

import "time"

// Sentiment labels the overall direction of the market.
type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
	SentimentNeutral Sentiment = "Neutral"
)

// MomentumTier maps a daily change percentage to a label.
type MomentumTier struct {
	Label     string  `json:"label"`
	MinChange float64 `json:"-"`
}

// Quote is the latest close of one symbol and its move against the prior close.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Sector        string    `json:"sector"`
	Date          time.Time `json:"date"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	Momentum      string    `json:"momentum,omitempty"`
}

// MarketSummary counts advancing and declining symbols.
type MarketSummary struct {
	TotalCompanies int       `json:"total_companies"`
	Gainers        int       `json:"gainers"`
	Losers         int       `json:"losers"`
	Unchanged      int       `json:"unchanged"`
	Sentiment      Sentiment `json:"market_sentiment"`
	TradingStatus  string    `json:"trading_status"`
	LastUpdated    time.Time `json:"last_updated"`
}

// SectorPerformance is the average move of the companies in one sector.
type SectorPerformance struct {
	Sector        string  `json:"sector"`
	AverageChange float64 `json:"average_change"`
	Companies     int     `json:"companies_count"`
	Performance   string  `json:"performance"`
}

// MarketOverview is the periodic snapshot pushed to subscribers.
type MarketOverview struct {
	Timestamp    time.Time           `json:"timestamp"`
	GenerationID string              `json:"generation_id"`
	Summary      MarketSummary       `json:"summary"`
	TopMovers    []Quote             `json:"top_movers"`
	Sectors      []SectorPerformance `json:"sectors"`
}
