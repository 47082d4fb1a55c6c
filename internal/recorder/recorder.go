package recorder

import (
	"context"
	"time"

	"MarketPulse/internal/model"
)

// Generation is one complete dataset as persisted: companies plus every series.
type Generation struct {
	ID        string
	CreatedAt time.Time
	Companies []model.Company
	Series    map[string][]model.PricePoint
}

// PointsCount returns the number of price points across all series.
func (g *Generation) PointsCount() int {
	n := 0
	for _, points := range g.Series {
		n += len(points)
	}
	return n
}

// Recorder persists dataset generations across restarts.
type Recorder interface {
	// SaveGeneration replaces the persisted dataset with g in one transaction.
	SaveGeneration(ctx context.Context, g *Generation) error
	// LoadGeneration returns the persisted dataset, or model.ErrNotFound if none was saved.
	LoadGeneration(ctx context.Context) (*Generation, error)
	Close() error
}
