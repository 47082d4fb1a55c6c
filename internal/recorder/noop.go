package recorder

import (
	"context"

	"MarketPulse/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) SaveGeneration(_ context.Context, _ *Generation) error { return nil }
func (n *NoopRecorder) LoadGeneration(_ context.Context) (*Generation, error) {
	return nil, model.ErrNotFound
}
func (n *NoopRecorder) Close() error { return nil }
