package collector

import "MarketPulse/internal/store"

// Source supplies the dataset generation to build quotes from.
type Source interface {
	Current() *store.Dataset
}
