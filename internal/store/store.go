package store

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"MarketPulse/internal/model"
)

// Store serves the current Dataset. Readers never block; writers swap whole generations.
type Store struct {
	current atomic.Pointer[Dataset]
}

// New creates a Store holding an empty generation.
func New() *Store {
	s := &Store{}
	empty, _ := NewDataset("", time.Now(), nil, nil)
	s.current.Store(empty)
	return s
}

// Current returns the generation in service. Callers should load it once per
// operation so every read in that operation sees the same generation.
func (s *Store) Current() *Dataset {
	return s.current.Load()
}

// Replace swaps in ds as the new generation.
func (s *Store) Replace(ds *Dataset) {
	if ds == nil {
		return
	}
	s.current.Store(ds)
}

// Put replaces the whole series of one registered symbol. The change is published
// as a new generation, retried until no concurrent writer raced it.
func (s *Store) Put(symbol string, points []model.PricePoint) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	checked, err := checkSeries(symbol, points)
	if err != nil {
		return fmt.Errorf("put %s: %w", symbol, err)
	}
	for {
		cur := s.current.Load()
		if !cur.Exists(symbol) {
			return fmt.Errorf("put %s: %w", symbol, model.ErrNotFound)
		}
		if s.current.CompareAndSwap(cur, cur.withSeries(symbol, checked)) {
			return nil
		}
	}
}

// Query is shorthand for Current().Query.
func (s *Store) Query(symbol string, from time.Time) []model.PricePoint {
	return s.Current().Query(symbol, from)
}
