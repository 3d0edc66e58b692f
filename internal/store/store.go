package store

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Store is a concurrency-safe latest-value cache of instrument prices.
// The zero value is not usable; create one with New.
type Store struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

// New creates an empty price store.
func New() *Store {
	return &Store{
		prices: make(map[string]decimal.Decimal),
	}
}

// Update records the latest price for an instrument. Last write wins.
func (s *Store) Update(instrument string, price decimal.Decimal) {
	s.mu.Lock()
	s.prices[instrument] = price
	s.mu.Unlock()
}

// Get returns the most recently stored price for an instrument, or
// false if the instrument has never been updated.
func (s *Store) Get(instrument string) (decimal.Decimal, bool) {
	s.mu.RLock()
	price, ok := s.prices[instrument]
	s.mu.RUnlock()
	return price, ok
}

// Instruments returns every instrument that has received at least one
// update. The slice is a snapshot; writes racing with the call may or
// may not be reflected.
func (s *Store) Instruments() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	instruments := make([]string, 0, len(s.prices))
	for instrument := range s.prices {
		instruments = append(instruments, instrument)
	}
	return instruments
}

// Len returns the number of instruments currently tracked.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.prices)
}
