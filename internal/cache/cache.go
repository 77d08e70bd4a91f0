// Package cache is the read-through, TTL-bounded store in front of the
// aggregator. One entry per facet key, replaced wholesale, stale only by
// expiry.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"grantfinder-engine/internal/domain"
)

// DefaultTTL is the freshness window.
const DefaultTTL = 1800 * time.Second

type entry struct {
	records   []domain.Grant
	fetchedAt time.Time
}

type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	group   singleflight.Group
	now     func() time.Time
}

func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock replaces the time source; tests use it to cross the TTL boundary.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// GetOrFetch returns the fresh cached records for key, or runs fetch and
// stores its result. Concurrent misses on the same key coalesce into a
// single fetch; late arrivals wait for the in-flight result instead of
// issuing redundant network traffic.
func (s *Store) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) []domain.Grant) []domain.Grant {
	if records, ok := s.lookup(key); ok {
		return records
	}

	v, _, _ := s.group.Do(key, func() (any, error) {
		// re-check: another flight may have filled the entry while this
		// caller queued on the key
		if records, ok := s.lookup(key); ok {
			return records, nil
		}
		records := fetch(ctx)
		s.mu.Lock()
		s.entries[key] = entry{records: records, fetchedAt: s.now()}
		s.mu.Unlock()
		return records, nil
	})
	// copy per caller: Do hands every coalesced waiter the same value
	return copyRecords(v.([]domain.Grant))
}

func (s *Store) lookup(key string) ([]domain.Grant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || s.now().Sub(e.fetchedAt) >= s.ttl {
		return nil, false
	}
	return copyRecords(e.records), true
}

// Prune drops expired entries and reports how many were removed. Purely a
// memory bound: expired entries were already unreachable through lookup.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, e := range s.entries {
		if s.now().Sub(e.fetchedAt) >= s.ttl {
			delete(s.entries, key)
			n++
		}
	}
	return n
}

// Len reports the live entry count (expired included until pruned).
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// copyRecords hands each caller its own slice; the postprocess stage
// annotates records in place and must not touch the cached copy.
func copyRecords(in []domain.Grant) []domain.Grant {
	if in == nil {
		return nil
	}
	out := make([]domain.Grant, len(in))
	copy(out, in)
	return out
}
