package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Store is a keyed set of snapshots sharing one TTL policy per call.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[T]
	group   singleflight.Group
	now     func() time.Time
}

// NewStore creates an empty keyed cache.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		entries: make(map[string]*entry[T]),
		now:     time.Now,
	}
}

// Get returns the value for key if it is younger than ttl.
func (s *Store[T]) Get(key string, ttl time.Duration) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || s.now().Sub(e.fetchedAt) >= ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Put stores value under key with the current time.
func (s *Store[T]) Put(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &entry[T]{value: value, fetchedAt: s.now()}
}

// GetOrRefresh is the keyed form of Snapshot.GetOrRefresh.
func (s *Store[T]) GetOrRefresh(ctx context.Context, key string, ttl time.Duration, refresh RefreshFunc[T]) (T, error) {
	if v, ok := s.Get(key, ttl); ok {
		return v, nil
	}

	value, err := coalesce(ctx, &s.group, key, func(ctx context.Context) (T, error) {
		if v, ok := s.Get(key, ttl); ok {
			return v, nil
		}
		v, err := refresh(ctx)
		if err != nil {
			return v, err
		}
		s.Put(key, v)
		return v, nil
	})
	if err != nil {
		if stale, ok := s.stale(key); ok {
			return stale, nil
		}
		var zero T
		return zero, err
	}
	return value, nil
}

// Prune removes entries older than maxAge and returns how many were removed.
func (s *Store[T]) Prune(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if s.now().Sub(e.fetchedAt) >= maxAge {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached keys.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store[T]) stale(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}
