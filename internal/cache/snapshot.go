// Package cache holds the in-process caches shared across requests: a single
// timestamped snapshot and a keyed variant. Refreshes are coalesced with
// singleflight and a failed refresh falls back to the last good value.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// RefreshFunc produces a fresh value.
type RefreshFunc[T any] func(ctx context.Context) (T, error)

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// Snapshot is a single cached value replaced atomically on refresh.
// The zero value is not usable; call NewSnapshot.
type Snapshot[T any] struct {
	current atomic.Pointer[entry[T]]
	group   singleflight.Group
	now     func() time.Time
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot[T any]() *Snapshot[T] {
	return &Snapshot[T]{now: time.Now}
}

// GetOrRefresh returns the cached value while it is younger than ttl,
// otherwise runs refresh. Concurrent callers share one refresh. When refresh
// fails and a previous value exists, the stale value is returned with a nil
// error.
func (s *Snapshot[T]) GetOrRefresh(ctx context.Context, ttl time.Duration, refresh RefreshFunc[T]) (T, error) {
	if e := s.current.Load(); e != nil && s.now().Sub(e.fetchedAt) < ttl {
		return e.value, nil
	}

	value, err := coalesce(ctx, &s.group, "snapshot", func(ctx context.Context) (T, error) {
		// another caller may have refreshed while we queued
		if e := s.current.Load(); e != nil && s.now().Sub(e.fetchedAt) < ttl {
			return e.value, nil
		}
		v, err := refresh(ctx)
		if err != nil {
			return v, err
		}
		s.current.Store(&entry[T]{value: v, fetchedAt: s.now()})
		return v, nil
	})
	if err != nil {
		if e := s.current.Load(); e != nil {
			return e.value, nil
		}
		var zero T
		return zero, err
	}
	return value, nil
}

// Age reports how old the cached value is. ok is false when nothing has been
// cached yet.
func (s *Snapshot[T]) Age() (age time.Duration, ok bool) {
	e := s.current.Load()
	if e == nil {
		return 0, false
	}
	return s.now().Sub(e.fetchedAt), true
}

// coalesce runs fn once per key across concurrent callers. The shared call
// is detached from any single caller's cancellation; each caller still stops
// waiting when its own ctx ends.
func coalesce[T any](ctx context.Context, group *singleflight.Group, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	ch := group.DoChan(key, func() (interface{}, error) {
		return fn(context.WithoutCancel(ctx))
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	}
}
