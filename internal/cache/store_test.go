package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_KeysAreIndependent(t *testing.T) {
	s := NewStore[string]()

	a, err := s.GetOrRefresh(context.Background(), "a", time.Minute, func(ctx context.Context) (string, error) {
		return "alpha", nil
	})
	require.NoError(t, err)
	b, err := s.GetOrRefresh(context.Background(), "b", time.Minute, func(ctx context.Context) (string, error) {
		return "beta", nil
	})
	require.NoError(t, err)

	assert.Equal(t, "alpha", a)
	assert.Equal(t, "beta", b)
	assert.Equal(t, 2, s.Len())
}

func TestStore_RefreshAndStaleFallback(t *testing.T) {
	clock := newClock()
	s := NewStore[int]()
	s.now = clock.Now
	refresh, calls := counter(10, 20)

	v, err := s.GetOrRefresh(context.Background(), "k", time.Minute, refresh)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	v, ok := s.Get("k", time.Minute)
	assert.True(t, ok)
	assert.Equal(t, 10, v)

	clock.Advance(2 * time.Minute)
	_, ok = s.Get("k", time.Minute)
	assert.False(t, ok)

	v, err = s.GetOrRefresh(context.Background(), "k", time.Minute, refresh)
	require.NoError(t, err)
	assert.Equal(t, 20, v)
	assert.Equal(t, int32(2), *calls)

	clock.Advance(2 * time.Minute)
	v, err = s.GetOrRefresh(context.Background(), "k", time.Minute, func(ctx context.Context) (int, error) {
		return 0, errors.New("down")
	})
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	_, err = s.GetOrRefresh(context.Background(), "missing", time.Minute, func(ctx context.Context) (int, error) {
		return 0, errors.New("down")
	})
	assert.Error(t, err)
}

func TestStore_Prune(t *testing.T) {
	clock := newClock()
	s := NewStore[int]()
	s.now = clock.Now

	s.Put("old", 1)
	clock.Advance(time.Hour)
	s.Put("new", 2)

	assert.Equal(t, 1, s.Prune(30*time.Minute))
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("new", time.Hour)
	assert.True(t, ok)
}
