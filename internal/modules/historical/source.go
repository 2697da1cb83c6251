// Package historical serves daily price history through a two-level cache
// (process memory, then SQLite) in front of the upstream price source.
package historical

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stocksim/stocksim/internal/cache"
	"github.com/stocksim/stocksim/internal/clientdata"
	"github.com/stocksim/stocksim/internal/domain"
)

// CachedSource implements domain.PriceSource on top of another source.
type CachedSource struct {
	upstream domain.PriceSource
	repo     *clientdata.Repository
	memory   *cache.Store[[]domain.PricePoint]
	ttl      time.Duration
	log      zerolog.Logger
}

// NewCachedSource wraps upstream. repo is optional; without it only the
// in-memory level is used. ttl bounds the in-memory age of a series.
func NewCachedSource(upstream domain.PriceSource, repo *clientdata.Repository, ttl time.Duration, log zerolog.Logger) *CachedSource {
	return &CachedSource{
		upstream: upstream,
		repo:     repo,
		memory:   cache.NewStore[[]domain.PricePoint](),
		ttl:      ttl,
		log:      log.With().Str("component", "historical_cache").Logger(),
	}
}

func cacheKey(ticker, period string) string {
	return strings.ToUpper(ticker) + "|" + strings.ToLower(period)
}

// FetchHistory implements domain.PriceSource.
func (s *CachedSource) FetchHistory(ctx context.Context, ticker, period string) ([]domain.PricePoint, error) {
	key := cacheKey(ticker, period)
	return s.memory.GetOrRefresh(ctx, key, s.ttl, func(ctx context.Context) ([]domain.PricePoint, error) {
		return s.load(ctx, key, ticker, period)
	})
}

// load checks the persistent cache, then the upstream. When the upstream
// fails, stale persisted data is better than no data.
func (s *CachedSource) load(ctx context.Context, key, ticker, period string) ([]domain.PricePoint, error) {
	if s.repo != nil {
		var cached []domain.PricePoint
		found, err := s.repo.GetIfFresh(clientdata.TablePriceHistory, key, &cached)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Failed to read price history cache")
		} else if found {
			s.log.Debug().Str("key", key).Int("points", len(cached)).Msg("Cache hit")
			return cached, nil
		}
	}

	points, err := s.upstream.FetchHistory(ctx, ticker, period)
	if err != nil {
		if stale, ok := s.stale(key); ok {
			s.log.Warn().Err(err).Str("key", key).Int("points", len(stale)).Msg("Upstream failed, using stale cached history")
			return stale, nil
		}
		return nil, err
	}

	if s.repo != nil {
		if err := s.repo.Store(clientdata.TablePriceHistory, key, points, clientdata.TTLPriceHistory); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Failed to persist price history")
		}
	}
	return points, nil
}

func (s *CachedSource) stale(key string) ([]domain.PricePoint, bool) {
	if s.repo == nil {
		return nil, false
	}
	var cached []domain.PricePoint
	found, err := s.repo.Get(clientdata.TablePriceHistory, key, &cached)
	if err != nil || !found {
		return nil, false
	}
	return cached, true
}

// Prune drops in-memory series older than maxAge.
func (s *CachedSource) Prune(maxAge time.Duration) int {
	return s.memory.Prune(maxAge)
}

// Entries reports how many series are held in memory.
func (s *CachedSource) Entries() int {
	return s.memory.Len()
}
