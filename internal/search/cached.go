package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"verilens/internal/cache"
)

// CachedWebSearcher wraps a WebSearcher with a cache layer. Search queries
// repeat across batch runs, so hits save both latency and API quota.
type CachedWebSearcher struct {
	inner WebSearcher
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedWebSearcher creates a cache-backed web searcher
func NewCachedWebSearcher(inner WebSearcher, c cache.Cache, ttl time.Duration) *CachedWebSearcher {
	return &CachedWebSearcher{
		inner: inner,
		cache: c,
		ttl:   ttl,
	}
}

// Search returns cached results when available, querying the underlying
// provider on a miss
func (s *CachedWebSearcher) Search(ctx context.Context, query string, maxResults int) ([]WebResult, error) {
	key := cache.Key("web", fmt.Sprintf("%s|%d", query, maxResults))

	if data, found := s.cache.Get(key); found {
		var results []WebResult
		if err := json.Unmarshal(data, &results); err == nil {
			return results, nil
		}
		// Corrupt entry, drop it and fall through to the provider
		_ = s.cache.Delete(key)
	}

	results, err := s.inner.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(results); err == nil {
		_ = s.cache.Set(key, data, s.ttl)
	}
	return results, nil
}

// CachedEncyclopediaSearcher wraps an EncyclopediaSearcher with a cache layer
type CachedEncyclopediaSearcher struct {
	inner EncyclopediaSearcher
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedEncyclopediaSearcher creates a cache-backed encyclopedia searcher
func NewCachedEncyclopediaSearcher(inner EncyclopediaSearcher, c cache.Cache, ttl time.Duration) *CachedEncyclopediaSearcher {
	return &CachedEncyclopediaSearcher{
		inner: inner,
		cache: c,
		ttl:   ttl,
	}
}

// Search returns cached results when available, querying the underlying
// provider on a miss
func (s *CachedEncyclopediaSearcher) Search(ctx context.Context, query string, maxResults int) ([]WikiResult, error) {
	key := cache.Key("wiki", fmt.Sprintf("%s|%d", query, maxResults))

	if data, found := s.cache.Get(key); found {
		var results []WikiResult
		if err := json.Unmarshal(data, &results); err == nil {
			return results, nil
		}
		_ = s.cache.Delete(key)
	}

	results, err := s.inner.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(results); err == nil {
		_ = s.cache.Set(key, data, s.ttl)
	}
	return results, nil
}
