package spotify

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

const trendingKey = "trending"

// CachedSource remembers the last successful, non-empty fetch for a while.
// Failures are never cached, so the next call retries upstream. A
// non-positive ttl disables caching.
type CachedSource struct {
	src   Source
	cache *cache.Cache
}

func NewCachedSource(src Source, ttl time.Duration) *CachedSource {
	c := &CachedSource{src: src}
	if ttl > 0 {
		c.cache = cache.New(ttl, 2*ttl)
	}
	return c
}

func (c *CachedSource) FetchTrending(ctx context.Context) ([]Track, error) {
	if c.cache == nil {
		return c.src.FetchTrending(ctx)
	}
	if v, ok := c.cache.Get(trendingKey); ok {
		return v.([]Track), nil
	}

	tracks, err := c.src.FetchTrending(ctx)
	if err != nil || len(tracks) == 0 {
		return tracks, err
	}
	c.cache.SetDefault(trendingKey, tracks)
	return tracks, nil
}

// Flush drops the cached tracks.
func (c *CachedSource) Flush() {
	if c.cache != nil {
		c.cache.Flush()
	}
}
