package tokengate

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// authCache caches successful authentication results keyed by raw token
// string. Only positive results are stored: misses, expiry cleanups, and
// failures always hit the store, so the cache can never pin a dead token
// beyond its TTL.
type authCache struct {
	cache *ristretto.Cache[string, *Auth]
	ttl   time.Duration
}

func newAuthCache(cfg CacheConfig) (*authCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, *Auth]{
		NumCounters: cfg.MaxEntries * 10,
		MaxCost:     cfg.MaxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("auth cache: %w", err)
	}

	return &authCache{
		cache: cache,
		ttl:   cfg.TTL,
	}, nil
}

func (c *authCache) get(token string) (*Auth, bool) {
	if c == nil {
		return nil, false
	}
	return c.cache.Get(token)
}

func (c *authCache) set(token string, auth *Auth) {
	if c == nil {
		return
	}
	c.cache.SetWithTTL(token, auth, 1, c.ttl)
}

func (c *authCache) invalidate(token string) {
	if c == nil {
		return
	}
	c.cache.Del(token)
}

// wait flushes pending writes. Admission is asynchronous; tests call
// this before asserting on cache contents.
func (c *authCache) wait() {
	if c == nil {
		return
	}
	c.cache.Wait()
}

func (c *authCache) close() {
	if c == nil {
		return
	}
	c.cache.Close()
}
