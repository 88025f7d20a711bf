package cache

import (
	"context"
	"time"

	"github.com/dojosearch/dojosearch/internal/db"
)

// Surreal stores cache entries in the SurrealDB result_cache table so
// multiple server instances share one cache.
type Surreal struct {
	client *db.Client
}

var _ Store = (*Surreal)(nil)

// NewSurreal creates a SurrealDB-backed cache store.
func NewSurreal(client *db.Client) *Surreal {
	return &Surreal{client: client}
}

// Get returns the cached value or nil when absent or expired.
func (s *Surreal) Get(ctx context.Context, key string) ([]byte, error) {
	return s.client.QueryCacheGet(ctx, key)
}

// Set upserts the value under key with the given TTL.
func (s *Surreal) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.QueryCacheSet(ctx, key, value, ttl)
}
