// Package cache provides the result cache used to short-circuit repeated
// queries. Backends are interchangeable; callers must treat every cache
// failure as a miss.
package cache

import (
	"context"
	"time"
)

// Store is a key/value cache with per-entry TTL. Values are opaque bytes;
// the pipeline stores serialized results so a hit is byte-for-byte what was
// written.
type Store interface {
	// Get returns the value for key, or nil if absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
