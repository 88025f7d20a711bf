package cache

import (
	"context"
	"time"
)

// Noop is a cache that stores nothing. Every lookup is a miss.
type Noop struct{}

var _ Store = Noop{}

// NewNoop creates a no-op cache store.
func NewNoop() Noop { return Noop{} }

// Get always misses.
func (Noop) Get(context.Context, string) ([]byte, error) { return nil, nil }

// Set discards the value.
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
