// Package querylog records one append-only entry per pipeline invocation.
// Writes are best-effort: a log failure never fails or delays the caller.
package querylog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dojosearch/dojosearch/internal/models"
)

// Log persists query log entries.
type Log interface {
	Record(ctx context.Context, entry models.QueryLogEntry) error
}

// RecordAsync writes an entry on a background goroutine, detached from the
// caller's context so cancellation after the response does not lose the
// entry. Errors are logged and swallowed.
func RecordAsync(log Log, entry models.QueryLogEntry) {
	if log == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := log.Record(ctx, entry); err != nil {
			slog.Warn("query log write failed", "query", entry.Query, "error", err)
		}
	}()
}

// Memory keeps entries in process. Used in tests and as a fallback when no
// database is configured.
type Memory struct {
	mu      sync.RWMutex
	entries []models.QueryLogEntry
}

var _ Log = (*Memory)(nil)

// NewMemory creates an in-memory query log.
func NewMemory() *Memory {
	return &Memory{}
}

// Record appends the entry.
func (m *Memory) Record(_ context.Context, entry models.QueryLogEntry) error {
	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()
	return nil
}

// Entries returns a copy of all recorded entries.
func (m *Memory) Entries() []models.QueryLogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.QueryLogEntry, len(m.entries))
	copy(out, m.entries)
	return out
}
