// Package feedback stores user judgments on results. Records are append-only
// and used for offline analysis only; the pipeline never reads them back.
package feedback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dojosearch/dojosearch/internal/db"
	"github.com/dojosearch/dojosearch/internal/models"
)

// Store persists feedback records.
type Store interface {
	Submit(ctx context.Context, rec models.FeedbackRecord) error
}

// Validate checks a record before submission.
func Validate(rec models.FeedbackRecord) error {
	if rec.ResultID == "" {
		return fmt.Errorf("result_id required")
	}
	return nil
}

// Memory keeps records in process.
type Memory struct {
	mu      sync.RWMutex
	records []models.FeedbackRecord
}

var _ Store = (*Memory)(nil)

// NewMemory creates an in-memory feedback store.
func NewMemory() *Memory {
	return &Memory{}
}

// Submit appends the record.
func (m *Memory) Submit(_ context.Context, rec models.FeedbackRecord) error {
	if err := Validate(rec); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()
	return nil
}

// Records returns a copy of all stored records.
func (m *Memory) Records() []models.FeedbackRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.FeedbackRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Surreal appends records to the SurrealDB feedback table.
type Surreal struct {
	client *db.Client
}

var _ Store = (*Surreal)(nil)

// NewSurreal creates a SurrealDB-backed feedback store.
func NewSurreal(client *db.Client) *Surreal {
	return &Surreal{client: client}
}

// Submit appends the record.
func (s *Surreal) Submit(ctx context.Context, rec models.FeedbackRecord) error {
	if err := Validate(rec); err != nil {
		return err
	}
	return s.client.QueryInsertFeedback(ctx, rec)
}
