package querylog

import (
	"context"

	"github.com/dojosearch/dojosearch/internal/db"
	"github.com/dojosearch/dojosearch/internal/models"
)

// Surreal appends entries to the SurrealDB query_log table.
type Surreal struct {
	client *db.Client
}

var _ Log = (*Surreal)(nil)

// NewSurreal creates a SurrealDB-backed query log.
func NewSurreal(client *db.Client) *Surreal {
	return &Surreal{client: client}
}

// Record appends the entry.
func (s *Surreal) Record(ctx context.Context, entry models.QueryLogEntry) error {
	return s.client.QueryInsertLog(ctx, entry)
}
