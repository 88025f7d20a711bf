package index

import (
	"context"
	"fmt"

	"github.com/dojosearch/dojosearch/internal/db"
	"github.com/dojosearch/dojosearch/internal/models"
)

// Surreal searches the SurrealDB document table through its HNSW index.
type Surreal struct {
	client *db.Client
}

var _ VectorIndex = (*Surreal)(nil)

// NewSurreal creates a SurrealDB-backed vector index.
func NewSurreal(client *db.Client) *Surreal {
	return &Surreal{client: client}
}

// Search returns the topK most similar documents.
func (s *Surreal) Search(ctx context.Context, embedding []float32, topK int) ([]models.RetrievedDocument, error) {
	rows, err := s.client.QuerySearchDocuments(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	docs := make([]models.RetrievedDocument, 0, len(rows))
	for _, row := range rows {
		doc := models.RetrievedDocument{
			ID:      row.ID.String(),
			Score:   row.Score,
			Title:   row.Title,
			Content: row.Content,
		}
		if row.URL != nil {
			doc.URL = *row.URL
		}
		if row.MediaID != nil {
			doc.MediaID = *row.MediaID
		}
		if row.MediaKind != nil {
			doc.MediaKind = models.MediaKind(*row.MediaKind)
		}
		docs = append(docs, doc)
	}

	// The query orders by score already; re-sort to enforce the ID
	// tiebreak.
	models.SortDocuments(docs)
	return docs, nil
}
