// Package index adapts vector stores to the retrieval interface the
// pipeline depends on.
package index

import (
	"context"

	"github.com/dojosearch/dojosearch/internal/models"
)

// VectorIndex is nearest-neighbor search over stored document vectors.
// Implementations return documents sorted descending by similarity score,
// ties broken by document ID ascending.
type VectorIndex interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]models.RetrievedDocument, error)
}
