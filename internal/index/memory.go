package index

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/dojosearch/dojosearch/internal/models"
)

// Memory is an exact cosine-similarity index over in-process documents.
// Used in tests and for small offline corpora.
type Memory struct {
	mu   sync.RWMutex
	docs []memoryDoc
}

type memoryDoc struct {
	doc       models.RetrievedDocument
	embedding []float32
}

var _ VectorIndex = (*Memory)(nil)

// NewMemory creates an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{}
}

// Add stores a document with its embedding. The document's Score field is
// ignored; scores are computed per search.
func (m *Memory) Add(doc models.RetrievedDocument, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("empty embedding for document %s", doc.ID)
	}
	m.mu.Lock()
	m.docs = append(m.docs, memoryDoc{doc: doc, embedding: embedding})
	m.mu.Unlock()
	return nil
}

// Search scores every stored document against the query embedding and
// returns the topK best.
func (m *Memory) Search(_ context.Context, embedding []float32, topK int) ([]models.RetrievedDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scored := make([]models.RetrievedDocument, 0, len(m.docs))
	for _, entry := range m.docs {
		score, err := cosineSimilarity(embedding, entry.embedding)
		if err != nil {
			return nil, err
		}
		doc := entry.doc
		doc.Score = score
		scored = append(scored, doc)
	}

	models.SortDocuments(scored)
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
