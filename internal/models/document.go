// Package models defines the core data types shared across the pipeline.
package models

import (
	"sort"
	"time"
)

// MediaKind identifies the type of a media reference.
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaImage MediaKind = "image"
)

// MediaRef is a resolved media attachment. URL may be time-limited (signed).
type MediaRef struct {
	ID        string     `json:"id"`
	Kind      MediaKind  `json:"kind"`
	URL       string     `json:"url"`
	Title     string     `json:"title,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// RetrievedDocument is a single vector-search match used as answer context
// and returned to the caller as a citation.
type RetrievedDocument struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
	Title   string  `json:"title"`
	URL     string  `json:"url,omitempty"`
	Content string  `json:"content,omitempty"`

	// MediaID points at an optional video or image asset associated with
	// the document. Zero or one per document.
	MediaID   string    `json:"media_id,omitempty"`
	MediaKind MediaKind `json:"media_kind,omitempty"`
}

// SortDocuments orders documents descending by similarity score, ties broken
// by document ID ascending. All retrieval paths go through this so result
// ordering is deterministic.
func SortDocuments(docs []RetrievedDocument) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		return docs[i].ID < docs[j].ID
	})
}
