package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Query is an immutable description of one incoming question.
type Query struct {
	Raw        string    `json:"raw"`
	Normalized string    `json:"normalized"`
	UserID     string    `json:"user_id,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// NewQuery normalizes raw text and stamps the query.
func NewQuery(raw, userID string) Query {
	return Query{
		Raw:        raw,
		Normalized: Normalize(raw),
		UserID:     userID,
		ReceivedAt: time.Now().UTC(),
	}
}

// Normalize case-folds and collapses whitespace so identical intents map to
// identical cache keys. Pure and deterministic.
func Normalize(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// CacheKey derives the cache key for a normalized query plus the retrieval
// parameters that change the computed result.
func CacheKey(normalized string, topK int, modelVersion string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|k=%d|m=%s", normalized, topK, modelVersion)))
	return hex.EncodeToString(h[:])
}

// SearchResult is the unit returned to the caller and stored in the cache.
// Immutable once constructed.
type SearchResult struct {
	ID          string              `json:"id"`
	Query       Query               `json:"query"`
	Answer      string              `json:"answer"`
	Citations   []RetrievedDocument `json:"citations"`
	Video       *MediaRef           `json:"video,omitempty"`
	Images      []MediaRef          `json:"images,omitempty"`
	Suggestions []string            `json:"suggestions,omitempty"`

	// Degraded marks a result that is missing optional enrichment (media)
	// but still carries the answer and citations.
	Degraded bool `json:"degraded,omitempty"`

	TokensUsed int       `json:"tokens_used,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeedbackRecord is a user judgment on a result. Append-only, never read
// back into the pipeline.
type FeedbackRecord struct {
	ResultID  string    `json:"result_id"`
	Helpful   bool      `json:"helpful"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StepLatencies is the per-step latency breakdown of one invocation.
// Steps skipped on a cache hit record zero.
type StepLatencies struct {
	Normalize   time.Duration `json:"normalize"`
	Embed       time.Duration `json:"embed"`
	Retrieve    time.Duration `json:"retrieve"`
	Generate    time.Duration `json:"generate"`
	AttachMedia time.Duration `json:"attach_media"`
}

// QueryLogEntry is the append-only record of one pipeline invocation.
type QueryLogEntry struct {
	Query    string        `json:"query"`
	UserID   string        `json:"user_id,omitempty"`
	CacheHit bool          `json:"cache_hit"`
	Steps    StepLatencies `json:"steps"`
	Total    time.Duration `json:"total"`
	Error    bool          `json:"error"`
	ErrorMsg string        `json:"error_msg,omitempty"`
	ResultID string        `json:"result_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
