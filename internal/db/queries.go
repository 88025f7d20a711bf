package db

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/dojosearch/dojosearch/internal/models"
)

// DocumentRow is the document table shape.
type DocumentRow struct {
	ID        surrealmodels.RecordID `json:"id,omitempty"`
	Title     string                 `json:"title"`
	URL       *string                `json:"url,omitempty"`
	Content   string                 `json:"content"`
	Embedding []float32              `json:"embedding,omitempty"`
	MediaID   *string                `json:"media_id,omitempty"`
	MediaKind *string                `json:"media_kind,omitempty"`
	Score     float64                `json:"score,omitempty"`
}

// QuerySearchDocuments runs a KNN search over the document HNSW index and
// returns rows with cosine similarity scores, best first.
func (c *Client) QuerySearchDocuments(ctx context.Context, embedding []float32, limit int) ([]DocumentRow, error) {
	// KNN operator with ef=40; candidate set is 2x limit for recall, the
	// final LIMIT trims after scoring.
	sql := fmt.Sprintf(`
		SELECT id, title, url, content, media_id, media_kind,
		       vector::similarity::cosine(embedding, $emb) AS score
		FROM document
		WHERE embedding <|%d,40|> $emb
		ORDER BY score DESC
		LIMIT $limit
	`, limit*2)

	results, err := surrealdb.Query[[]DocumentRow](ctx, c.db, sql, map[string]any{
		"emb":   embedding,
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return []DocumentRow{}, nil
}

// QueryInsertDocument inserts a document with its embedding. Used by seeding
// tooling and tests; the index is normally populated externally.
func (c *Client) QueryInsertDocument(ctx context.Context, row DocumentRow) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE document CONTENT {
			title: $title,
			url: $url,
			content: $content,
			embedding: $embedding,
			media_id: $media_id,
			media_kind: $media_kind
		}
	`, map[string]any{
		"title":      row.Title,
		"url":        row.URL,
		"content":    row.Content,
		"embedding":  row.Embedding,
		"media_id":   row.MediaID,
		"media_kind": row.MediaKind,
	})
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

type cacheRow struct {
	Key     string    `json:"key"`
	Value   []byte    `json:"value"`
	Expires time.Time `json:"expires"`
}

// QueryCacheGet returns the cached value for key, or nil when absent or
// expired.
func (c *Client) QueryCacheGet(ctx context.Context, key string) ([]byte, error) {
	results, err := surrealdb.Query[[]cacheRow](ctx, c.db, `
		SELECT key, value, expires FROM result_cache
		WHERE key = $key AND expires > time::now()
		LIMIT 1
	`, map[string]any{"key": key})
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return (*results)[0].Result[0].Value, nil
}

// QueryCacheSet upserts the cached value for key with the given TTL.
// Last writer wins per key.
func (c *Client) QueryCacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE result_cache WHERE key = $key;
		CREATE result_cache CONTENT {
			key: $key,
			value: $value,
			expires: $expires
		}
	`, map[string]any{
		"key":     key,
		"value":   value,
		"expires": time.Now().Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// QueryInsertLog appends one query log entry.
func (c *Client) QueryInsertLog(ctx context.Context, entry models.QueryLogEntry) error {
	vars := map[string]any{
		"query":           entry.Query,
		"cache_hit":       entry.CacheHit,
		"error":           entry.Error,
		"normalize_ms":    entry.Steps.Normalize.Milliseconds(),
		"embed_ms":        entry.Steps.Embed.Milliseconds(),
		"retrieve_ms":     entry.Steps.Retrieve.Milliseconds(),
		"generate_ms":     entry.Steps.Generate.Milliseconds(),
		"attach_media_ms": entry.Steps.AttachMedia.Milliseconds(),
		"total_ms":        entry.Total.Milliseconds(),
	}
	if entry.UserID != "" {
		vars["user_id"] = entry.UserID
	}
	if entry.ErrorMsg != "" {
		vars["error_msg"] = entry.ErrorMsg
	}
	if entry.ResultID != "" {
		vars["result_id"] = entry.ResultID
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE query_log CONTENT {
			query: $query,
			user_id: $user_id,
			cache_hit: $cache_hit,
			error: $error,
			error_msg: $error_msg,
			result_id: $result_id,
			normalize_ms: $normalize_ms,
			embed_ms: $embed_ms,
			retrieve_ms: $retrieve_ms,
			generate_ms: $generate_ms,
			attach_media_ms: $attach_media_ms,
			total_ms: $total_ms
		}
	`, vars)
	if err != nil {
		return fmt.Errorf("insert query log: %w", err)
	}
	return nil
}

// LogStats aggregates the query log for the stats surfaces.
type LogStats struct {
	Total      int     `json:"total"`
	CacheHits  int     `json:"cache_hits"`
	Errors     int     `json:"errors"`
	AvgTotalMs float64 `json:"avg_total_ms"`
}

// QueryLogStats computes aggregate counters over the query log.
func (c *Client) QueryLogStats(ctx context.Context) (LogStats, error) {
	results, err := surrealdb.Query[[]LogStats](ctx, c.db, `
		SELECT
			count() AS total,
			count(cache_hit = true) AS cache_hits,
			count(error = true) AS errors,
			math::mean(total_ms) AS avg_total_ms
		FROM query_log
		GROUP ALL
	`, nil)
	if err != nil {
		return LogStats{}, fmt.Errorf("query log stats: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return LogStats{}, nil
	}
	return (*results)[0].Result[0], nil
}

// QueryInsertFeedback appends one feedback record.
func (c *Client) QueryInsertFeedback(ctx context.Context, rec models.FeedbackRecord) error {
	vars := map[string]any{
		"result_id": rec.ResultID,
		"helpful":   rec.Helpful,
	}
	if rec.Comment != "" {
		vars["comment"] = rec.Comment
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE feedback CONTENT {
			result_id: $result_id,
			helpful: $helpful,
			comment: $comment
		}
	`, vars)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

type countRow struct {
	Count int `json:"count"`
}

// QueryCountFeedback counts feedback rows for a result ID.
func (c *Client) QueryCountFeedback(ctx context.Context, resultID string) (int, error) {
	results, err := surrealdb.Query[[]countRow](ctx, c.db, `
		SELECT count() AS count FROM feedback WHERE result_id = $result_id GROUP ALL
	`, map[string]any{"result_id": resultID})
	if err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Count, nil
}
