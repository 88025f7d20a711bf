// Package pipeline orchestrates one query-answering invocation: normalize,
// cache lookup, embed, vector search, answer generation, media attachment,
// cache write, and query logging.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dojosearch/dojosearch/internal/cache"
	"github.com/dojosearch/dojosearch/internal/config"
	"github.com/dojosearch/dojosearch/internal/index"
	"github.com/dojosearch/dojosearch/internal/media"
	"github.com/dojosearch/dojosearch/internal/metrics"
	"github.com/dojosearch/dojosearch/internal/models"
	"github.com/dojosearch/dojosearch/internal/querylog"
)

// Embedder turns normalized text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Generator produces an answer from the query and retrieved context.
type Generator interface {
	SynthesizeAnswer(ctx context.Context, query, searchContext string, onToken func(string) error) (string, int, error)
	Model() string
}

// Config holds the pipeline's tunables. TTL and topK bounds are
// configuration with documented defaults, never hard-coded.
type Config struct {
	CacheTTL           time.Duration
	TopK               int
	TopKMax            int
	RetrievalRetries   int
	RetryBackoff       time.Duration
	ContextTokenBudget int
	MaxSuggestions     int
	EmbedTimeout       time.Duration
	SearchTimeout      time.Duration
	GenerateTimeout    time.Duration
	MediaTimeout       time.Duration
}

// ConfigFrom derives pipeline tunables from the application config.
func ConfigFrom(cfg config.Config) Config {
	return Config{
		CacheTTL:           cfg.CacheTTL,
		TopK:               cfg.TopK,
		TopKMax:            cfg.TopKMax,
		RetrievalRetries:   cfg.RetrievalRetries,
		RetryBackoff:       cfg.RetryBackoff,
		ContextTokenBudget: cfg.ContextTokenBudget,
		MaxSuggestions:     3,
		EmbedTimeout:       cfg.EmbedTimeout,
		SearchTimeout:      cfg.SearchTimeout,
		GenerateTimeout:    cfg.GenerateTimeout,
		MediaTimeout:       cfg.MediaTimeout,
	}
}

// Deps are the pipeline's collaborators. Embedder, Index, and Generator are
// required; the rest degrade to no-ops when nil.
type Deps struct {
	Embedder  Embedder
	Index     index.VectorIndex
	Generator Generator
	Media     media.Resolver
	Cache     cache.Store
	Log       querylog.Log
	Metrics   *metrics.Collector
	Observers []Observer
	Logger    *slog.Logger
}

// Pipeline is the query-answering orchestrator. Invocations are independent
// and safe to run concurrently; the pipeline holds no per-invocation state.
type Pipeline struct {
	cfg       Config
	embedder  Embedder
	idx       index.VectorIndex
	generator Generator
	resolver  media.Resolver
	cache     cache.Store
	log       querylog.Log
	metrics   *metrics.Collector
	observers []Observer
	logger    *slog.Logger
	retry     RetryPolicy
}

// New creates a pipeline.
func New(cfg Config, deps Deps) (*Pipeline, error) {
	if deps.Embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if deps.Index == nil {
		return nil, fmt.Errorf("vector index required")
	}
	if deps.Generator == nil {
		return nil, fmt.Errorf("generator required")
	}

	store := deps.Cache
	if store == nil {
		store = cache.NewNoop()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		cfg:       cfg,
		embedder:  deps.Embedder,
		idx:       deps.Index,
		generator: deps.Generator,
		resolver:  deps.Media,
		cache:     store,
		log:       deps.Log,
		metrics:   deps.Metrics,
		observers: deps.Observers,
		logger:    logger,
		retry: RetryPolicy{
			MaxRetries: cfg.RetrievalRetries,
			Backoff:    cfg.RetryBackoff,
		},
	}, nil
}

// Options configure one invocation.
type Options struct {
	// TopK overrides the configured document count; clamped to the
	// configured maximum.
	TopK int

	// UserID optionally identifies the issuing user for the query log.
	UserID string

	// OnToken streams answer text as it is generated. On a cache hit the
	// cached answer is replayed as a single token.
	OnToken func(token string) error
}

// modelVersion identifies the embedding/generation pair for cache keying so
// a model change invalidates prior entries.
func (p *Pipeline) modelVersion() string {
	return p.embedder.Model() + "+" + p.generator.Model()
}

// observe reports one step to all observers.
func (p *Pipeline) observe(step string, start time.Time, err error) {
	duration := time.Since(start)
	for _, obs := range p.observers {
		obs.OnStep(step, duration, err)
	}
}

// Answer runs the full pipeline for one query. It returns a RetrievalError
// or GenerationError on unrecovered failure; every other failure category
// is absorbed into a degraded but successful result.
func (p *Pipeline) Answer(ctx context.Context, rawQuery string, opts Options) (*models.SearchResult, error) {
	invocationStart := time.Now()
	var steps models.StepLatencies

	// Normalize.
	stepStart := time.Now()
	query := models.NewQuery(rawQuery, opts.UserID)
	steps.Normalize = time.Since(stepStart)
	p.observe(StepNormalize, stepStart, nil)

	topK := opts.TopK
	if topK <= 0 {
		topK = p.cfg.TopK
	}
	if topK > p.cfg.TopKMax {
		topK = p.cfg.TopKMax
	}

	key := models.CacheKey(query.Normalized, topK, p.modelVersion())

	// Cache lookup. Backend failures are misses; the cache must never
	// become a correctness dependency.
	stepStart = time.Now()
	cached, cacheErr := p.cache.Get(ctx, key)
	p.observe(StepCacheGet, stepStart, cacheErr)
	if cacheErr != nil {
		p.logger.Warn("cache get failed, treating as miss", "error", cacheErr)
		cached = nil
	}

	if cached != nil {
		var result models.SearchResult
		if err := json.Unmarshal(cached, &result); err != nil {
			p.logger.Warn("cache entry undecodable, treating as miss", "error", err)
		} else {
			if p.metrics != nil {
				p.metrics.RecordCacheLookup(true)
			}
			if opts.OnToken != nil {
				if err := opts.OnToken(result.Answer); err != nil {
					return nil, err
				}
			}
			p.recordLog(query, true, steps, time.Since(invocationStart), nil, result.ID)
			return &result, nil
		}
	}
	if p.metrics != nil {
		p.metrics.RecordCacheLookup(false)
	}

	// Embed. Shares the idempotent retrieval retry budget.
	var embedding []float32
	stepStart = time.Now()
	embedErr := p.retry.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.EmbedTimeout)
		defer cancel()
		var err error
		embedding, err = p.embedder.Embed(callCtx, query.Normalized)
		return err
	})
	steps.Embed = time.Since(stepStart)
	p.observe(StepEmbed, stepStart, embedErr)
	if embedErr != nil {
		err := &RetrievalError{Err: embedErr}
		p.recordLog(query, false, steps, time.Since(invocationStart), err, "")
		return nil, err
	}

	// Vector search, retried with backoff.
	var docs []models.RetrievedDocument
	stepStart = time.Now()
	searchErr := p.retry.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.SearchTimeout)
		defer cancel()
		var err error
		docs, err = p.idx.Search(callCtx, embedding, topK)
		return err
	})
	steps.Retrieve = time.Since(stepStart)
	p.observe(StepRetrieve, stepStart, searchErr)
	if searchErr != nil {
		err := &RetrievalError{Err: searchErr}
		p.recordLog(query, false, steps, time.Since(invocationStart), err, "")
		return nil, err
	}

	// Context truncation happens here, not in the generator adapter:
	// lowest-similarity documents are dropped first.
	contextDocs := truncateToBudget(docs, p.cfg.ContextTokenBudget)

	// Generate. Cost-bearing, never retried automatically.
	stepStart = time.Now()
	genCtx, cancelGen := context.WithTimeout(ctx, p.cfg.GenerateTimeout)
	answer, tokens, genErr := p.generator.SynthesizeAnswer(genCtx, query.Normalized, buildContext(contextDocs), opts.OnToken)
	cancelGen()
	steps.Generate = time.Since(stepStart)
	p.observe(StepGenerate, stepStart, genErr)
	if genErr != nil {
		err := &GenerationError{Err: genErr}
		p.recordLog(query, false, steps, time.Since(invocationStart), err, "")
		return nil, err
	}

	result := &models.SearchResult{
		ID:          uuid.NewString(),
		Query:       query,
		Answer:      answer,
		Citations:   contextDocs,
		Suggestions: suggestQueries(query.Normalized, contextDocs, p.cfg.MaxSuggestions),
		TokensUsed:  tokens,
		CreatedAt:   time.Now().UTC(),
	}

	// Media attachment is non-fatal enrichment: failure degrades the
	// result, the answer and citations still return.
	if p.resolver != nil {
		stepStart = time.Now()
		mediaCtx, cancelMedia := context.WithTimeout(ctx, p.cfg.MediaTimeout)
		attachments, mediaErr := media.Attach(mediaCtx, p.resolver, contextDocs)
		cancelMedia()
		steps.AttachMedia = time.Since(stepStart)
		p.observe(StepAttachMedia, stepStart, mediaErr)
		if mediaErr != nil {
			p.logger.Warn("media attachment failed, returning degraded result", "error", mediaErr)
			result.Degraded = true
		}
		result.Video = attachments.Video
		result.Images = attachments.Images
	}

	// Cache write happens before returning so an identical query issued
	// after this point observes a hit. Failures are absorbed.
	stepStart = time.Now()
	serialized, marshalErr := json.Marshal(result)
	if marshalErr == nil {
		if setErr := p.cache.Set(ctx, key, serialized, p.cfg.CacheTTL); setErr != nil {
			p.logger.Warn("cache set failed", "error", setErr)
			p.observe(StepCacheSet, stepStart, setErr)
		} else {
			p.observe(StepCacheSet, stepStart, nil)
		}
	} else {
		p.logger.Warn("result serialization failed, skipping cache write", "error", marshalErr)
	}

	p.recordLog(query, false, steps, time.Since(invocationStart), nil, result.ID)
	return result, nil
}

// recordLog dispatches the query log entry, fire-and-forget.
func (p *Pipeline) recordLog(query models.Query, cacheHit bool, steps models.StepLatencies, total time.Duration, invErr error, resultID string) {
	entry := models.QueryLogEntry{
		Query:     query.Normalized,
		UserID:    query.UserID,
		CacheHit:  cacheHit,
		Steps:     steps,
		Total:     total,
		ResultID:  resultID,
		CreatedAt: time.Now().UTC(),
	}
	if invErr != nil {
		entry.Error = true
		entry.ErrorMsg = invErr.Error()
	}
	if p.metrics != nil {
		p.metrics.RecordTiming(metrics.OpPipeline, total, invErr != nil)
	}
	querylog.RecordAsync(p.log, entry)
}
