// Package app wires configuration into the pipeline and its collaborators.
// It is the dependency-injection root shared by the CLI and the server.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dojosearch/dojosearch/internal/cache"
	"github.com/dojosearch/dojosearch/internal/config"
	"github.com/dojosearch/dojosearch/internal/db"
	"github.com/dojosearch/dojosearch/internal/feedback"
	"github.com/dojosearch/dojosearch/internal/index"
	"github.com/dojosearch/dojosearch/internal/llm"
	"github.com/dojosearch/dojosearch/internal/media"
	"github.com/dojosearch/dojosearch/internal/metrics"
	"github.com/dojosearch/dojosearch/internal/pipeline"
	"github.com/dojosearch/dojosearch/internal/querylog"
)

// App holds all constructed dependencies.
type App struct {
	Config   config.Config
	DB       *db.Client
	Embedder *llm.Embedder
	Pipeline *pipeline.Pipeline
	Feedback feedback.Store
	Metrics  *metrics.Collector
	Logger   *slog.Logger
}

// New connects to the database, initializes the schema, and builds the
// pipeline with all collaborators.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	mc := metrics.NewCollector()

	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := dbClient.InitSchema(ctx); err != nil {
		_ = dbClient.Close(ctx)
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	embedder, err := llm.NewEmbedder(cfg)
	if err != nil {
		_ = dbClient.Close(ctx)
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	model, err := llm.NewModel(ctx, cfg, mc)
	if err != nil {
		_ = dbClient.Close(ctx)
		return nil, fmt.Errorf("init model: %w", err)
	}

	var store cache.Store
	switch cfg.CacheBackend {
	case "surreal":
		store = cache.NewSurreal(dbClient)
	case "none":
		store = cache.NewNoop()
	default:
		store = cache.NewMemory()
	}

	var resolver media.Resolver
	if cfg.MediaBaseURL != "" {
		resolver, err = media.NewStreamClient(cfg.MediaBaseURL, cfg.MediaToken, cfg.MediaURLTTL, cfg.MediaTimeout)
		if err != nil {
			_ = dbClient.Close(ctx)
			return nil, fmt.Errorf("init media resolver: %w", err)
		}
	}

	p, err := pipeline.New(pipeline.ConfigFrom(cfg), pipeline.Deps{
		Embedder:  embedder,
		Index:     index.NewSurreal(dbClient),
		Generator: model,
		Media:     resolver,
		Cache:     store,
		Log:       querylog.NewSurreal(dbClient),
		Metrics:   mc,
		Observers: []pipeline.Observer{
			pipeline.SlogObserver{Logger: logger},
			pipeline.MetricsObserver{Collector: mc},
		},
		Logger: logger,
	})
	if err != nil {
		_ = dbClient.Close(ctx)
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	return &App{
		Config:   cfg,
		DB:       dbClient,
		Embedder: embedder,
		Pipeline: p,
		Feedback: feedback.NewSurreal(dbClient),
		Metrics:  mc,
		Logger:   logger,
	}, nil
}

// Close releases all connections.
func (a *App) Close(ctx context.Context) error {
	if a.DB != nil {
		return a.DB.Close(ctx)
	}
	return nil
}
