// Package app initializes and holds the long-lived services of a digest
// run, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"newsbrief/internal/config"
	"newsbrief/internal/extract"
	"newsbrief/internal/generate"
	"newsbrief/internal/notify"
	"newsbrief/internal/pipeline"
	"newsbrief/internal/scrape"
	"newsbrief/internal/search"
	"newsbrief/internal/seen"
	"newsbrief/internal/store"
)

// App holds the shared services of the digest service. It is initialized
// once at startup and fails fast when any critical service cannot be built.
type App struct {
	logger      *zap.Logger
	seenStore   *seen.PostgresStore
	registry    *seen.Registry
	digestStore *store.DigestStore
	extractor   *extract.Extractor
	pipeline    *pipeline.Pipeline
}

// New builds every collaborator from configuration.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	seenStore, err := seen.NewPostgresStore(ctx, seen.PostgresStoreConfig{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("init seen store: %w", err)
	}

	registry, err := seen.LoadRegistry(ctx, seenStore, cfg.Scrape.SeenCapacity)
	if err != nil {
		seenStore.Close()
		return nil, fmt.Errorf("load seen registry: %w", err)
	}

	digestStore, err := store.New(ctx, store.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
	})
	if err != nil {
		seenStore.Close()
		return nil, fmt.Errorf("init digest store: %w", err)
	}

	extractor, err := extract.New(extract.Config{
		UserAgent:   cfg.Scrape.UserAgent,
		NavTimeout:  cfg.NavTimeout(),
		MaxAttempts: cfg.Scrape.MaxAttempts,
		RetryDelay:  cfg.RetryDelay(),
		DomainQPS:   cfg.Scrape.DomainQPS,
	}, logger)
	if err != nil {
		digestStore.Close()
		seenStore.Close()
		return nil, fmt.Errorf("init extractor: %w", err)
	}

	coordinator := scrape.New(extractor, scrape.Config{
		Concurrency: cfg.Scrape.Concurrency,
		BatchPause:  cfg.BatchPause(),
	}, logger)

	primary := generate.NewOpenAIProvider(generate.OpenAIConfig{
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		Endpoint: cfg.LLM.Endpoint,
	})
	var secondary generate.Provider
	if cfg.LLM.FallbackAPIKey != "" {
		secondary = generate.NewGeminiProvider(generate.GeminiConfig{
			APIKey: cfg.LLM.FallbackAPIKey,
			Model:  cfg.LLM.FallbackModel,
		})
	}
	generator := generate.New(primary, secondary, generate.Config{
		MaxAttempts: cfg.LLM.MaxAttempts,
		BackoffBase: cfg.BackoffBase(),
	}, logger)

	searcher := search.NewClient(search.Config{
		APIKey:   cfg.Search.APIKey,
		EngineID: cfg.Search.EngineID,
	})

	var notifier pipeline.Notifier
	if cfg.Notify.Endpoint != "" {
		notifier = notify.NewClient(notify.Config{
			Endpoint:   cfg.Notify.Endpoint,
			Token:      cfg.Notify.Token,
			TemplateID: cfg.Notify.TemplateID,
		})
	}

	p := pipeline.New(
		searcher,
		coordinator,
		generator,
		digestStore,
		notifier,
		registry,
		seenStore,
		pipeline.Config{
			Query:   cfg.Search.Query,
			Count:   cfg.Search.Count,
			Recency: cfg.Search.Recency,
		},
		logger,
	)

	return &App{
		logger:      logger,
		seenStore:   seenStore,
		registry:    registry,
		digestStore: digestStore,
		extractor:   extractor,
		pipeline:    p,
	}, nil
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Pipeline returns the assembled digest pipeline.
func (a *App) Pipeline() *pipeline.Pipeline {
	return a.pipeline
}

// Close releases browser and database resources.
func (a *App) Close() {
	if a.extractor != nil {
		a.extractor.Close()
	}
	if a.digestStore != nil {
		a.digestStore.Close()
	}
	if a.seenStore != nil {
		a.seenStore.Close()
	}
}
