// Package pipeline orchestrates one digest run: search, seen-filtering,
// scraping, summarization, validation, projection, persistence and delivery.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"newsbrief/internal/digest"
	"newsbrief/internal/metrics"
	"newsbrief/internal/seen"
)

// ErrNoCandidates is returned when search yields nothing new to scrape.
var ErrNoCandidates = errors.New("no unseen candidate sources")

// Searcher finds candidate news pages.
type Searcher interface {
	Search(ctx context.Context, query string, count int, recency string) ([]digest.CandidateSource, error)
}

// Scraper turns candidate sources into extracted documents.
type Scraper interface {
	ScrapeAll(ctx context.Context, sources []digest.CandidateSource) []digest.ExtractedDocument
}

// Summarizer produces raw digest text from extracted documents.
type Summarizer interface {
	Generate(ctx context.Context, docs []digest.ExtractedDocument) (string, error)
}

// Store persists the finished record.
type Store interface {
	Upsert(ctx context.Context, rec digest.Record) error
}

// Notifier delivers the projected template message.
type Notifier interface {
	Send(ctx context.Context, record digest.TemplateRecord) error
}

// Config parameterizes a run.
type Config struct {
	Query       string
	Count       int
	Recency     string
	MessageType string
}

func (c Config) withDefaults() Config {
	if c.Count <= 0 {
		c.Count = 20
	}
	if c.MessageType == "" {
		c.MessageType = "daily_news_digest"
	}
	return c
}

// Pipeline wires the run's collaborators. All are injected; Notifier may be
// nil when delivery is disabled.
type Pipeline struct {
	searcher   Searcher
	scraper    Scraper
	summarizer Summarizer
	store      Store
	notifier   Notifier
	registry   *seen.Registry
	seenStore  seen.Store
	cfg        Config
	logger     *zap.Logger

	now   func() time.Time
	newID func() string
}

// New constructs a Pipeline.
func New(
	searcher Searcher,
	scraper Scraper,
	summarizer Summarizer,
	store Store,
	notifier Notifier,
	registry *seen.Registry,
	seenStore seen.Store,
	cfg Config,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		searcher:   searcher,
		scraper:    scraper,
		summarizer: summarizer,
		store:      store,
		notifier:   notifier,
		registry:   registry,
		seenStore:  seenStore,
		cfg:        cfg.withDefaults(),
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Run executes one end-to-end digest run and returns the persisted record.
func (p *Pipeline) Run(ctx context.Context) (digest.Record, error) {
	runID := p.newID()
	logger := p.logger.With(zap.String("run_id", runID))

	candidates, err := p.searcher.Search(ctx, p.cfg.Query, p.cfg.Count, p.cfg.Recency)
	if err != nil {
		return digest.Record{}, fmt.Errorf("search candidates: %w", err)
	}

	fresh := p.filterSeen(candidates)
	logger.Info("candidates selected",
		zap.Int("found", len(candidates)),
		zap.Int("fresh", len(fresh)),
	)
	if len(fresh) == 0 {
		return digest.Record{}, ErrNoCandidates
	}

	docs := p.scraper.ScrapeAll(ctx, fresh)

	raw, err := p.summarizer.Generate(ctx, docs)
	if err != nil {
		return digest.Record{}, fmt.Errorf("generate digest: %w", err)
	}

	knownURLs := make([]string, len(docs))
	for i, doc := range docs {
		knownURLs[i] = doc.URL
	}
	validated := digest.Validate(raw, knownURLs)
	p.observePoints(validated)

	generatedAt := p.now()
	rec := digest.Record{
		ID:          runID,
		MessageType: p.cfg.MessageType,
		Content:     digest.Project(validated, generatedAt),
		GeneratedAt: generatedAt,
	}
	for _, pt := range validated.Points {
		rec.SourceURLs = append(rec.SourceURLs, pt.SourceURL)
	}

	if err := p.store.Upsert(ctx, rec); err != nil {
		return digest.Record{}, fmt.Errorf("persist digest: %w", err)
	}

	p.markProcessed(ctx, fresh, logger)

	if p.notifier != nil {
		if err := p.notifier.Send(ctx, rec.Content); err != nil {
			return rec, fmt.Errorf("deliver digest: %w", err)
		}
	}

	logger.Info("run finished",
		zap.Int("documents", len(docs)),
		zap.Int("points", len(validated.Points)),
	)
	return rec, nil
}

// filterSeen drops candidates a previous run already processed, preserving
// search order.
func (p *Pipeline) filterSeen(candidates []digest.CandidateSource) []digest.CandidateSource {
	if p.registry == nil {
		return candidates
	}
	fresh := make([]digest.CandidateSource, 0, len(candidates))
	for _, c := range candidates {
		if p.registry.Has(c.URL) {
			continue
		}
		fresh = append(fresh, c)
	}
	return fresh
}

// markProcessed records every dispatched candidate as seen so failed
// extractions are not retried indefinitely across runs.
func (p *Pipeline) markProcessed(ctx context.Context, sources []digest.CandidateSource, logger *zap.Logger) {
	if p.registry == nil {
		return
	}
	for _, src := range sources {
		p.registry.Mark(src.URL)
	}
	if err := p.registry.Flush(ctx, p.seenStore); err != nil {
		logger.Warn("flush seen registry failed", zap.Error(err))
	}
}

func (p *Pipeline) observePoints(v digest.ValidatedDigest) {
	for _, pt := range v.Points {
		if pt.Backfill {
			metrics.PointsBackfilled.Inc()
			continue
		}
		metrics.PointsAccepted.Inc()
	}
}
