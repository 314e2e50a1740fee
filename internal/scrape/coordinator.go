// Package scrape drives the content extractor over candidate sources in
// concurrency-bounded batches.
package scrape

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"newsbrief/internal/digest"
	"newsbrief/internal/metrics"
)

// Extractor renders one candidate source into a document. Failures come
// back as empty documents, never as errors.
type Extractor interface {
	Extract(ctx context.Context, src digest.CandidateSource) digest.ExtractedDocument
}

// Config controls batching behavior.
type Config struct {
	Concurrency int
	BatchPause  time.Duration
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
	if c.BatchPause < 0 {
		c.BatchPause = 0
	}
	return c
}

// Coordinator partitions sources into fixed-size batches, runs each batch's
// extractions concurrently, and paces between batches to throttle the
// aggregate request rate.
type Coordinator struct {
	extractor Extractor
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Coordinator.
func New(extractor Extractor, cfg Config, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		extractor: extractor,
		cfg:       cfg.withDefaults(),
		logger:    logger,
	}
}

// ScrapeAll extracts every source and returns the non-empty documents.
// At most cfg.Concurrency extractions run at once; the coordinator waits
// for a full batch before admitting the next. A failed extraction never
// affects its siblings: it is filtered out, not propagated. Within a batch
// the result preserves input order.
func (c *Coordinator) ScrapeAll(ctx context.Context, sources []digest.CandidateSource) []digest.ExtractedDocument {
	var documents []digest.ExtractedDocument

	for start := 0; start < len(sources); start += c.cfg.Concurrency {
		if ctx.Err() != nil {
			break
		}
		end := start + c.cfg.Concurrency
		if end > len(sources) {
			end = len(sources)
		}
		batch := sources[start:end]

		results := make([]digest.ExtractedDocument, len(batch))
		var wg sync.WaitGroup
		for i, src := range batch {
			wg.Add(1)
			go func(i int, src digest.CandidateSource) {
				defer wg.Done()
				results[i] = c.extractor.Extract(ctx, src)
			}(i, src)
		}
		wg.Wait()

		for _, doc := range results {
			if doc.Empty() {
				metrics.PagesFailed.Inc()
				c.logger.Debug("empty extraction dropped", zap.String("url", doc.URL))
				continue
			}
			metrics.PagesScraped.Inc()
			documents = append(documents, doc)
		}

		if end < len(sources) {
			c.pause(ctx)
		}
	}

	c.logger.Info("scrape finished",
		zap.Int("candidates", len(sources)),
		zap.Int("documents", len(documents)),
	)
	return documents
}

func (c *Coordinator) pause(ctx context.Context) {
	if c.cfg.BatchPause <= 0 {
		return
	}
	timer := time.NewTimer(c.cfg.BatchPause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
