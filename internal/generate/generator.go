package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"newsbrief/internal/digest"
	"newsbrief/internal/metrics"
)

// ErrAllProvidersFailed marks total generation failure: every provider
// attempt was exhausted. It is the only unrecoverable failure the pipeline
// defines.
var ErrAllProvidersFailed = errors.New("all generation providers failed")

// ErrNoDocuments is returned when there is nothing to summarize.
var ErrNoDocuments = errors.New("no documents to summarize")

// Provider produces text from a prompt. Implementations are constructed
// explicitly and injected; their lifecycle is scoped to the run.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config controls the retry/fallback policy: the primary is retried
// MaxAttempts times with doubling backoff; if still failing, the secondary
// (if configured) is tried once before surfacing failure.
type Config struct {
	MaxAttempts int
	BackoffBase time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Minute
	}
	return c
}

// Generator calls a primary generative provider, falling back to an
// optional secondary once the primary's attempts exhaust.
type Generator struct {
	primary   Provider
	secondary Provider
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Generator. secondary may be nil.
func New(primary, secondary Provider, cfg Config, logger *zap.Logger) *Generator {
	return &Generator{
		primary:   primary,
		secondary: secondary,
		cfg:       cfg.withDefaults(),
		logger:    logger,
	}
}

// Generate builds the prompt from docs and runs the provider policy. No
// single provider call can crash the pipeline: each attempt's failure is
// caught and logged, and only full exhaustion surfaces as an error.
func (g *Generator) Generate(ctx context.Context, docs []digest.ExtractedDocument) (string, error) {
	if len(docs) == 0 {
		return "", ErrNoDocuments
	}
	if g.primary == nil {
		return "", fmt.Errorf("%w: no primary provider configured", ErrAllProvidersFailed)
	}
	prompt := BuildPrompt(docs)

	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		text, err := g.attempt(ctx, g.primary, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		g.logger.Warn("primary provider attempt failed",
			zap.String("provider", g.primary.Name()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < g.cfg.MaxAttempts {
			if err := g.backoff(ctx, attempt); err != nil {
				return "", fmt.Errorf("%w: %w", ErrAllProvidersFailed, err)
			}
		}
	}

	if g.secondary != nil {
		text, err := g.attempt(ctx, g.secondary, prompt)
		if err == nil {
			g.logger.Info("secondary provider succeeded",
				zap.String("provider", g.secondary.Name()))
			return text, nil
		}
		lastErr = err
		g.logger.Warn("secondary provider failed",
			zap.String("provider", g.secondary.Name()),
			zap.Error(err),
		)
	}

	return "", fmt.Errorf("%w: %w", ErrAllProvidersFailed, lastErr)
}

func (g *Generator) attempt(ctx context.Context, p Provider, prompt string) (string, error) {
	metrics.ProviderAttempts.WithLabelValues(p.Name()).Inc()
	text, err := p.Generate(ctx, prompt)
	if err != nil {
		metrics.ProviderFailures.WithLabelValues(p.Name()).Inc()
		return "", err
	}
	if text == "" {
		metrics.ProviderFailures.WithLabelValues(p.Name()).Inc()
		return "", fmt.Errorf("provider %s returned empty text", p.Name())
	}
	return text, nil
}

// backoff sleeps before the next primary attempt; the delay doubles per
// attempt and the wait honors context cancellation.
func (g *Generator) backoff(ctx context.Context, attempt int) error {
	delay := g.cfg.BackoffBase * time.Duration(1<<(attempt-1))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
