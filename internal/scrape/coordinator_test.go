package scrape

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"newsbrief/internal/digest"
)

type trackingExtractor struct {
	mu        sync.Mutex
	inFlight  int64
	highWater int64
	delay     time.Duration
	failURLs  map[string]bool
}

func (e *trackingExtractor) Extract(_ context.Context, src digest.CandidateSource) digest.ExtractedDocument {
	current := atomic.AddInt64(&e.inFlight, 1)
	defer atomic.AddInt64(&e.inFlight, -1)

	e.mu.Lock()
	if current > e.highWater {
		e.highWater = current
	}
	e.mu.Unlock()

	if e.delay > 0 {
		time.Sleep(e.delay)
	}

	doc := digest.ExtractedDocument{URL: src.URL, Title: src.Title}
	if !e.failURLs[src.URL] {
		doc.Content = "content for " + src.URL
	}
	return doc
}

func sources(n int) []digest.CandidateSource {
	out := make([]digest.CandidateSource, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, digest.CandidateSource{
			URL: fmt.Sprintf("https://news.example.com/story-%d", i),
		})
	}
	return out
}

func TestScrapeAllBoundsConcurrency(t *testing.T) {
	t.Parallel()

	extractor := &trackingExtractor{delay: 20 * time.Millisecond}
	c := New(extractor, Config{Concurrency: 3}, zap.NewNop())

	docs := c.ScrapeAll(context.Background(), sources(10))

	require.Len(t, docs, 10)
	require.LessOrEqual(t, extractor.highWater, int64(3),
		"more than %d extractions in flight", 3)
}

func TestScrapeAllFiltersFailures(t *testing.T) {
	t.Parallel()

	extractor := &trackingExtractor{failURLs: map[string]bool{
		"https://news.example.com/story-1": true,
		"https://news.example.com/story-4": true,
	}}
	c := New(extractor, Config{Concurrency: 3}, zap.NewNop())

	docs := c.ScrapeAll(context.Background(), sources(6))

	require.Len(t, docs, 4)
	for _, doc := range docs {
		require.False(t, doc.Empty())
		require.NotContains(t, []string{
			"https://news.example.com/story-1",
			"https://news.example.com/story-4",
		}, doc.URL)
	}
}

func TestScrapeAllPreservesBatchOrder(t *testing.T) {
	t.Parallel()

	extractor := &trackingExtractor{delay: 5 * time.Millisecond}
	c := New(extractor, Config{Concurrency: 4}, zap.NewNop())

	docs := c.ScrapeAll(context.Background(), sources(8))

	require.Len(t, docs, 8)
	for i, doc := range docs {
		require.True(t, strings.HasSuffix(doc.URL, fmt.Sprintf("story-%d", i)))
	}
}

func TestScrapeAllPausesBetweenBatches(t *testing.T) {
	t.Parallel()

	extractor := &trackingExtractor{}
	pause := 50 * time.Millisecond
	c := New(extractor, Config{Concurrency: 2, BatchPause: pause}, zap.NewNop())

	start := time.Now()
	c.ScrapeAll(context.Background(), sources(6))
	elapsed := time.Since(start)

	// Three batches, two inter-batch pauses.
	require.GreaterOrEqual(t, elapsed, 2*pause)
}

func TestScrapeAllStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor := &trackingExtractor{}
	c := New(extractor, Config{Concurrency: 2}, zap.NewNop())

	docs := c.ScrapeAll(ctx, sources(6))
	require.Empty(t, docs)
}

func TestScrapeAllEmptyInput(t *testing.T) {
	t.Parallel()

	c := New(&trackingExtractor{}, Config{}, zap.NewNop())
	require.Empty(t, c.ScrapeAll(context.Background(), nil))
}
