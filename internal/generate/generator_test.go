package generate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"newsbrief/internal/digest"
)

type scriptedProvider struct {
	name  string
	calls int
	fails int
	text  string
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) Generate(_ context.Context, _ string) (string, error) {
	p.calls++
	if p.calls <= p.fails {
		return "", errors.New("provider unavailable")
	}
	return p.text, nil
}

func testDocs() []digest.ExtractedDocument {
	return []digest.ExtractedDocument{
		{URL: "https://news.example.com/a", Title: "A", Content: "alpha"},
		{URL: "https://news.example.com/b", Title: "B", Content: "beta"},
	}
}

func testCfg() Config {
	return Config{MaxAttempts: 3, BackoffBase: time.Millisecond}
}

func TestGeneratePrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := &scriptedProvider{name: "primary", text: "digest text"}
	g := New(primary, nil, testCfg(), zap.NewNop())

	text, err := g.Generate(context.Background(), testDocs())
	require.NoError(t, err)
	require.Equal(t, "digest text", text)
	require.Equal(t, 1, primary.calls)
}

func TestGenerateRetriesPrimary(t *testing.T) {
	t.Parallel()

	primary := &scriptedProvider{name: "primary", fails: 2, text: "eventually"}
	g := New(primary, nil, testCfg(), zap.NewNop())

	text, err := g.Generate(context.Background(), testDocs())
	require.NoError(t, err)
	require.Equal(t, "eventually", text)
	require.Equal(t, 3, primary.calls)
}

func TestGenerateFallsBackToSecondaryOnce(t *testing.T) {
	t.Parallel()

	primary := &scriptedProvider{name: "primary", fails: 10}
	secondary := &scriptedProvider{name: "secondary", text: "backup digest"}
	g := New(primary, secondary, testCfg(), zap.NewNop())

	text, err := g.Generate(context.Background(), testDocs())
	require.NoError(t, err)
	require.Equal(t, "backup digest", text)
	require.Equal(t, 3, primary.calls)
	require.Equal(t, 1, secondary.calls)
}

func TestGenerateTerminalWhenAllExhausted(t *testing.T) {
	t.Parallel()

	primary := &scriptedProvider{name: "primary", fails: 10}
	g := New(primary, nil, testCfg(), zap.NewNop())

	_, err := g.Generate(context.Background(), testDocs())
	require.ErrorIs(t, err, ErrAllProvidersFailed)
	require.Equal(t, 3, primary.calls)
}

func TestGenerateTerminalWhenSecondaryAlsoFails(t *testing.T) {
	t.Parallel()

	primary := &scriptedProvider{name: "primary", fails: 10}
	secondary := &scriptedProvider{name: "secondary", fails: 10}
	g := New(primary, secondary, testCfg(), zap.NewNop())

	_, err := g.Generate(context.Background(), testDocs())
	require.ErrorIs(t, err, ErrAllProvidersFailed)
	require.Equal(t, 1, secondary.calls)
}

func TestGenerateEmptyProviderTextIsFailure(t *testing.T) {
	t.Parallel()

	primary := &scriptedProvider{name: "primary", text: ""}
	g := New(primary, nil, testCfg(), zap.NewNop())

	_, err := g.Generate(context.Background(), testDocs())
	require.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestGenerateNoDocuments(t *testing.T) {
	t.Parallel()

	g := New(&scriptedProvider{name: "primary"}, nil, testCfg(), zap.NewNop())
	_, err := g.Generate(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoDocuments)
}

func TestGenerateBackoffHonorsCancellation(t *testing.T) {
	t.Parallel()

	primary := &scriptedProvider{name: "primary", fails: 10}
	g := New(primary, nil, Config{MaxAttempts: 3, BackoffBase: time.Hour}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := g.Generate(ctx, testDocs())
	require.ErrorIs(t, err, ErrAllProvidersFailed)
	require.Less(t, time.Since(start), time.Second)
	require.Equal(t, 1, primary.calls)
}
