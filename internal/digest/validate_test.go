package digest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func knownSet(n int) []string {
	urls := make([]string, 0, n)
	for i := 0; i < n; i++ {
		urls = append(urls, fmt.Sprintf("https://news.example.com/story-%d", i))
	}
	return urls
}

func rawDigest(urls []string) string {
	var b strings.Builder
	for i, u := range urls {
		fmt.Fprintf(&b, "- Point %d with something concrete in it\n", i)
		fmt.Fprintf(&b, "SOURCE: %s\n", u)
	}
	return b.String()
}

func TestValidateAcceptsEightWellFormedPairs(t *testing.T) {
	t.Parallel()

	known := knownSet(8)
	got := Validate(rawDigest(known), known)

	require.Len(t, got.Points, 8)
	for i, p := range got.Points {
		require.Equal(t, known[i], p.SourceURL)
		require.False(t, p.Backfill)
		require.Contains(t, p.Text, fmt.Sprintf("Point %d", i))
	}
}

func TestValidateBackfillsShortfall(t *testing.T) {
	t.Parallel()

	known := knownSet(10)
	got := Validate(rawDigest(known[:5]), known)

	require.Len(t, got.Points, 8)
	for _, p := range got.Points[:5] {
		require.False(t, p.Backfill)
	}
	for _, p := range got.Points[5:] {
		require.True(t, p.Backfill)
		require.Equal(t, PlaceholderPoint, p.Text)
	}
	requireDistinctSources(t, got)
}

func TestValidateNeverRepeatsSource(t *testing.T) {
	t.Parallel()

	known := knownSet(3)
	raw := strings.Repeat("- Same story again\nSOURCE: "+known[0]+"\n", 6)
	got := Validate(raw, known)

	// One accepted pair, two backfilled from the remaining known URLs.
	require.Len(t, got.Points, 3)
	requireDistinctSources(t, got)
}

func TestValidateShortWhenKnownURLsExhaust(t *testing.T) {
	t.Parallel()

	known := knownSet(4)
	got := Validate("no bullets here at all", known)

	require.Len(t, got.Points, 4)
	for _, p := range got.Points {
		require.True(t, p.Backfill)
	}
}

func TestValidateRejectsUnknownSource(t *testing.T) {
	t.Parallel()

	known := knownSet(2)
	raw := "- A claim from somewhere else\nSOURCE: https://elsewhere.example.org/a\n"
	got := Validate(raw, known)

	require.Len(t, got.Points, 2)
	for _, p := range got.Points {
		require.True(t, p.Backfill)
	}
}

func TestValidateStopsAtEight(t *testing.T) {
	t.Parallel()

	known := knownSet(12)
	got := Validate(rawDigest(known), known)

	require.Len(t, got.Points, 8)
	require.Equal(t, known[7], got.Points[7].SourceURL)
}

func TestValidateMarkerVariants(t *testing.T) {
	t.Parallel()

	known := knownSet(3)
	raw := "* Star bullet works fine\nSOURCE: " + known[0] + "\n" +
		"1. Numbered bullet works fine\nSOURCE: " + known[1] + "\n" +
		"- Inline attribution works SOURCE: " + known[2] + "\n"
	got := Validate(raw, known)

	require.Len(t, got.Points, 3)
	for _, p := range got.Points {
		require.False(t, p.Backfill)
	}
	require.Equal(t, "Inline attribution works", got.Points[2].Text)
}

func TestValidateInlineAttributionMatchesNextLineSyntax(t *testing.T) {
	t.Parallel()

	known := knownSet(3)
	raw := "- Lowercase marker works source: " + known[0] + "\n" +
		"- Korean marker works 출처: " + known[1] + "\n" +
		"- Spaced marker works Source : " + known[2] + "\n"
	got := Validate(raw, known)

	require.Len(t, got.Points, 3)
	require.Equal(t, "Lowercase marker works", got.Points[0].Text)
	require.Equal(t, known[0], got.Points[0].SourceURL)
	require.Equal(t, "Korean marker works", got.Points[1].Text)
	require.Equal(t, known[1], got.Points[1].SourceURL)
	require.Equal(t, "Spaced marker works", got.Points[2].Text)
	for _, p := range got.Points {
		require.False(t, p.Backfill)
	}
}

func TestValidateInlineMarkerNeedsWordBoundary(t *testing.T) {
	t.Parallel()

	known := knownSet(1)
	raw := "- Budget adds a new resource: hospitals get funding\nSOURCE: " + known[0] + "\n"
	got := Validate(raw, known)

	require.Len(t, got.Points, 1)
	require.Equal(t, "Budget adds a new resource: hospitals get funding", got.Points[0].Text)
	require.False(t, got.Points[0].Backfill)
}

func TestValidateOneLineLookaheadOnly(t *testing.T) {
	t.Parallel()

	known := knownSet(1)
	raw := "- A point whose source arrives too late\n\nSOURCE: " + known[0] + "\n"
	got := Validate(raw, known)

	// The bullet is rejected, but the URL backfills.
	require.Len(t, got.Points, 1)
	require.True(t, got.Points[0].Backfill)
}

func TestValidateDeterministic(t *testing.T) {
	t.Parallel()

	known := knownSet(10)
	raw := rawDigest(known[:5])
	first := Validate(raw, known)
	second := Validate(raw, known)
	require.Equal(t, first, second)
}

func requireDistinctSources(t *testing.T, v ValidatedDigest) {
	t.Helper()
	seen := map[string]struct{}{}
	for _, p := range v.Points {
		_, dup := seen[p.SourceURL]
		require.False(t, dup, "duplicate source %s", p.SourceURL)
		seen[p.SourceURL] = struct{}{}
	}
}
