package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Budget vote passes</title>
  <meta property="article:published_time" content="2026-08-29T21:04:00Z">
  <style>body { color: red; }</style>
  <script>window.tracker = true;</script>
</head>
<body>
  <header>Site header</header>
  <nav>Home | World | Politics</nav>
  <article>
    <h1>Budget   vote
    passes</h1>
    <p>Parliament approved the budget   by a narrow margin.</p>
  </article>
  <aside>Related stories</aside>
  <iframe src="https://ads.example.com"></iframe>
  <noscript>Enable JS</noscript>
  <footer>Copyright</footer>
</body>
</html>`

func TestCleanHTMLStripsNonContentNodes(t *testing.T) {
	t.Parallel()

	text, published, err := cleanHTML(samplePage)
	require.NoError(t, err)

	require.Equal(t, "Budget vote passes Parliament approved the budget by a narrow margin.", text)
	require.Equal(t, "2026-08-29T21:04:00Z", published)
	require.NotContains(t, text, "tracker")
	require.NotContains(t, text, "Site header")
	require.NotContains(t, text, "Copyright")
	require.NotContains(t, text, "Related stories")
}

func TestCleanHTMLEmptyBody(t *testing.T) {
	t.Parallel()

	text, published, err := cleanHTML("<html><body></body></html>")
	require.NoError(t, err)
	require.Empty(t, text)
	require.Empty(t, published)
}

func TestCleanHTMLCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	text, _, err := cleanHTML("<html><body><p>a\n\n\t b    c</p></body></html>")
	require.NoError(t, err)
	require.Equal(t, "a b c", text)
}
