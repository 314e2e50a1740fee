package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsArticleURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url  string
		want bool
	}{
		{"https://news.example.com/2026/08/markets-rally", true},
		{"https://news.example.com/politics/budget-vote-passes", true},
		{"https://news.example.com/article?id=42", true},
		{"https://news.example.com", false},
		{"https://news.example.com/", false},
		{"https://news.example.com/about", false},
		{"https://news.example.com/about-us", false},
		{"https://news.example.com/contact", false},
		{"https://news.example.com/login", false},
		{"https://news.example.com/signup", false},
		{"https://news.example.com/privacy", false},
		{"https://news.example.com/terms", false},
		{"https://news.example.com/tag/economy", false},
		{"https://news.example.com/category/world", false},
		{"https://news.example.com/author/jane", false},
		{"https://news.example.com/search?q=x", false},
		{"https://news.example.com/feed", false},
		{"ftp://news.example.com/story", false},
		{"not a url at all://", false},
		{"/relative/only", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, IsArticleURL(tc.url), "url %q", tc.url)
	}
}
