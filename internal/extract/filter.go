// Package extract turns candidate URLs into plain-text documents using a
// headless browser, degrading every failure to an empty result.
package extract

import (
	"net/url"
	"strings"
)

// Path prefixes that mark a page as navigational rather than article
// content. Rendering these wastes a browser context for no text.
var nonArticlePrefixes = []string{
	"/about",
	"/contact",
	"/login",
	"/signin",
	"/signup",
	"/subscribe",
	"/privacy",
	"/terms",
	"/search",
	"/sitemap",
	"/tag/",
	"/tags/",
	"/category/",
	"/categories/",
	"/author/",
	"/feed",
	"/rss",
}

// IsArticleURL reports whether raw looks like an article page worth
// rendering. Bare homepages and common navigational paths are rejected
// before any browser work happens.
func IsArticleURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}
	path := strings.ToLower(strings.TrimSuffix(u.Path, "/"))
	if path == "" {
		return false
	}
	for _, prefix := range nonArticlePrefixes {
		trimmed := strings.TrimSuffix(prefix, "/")
		if path == trimmed || strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}
