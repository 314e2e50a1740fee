package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node selectors stripped from the DOM before taking body text.
const strippedSelectors = "script,style,nav,footer,iframe,noscript,header,aside,form"

var whitespaceRuns = regexp.MustCompile(`\s+`)

// cleanHTML reduces a rendered page to plain article text. It strips
// non-content nodes, takes the remaining body text, collapses whitespace
// runs to single spaces, and trims. The second return value is the
// published date from the article:published_time meta tag, if present.
func cleanHTML(html string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	published, _ := doc.Find(`meta[property="article:published_time"]`).Attr("content")

	doc.Find(strippedSelectors).Remove()
	text := doc.Find("body").Text()
	text = strings.TrimSpace(whitespaceRuns.ReplaceAllString(text, " "))
	return text, strings.TrimSpace(published), nil
}
