// Package generate orchestrates generative providers to reduce extracted
// documents into raw digest text, with bounded retry and fallback.
package generate

import (
	"fmt"
	"strings"

	"newsbrief/internal/digest"
)

// maxDocChars caps each document's contribution to the prompt.
const maxDocChars = 4000

// promptInstructions is the output-shape contract. The validator depends on
// the model echoing each SOURCE_URL back verbatim, so the instructions are
// explicit about reproducing them exactly.
const promptInstructions = `You are a news editor compiling a daily digest.

From the articles below, write EXACTLY 8 bullet points. Rules:
- Each bullet starts with "- " and contains one concrete, specific fact
  (names, numbers, decisions) from one article. No generic statements.
- Each bullet is 20 to 40 words long.
- Immediately after each bullet, on its own line, write "SOURCE: " followed
  by the SOURCE_URL of the article the bullet came from, copied EXACTLY as
  given below. Do not shorten, reformat, or invent URLs.
- Use 8 DIFFERENT articles. Never attribute two bullets to the same URL.
- Output nothing except the 8 bullet/SOURCE pairs.

Articles:
`

// BuildPrompt concatenates documents into a single provider prompt. Each
// document is wrapped with SOURCE_URL/TITLE/CONTENT delimiters and its
// content truncated to maxDocChars.
func BuildPrompt(docs []digest.ExtractedDocument) string {
	var b strings.Builder
	b.WriteString(promptInstructions)
	for i, doc := range docs {
		fmt.Fprintf(&b, "\n=== ARTICLE %d ===\n", i+1)
		fmt.Fprintf(&b, "SOURCE_URL: %s\n", doc.URL)
		fmt.Fprintf(&b, "TITLE: %s\n", doc.Title)
		if doc.PublishedDate != "" {
			fmt.Fprintf(&b, "PUBLISHED: %s\n", doc.PublishedDate)
		}
		fmt.Fprintf(&b, "CONTENT: %s\n", truncate(doc.Content, maxDocChars))
	}
	return b.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
