// Package digest defines the core types of the news digest pipeline and the
// pure validation/projection logic that shapes model output into the fixed
// eight-point template contract.
package digest

import "time"

// PointCount is the fixed arity of a digest. The messaging template has
// exactly eight positional point/link slots.
const PointCount = 8

// MaxPointLen caps each projected point text in characters.
const MaxPointLen = 1000

// MaxLinkLen caps each projected link in characters.
const MaxLinkLen = 1000

// PlaceholderPoint fills slots for which no valid model output exists.
const PlaceholderPoint = "자세한 내용은 출처 기사를 참고하세요."

// PlaceholderLink fills link slots when the digest is shorter than eight points.
const PlaceholderLink = "https://news.google.com"

// CandidateSource is a URL proposed for scraping, with search metadata.
type CandidateSource struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Snippet       string `json:"snippet"`
	PublishedHint string `json:"published_hint,omitempty"`
}

// ExtractedDocument is the text content scraped from one candidate source.
// An empty Content marks a failed extraction and excludes the document from
// summarization.
type ExtractedDocument struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	PublishedDate string `json:"published_date,omitempty"`
}

// Empty reports whether the extraction produced no usable text.
func (d ExtractedDocument) Empty() bool {
	return d.Content == ""
}

// Point is one summarized bullet attributed to a source URL.
type Point struct {
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
	Backfill  bool   `json:"backfill,omitempty"`
}

// ValidatedDigest is the ordered, source-verified result of validating raw
// model output. It holds at most PointCount points with pairwise distinct
// source URLs; it may be shorter when fewer distinct sources exist.
type ValidatedDigest struct {
	Points []Point `json:"points"`
}

// TemplateRecord maps a validated digest onto the positional fields consumed
// by the messaging template. Points and Links always hold exactly PointCount
// entries.
type TemplateRecord struct {
	Date   string             `json:"date"`
	Points [PointCount]string `json:"points"`
	Links  [PointCount]string `json:"links"`
}

// Record is the persisted form of a finished digest.
type Record struct {
	ID          string         `json:"id"`
	MessageType string         `json:"message_type"`
	Content     TemplateRecord `json:"content"`
	SourceURLs  []string       `json:"source_urls"`
	GeneratedAt time.Time      `json:"generated_at"`
}
