package digest

import (
	"regexp"
	"strings"
)

var (
	bulletMarker       = regexp.MustCompile(`^(?:[-*\x{2022}]|\d{1,2}\.)\s+`)
	sourceMarker       = regexp.MustCompile(`(?i)^(?:SOURCE|출처)\s*:\s*`)
	inlineSourceMarker = regexp.MustCompile(`(?i)(?:\bSOURCE|출처)\s*:\s*`)
	urlPattern         = regexp.MustCompile(`https?://\S+`)
)

// rejectReason enumerates why a candidate line pair was discarded.
type rejectReason string

const (
	rejectMissingAttribution rejectReason = "missing attribution"
	rejectBadSourceSyntax    rejectReason = "bad source syntax"
	rejectUnknownSource      rejectReason = "unknown source"
	rejectDuplicateSource    rejectReason = "duplicate source"
	rejectEmptyText          rejectReason = "empty point text"
)

// parseResult is the tagged outcome of scanning one candidate pair.
type parseResult struct {
	accepted bool
	point    Point
	reason   rejectReason
	text     string
}

// Validate parses free-form generated text into a ValidatedDigest. It is a
// pure function of its inputs: lines starting with a bullet marker are
// candidate points, attributed by a SOURCE line on the same line or within a
// one-line lookahead. A pair is accepted only when its URL is well formed,
// belongs to knownURLs, and has not been used by an earlier accepted pair.
// Accumulation stops at PointCount; missing slots are backfilled from unused
// knownURLs in input order. When knownURLs exhausts, the digest is legally
// shorter than PointCount.
func Validate(raw string, knownURLs []string) ValidatedDigest {
	known := make(map[string]struct{}, len(knownURLs))
	for _, u := range knownURLs {
		known[u] = struct{}{}
	}
	used := make(map[string]struct{}, PointCount)

	var points []Point
	lines := strings.Split(raw, "\n")
	for i := 0; i < len(lines) && len(points) < PointCount; i++ {
		line := strings.TrimSpace(lines[i])
		if !bulletMarker.MatchString(line) {
			continue
		}
		res, consumed := parsePair(line, lookahead(lines, i), known, used)
		if !res.accepted {
			continue
		}
		used[res.point.SourceURL] = struct{}{}
		points = append(points, res.point)
		i += consumed
	}

	for _, u := range knownURLs {
		if len(points) >= PointCount {
			break
		}
		if _, taken := used[u]; taken {
			continue
		}
		used[u] = struct{}{}
		points = append(points, Point{
			Text:      PlaceholderPoint,
			SourceURL: u,
			Backfill:  true,
		})
	}

	return ValidatedDigest{Points: points}
}

func lookahead(lines []string, i int) string {
	if i+1 >= len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[i+1])
}

// parsePair evaluates one bullet line plus its optional attribution line.
// The second return value is the number of extra lines consumed.
func parsePair(line, next string, known, used map[string]struct{}) (parseResult, int) {
	text := strings.TrimSpace(bulletMarker.ReplaceAllString(line, ""))

	sourceLine := ""
	consumed := 0
	if loc := inlineSourceMarker.FindStringIndex(text); loc != nil {
		sourceLine = strings.TrimSpace(text[loc[1]:])
		text = strings.TrimSpace(text[:loc[0]])
	} else if sourceMarker.MatchString(next) {
		sourceLine = sourceMarker.ReplaceAllString(next, "")
		consumed = 1
	} else {
		return parseResult{reason: rejectMissingAttribution, text: text}, 0
	}

	if text == "" {
		return parseResult{reason: rejectEmptyText}, consumed
	}

	url := urlPattern.FindString(sourceLine)
	if url == "" {
		return parseResult{reason: rejectBadSourceSyntax, text: text}, consumed
	}
	url = strings.TrimRight(url, ".,;)")

	if _, ok := known[url]; !ok {
		return parseResult{reason: rejectUnknownSource, text: text}, consumed
	}
	if _, dup := used[url]; dup {
		return parseResult{reason: rejectDuplicateSource, text: text}, consumed
	}

	return parseResult{
		accepted: true,
		point:    Point{Text: text, SourceURL: url},
	}, consumed
}
