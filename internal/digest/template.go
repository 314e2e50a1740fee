package digest

import "time"

// Project maps a validated digest onto the fixed positional template fields.
// It is total: a digest shorter than PointCount is padded with placeholder
// point/link pairs, and each field is truncated to its cap rather than
// rejected.
func Project(v ValidatedDigest, date time.Time) TemplateRecord {
	record := TemplateRecord{
		Date: date.Format("2006-01-02"),
	}
	for i := 0; i < PointCount; i++ {
		if i < len(v.Points) {
			record.Points[i] = truncate(v.Points[i].Text, MaxPointLen)
			record.Links[i] = truncate(v.Points[i].SourceURL, MaxLinkLen)
			continue
		}
		record.Points[i] = PlaceholderPoint
		record.Links[i] = PlaceholderLink
	}
	return record
}

// truncate caps s at max runes so multi-byte text is never split mid-rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
