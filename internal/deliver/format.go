package deliver

import (
	"fmt"
	"html"
	"strings"

	"MentionScanner/internal/domain"
)

const (
	// recordSeparator joins records inside one chunk.
	recordSeparator = "\n\n"
	// maxTitleRunes keeps single records far below any realistic chunk limit.
	maxTitleRunes = 200
)

// FormatRecord renders one item as a short HTML notification record:
// bolded title, locator line, source hashtag.
func FormatRecord(item domain.Item) string {
	title := truncateRunes(strings.TrimSpace(item.Title), maxTitleRunes)
	return fmt.Sprintf("• <b>%s</b>\n🔗 %s\n#%s", html.EscapeString(title), item.URL, item.Source)
}

// Chunk packs records into messages of at most limit characters, splitting
// only on record boundaries. A record that alone exceeds the limit is
// truncated on a rune boundary rather than dropped, so every record is
// represented exactly once, in order.
func Chunk(records []string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	var (
		chunks  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, record := range records {
		if len(record) > limit {
			record = truncateBytes(record, limit)
		}

		needed := len(record)
		if current.Len() > 0 {
			needed += len(recordSeparator)
		}
		if current.Len()+needed > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(recordSeparator)
		}
		current.WriteString(record)
	}
	flush()

	return chunks
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// truncateBytes cuts s to at most max bytes without splitting a rune.
func truncateBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && (s[max]&0xC0) == 0x80 {
		max--
	}
	return s[:max]
}
