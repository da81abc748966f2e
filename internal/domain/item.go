package domain

import "time"

// SourceID identifies one of the supported platforms. The set is closed:
// configuration validation rejects anything outside it.
type SourceID string

const (
	SourceReddit     SourceID = "reddit"
	SourceHackerNews SourceID = "hackernews"
	SourceYouTube    SourceID = "youtube"
)

// KnownSources lists every supported identifier in canonical order.
func KnownSources() []SourceID {
	return []SourceID{SourceReddit, SourceHackerNews, SourceYouTube}
}

// ParseSourceID maps a configuration string onto the closed enumeration.
func ParseSourceID(s string) (SourceID, bool) {
	for _, id := range KnownSources() {
		if string(id) == s {
			return id, true
		}
	}
	return "", false
}

// Item is one unit of content discovered during a run. Items are immutable
// once created; the ranker annotates scores on its own copies.
type Item struct {
	Source      SourceID
	Keyword     string
	Title       string
	URL         string
	Author      string
	Summary     string
	PublishedAt *time.Time
	Score       float64
	FetchedAt   time.Time
}
