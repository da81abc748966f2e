// Package source translates external platforms' feed mechanisms into the
// common Item shape. The set of adapters is a closed enumeration resolved at
// construction time; unknown identifiers never reach the fetch path.
package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"MentionScanner/internal/domain"
)

const userAgent = "MentionScanner/1.0"

// Adapter fetches candidate items for one keyword from one platform.
// Transient failures (network, 5xx, rate limits) are reported as
// domain.TransientError; anything retrying cannot fix as PermanentError.
// An empty result is a success, not an error.
type Adapter interface {
	ID() domain.SourceID
	Fetch(ctx context.Context, keyword string, limit int) ([]domain.Item, error)
}

// New maps a source identifier onto its adapter implementation.
func New(id domain.SourceID, client *http.Client) (Adapter, error) {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	switch id {
	case domain.SourceReddit:
		return newFeedAdapter(id, client, []string{
			"https://www.reddit.com/r/all/new/.rss",
		}), nil
	case domain.SourceHackerNews:
		return newFeedAdapter(id, client, []string{
			"https://hnrss.org/newest",
		}), nil
	case domain.SourceYouTube:
		return newYouTubeAdapter(client), nil
	default:
		return nil, fmt.Errorf("source %q is not supported", id)
	}
}
