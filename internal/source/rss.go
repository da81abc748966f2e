package source

import (
	"context"
	"net/http"

	"MentionScanner/internal/domain"
)

// feedAdapter serves platforms exposed as fixed "newest" feeds (reddit,
// hackernews). The feed is not queryable, so the keyword filter is applied
// locally over title and summary.
type feedAdapter struct {
	id     domain.SourceID
	client *http.Client
	feeds  []string
}

func newFeedAdapter(id domain.SourceID, client *http.Client, feeds []string) *feedAdapter {
	return &feedAdapter{id: id, client: client, feeds: feeds}
}

func (a *feedAdapter) ID() domain.SourceID { return a.id }

func (a *feedAdapter) Fetch(ctx context.Context, keyword string, limit int) ([]domain.Item, error) {
	out := make([]domain.Item, 0, limit)
	for _, feedURL := range a.feeds {
		if len(out) >= limit {
			break
		}
		feed, err := fetchFeed(ctx, a.client, a.id, feedURL)
		if err != nil {
			return nil, err
		}
		out = append(out, collectItems(feed, a.id, keyword, limit-len(out))...)
	}
	return out, nil
}
