package source

import (
	"context"
	"net/http"
	"net/url"

	"MentionScanner/internal/domain"
)

const youtubeSearchFeed = "https://www.youtube.com/feeds/videos.xml"

// youtubeAdapter uses the search feed, which takes the keyword as a query
// parameter. The local keyword filter still runs over the result as a guard
// against overly fuzzy search matches.
type youtubeAdapter struct {
	client  *http.Client
	baseURL string
}

func newYouTubeAdapter(client *http.Client) *youtubeAdapter {
	return &youtubeAdapter{client: client, baseURL: youtubeSearchFeed}
}

func (a *youtubeAdapter) ID() domain.SourceID { return domain.SourceYouTube }

func (a *youtubeAdapter) Fetch(ctx context.Context, keyword string, limit int) ([]domain.Item, error) {
	feed, err := fetchFeed(ctx, a.client, domain.SourceYouTube, a.searchURL(keyword))
	if err != nil {
		return nil, err
	}
	return collectItems(feed, domain.SourceYouTube, keyword, limit), nil
}

func (a *youtubeAdapter) searchURL(keyword string) string {
	q := url.Values{}
	q.Set("search_query", keyword)
	return a.baseURL + "?" + q.Encode()
}
