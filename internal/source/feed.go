package source

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"MentionScanner/internal/domain"
)

var spaceExpr = regexp.MustCompile(`\s+`)

// fetchFeed downloads and parses one RSS/Atom document, classifying failures
// into transient and permanent kinds.
func fetchFeed(ctx context.Context, client *http.Client, id domain.SourceID, feedURL string) (*gofeed.Feed, error) {
	op := fmt.Sprintf("%s: fetch %s", id, feedURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, domain.Permanent(op, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, domain.Transient(op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, domain.Transient(op, fmt.Errorf("status %s", resp.Status))
	default:
		return nil, domain.Permanent(op, fmt.Errorf("status %s", resp.Status))
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, domain.Permanent(op, fmt.Errorf("parse feed: %w", err))
	}
	return feed, nil
}

// collectItems converts feed entries into Items, filtering by keyword when
// one is given. The keyword match is a case-insensitive substring test over
// title plus summary, the same check the platforms' own search would apply.
func collectItems(feed *gofeed.Feed, id domain.SourceID, keyword string, limit int) []domain.Item {
	items := make([]domain.Item, 0, limit)
	for _, entry := range feed.Items {
		if len(items) >= limit {
			break
		}

		title := strings.TrimSpace(entry.Title)
		summary := cleanSummary(entry.Description)

		if keyword != "" && !matchesKeyword(title+"\n"+summary, keyword) {
			continue
		}
		if title == "" {
			title = "(no title)"
		}

		var author string
		if entry.Author != nil {
			author = strings.TrimSpace(entry.Author.Name)
		}

		var published *time.Time
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed
		}

		items = append(items, domain.Item{
			Source:      id,
			Keyword:     keyword,
			Title:       title,
			URL:         strings.TrimSpace(entry.Link),
			Author:      author,
			Summary:     summary,
			PublishedAt: published,
		})
	}
	return items
}

// cleanSummary strips markup from a feed entry description and collapses
// whitespace so keyword matching sees plain text.
func cleanSummary(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return spaceExpr.ReplaceAllString(raw, " ")
	}
	return strings.TrimSpace(spaceExpr.ReplaceAllString(doc.Text(), " "))
}

func matchesKeyword(text, keyword string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(keyword))
}
