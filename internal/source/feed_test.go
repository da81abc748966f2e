package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"MentionScanner/internal/domain"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>newest</title>
    <item>
      <title>Rust async runtime deep dive</title>
      <link>https://example.com/rust-async</link>
      <description>&lt;p&gt;A &lt;b&gt;thorough&lt;/b&gt;   walkthrough.&lt;/p&gt;</description>
      <dc:creator>alice</dc:creator>
      <pubDate>Fri, 08 Nov 2025 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Weekly links roundup</title>
      <link>https://example.com/links</link>
      <description>Nothing about systems languages here, except rust in a footnote.</description>
    </item>
    <item>
      <title>Gardening tips</title>
      <link>https://example.com/garden</link>
      <description>Soil and compost.</description>
    </item>
  </channel>
</rss>`

func TestFeedAdapterFetchFiltersByKeyword(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	adapter := newFeedAdapter(domain.SourceHackerNews, server.Client(), []string{server.URL})

	items, err := adapter.Fetch(context.Background(), "rust", 10)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 matching items, got %d", len(items))
	}

	first := items[0]
	if first.URL != "https://example.com/rust-async" {
		t.Fatalf("unexpected url: %s", first.URL)
	}
	if first.Summary != "A thorough walkthrough." {
		t.Fatalf("summary not stripped: %q", first.Summary)
	}
	if first.Author != "alice" {
		t.Fatalf("unexpected author: %q", first.Author)
	}
	if first.PublishedAt == nil {
		t.Fatal("expected published timestamp")
	}
	if first.Keyword != "rust" || first.Source != domain.SourceHackerNews {
		t.Fatalf("item not tagged with pair: %+v", first)
	}

	// The second match comes from the description, and its published time is
	// legitimately absent.
	if items[1].URL != "https://example.com/links" {
		t.Fatalf("unexpected second url: %s", items[1].URL)
	}
	if items[1].PublishedAt != nil {
		t.Fatal("expected nil published timestamp")
	}
}

func TestFeedAdapterFetchRespectsLimit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	adapter := newFeedAdapter(domain.SourceReddit, server.Client(), []string{server.URL})

	items, err := adapter.Fetch(context.Background(), "rust", 1)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item under limit, got %d", len(items))
	}
}

func TestFeedAdapterServerErrorIsTransient(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	adapter := newFeedAdapter(domain.SourceReddit, server.Client(), []string{server.URL})

	_, err := adapter.Fetch(context.Background(), "rust", 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestFeedAdapterClientErrorIsPermanent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	adapter := newFeedAdapter(domain.SourceReddit, server.Client(), []string{server.URL})

	_, err := adapter.Fetch(context.Background(), "rust", 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.IsTransient(err) {
		t.Fatalf("expected permanent error, got transient: %v", err)
	}
}

func TestYouTubeSearchURL(t *testing.T) {
	t.Parallel()

	adapter := newYouTubeAdapter(nil)
	raw := adapter.searchURL("go generics")

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if got := parsed.Query().Get("search_query"); got != "go generics" {
		t.Fatalf("unexpected search_query: %q", got)
	}
}

func TestNewRejectsUnknownSource(t *testing.T) {
	t.Parallel()

	if _, err := New(domain.SourceID("mastodon"), nil); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestCleanSummaryCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	got := cleanSummary("<div>one\n\n  two <span>three</span></div>")
	if got != "one two three" {
		t.Fatalf("unexpected summary: %q", got)
	}
}
