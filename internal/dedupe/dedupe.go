// Package dedupe collapses candidate items to a unique set, both within one
// run and against URLs archived by prior runs.
package dedupe

import (
	"net/url"

	"MentionScanner/internal/domain"
)

// Dedupe keeps the first arrival-order occurrence of each URL and drops
// anything already present in seen. Items with an empty or malformed URL are
// dropped unconditionally: they can be neither deduplicated nor archived.
// seen is read-only.
func Dedupe(items []domain.Item, seen map[string]bool) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	kept := make(map[string]bool, len(items))

	for _, item := range items {
		if !usableURL(item.URL) {
			continue
		}
		if kept[item.URL] || seen[item.URL] {
			continue
		}
		kept[item.URL] = true
		out = append(out, item)
	}
	return out
}

// URLs extracts the URL column, preserving order.
func URLs(items []domain.Item) []string {
	urls := make([]string, 0, len(items))
	for _, item := range items {
		urls = append(urls, item.URL)
	}
	return urls
}

func usableURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
