// Package rank assigns each candidate a bounded additive relevance score and
// orders items by it.
package rank

import (
	"sort"
	"unicode/utf8"

	"MentionScanner/internal/config"
	"MentionScanner/internal/domain"
)

// Ranker scores items from a fixed weight table: a per-source base weight, a
// bonus for titles inside the informative length band, and a bonus when a
// published timestamp is available. Purely additive, so scores stay in a
// small predictable range.
type Ranker struct {
	weights config.ScoringConfig
}

// New builds a ranker over the configured weight table.
func New(weights config.ScoringConfig) *Ranker {
	return &Ranker{weights: weights}
}

// Rank returns the items annotated with scores, sorted descending. The sort
// is stable, so ties keep their original fetch order and ranking is
// deterministic for identical input.
func (r *Ranker) Rank(items []domain.Item) []domain.Item {
	ranked := make([]domain.Item, len(items))
	copy(ranked, items)

	for i := range ranked {
		ranked[i].Score = r.Score(ranked[i])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Score computes the relevance score for a single item.
func (r *Ranker) Score(item domain.Item) float64 {
	score := r.weights.SourceWeights[string(item.Source)]

	if n := utf8.RuneCountInString(item.Title); n >= r.weights.TitleMin && n <= r.weights.TitleMax {
		score += r.weights.TitleBonus
	}
	if item.PublishedAt != nil {
		score += r.weights.PublishedBonus
	}
	return score
}
