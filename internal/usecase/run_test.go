package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MentionScanner/internal/config"
	"MentionScanner/internal/deliver"
	"MentionScanner/internal/domain"
	"MentionScanner/internal/fetch"
	"MentionScanner/internal/rank"
	"MentionScanner/internal/source"
)

type stubAdapter struct {
	id      domain.SourceID
	perCall int
	fail    bool
}

func (s *stubAdapter) ID() domain.SourceID { return s.id }

func (s *stubAdapter) Fetch(ctx context.Context, keyword string, limit int) ([]domain.Item, error) {
	if s.fail {
		return nil, domain.Permanent("stub", errors.New("unsupported"))
	}
	n := s.perCall
	if n > limit {
		n = limit
	}
	items := make([]domain.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.Item{
			Source:  s.id,
			Keyword: keyword,
			Title:   fmt.Sprintf("a story about %s, part %d", keyword, i),
			URL:     fmt.Sprintf("https://%s.example/%s/%d", s.id, keyword, i),
		})
	}
	return items, nil
}

type memRepo struct {
	urls map[string]bool
}

func newMemRepo() *memRepo { return &memRepo{urls: map[string]bool{}} }

func (m *memRepo) Seen(ctx context.Context, urls []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, u := range urls {
		if m.urls[u] {
			out[u] = true
		}
	}
	return out, nil
}

func (m *memRepo) SaveBatch(ctx context.Context, items []domain.Item) (int, error) {
	written := 0
	for _, item := range items {
		if !m.urls[item.URL] {
			m.urls[item.URL] = true
			written++
		}
	}
	return written, nil
}

type memSink struct {
	pushes []string
}

func (m *memSink) Push(ctx context.Context, text string) error {
	m.pushes = append(m.pushes, text)
	return nil
}

func newTestRunner(adapters []source.Adapter, repo *memRepo, sink *memSink) *Runner {
	coordinator := fetch.NewCoordinator(adapters, fetch.Options{
		Timeout:      time.Second,
		MaxAttempts:  2,
		RetryBase:    time.Millisecond,
		PerSourceRPS: 1000,
		Budget:       50,
	}, nil)

	ranker := rank.New(config.ScoringConfig{
		SourceWeights:  map[string]float64{"hackernews": 3, "reddit": 1},
		TitleBonus:     1.5,
		TitleMin:       12,
		TitleMax:       120,
		PublishedBonus: 1,
	})

	return NewRunner(Deps{
		Coordinator: coordinator,
		Ranker:      ranker,
		Notifier:    deliver.NewNotifier(sink, 4096, time.Millisecond, nil),
		Archiver:    deliver.NewArchiver(repo, time.Millisecond, nil),
		Repository:  repo,
		Keywords:    []string{"go"},
		TopN:        5,
		ArchiveCap:  50,
	})
}

func TestRunReachesDoneDespitePartialFailures(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	sink := &memSink{}
	runner := newTestRunner([]source.Adapter{
		&stubAdapter{id: domain.SourceHackerNews, perCall: 3},
		&stubAdapter{id: domain.SourceReddit, fail: true},
	}, repo, sink)

	summary, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.StateDone, summary.State)
	assert.Equal(t, 3, summary.Fetched)
	assert.Equal(t, 3, summary.Deduped)
	assert.Equal(t, 3, summary.Notified)
	assert.Equal(t, 3, summary.Archived)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "reddit/go")
	assert.Equal(t, 3, summary.PerPair["hackernews/go"])

	require.NotEmpty(t, sink.pushes)
	last := sink.pushes[len(sink.pushes)-1]
	assert.Contains(t, last, "Scan complete")
	assert.Contains(t, last, "1 errors")
}

func TestRunRanksHigherWeightSourceFirst(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	sink := &memSink{}
	runner := newTestRunner([]source.Adapter{
		&stubAdapter{id: domain.SourceReddit, perCall: 2},
		&stubAdapter{id: domain.SourceHackerNews, perCall: 2},
	}, repo, sink)

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, sink.pushes)
	digest := sink.pushes[0]
	hnIdx := strings.Index(digest, "hackernews.example")
	redditIdx := strings.Index(digest, "reddit.example")
	require.GreaterOrEqual(t, hnIdx, 0)
	require.GreaterOrEqual(t, redditIdx, 0)
	assert.Less(t, hnIdx, redditIdx, "hackernews items should rank above reddit")
}

func TestRunSecondRunDeliversNothingNew(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	sink := &memSink{}
	adapters := []source.Adapter{&stubAdapter{id: domain.SourceHackerNews, perCall: 3}}

	first, err := newTestRunner(adapters, repo, sink).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, first.Archived)

	second, err := newTestRunner(adapters, repo, sink).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, second.Fetched)
	assert.Zero(t, second.Deduped)
	assert.Zero(t, second.Notified)
	assert.Zero(t, second.Archived)
	assert.Equal(t, domain.StateDone, second.State)
}

func TestRunFailsFromInitWithoutKeywords(t *testing.T) {
	t.Parallel()

	runner := NewRunner(Deps{})
	summary, err := runner.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, domain.StateFailed, summary.State)
}
