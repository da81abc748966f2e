package deliver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MentionScanner/internal/domain"
)

type fakeSink struct {
	pushes   []string
	failNth  int
	attempts int
}

func (f *fakeSink) Push(ctx context.Context, text string) error {
	f.attempts++
	if f.failNth > 0 && f.attempts == f.failNth {
		return errors.New("sink refused")
	}
	f.pushes = append(f.pushes, text)
	return nil
}

type fakeRepo struct {
	saved     []domain.Item
	failFirst int
	permanent bool
	calls     int
}

func (f *fakeRepo) Seen(ctx context.Context, urls []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (f *fakeRepo) SaveBatch(ctx context.Context, items []domain.Item) (int, error) {
	f.calls++
	if f.calls <= f.failFirst {
		if f.permanent {
			return 0, domain.Permanent("save", errors.New("schema mismatch"))
		}
		return 0, domain.Transient("save", errors.New("connection reset"))
	}
	f.saved = append(f.saved, items...)
	return len(items), nil
}

func rankedItems(n int) []domain.Item {
	items := make([]domain.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.Item{
			Source: domain.SourceReddit,
			Title:  fmt.Sprintf("headline number %02d", i),
			URL:    fmt.Sprintf("https://r.example/%d", i),
		})
	}
	return items
}

func TestDeliverTopSendsTopN(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	n := NewNotifier(sink, 4096, time.Millisecond, nil)

	report := n.DeliverTop(context.Background(), rankedItems(25), 20)

	assert.Equal(t, 20, report.ItemsNotified)
	assert.Zero(t, report.ChunksFailed)
	assert.NotZero(t, report.ChunksSent)

	all := strings.Join(sink.pushes, "\n")
	assert.Contains(t, all, "https://r.example/0")
	assert.Contains(t, all, "https://r.example/19")
	assert.NotContains(t, all, "https://r.example/20")
}

func TestDeliverTopFailedChunkDoesNotBlockRest(t *testing.T) {
	t.Parallel()

	// Tight chunk limit forces one record per chunk; the first send fails.
	sink := &fakeSink{failNth: 1}
	n := NewNotifier(sink, 80, time.Millisecond, nil)

	report := n.DeliverTop(context.Background(), rankedItems(3), 3)

	assert.Equal(t, 1, report.ChunksFailed)
	assert.Equal(t, 2, report.ChunksSent)
	require.Len(t, report.Errors, 1)
	assert.Len(t, sink.pushes, 2)
}

func TestDeliverTopNilSinkIsNoop(t *testing.T) {
	t.Parallel()

	n := NewNotifier(nil, 4096, time.Millisecond, nil)
	report := n.DeliverTop(context.Background(), rankedItems(3), 3)
	assert.Zero(t, report.ItemsNotified)
}

func TestArchiveRespectsCap(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	a := NewArchiver(repo, time.Millisecond, nil)

	written, errs := a.Archive(context.Background(), rankedItems(30), 10)

	assert.Empty(t, errs)
	assert.Equal(t, 10, written)
	assert.Len(t, repo.saved, 10)
	assert.Equal(t, "https://r.example/0", repo.saved[0].URL)
}

func TestArchiveRetriesOnceThenSucceeds(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{failFirst: 1}
	a := NewArchiver(repo, time.Millisecond, nil)

	written, errs := a.Archive(context.Background(), rankedItems(5), 5)

	assert.Empty(t, errs)
	assert.Equal(t, 5, written)
	assert.Equal(t, 2, repo.calls)
}

func TestArchiveDropsBatchAfterRetry(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{failFirst: 99}
	a := NewArchiver(repo, time.Millisecond, nil)

	written, errs := a.Archive(context.Background(), rankedItems(5), 5)

	assert.Zero(t, written)
	require.Len(t, errs, 1)
	assert.Equal(t, 2, repo.calls)
}

func TestArchiveNilRepoIsNoop(t *testing.T) {
	t.Parallel()

	a := NewArchiver(nil, time.Millisecond, nil)
	written, errs := a.Archive(context.Background(), rankedItems(5), 5)
	assert.Zero(t, written)
	assert.Empty(t, errs)
}
