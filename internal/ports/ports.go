package ports

import (
	"context"
	"time"

	"MentionScanner/internal/domain"
)

// Notifier pushes one text blob per call to the notification sink. The sink
// imposes a hard message length limit; chunking happens before this boundary.
type Notifier interface {
	Push(ctx context.Context, text string) error
}

// ItemRepository is the append-only archival sink. Seen filters the given
// URLs down to those already archived by prior runs.
type ItemRepository interface {
	Seen(ctx context.Context, urls []string) (map[string]bool, error)
	SaveBatch(ctx context.Context, items []domain.Item) (int, error)
}

// Scheduler controls when runs execute in repeat mode.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
