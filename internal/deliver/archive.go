package deliver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"MentionScanner/internal/domain"
	"MentionScanner/internal/ports"
	"MentionScanner/internal/retry"
)

const archiveBatchSize = 100

// Archiver drives Contract B: capped, batched writes to the archival sink.
type Archiver struct {
	repo      ports.ItemRepository
	retryBase time.Duration
	logger    *slog.Logger
}

// NewArchiver wires the repository.
func NewArchiver(repo ports.ItemRepository, retryBase time.Duration, logger *slog.Logger) *Archiver {
	return &Archiver{repo: repo, retryBase: retryBase, logger: logger}
}

// Archive writes up to cap items, in the order given, in batches. Each batch
// gets one retry with backoff on transient failure; after that the batch is
// dropped and its error recorded. Returns the count actually written.
func (a *Archiver) Archive(ctx context.Context, items []domain.Item, cap int) (int, []error) {
	if a.repo == nil || cap <= 0 || len(items) == 0 {
		return 0, nil
	}

	if cap > len(items) {
		cap = len(items)
	}
	pending := items[:cap]

	var (
		written int
		errs    []error
	)

	for start := 0; start < len(pending); start += archiveBatchSize {
		end := start + archiveBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		var saved int
		err := retry.Do(ctx, 2, a.retryBase, func(ctx context.Context) error {
			n, saveErr := a.repo.SaveBatch(ctx, batch)
			if saveErr != nil {
				return saveErr
			}
			saved = n
			return nil
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("archive batch %d-%d: %w", start, end, err))
			if a.logger != nil {
				a.logger.Warn("archive batch dropped", "from", start, "to", end, "error", err)
			}
			continue
		}
		written += saved
	}

	return written, errs
}
