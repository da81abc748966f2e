// Package deliver pushes ranked candidates to the notification sink in
// size-bounded, rate-limited chunks, and archives the wider deduplicated set
// to persistent storage. The two paths are independent: either may fail
// without affecting the other.
package deliver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"MentionScanner/internal/domain"
	"MentionScanner/internal/ports"
)

// Report summarizes one notification delivery.
type Report struct {
	ItemsNotified int
	ChunksSent    int
	ChunksFailed  int
	Errors        []error
}

// Notifier drives Contract A: top-n selection, chunking, paced sends.
type Notifier struct {
	sink       ports.Notifier
	limiter    *rate.Limiter
	chunkLimit int
	logger     *slog.Logger
}

// NewNotifier wires the sink. minInterval is the sink's rate-limit floor
// between consecutive sends; chunkLimit its hard per-message character cap.
func NewNotifier(sink ports.Notifier, chunkLimit int, minInterval time.Duration, logger *slog.Logger) *Notifier {
	if minInterval <= 0 {
		minInterval = 700 * time.Millisecond
	}
	return &Notifier{
		sink:       sink,
		limiter:    rate.NewLimiter(rate.Every(minInterval), 1),
		chunkLimit: chunkLimit,
		logger:     logger,
	}
}

// DeliverTop sends the top n ranked items. A failed chunk is recorded and
// logged but never blocks the chunks after it.
func (n *Notifier) DeliverTop(ctx context.Context, ranked []domain.Item, topN int) Report {
	var report Report
	if n.sink == nil || topN <= 0 || len(ranked) == 0 {
		return report
	}

	if topN > len(ranked) {
		topN = len(ranked)
	}
	top := ranked[:topN]

	records := make([]string, 0, len(top))
	for _, item := range top {
		records = append(records, FormatRecord(item))
	}

	for _, chunk := range Chunk(records, n.chunkLimit) {
		if err := n.Push(ctx, chunk); err != nil {
			report.ChunksFailed++
			report.Errors = append(report.Errors, fmt.Errorf("notify chunk: %w", err))
			if n.logger != nil {
				n.logger.Warn("chunk delivery failed", "error", err)
			}
			continue
		}
		report.ChunksSent++
	}

	report.ItemsNotified = len(top)
	return report
}

// Push sends one message through the paced sink. Exposed so the orchestrator
// can reuse the same pacing for its end-of-run summary message.
func (n *Notifier) Push(ctx context.Context, text string) error {
	if n.sink == nil {
		return nil
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	return n.sink.Push(ctx, text)
}
