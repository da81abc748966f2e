// Package usecase sequences one run: fetch, dedupe, score, deliver. The
// flow is linear; retries live inside the coordinator and the delivery
// manager, never here.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"MentionScanner/internal/dedupe"
	"MentionScanner/internal/deliver"
	"MentionScanner/internal/domain"
	"MentionScanner/internal/fetch"
	"MentionScanner/internal/ports"
	"MentionScanner/internal/rank"
)

// Deps wires all collaborators into the orchestrator.
type Deps struct {
	Coordinator *fetch.Coordinator
	Ranker      *rank.Ranker
	Notifier    *deliver.Notifier
	Archiver    *deliver.Archiver
	Repository  ports.ItemRepository
	Keywords    []string
	TopN        int
	ArchiveCap  int
	Logger      *slog.Logger
}

// Runner executes the fetch–dedupe–score–deliver pipeline once per call.
// Once fetching begins a run always reaches done; partial failures accumulate
// in the summary instead of aborting sibling work.
type Runner struct {
	deps Deps
	now  func() time.Time
}

// NewRunner constructs the orchestrator.
func NewRunner(deps Deps) *Runner {
	return &Runner{deps: deps, now: func() time.Time { return time.Now().UTC() }}
}

// Run performs one complete run and returns its summary. The returned error
// is non-nil only for precondition failures before fetching starts.
func (r *Runner) Run(ctx context.Context) (*domain.RunSummary, error) {
	summary := domain.NewRunSummary(r.now())

	if len(r.deps.Keywords) == 0 || r.deps.Coordinator == nil {
		summary.State = domain.StateFailed
		summary.FinishedAt = r.now()
		return summary, fmt.Errorf("run %s: no keywords configured", summary.RunID)
	}

	r.transition(summary, domain.StateFetching)
	items, fetchErrs := r.deps.Coordinator.FetchAll(ctx, r.deps.Keywords)
	for _, item := range items {
		summary.CountPair(item.Source, item.Keyword, 1)
	}
	for _, err := range fetchErrs {
		summary.AddError(err)
	}

	r.transition(summary, domain.StateDeduping)
	unique := r.dedupe(ctx, summary, items)

	r.transition(summary, domain.StateScoring)
	ranked := unique
	if r.deps.Ranker != nil {
		ranked = r.deps.Ranker.Rank(unique)
	}

	r.transition(summary, domain.StateDelivering)
	r.deliver(ctx, summary, ranked)

	r.transition(summary, domain.StateDone)
	summary.FinishedAt = r.now()

	r.sendSummary(ctx, summary)
	return summary, nil
}

// dedupe loads the previously-seen URL set and collapses the batch. A failed
// seen lookup degrades to intra-run dedup only; the miss is recorded.
func (r *Runner) dedupe(ctx context.Context, summary *domain.RunSummary, items []domain.Item) []domain.Item {
	seen := map[string]bool{}
	if r.deps.Repository != nil && len(items) > 0 {
		loaded, err := r.deps.Repository.Seen(ctx, dedupe.URLs(items))
		if err != nil {
			summary.AddError(fmt.Errorf("load seen urls: %w", err))
		} else {
			seen = loaded
		}
	}

	unique := dedupe.Dedupe(items, seen)
	summary.Deduped = len(unique)
	return unique
}

// deliver runs the notification and archival paths concurrently. They are
// independent: one failing never cancels the other.
func (r *Runner) deliver(ctx context.Context, summary *domain.RunSummary, ranked []domain.Item) {
	var (
		report      deliver.Report
		archived    int
		archiveErrs []error
	)

	var g errgroup.Group
	g.Go(func() error {
		if r.deps.Notifier != nil {
			report = r.deps.Notifier.DeliverTop(ctx, ranked, r.deps.TopN)
		}
		return nil
	})
	g.Go(func() error {
		if r.deps.Archiver != nil {
			archived, archiveErrs = r.deps.Archiver.Archive(ctx, ranked, r.deps.ArchiveCap)
		}
		return nil
	})
	_ = g.Wait()

	summary.Notified = report.ItemsNotified - reportLoss(report)
	summary.Archived = archived
	for _, err := range report.Errors {
		summary.AddError(err)
	}
	for _, err := range archiveErrs {
		summary.AddError(err)
	}
}

// reportLoss estimates items lost to failed chunks so the summary does not
// overstate delivery.
func reportLoss(report deliver.Report) int {
	if report.ChunksFailed == 0 || report.ChunksSent+report.ChunksFailed == 0 {
		return 0
	}
	perChunk := report.ItemsNotified / (report.ChunksSent + report.ChunksFailed)
	return report.ChunksFailed * perChunk
}

// sendSummary pushes a best-effort completion message, errors included, so
// partial failures surface in the same channel as the digest.
func (r *Runner) sendSummary(ctx context.Context, summary *domain.RunSummary) {
	if r.deps.Notifier == nil {
		return
	}

	text := fmt.Sprintf("🟢 Scan complete: %d fetched, %d unique, %d notified, %d archived, %d errors.",
		summary.Fetched, summary.Deduped, summary.Notified, summary.Archived, len(summary.Errors))
	if err := r.deps.Notifier.Push(ctx, text); err != nil {
		r.log("summary message failed", "error", err)
	}
}

func (r *Runner) transition(summary *domain.RunSummary, next domain.RunState) {
	summary.State = next
	r.log("state", "run", summary.RunID, "state", next)
}

func (r *Runner) log(msg string, args ...any) {
	if r.deps.Logger != nil {
		r.deps.Logger.Debug(msg, args...)
	}
}
