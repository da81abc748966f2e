// Package fetch coordinates adapter calls across the keyword × source
// cross-product under a global per-run item budget.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"MentionScanner/internal/domain"
	"MentionScanner/internal/retry"
	"MentionScanner/internal/source"
)

// Options tunes one coordinator.
type Options struct {
	// Timeout bounds each individual adapter call.
	Timeout time.Duration
	// MaxAttempts caps retries per (keyword, source) call, transient
	// failures only.
	MaxAttempts int
	// RetryBase is the first backoff delay.
	RetryBase time.Duration
	// PerSourceRPS paces calls against any one platform.
	PerSourceRPS float64
	// Budget is the global per-run item budget. Once the cumulative fetched
	// count reaches it, no further adapter calls are issued.
	Budget int
}

// Coordinator walks keyword × source in configuration order. A failing pair
// is recorded and skipped; it never aborts the run.
type Coordinator struct {
	adapters []source.Adapter
	limiters map[domain.SourceID]*rate.Limiter
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// NewCoordinator builds a coordinator over the configured adapters,
// preserving their order (it decides which pairs get budget first).
func NewCoordinator(adapters []source.Adapter, opts Options, logger *slog.Logger) *Coordinator {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.PerSourceRPS <= 0 {
		opts.PerSourceRPS = 1
	}

	limiters := make(map[domain.SourceID]*rate.Limiter, len(adapters))
	for _, a := range adapters {
		limiters[a.ID()] = rate.NewLimiter(rate.Limit(opts.PerSourceRPS), 1)
	}

	return &Coordinator{
		adapters: adapters,
		limiters: limiters,
		opts:     opts,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// FetchAll fetches candidates for every (keyword, source) pair. It returns
// all fetched items stamped with FetchedAt, plus one error per pair that
// exhausted its retries. Zero items from a successful call is not an error.
func (c *Coordinator) FetchAll(ctx context.Context, keywords []string) ([]domain.Item, []error) {
	var (
		items []domain.Item
		errs  []error
	)

	perCall := c.perCallCap()
	total := 0

	for _, keyword := range keywords {
		for _, adapter := range c.adapters {
			if total >= c.opts.Budget {
				c.debug("budget exhausted", "total", total)
				return items, errs
			}

			limit := perCall
			if remaining := c.opts.Budget - total; limit > remaining {
				limit = remaining
			}

			got, err := c.fetchPair(ctx, adapter, keyword, limit)
			if err != nil {
				errs = append(errs, fmt.Errorf("fetch %s/%s: %w", adapter.ID(), keyword, err))
				c.debug("pair failed", "source", adapter.ID(), "keyword", keyword, "error", err)
				continue
			}

			now := c.now()
			for i := range got {
				got[i].FetchedAt = now
			}

			total += len(got)
			items = append(items, got...)
			c.debug("pair fetched", "source", adapter.ID(), "keyword", keyword, "count", len(got))
		}
	}

	return items, errs
}

func (c *Coordinator) fetchPair(ctx context.Context, adapter source.Adapter, keyword string, limit int) ([]domain.Item, error) {
	if limiter := c.limiters[adapter.ID()]; limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var got []domain.Item
	err := retry.Do(ctx, c.opts.MaxAttempts, c.opts.RetryBase, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()

		result, err := adapter.Fetch(callCtx, keyword, limit)
		if err != nil {
			return err
		}
		got = result
		return nil
	})
	return got, err
}

// perCallCap divides the budget evenly across sources, floored at one item,
// so no single platform can consume the whole run.
func (c *Coordinator) perCallCap() int {
	if len(c.adapters) == 0 {
		return 0
	}
	share := c.opts.Budget / len(c.adapters)
	if share < 1 {
		share = 1
	}
	return share
}

func (c *Coordinator) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
