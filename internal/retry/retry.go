package retry

import (
	"context"
	"math/rand"
	"time"

	"MentionScanner/internal/domain"
)

// Do runs fn up to maxAttempts times. Between attempts it sleeps an
// exponentially growing delay plus jitter. Only transient failures are
// retried; permanent ones and context cancellation surface immediately.
func Do(ctx context.Context, maxAttempts int, base time.Duration, fn func(context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if sleepErr := sleep(ctx, backoffDelay(base, attempt)); sleepErr != nil {
				return sleepErr
			}
		}

		if err = fn(ctx); err == nil {
			return nil
		}
		if !domain.IsTransient(err) {
			return err
		}
	}
	return err
}

// backoffDelay doubles the base per attempt and adds up to 50% jitter.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	delay := base << (attempt - 1)
	return delay + time.Duration(rand.Int63n(int64(delay)/2+1))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
