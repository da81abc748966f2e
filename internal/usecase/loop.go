package usecase

import (
	"context"
	"time"

	"MentionScanner/internal/ports"
)

// Loop drives the runner from a scheduler in repeat mode.
type Loop struct {
	driver ports.Scheduler
	runner *Runner
}

// NewLoop binds a scheduler to the runner.
func NewLoop(driver ports.Scheduler, runner *Runner) *Loop {
	return &Loop{driver: driver, runner: runner}
}

// Start registers the run job with the scheduler.
func (l *Loop) Start(ctx context.Context) error {
	if l.driver == nil || l.runner == nil {
		return nil
	}

	job := func(time.Time) {
		_, _ = l.runner.Run(ctx)
	}
	return l.driver.Start(ctx, job)
}

// Stop tears down the underlying scheduler.
func (l *Loop) Stop(ctx context.Context) error {
	if l.driver == nil {
		return nil
	}
	return l.driver.Stop(ctx)
}
