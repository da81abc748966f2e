package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"MentionScanner/internal/config"
	"MentionScanner/internal/deliver"
	"MentionScanner/internal/fetch"
	"MentionScanner/internal/infrastructure/scheduler"
	"MentionScanner/internal/infrastructure/storage"
	"MentionScanner/internal/infrastructure/telegram"
	"MentionScanner/internal/ports"
	"MentionScanner/internal/rank"
	"MentionScanner/internal/source"
	"MentionScanner/internal/usecase"
)

// Application wires configuration into the run pipeline.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	runner *usecase.Runner
	db     *sql.DB
}

// New validates the configuration and builds a runnable application.
// Configuration errors are the only fatal startup condition; missing sink
// credentials degrade with a warning so a dry run still exercises the
// pipeline.
func New(cfg config.Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	adapters := make([]source.Adapter, 0, len(cfg.Sources))
	for _, id := range cfg.SourceIDs() {
		adapter, err := source.New(id, nil)
		if err != nil {
			return nil, fmt.Errorf("configuration: %w", err)
		}
		adapters = append(adapters, adapter)
	}

	coordinator := fetch.NewCoordinator(adapters, fetch.Options{
		Timeout:      cfg.Fetch.Timeout,
		MaxAttempts:  cfg.Fetch.MaxAttempts,
		RetryBase:    cfg.Fetch.RetryBase,
		PerSourceRPS: cfg.Fetch.PerSourceRPS,
		Budget:       cfg.DailyLimit,
	}, logger.With("component", "fetch"))

	var (
		db   *sql.DB
		repo ports.ItemRepository
	)
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db = opened
		repo = storage.NewPostgresRepository(db)
	} else {
		logger.Warn("no database configured; cross-run dedup and archival disabled")
	}

	var sink ports.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		sink = telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	} else {
		logger.Warn("telegram credentials missing; notifications disabled")
	}

	chunkLimit := cfg.Notify.ChunkLimit
	if chunkLimit <= 0 || chunkLimit > telegram.MaxMessageLength {
		chunkLimit = telegram.MaxMessageLength
	}

	runner := usecase.NewRunner(usecase.Deps{
		Coordinator: coordinator,
		Ranker:      rank.New(cfg.Scoring),
		Notifier:    deliver.NewNotifier(sink, chunkLimit, cfg.Notify.MinInterval, logger.With("component", "notify")),
		Archiver:    deliver.NewArchiver(repo, cfg.Fetch.RetryBase, logger.With("component", "archive")),
		Repository:  repo,
		Keywords:    cfg.Keywords,
		TopN:        cfg.TopN,
		ArchiveCap:  cfg.DailyLimit,
		Logger:      logger.With("component", "run"),
	})

	return &Application{cfg: cfg, logger: logger, runner: runner, db: db}, nil
}

// Run executes one scan under the configured wall-clock budget. Partial
// failures are reported in the summary and do not produce an error.
func (a *Application) Run(ctx context.Context) error {
	if a.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.RunTimeout)
		defer cancel()
	}

	summary, err := a.runner.Run(ctx)
	if err != nil {
		return err
	}

	a.logger.Info("run finished",
		"run", summary.RunID,
		"state", summary.State,
		"fetched", summary.Fetched,
		"unique", summary.Deduped,
		"notified", summary.Notified,
		"archived", summary.Archived,
		"errors", len(summary.Errors),
	)
	for _, msg := range summary.Errors {
		a.logger.Warn("run error", "run", summary.RunID, "error", msg)
	}
	return nil
}

// RunEvery repeats runs at the given interval until ctx is cancelled.
func (a *Application) RunEvery(ctx context.Context, interval time.Duration) error {
	loop := usecase.NewLoop(scheduler.NewIntervalScheduler(interval), a.runner)
	if err := loop.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return loop.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
