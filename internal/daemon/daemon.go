// Package daemon wires the rename service together and enforces a single
// running instance per data directory.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"refile/internal/bot"
	"refile/internal/config"
	"refile/internal/deps"
	"refile/internal/janitor"
	"refile/internal/logging"
	"refile/internal/notifications"
	"refile/internal/pending"
	"refile/internal/pipeline"
	"refile/internal/prefs"
	"refile/internal/transport/local"
)

// Daemon owns the long-running service: inbox watcher, dispatcher, janitor.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *prefs.Store
	guard      *pending.Guard
	client     *local.Client
	dispatcher *bot.Dispatcher
	janitor    *janitor.Janitor
	notifier   notifications.Service

	lockPath string
	lock     *flock.Flock
	running  atomic.Bool
}

// New constructs a daemon with all dependencies initialized from config.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	store, err := prefs.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}

	client, err := local.New(cfg.Paths.InboxDir, cfg.Paths.OutboxDir, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create transport: %w", err)
	}

	guard := pending.NewGuard(cfg.GuardWindow())
	notifier := notifications.NewService(cfg)

	p, err := pipeline.New(pipeline.Options{
		Config:   cfg,
		Store:    store,
		Guard:    guard,
		Client:   client,
		Notifier: notifier,
		Logger:   logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create pipeline: %w", err)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "refiled.lock")
	return &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		store:      store,
		guard:      guard,
		client:     client,
		dispatcher: bot.New(p, cfg.Bot.MaxConcurrent, logger),
		janitor:    janitor.New(cfg, guard, logger),
		notifier:   notifier,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Run acquires the instance lock and serves until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another refile daemon holds %s", d.lockPath)
	}
	defer func() {
		if unlockErr := d.lock.Unlock(); unlockErr != nil {
			d.logger.Warn("release daemon lock", logging.Error(unlockErr))
		}
		if closeErr := d.store.Close(); closeErr != nil {
			d.logger.Warn("close preference store", logging.Error(closeErr))
		}
	}()

	for _, status := range deps.CheckBinaries(deps.ForConfig(d.cfg)) {
		if !status.Available {
			d.logger.Warn("external dependency unavailable",
				logging.String("name", status.Name),
				logging.String("detail", status.Detail))
		}
	}

	interval := time.Duration(d.cfg.Janitor.IntervalMinutes) * time.Minute
	if err := d.janitor.Start(interval); err != nil {
		return fmt.Errorf("start janitor: %w", err)
	}
	defer d.janitor.Stop()

	events, err := d.client.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch inbox: %w", err)
	}

	d.running.Store(true)
	defer d.running.Store(false)
	started := time.Now()
	d.logger.Info("refile daemon started",
		logging.String("inbox", d.cfg.Paths.InboxDir),
		logging.String("lock", d.lockPath))
	if err := d.notifier.NotifyStarted(ctx); err != nil {
		d.logger.Warn("startup notification", logging.Error(err))
	}

	runErr := d.dispatcher.Run(ctx, events)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	stats := d.dispatcher.Snapshot()
	d.logger.Info("refile daemon stopped",
		logging.Int64("processed", stats.Processed),
		logging.Int64("failed", stats.Failed),
		logging.Int64("skipped", stats.Skipped))
	if err := d.notifier.NotifyStopped(context.Background(), stats.Processed, stats.Failed, time.Since(started)); err != nil {
		d.logger.Warn("shutdown notification", logging.Error(err))
	}
	return runErr
}

// Running reports whether the daemon currently serves events.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LockPath exposes the instance lock location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}
