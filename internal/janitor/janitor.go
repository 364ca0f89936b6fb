// Package janitor runs periodic housekeeping: expired guard entries and
// abandoned staging directories left by interrupted runs.
package janitor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"refile/internal/config"
	"refile/internal/logging"
	"refile/internal/pending"
)

// Janitor owns the cron schedule for background sweeps.
type Janitor struct {
	guard   *pending.Guard
	workDir string
	maxAge  time.Duration
	logger  *slog.Logger
	cron    *cron.Cron
}

// New constructs a janitor from application config.
func New(cfg *config.Config, guard *pending.Guard, logger *slog.Logger) *Janitor {
	return &Janitor{
		guard:   guard,
		workDir: cfg.Paths.WorkDir,
		maxAge:  cfg.StagingMaxAge(),
		logger:  logging.NewComponentLogger(logger, "janitor"),
		cron:    cron.New(),
	}
}

// Start schedules the sweep at the configured interval and begins running.
func (j *Janitor) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("janitor interval must be positive")
	}
	if _, err := j.cron.AddFunc(fmt.Sprintf("@every %s", interval), j.Sweep); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	j.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

// Sweep performs one housekeeping pass.
func (j *Janitor) Sweep() {
	if j.guard != nil {
		j.guard.Sweep()
	}
	removed := j.removeStaleStaging()
	if removed > 0 {
		j.logger.Info("removed stale staging directories", logging.Int("count", removed))
	}
}

// removeStaleStaging deletes run-* directories older than the configured age.
// Directories belonging to live runs are younger than the threshold and are
// left alone.
func (j *Janitor) removeStaleStaging() int {
	entries, err := os.ReadDir(j.workDir)
	if err != nil {
		if !os.IsNotExist(err) {
			j.logger.Warn("scan work dir", logging.Error(err))
		}
		return 0
	}

	cutoff := time.Now().Add(-j.maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "run-") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(j.workDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			j.logger.Warn("remove stale staging dir", logging.String("path", path), logging.Error(err))
			continue
		}
		removed++
	}
	return removed
}
