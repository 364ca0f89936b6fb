package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DBPath) == "" {
		return errors.New("paths.db_path must be set")
	}
	if err := ensurePositiveMap(map[string]int{
		"guard.window_seconds":            c.Guard.WindowSeconds,
		"tagger.timeout_seconds":          c.Tagger.TimeoutSeconds,
		"thumbs.size":                     c.Thumbs.Size,
		"safety.timeout_seconds":          c.Safety.TimeoutSeconds,
		"notifications.request_timeout":   c.Notifications.RequestTimeout,
		"bot.max_concurrent":              c.Bot.MaxConcurrent,
		"janitor.interval_minutes":        c.Janitor.IntervalMinutes,
		"janitor.staging_max_age_minutes": c.Janitor.StagingMaxAgeMinutes,
	}); err != nil {
		return err
	}
	if strings.TrimSpace(c.Tagger.Binary) == "" {
		return errors.New("tagger.binary must be set")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
