package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTagger()
	c.normalizeSafety()
	c.normalizeNotifications()
	c.normalizeLogging()
	if c.Guard.WindowSeconds <= 0 {
		c.Guard.WindowSeconds = defaultGuardWindowSeconds
	}
	if c.Thumbs.Size <= 0 {
		c.Thumbs.Size = defaultThumbSize
	}
	if c.Bot.MaxConcurrent <= 0 {
		c.Bot.MaxConcurrent = defaultMaxConcurrent
	}
	if c.Janitor.IntervalMinutes <= 0 {
		c.Janitor.IntervalMinutes = defaultJanitorInterval
	}
	if c.Janitor.StagingMaxAgeMinutes <= 0 {
		c.Janitor.StagingMaxAgeMinutes = defaultStagingMaxAgeMinutes
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DBPath) == "" {
		c.Paths.DBPath = defaultDBPath
	}
	if c.Paths.DBPath, err = expandPath(c.Paths.DBPath); err != nil {
		return fmt.Errorf("paths.db_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.InboxDir) != "" {
		if c.Paths.InboxDir, err = expandPath(c.Paths.InboxDir); err != nil {
			return fmt.Errorf("paths.inbox_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.OutboxDir) != "" {
		if c.Paths.OutboxDir, err = expandPath(c.Paths.OutboxDir); err != nil {
			return fmt.Errorf("paths.outbox_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeTagger() {
	c.Tagger.Binary = strings.TrimSpace(c.Tagger.Binary)
	if c.Tagger.Binary == "" {
		c.Tagger.Binary = defaultTaggerBinary
	}
	if c.Tagger.TimeoutSeconds <= 0 {
		c.Tagger.TimeoutSeconds = defaultTaggerTimeoutSeconds
	}
}

func (c *Config) normalizeSafety() {
	c.Safety.Endpoint = strings.TrimSpace(c.Safety.Endpoint)
	if c.Safety.TimeoutSeconds <= 0 {
		c.Safety.TimeoutSeconds = defaultSafetyTimeoutSeconds
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
