package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
	DBPath    string `toml:"db_path"`
	InboxDir  string `toml:"inbox_dir"`
	OutboxDir string `toml:"outbox_dir"`
}

// Guard contains duplicate-submission guard configuration.
type Guard struct {
	WindowSeconds int `toml:"window_seconds"`
}

// Tagger contains configuration for the external metadata-tagging process.
type Tagger struct {
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Thumbs contains thumbnail normalization configuration.
type Thumbs struct {
	Size int `toml:"size"`
}

// Safety contains configuration for the content-safety checker.
type Safety struct {
	Endpoint       string `toml:"endpoint"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications contains configuration for ntfy admin alerts.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Errors         bool   `toml:"errors"`
	Lifecycle      bool   `toml:"lifecycle"`
}

// Bot contains dispatcher configuration.
type Bot struct {
	MaxConcurrent int `toml:"max_concurrent"`
}

// Janitor contains configuration for periodic maintenance sweeps.
type Janitor struct {
	IntervalMinutes      int `toml:"interval_minutes"`
	StagingMaxAgeMinutes int `toml:"staging_max_age_minutes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ReFile.
//
// Configuration sections by subsystem:
//   - Paths: staging/work directories, preference DB, local inbox/outbox
//   - Guard: duplicate-submission window
//   - Tagger: ffmpeg binary and timeout for metadata embedding
//   - Thumbs: thumbnail normalization size
//   - Safety: content-safety checker endpoint
//   - Notifications: ntfy admin alert settings
//   - Bot: dispatcher concurrency
//   - Janitor: maintenance sweep intervals
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Guard         Guard         `toml:"guard"`
	Tagger        Tagger        `toml:"tagger"`
	Thumbs        Thumbs        `toml:"thumbs"`
	Safety        Safety        `toml:"safety"`
	Notifications Notifications `toml:"notifications"`
	Bot           Bot           `toml:"bot"`
	Janitor       Janitor       `toml:"janitor"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/refile/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("refile.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.WorkDir, c.Paths.LogDir, filepath.Dir(c.Paths.DBPath)}
	if strings.TrimSpace(c.Paths.InboxDir) != "" {
		dirs = append(dirs, c.Paths.InboxDir)
	}
	if strings.TrimSpace(c.Paths.OutboxDir) != "" {
		dirs = append(dirs, c.Paths.OutboxDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// GuardWindow returns the duplicate-submission window as a duration.
func (c *Config) GuardWindow() time.Duration {
	return time.Duration(c.Guard.WindowSeconds) * time.Second
}

// TaggerTimeout returns the metadata-tagging timeout as a duration.
func (c *Config) TaggerTimeout() time.Duration {
	return time.Duration(c.Tagger.TimeoutSeconds) * time.Second
}

// StagingMaxAge returns the maximum age of abandoned staging directories.
func (c *Config) StagingMaxAge() time.Duration {
	return time.Duration(c.Janitor.StagingMaxAgeMinutes) * time.Minute
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
