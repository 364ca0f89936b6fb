// Package ffmpeg wraps the external ffmpeg binary used to embed metadata
// into renamed media files.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"refile/internal/config"
	"refile/internal/prefs"
	"refile/internal/services"
)

var commandContext = exec.CommandContext

// DefaultTimeout bounds a single tagging run.
const DefaultTimeout = 300 * time.Second

// Tagger defines metadata embedding behaviour.
type Tagger interface {
	Tag(ctx context.Context, inputPath, outputPath string, fields prefs.MetadataFields) error
}

// Option configures the CLI tagger.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithTimeout overrides the default run timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// CLI invokes ffmpeg as a subprocess.
type CLI struct {
	binary  string
	timeout time.Duration
}

// NewCLI constructs a tagger using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg", timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// NewFromConfig constructs a tagger from application config.
func NewFromConfig(cfg *config.Config) *CLI {
	return NewCLI(WithBinary(cfg.Tagger.Binary), WithTimeout(cfg.TaggerTimeout()))
}

// BuildArgs assembles the ffmpeg invocation. The stream-copy mapping keeps
// every input stream intact; only metadata changes.
func BuildArgs(inputPath, outputPath string, fields prefs.MetadataFields) []string {
	return []string{
		"-i", inputPath,
		"-metadata", "title=" + fields.Title,
		"-metadata", "artist=" + fields.Artist,
		"-metadata", "author=" + fields.Author,
		"-metadata:s:v", "title=" + fields.VideoTitle,
		"-metadata:s:a", "title=" + fields.AudioTitle,
		"-metadata:s:s", "title=" + fields.SubtitleTitle,
		"-map", "0",
		"-c", "copy",
		"-loglevel", "error",
		outputPath,
	}
}

// Tag embeds the metadata fields into inputPath, writing outputPath. The run
// is bounded by the configured timeout; on expiry the process is killed and
// the error carries services.ErrTimeout.
func (c *CLI) Tag(ctx context.Context, inputPath, outputPath string, fields prefs.MetadataFields) error {
	if inputPath == "" {
		return services.Wrap(services.ErrConfiguration, "tagger", "tag", "input path required", nil)
	}
	if outputPath == "" {
		return services.Wrap(services.ErrConfiguration, "tagger", "tag", "output path required", nil)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := commandContext(runCtx, c.binary, BuildArgs(inputPath, outputPath, fields)...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "tagger", "tag",
			fmt.Sprintf("ffmpeg timed out after %s", c.timeout), runCtx.Err())
	}

	detail := strings.TrimSpace(stderr.String())
	if detail == "" {
		detail = err.Error()
	}
	return services.Wrap(services.ErrExternalTool, "tagger", "tag", detail, err)
}
