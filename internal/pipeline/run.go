package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"refile/internal/logging"
	"refile/internal/transport"
)

// run carries the mutable state of one pipeline invocation.
type run struct {
	event       transport.FileEvent
	stagingDir  string
	paths       []string
	newFilename string
	uploadPath  string
	thumbPath   string

	statusID      int64
	statusCreated bool

	guardHeld bool
}

// recordPath remembers a filesystem path for unconditional cleanup.
func (r *run) recordPath(path string) {
	if path != "" {
		r.paths = append(r.paths, path)
	}
}

// cleanup removes every recorded path and the staging directory. Failures
// are logged and never interrupt the remaining removals.
func (r *run) cleanup(logger *slog.Logger) {
	for _, path := range r.paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("cleanup path", logging.String("path", path), logging.Error(err))
		}
	}
	if r.stagingDir != "" {
		if err := os.RemoveAll(r.stagingDir); err != nil {
			logger.Warn("cleanup staging dir", logging.String("path", r.stagingDir), logging.Error(err))
		}
	}
}

// setStatus edits the status message in place, creating it on first use.
func (p *Pipeline) setStatus(ctx context.Context, r *run, text string) {
	if !r.statusCreated {
		id, err := p.client.SendMessage(ctx, r.event.ChatID, text)
		if err != nil {
			p.logger.Warn("send status message", logging.Error(err))
			return
		}
		r.statusID = id
		r.statusCreated = true
		return
	}
	if err := p.client.EditMessage(ctx, r.event.ChatID, r.statusID, text); err != nil {
		p.logger.Warn("edit status message", logging.Error(err))
	}
}

// dropStatus deletes the status message after a successful delivery.
func (p *Pipeline) dropStatus(ctx context.Context, r *run) {
	if !r.statusCreated {
		return
	}
	if err := p.client.DeleteMessage(ctx, r.event.ChatID, r.statusID); err != nil {
		p.logger.Warn("delete status message", logging.Error(err))
	}
	r.statusCreated = false
}

// reportFailure overwrites the status message with the failure text, or posts
// it fresh when the status message was never created.
func (p *Pipeline) reportFailure(ctx context.Context, r *run, text string) {
	if r.statusCreated {
		if err := p.client.EditMessage(ctx, r.event.ChatID, r.statusID, text); err != nil {
			p.logger.Warn("edit failure message", logging.Error(err))
		}
		return
	}
	if _, err := p.client.SendMessage(ctx, r.event.ChatID, text); err != nil {
		p.logger.Warn("send failure message", logging.Error(err))
	}
}

func (r *run) stagingPath(parts ...string) string {
	return filepath.Join(append([]string{r.stagingDir}, parts...)...)
}
