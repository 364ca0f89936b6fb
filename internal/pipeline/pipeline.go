// Package pipeline orchestrates one rename run per submitted file: load
// preferences, guard against duplicates, screen content, classify and render
// the new name, then download, tag, thumbnail, upload, and clean up.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"refile/internal/config"
	"refile/internal/extract"
	"refile/internal/logging"
	"refile/internal/notifications"
	"refile/internal/pending"
	"refile/internal/prefs"
	"refile/internal/rename"
	"refile/internal/services"
	"refile/internal/services/ffmpeg"
	"refile/internal/services/safety"
	"refile/internal/services/thumbs"
	"refile/internal/transport"
)

// SubmissionRemover is implemented by transports that can retire a consumed
// submission (the filesystem inbox). Optional.
type SubmissionRemover interface {
	RemoveSubmission(ref transport.MediaRef) error
}

// Options collects pipeline dependencies.
type Options struct {
	Config   *config.Config
	Store    *prefs.Store
	Guard    *pending.Guard
	Client   transport.Client
	Checker  safety.Checker
	Tagger   ffmpeg.Tagger
	Thumbs   *thumbs.Normalizer
	Notifier notifications.Service
	Logger   *slog.Logger

	// Sleep is swapped in tests to skip real rate-limit waits.
	Sleep func(time.Duration)
}

// Pipeline runs rename invocations.
type Pipeline struct {
	cfg      *config.Config
	store    *prefs.Store
	guard    *pending.Guard
	client   transport.Client
	checker  safety.Checker
	tagger   ffmpeg.Tagger
	thumbs   *thumbs.Normalizer
	notifier notifications.Service
	logger   *slog.Logger
	sleep    func(time.Duration)
}

// New constructs a pipeline. Nil optional collaborators fall back to
// permissive or no-op implementations.
func New(opts Options) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("pipeline: config required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("pipeline: preference store required")
	}
	if opts.Client == nil {
		return nil, fmt.Errorf("pipeline: transport client required")
	}
	p := &Pipeline{
		cfg:      opts.Config,
		store:    opts.Store,
		guard:    opts.Guard,
		client:   opts.Client,
		checker:  opts.Checker,
		tagger:   opts.Tagger,
		thumbs:   opts.Thumbs,
		notifier: opts.Notifier,
		logger:   logging.NewComponentLogger(opts.Logger, "pipeline"),
		sleep:    opts.Sleep,
	}
	if p.guard == nil {
		p.guard = pending.NewGuard(opts.Config.GuardWindow())
	}
	if p.checker == nil {
		p.checker = safety.NewFromConfig(opts.Config)
	}
	if p.tagger == nil {
		p.tagger = ffmpeg.NewFromConfig(opts.Config)
	}
	if p.thumbs == nil {
		p.thumbs = thumbs.New(opts.Config.Thumbs.Size)
	}
	if p.notifier == nil {
		p.notifier = notifications.NewService(opts.Config)
	}
	if p.sleep == nil {
		p.sleep = time.Sleep
	}
	return p, nil
}

// Process runs the full stage sequence for one submission. It never panics
// across the boundary and never returns a raw stage error without an outcome.
func (p *Pipeline) Process(ctx context.Context, event transport.FileEvent) Result {
	correlationID := uuid.NewString()
	ctx = services.WithUserID(ctx, event.UserID)
	ctx = services.WithFileID(ctx, event.File.ID)
	ctx = services.WithRequestID(ctx, correlationID)
	logger := logging.WithContext(ctx, p.logger)

	r := &run{event: event}

	// PreferencesLoaded
	if err := p.store.EnsureUser(ctx, event.UserID); err != nil {
		logger.Error("ensure user", logging.Error(err))
		return Result{Outcome: OutcomeFailed, Stage: StagePreferencesLoaded, Err: err}
	}
	userPrefs, err := p.store.Get(ctx, event.UserID)
	if err != nil {
		logger.Error("load preferences", logging.Error(err))
		return Result{Outcome: OutcomeFailed, Stage: StagePreferencesLoaded, Err: err}
	}
	if userPrefs.Ban.Banned {
		logger.Info("banned user rejected", logging.String("reason", userPrefs.Ban.Reason))
		p.reportFailure(ctx, r, "You are banned from using this service.")
		return Result{Outcome: OutcomePreconditionNotMet, Stage: StagePreferencesLoaded}
	}
	if userPrefs.FormatTemplate == "" {
		logger.Info("no rename template configured")
		p.reportFailure(ctx, r, "Set a rename template first: refile prefs template set \"{season}{episode} {quality}\"")
		return Result{Outcome: OutcomePreconditionNotMet, Stage: StagePreferencesLoaded}
	}

	// DuplicateChecked
	if !p.guard.Begin(event.File.ID) {
		logger.Info("duplicate submission skipped")
		return Result{Outcome: OutcomeDuplicateSkip, Stage: StageDuplicateChecked}
	}
	r.guardHeld = true
	defer func() {
		r.cleanup(logger)
		if r.guardHeld {
			p.guard.Release(event.File.ID)
		}
	}()

	// ContentChecked
	unsafe, err := p.checker.IsUnsafe(ctx, event.File.Name, event.Caption)
	if err != nil {
		logger.Warn("content check failed, treating as unsafe", logging.Error(err))
		p.reportFailure(ctx, r, "Content screening is unavailable; submission rejected.")
		return Result{Outcome: OutcomeContentRejected, Stage: StageContentChecked, Err: err}
	}
	if unsafe {
		logger.Info("content rejected")
		p.reportFailure(ctx, r, "Submission rejected by content screening.")
		return Result{Outcome: OutcomeContentRejected, Stage: StageContentChecked}
	}

	// SourceTextSelected
	sourceText := event.File.Name
	if userPrefs.FileSource == prefs.SourceCaption && event.Caption != "" {
		sourceText = event.Caption
	}

	// Extracted + Rendered
	extraction := extract.Parse(sourceText)
	r.newFilename = rename.Filename(userPrefs.FormatTemplate, extraction, event.File.Name, rename.MediaKind(event.File.Kind))
	logger.Info("rendered filename",
		logging.String("source_text", sourceText),
		logging.String("new_filename", r.newFilename))

	// Staging directory for everything this run touches.
	r.stagingDir = filepath.Join(p.cfg.Paths.WorkDir, "run-"+correlationID)
	if err := os.MkdirAll(r.stagingDir, 0o755); err != nil {
		logger.Error("create staging dir", logging.Error(err))
		p.reportFailure(ctx, r, "Internal error preparing workspace.")
		return Result{Outcome: OutcomeFailed, Stage: StageDownloaded, Err: err}
	}

	// Downloaded
	p.setStatus(ctx, r, "**Downloading...**")
	downloadPath := r.stagingPath(r.newFilename)
	err = p.withRateLimitRetry(ctx, logger, func() error {
		_, downloadErr := p.client.DownloadMedia(ctx, event.File, downloadPath, p.progressFor(ctx, r, "Downloading"))
		return downloadErr
	})
	if err != nil {
		logger.Error("download failed", logging.Error(err))
		p.reportFailure(ctx, r, fmt.Sprintf("Download failed: %v", err))
		return p.failed(StageDownloaded, r, err)
	}
	r.uploadPath = downloadPath

	// MetadataTagged
	if userPrefs.MetadataEnabled {
		p.setStatus(ctx, r, "**Embedding metadata...**")
		taggedPath := r.stagingPath("tagged-" + r.newFilename)
		if err := p.tagger.Tag(ctx, downloadPath, taggedPath, userPrefs.Metadata); err != nil {
			logger.Error("metadata tagging failed", logging.Error(err))
			p.reportFailure(ctx, r, fmt.Sprintf("Metadata tagging failed: %v", err))
			return p.failed(StageMetadataTagged, r, err)
		}
		r.uploadPath = taggedPath
	} else {
		logger.Debug("metadata tagging disabled by user")
	}

	// ThumbnailPrepared
	p.prepareThumbnail(ctx, logger, r, userPrefs)

	// Uploaded
	p.setStatus(ctx, r, "**Uploading...**")
	caption := rename.Caption(userPrefs.Caption, r.newFilename)
	up := transport.Upload{Path: r.uploadPath, Caption: caption, ThumbPath: r.thumbPath}
	err = p.withRateLimitRetry(ctx, logger, func() error {
		return p.uploadByKind(ctx, event, up, r)
	})
	if err != nil {
		logger.Error("upload failed", logging.Error(err))
		p.reportFailure(ctx, r, fmt.Sprintf("Upload failed: %v", err))
		return p.failed(StageUploaded, r, err)
	}

	// Success path: retire the status message and the consumed submission.
	p.dropStatus(ctx, r)
	if remover, ok := p.client.(SubmissionRemover); ok {
		if err := remover.RemoveSubmission(event.File); err != nil {
			logger.Warn("retire submission", logging.Error(err))
		}
	}
	if err := p.notifier.NotifyRenameCompleted(ctx, event.UserID, r.newFilename); err != nil {
		logger.Warn("completion notification", logging.Error(err))
	}
	logger.Info("rename completed", logging.String("new_filename", r.newFilename))
	return Result{Outcome: OutcomeCompleted, Stage: StageCleanedUp, NewFilename: r.newFilename}
}

// failed wraps a stage failure and fires the admin alert.
func (p *Pipeline) failed(stage Stage, r *run, err error) Result {
	if notifyErr := p.notifier.NotifyRenameFailed(context.Background(), err, r.newFilename); notifyErr != nil {
		p.logger.Warn("failure notification", logging.Error(notifyErr))
	}
	return Result{Outcome: OutcomeFailed, Stage: stage, NewFilename: r.newFilename, Err: err}
}

// withRateLimitRetry runs op, and when the transport signals a rate limit,
// waits the mandated duration and retries exactly once.
func (p *Pipeline) withRateLimitRetry(ctx context.Context, logger *slog.Logger, op func() error) error {
	err := op()
	if err == nil {
		return nil
	}
	wait, ok := transport.RetryAfterDuration(err)
	if !ok {
		return err
	}
	logger.Info("rate limited, waiting before single retry", logging.Duration("wait", wait))
	p.sleep(wait)
	return op()
}

// prepareThumbnail resolves the thumbnail source in priority order: stored
// reference, then embedded video thumbnail, then none. Every failure here is
// non-fatal; the upload just goes out without a thumbnail.
func (p *Pipeline) prepareThumbnail(ctx context.Context, logger *slog.Logger, r *run, userPrefs *prefs.Preferences) {
	ref := ""
	switch {
	case userPrefs.ThumbnailRef != "":
		ref = userPrefs.ThumbnailRef
	case r.event.File.Kind == transport.KindVideo && r.event.File.ThumbRef != "":
		ref = r.event.File.ThumbRef
	default:
		return
	}

	rawPath := r.stagingPath("thumb-raw")
	if _, err := p.client.DownloadMedia(ctx, transport.MediaRef{ID: ref}, rawPath, nil); err != nil {
		logger.Warn("thumbnail fetch failed", logging.Error(err))
		return
	}
	processed, err := p.thumbs.Normalize(rawPath)
	if err != nil {
		logger.Warn("thumbnail normalize failed", logging.Error(err))
		return
	}
	r.recordPath(processed)
	r.thumbPath = processed
}

func (p *Pipeline) uploadByKind(ctx context.Context, event transport.FileEvent, up transport.Upload, r *run) error {
	progress := p.progressFor(ctx, r, "Uploading")
	switch event.File.Kind {
	case transport.KindVideo:
		return p.client.UploadVideo(ctx, event.ChatID, up, progress)
	case transport.KindAudio:
		return p.client.UploadAudio(ctx, event.ChatID, up, progress)
	default:
		return p.client.UploadDocument(ctx, event.ChatID, up, progress)
	}
}

// progressFor throttles transfer progress into occasional status edits.
func (p *Pipeline) progressFor(ctx context.Context, r *run, verb string) transport.ProgressFunc {
	var lastEdit time.Time
	return func(transferred, total int64) {
		if time.Since(lastEdit) < 2*time.Second {
			return
		}
		lastEdit = time.Now()
		if total > 0 {
			p.setStatus(ctx, r, fmt.Sprintf("**%s...** %d%%", verb, transferred*100/total))
			return
		}
		p.setStatus(ctx, r, fmt.Sprintf("**%s...**", verb))
	}
}
