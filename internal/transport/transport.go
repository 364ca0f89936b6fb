// Package transport defines the chat-transport contracts the rename pipeline
// depends on. Implementations deliver file submissions as events and carry
// downloads, uploads, and status messages.
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind identifies how a media file was submitted.
type Kind string

const (
	KindDocument Kind = "document"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
)

// MediaRef identifies a remote media object.
type MediaRef struct {
	// ID is the transport's stable identity for the file. The duplicate
	// guard keys on it.
	ID   string
	Name string
	Size int64
	Kind Kind
	// ThumbRef references an embedded thumbnail when the transport exposes
	// one (video submissions).
	ThumbRef string
}

// FileEvent is one submission awaiting processing.
type FileEvent struct {
	ChatID  int64
	UserID  int64
	File    MediaRef
	Caption string
}

// ProgressFunc receives transfer progress. Implementations may call it
// frequently; it must be cheap and must not block.
type ProgressFunc func(transferred, total int64)

// Upload describes an outgoing file.
type Upload struct {
	Path      string
	Caption   string
	ThumbPath string
}

// RateLimitError is the distinguished rate-limit signal. Callers wait
// RetryAfter and retry exactly once.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry after %s", e.RetryAfter)
}

// RetryAfterDuration extracts the mandated wait from a rate-limit error.
func RetryAfterDuration(err error) (time.Duration, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter, true
	}
	return 0, false
}

// Client is the full transport surface the pipeline and bot use.
type Client interface {
	Downloader
	Uploader
	Messenger
}

// Downloader fetches remote media to local paths.
type Downloader interface {
	// DownloadMedia fetches ref into destPath and returns the local path
	// actually written.
	DownloadMedia(ctx context.Context, ref MediaRef, destPath string, progress ProgressFunc) (string, error)
}

// Uploader sends local files back to the chat.
type Uploader interface {
	UploadDocument(ctx context.Context, chatID int64, up Upload, progress ProgressFunc) error
	UploadVideo(ctx context.Context, chatID int64, up Upload, progress ProgressFunc) error
	UploadAudio(ctx context.Context, chatID int64, up Upload, progress ProgressFunc) error
}

// Messenger manages the single status message the pipeline edits in place.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int64, error)
	EditMessage(ctx context.Context, chatID int64, messageID int64, text string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int64) error
}
