// Package local implements the chat transport against the local filesystem.
// Files dropped into an inbox directory become submissions; uploads and
// status messages land in an outbox directory. A `<name>.caption` sidecar
// next to an inbox file supplies the submission caption.
package local

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"refile/internal/logging"
	"refile/internal/transport"
)

const captionSuffix = ".caption"

// Local chat identities. The filesystem transport serves a single
// operator, so every event carries the same pair.
const (
	ChatID int64 = 1
	UserID int64 = 1
)

var videoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".webm": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".m4a": true, ".ogg": true, ".wav": true,
}

// Client is a transport.Client backed by inbox/outbox directories.
type Client struct {
	inboxDir  string
	outboxDir string
	logger    *slog.Logger

	nextMessageID atomic.Int64

	mu      sync.Mutex
	emitted map[string]struct{}
}

// New constructs a filesystem transport rooted at the two directories.
func New(inboxDir, outboxDir string, logger *slog.Logger) (*Client, error) {
	for _, dir := range []string{inboxDir, outboxDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure transport directory %s: %w", dir, err)
		}
	}
	return &Client{
		inboxDir:  inboxDir,
		outboxDir: outboxDir,
		logger:    logging.NewComponentLogger(logger, "transport"),
		emitted:   map[string]struct{}{},
	}, nil
}

// Watch emits one FileEvent per inbox file. Files already present are
// delivered first, then new arrivals as the watcher reports them. The
// channel closes when ctx is cancelled.
func (c *Client) Watch(ctx context.Context) (<-chan transport.FileEvent, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create inbox watcher: %w", err)
	}
	if err := watcher.Add(c.inboxDir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch inbox %s: %w", c.inboxDir, err)
	}

	events := make(chan transport.FileEvent)
	go func() {
		defer close(events)
		defer watcher.Close()

		c.emitExisting(ctx, events)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) {
					continue
				}
				c.maybeEmit(ctx, ev.Name, events)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn("inbox watcher error", logging.Error(err))
			}
		}
	}()
	return events, nil
}

func (c *Client) emitExisting(ctx context.Context, events chan<- transport.FileEvent) {
	entries, err := os.ReadDir(c.inboxDir)
	if err != nil {
		c.logger.Warn("scan inbox", logging.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		c.maybeEmit(ctx, filepath.Join(c.inboxDir, entry.Name()), events)
	}
}

func (c *Client) maybeEmit(ctx context.Context, path string, events chan<- transport.FileEvent) {
	name := filepath.Base(path)
	if skipName(name) {
		return
	}

	c.mu.Lock()
	if _, seen := c.emitted[name]; seen {
		c.mu.Unlock()
		return
	}
	c.emitted[name] = struct{}{}
	c.mu.Unlock()

	info, err := waitSettled(ctx, path)
	if err != nil {
		c.logger.Warn("inbox file never settled", logging.String("file", name), logging.Error(err))
		return
	}

	event := c.eventFor(name, info)
	select {
	case events <- event:
	case <-ctx.Done():
	}
}

// Pending returns events for files already sitting in the inbox without
// starting a watcher. Used for one-shot processing.
func (c *Client) Pending(ctx context.Context) ([]transport.FileEvent, error) {
	entries, err := os.ReadDir(c.inboxDir)
	if err != nil {
		return nil, fmt.Errorf("scan inbox: %w", err)
	}
	var events []transport.FileEvent
	for _, entry := range entries {
		if entry.IsDir() || skipName(entry.Name()) {
			continue
		}
		info, err := waitSettled(ctx, filepath.Join(c.inboxDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("stat inbox file %s: %w", entry.Name(), err)
		}
		events = append(events, c.eventFor(entry.Name(), info))
	}
	return events, nil
}

func skipName(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, captionSuffix)
}

func (c *Client) eventFor(name string, info os.FileInfo) transport.FileEvent {
	return transport.FileEvent{
		ChatID:  ChatID,
		UserID:  UserID,
		Caption: c.readCaption(name),
		File: transport.MediaRef{
			ID:   name,
			Name: name,
			Size: info.Size(),
			Kind: kindForName(name),
		},
	}
}

// waitSettled polls until two consecutive stats agree on size, so partially
// copied files are not picked up mid-write.
func waitSettled(ctx context.Context, path string) (os.FileInfo, error) {
	var lastSize int64 = -1
	for i := 0; i < 50; i++ {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() == lastSize {
			return info, nil
		}
		lastSize = info.Size()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return os.Stat(path)
}

func (c *Client) readCaption(name string) string {
	data, err := os.ReadFile(filepath.Join(c.inboxDir, name+captionSuffix))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func kindForName(name string) transport.Kind {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case videoExtensions[ext]:
		return transport.KindVideo
	case audioExtensions[ext]:
		return transport.KindAudio
	default:
		return transport.KindDocument
	}
}

// DownloadMedia copies the inbox file identified by ref into destPath.
func (c *Client) DownloadMedia(ctx context.Context, ref transport.MediaRef, destPath string, progress transport.ProgressFunc) (string, error) {
	src := filepath.Join(c.inboxDir, filepath.Base(ref.ID))
	if err := copyFile(ctx, src, destPath, ref.Size, progress); err != nil {
		return "", fmt.Errorf("download %s: %w", ref.ID, err)
	}
	return destPath, nil
}

// UploadDocument copies the file into the outbox.
func (c *Client) UploadDocument(ctx context.Context, chatID int64, up transport.Upload, progress transport.ProgressFunc) error {
	return c.upload(ctx, up, progress)
}

// UploadVideo copies the file into the outbox.
func (c *Client) UploadVideo(ctx context.Context, chatID int64, up transport.Upload, progress transport.ProgressFunc) error {
	return c.upload(ctx, up, progress)
}

// UploadAudio copies the file into the outbox.
func (c *Client) UploadAudio(ctx context.Context, chatID int64, up transport.Upload, progress transport.ProgressFunc) error {
	return c.upload(ctx, up, progress)
}

func (c *Client) upload(ctx context.Context, up transport.Upload, progress transport.ProgressFunc) error {
	name := filepath.Base(up.Path)
	dest := filepath.Join(c.outboxDir, name)

	info, err := os.Stat(up.Path)
	if err != nil {
		return fmt.Errorf("stat upload source: %w", err)
	}
	if err := copyFile(ctx, up.Path, dest, info.Size(), progress); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	if up.Caption != "" {
		if err := os.WriteFile(dest+captionSuffix, []byte(up.Caption+"\n"), 0o644); err != nil {
			return fmt.Errorf("write caption sidecar: %w", err)
		}
	}
	if up.ThumbPath != "" {
		thumbDest := dest + ".thumb" + filepath.Ext(up.ThumbPath)
		if err := copyFile(ctx, up.ThumbPath, thumbDest, 0, nil); err != nil {
			return fmt.Errorf("copy thumbnail: %w", err)
		}
	}
	c.logger.Info("uploaded file", logging.String("file", name))
	return nil
}

// SendMessage writes a status message file and returns its identity.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (int64, error) {
	id := c.nextMessageID.Add(1)
	if err := os.MkdirAll(c.messagesDir(chatID), 0o755); err != nil {
		return 0, fmt.Errorf("ensure messages directory: %w", err)
	}
	if err := os.WriteFile(c.messagePath(chatID, id), []byte(text+"\n"), 0o644); err != nil {
		return 0, fmt.Errorf("write message: %w", err)
	}
	return id, nil
}

// EditMessage overwrites a previously sent status message.
func (c *Client) EditMessage(ctx context.Context, chatID int64, messageID int64, text string) error {
	path := c.messagePath(chatID, messageID)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("edit message %d: %w", messageID, err)
	}
	if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("edit message %d: %w", messageID, err)
	}
	return nil
}

// DeleteMessage removes a previously sent status message.
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int64) error {
	if err := os.Remove(c.messagePath(chatID, messageID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete message %d: %w", messageID, err)
	}
	return nil
}

// RemoveSubmission deletes a consumed inbox file and its caption sidecar.
func (c *Client) RemoveSubmission(ref transport.MediaRef) error {
	name := filepath.Base(ref.ID)
	if err := os.Remove(filepath.Join(c.inboxDir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove submission %s: %w", name, err)
	}
	if err := os.Remove(filepath.Join(c.inboxDir, name+captionSuffix)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove caption sidecar for %s: %w", name, err)
	}
	c.mu.Lock()
	delete(c.emitted, name)
	c.mu.Unlock()
	return nil
}

func (c *Client) messagesDir(chatID int64) string {
	return filepath.Join(c.outboxDir, "messages", fmt.Sprintf("chat-%d", chatID))
}

func (c *Client) messagePath(chatID, messageID int64) string {
	return filepath.Join(c.messagesDir(chatID), fmt.Sprintf("msg-%d.md", messageID))
}

func copyFile(ctx context.Context, src, dest string, total int64, progress transport.ProgressFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if dir := filepath.Dir(dest); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	var writer io.Writer = out
	if progress != nil {
		writer = &progressWriter{dest: out, total: total, report: progress}
	}
	if _, err := io.Copy(writer, in); err != nil {
		return err
	}
	return out.Sync()
}

type progressWriter struct {
	dest        io.Writer
	total       int64
	transferred int64
	report      transport.ProgressFunc
}

func (w *progressWriter) Write(p []byte) (int, error) {
	n, err := w.dest.Write(p)
	w.transferred += int64(n)
	w.report(w.transferred, w.total)
	return n, err
}
