package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"refile/internal/config"
)

const userAgent = "ReFile/0.1.0"

// Service defines the admin-alert surface exposed to the daemon and pipeline.
type Service interface {
	NotifyStarted(ctx context.Context) error
	NotifyStopped(ctx context.Context, processed, failed int64, uptime time.Duration) error
	NotifyRenameCompleted(ctx context.Context, userID int64, newFilename string) error
	NotifyRenameFailed(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		errors:    cfg.Notifications.Errors,
		lifecycle: cfg.Notifications.Lifecycle,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	errors    bool
	lifecycle bool
}

func (n *ntfyService) NotifyStarted(ctx context.Context) error {
	if !n.lifecycle {
		return nil
	}
	data := payload{
		title:   "ReFile - Started",
		message: "Rename daemon is up and watching for submissions",
		tags:    []string{"refile", "daemon", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyStopped(ctx context.Context, processed, failed int64, uptime time.Duration) error {
	if !n.lifecycle {
		return nil
	}
	uptime = uptime.Round(time.Second)
	if uptime < 0 {
		uptime = 0
	}
	data := payload{
		title:   "ReFile - Stopped",
		message: fmt.Sprintf("Rename daemon stopped after %s: %d renamed, %d failed", uptime, processed, failed),
		tags:    []string{"refile", "daemon", "stopped"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRenameCompleted(ctx context.Context, userID int64, newFilename string) error {
	if !n.lifecycle {
		return nil
	}
	newFilename = strings.TrimSpace(newFilename)
	data := payload{
		title:   "ReFile - Renamed",
		message: fmt.Sprintf("Delivered %s for user %d", newFilename, userID),
		tags:    []string{"refile", "rename", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRenameFailed(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Rename failed")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" for ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "ReFile - Error",
		message:  builder.String(),
		tags:     []string{"refile", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "ReFile - Test",
		message:  "Notification system test",
		tags:     []string{"refile", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyStarted(context.Context) error { return nil }
func (noopService) NotifyStopped(context.Context, int64, int64, time.Duration) error {
	return nil
}
func (noopService) NotifyRenameCompleted(context.Context, int64, string) error { return nil }
func (noopService) NotifyRenameFailed(context.Context, error, string) error    { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
