package bot_test

import (
	"context"
	"testing"
	"time"

	"refile/internal/bot"
	"refile/internal/logging"
	"refile/internal/pending"
	"refile/internal/pipeline"
	"refile/internal/prefs"
	"refile/internal/testsupport"
	"refile/internal/transport"
)

// noopTransport satisfies transport.Client while keeping runs on the
// precondition path (no template), so no real transfers happen.
type noopTransport struct{}

func (noopTransport) DownloadMedia(ctx context.Context, ref transport.MediaRef, destPath string, progress transport.ProgressFunc) (string, error) {
	return destPath, nil
}

func (noopTransport) UploadDocument(ctx context.Context, chatID int64, up transport.Upload, progress transport.ProgressFunc) error {
	return nil
}

func (noopTransport) UploadVideo(ctx context.Context, chatID int64, up transport.Upload, progress transport.ProgressFunc) error {
	return nil
}

func (noopTransport) UploadAudio(ctx context.Context, chatID int64, up transport.Upload, progress transport.ProgressFunc) error {
	return nil
}

func (noopTransport) SendMessage(ctx context.Context, chatID int64, text string) (int64, error) {
	return 1, nil
}

func (noopTransport) EditMessage(ctx context.Context, chatID int64, messageID int64, text string) error {
	return nil
}

func (noopTransport) DeleteMessage(ctx context.Context, chatID int64, messageID int64) error {
	return nil
}

func newPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	cfg := testsupport.NewConfig(t)

	store, err := prefs.OpenPath(cfg.Paths.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	p, err := pipeline.New(pipeline.Options{
		Config: cfg,
		Store:  store,
		Guard:  pending.NewGuard(time.Minute),
		Client: noopTransport{},
		Logger: logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return p
}

func TestRunDrainsChannelAndCounts(t *testing.T) {
	dispatcher := bot.New(newPipeline(t), 4, logging.NewNop())

	events := make(chan transport.FileEvent)
	go func() {
		for i := 0; i < 5; i++ {
			events <- transport.FileEvent{
				ChatID: 1,
				UserID: int64(100 + i),
				File:   transport.MediaRef{ID: "f", Name: "f.mkv", Kind: transport.KindVideo},
			}
		}
		close(events)
	}()

	if err := dispatcher.Run(context.Background(), events); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stats := dispatcher.Snapshot()
	// Users have no template configured, so every run is a skipped
	// precondition rather than a success or failure.
	if stats.Skipped != 5 || stats.Processed != 0 || stats.Failed != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	dispatcher := bot.New(newPipeline(t), 2, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan transport.FileEvent)

	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(ctx, events) }()

	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("cancelled Run should return the context error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
