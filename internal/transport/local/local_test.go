package local_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"refile/internal/logging"
	"refile/internal/transport"
	"refile/internal/transport/local"
)

func newClient(t *testing.T) (*local.Client, string, string) {
	t.Helper()
	inbox := filepath.Join(t.TempDir(), "inbox")
	outbox := filepath.Join(t.TempDir(), "outbox")
	client, err := local.New(inbox, outbox, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client, inbox, outbox
}

func TestWatchDeliversExistingFileWithCaption(t *testing.T) {
	client, inbox, _ := newClient(t)

	writeFile(t, filepath.Join(inbox, "Anime.S01E05.1080p.mkv"), "video-bytes")
	writeFile(t, filepath.Join(inbox, "Anime.S01E05.1080p.mkv.caption"), "my caption\n")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	events, err := client.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	select {
	case ev := <-events:
		if ev.File.ID != "Anime.S01E05.1080p.mkv" {
			t.Fatalf("file ID = %q", ev.File.ID)
		}
		if ev.File.Kind != transport.KindVideo {
			t.Fatalf("kind = %q, want video", ev.File.Kind)
		}
		if ev.Caption != "my caption" {
			t.Fatalf("caption = %q", ev.Caption)
		}
		if ev.File.Size != int64(len("video-bytes")) {
			t.Fatalf("size = %d", ev.File.Size)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestWatchDeliversNewArrival(t *testing.T) {
	client, inbox, _ := newClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	events, err := client.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// Give the watcher a moment to register before the drop.
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(inbox, "song.mp3"), "audio-bytes")

	select {
	case ev := <-events:
		if ev.File.ID != "song.mp3" || ev.File.Kind != transport.KindAudio {
			t.Fatalf("event = %+v", ev)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestDownloadAndUploadRoundTrip(t *testing.T) {
	client, inbox, outbox := newClient(t)
	ctx := context.Background()

	writeFile(t, filepath.Join(inbox, "doc.bin"), "payload")

	dest := filepath.Join(t.TempDir(), "staging", "doc.bin")
	var calls int
	got, err := client.DownloadMedia(ctx, transport.MediaRef{ID: "doc.bin", Size: 7}, dest, func(transferred, total int64) {
		calls++
	})
	if err != nil {
		t.Fatalf("DownloadMedia: %v", err)
	}
	if got != dest {
		t.Fatalf("download path = %q, want %q", got, dest)
	}
	if calls == 0 {
		t.Fatal("progress should be reported")
	}

	err = client.UploadDocument(ctx, local.ChatID, transport.Upload{Path: dest, Caption: "**doc.bin**"}, func(transferred, total int64) {})
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outbox, "doc.bin")); err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outbox, "doc.bin.caption"))
	if err != nil {
		t.Fatalf("caption sidecar missing: %v", err)
	}
	if string(data) != "**doc.bin**\n" {
		t.Fatalf("caption sidecar = %q", data)
	}
}

func TestMessageLifecycle(t *testing.T) {
	client, _, outbox := newClient(t)
	ctx := context.Background()

	id, err := client.SendMessage(ctx, local.ChatID, "Downloading...")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	path := filepath.Join(outbox, "messages", "chat-1", "msg-1.md")
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("message file missing: %v", statErr)
	}

	if err := client.EditMessage(ctx, local.ChatID, id, "Uploading..."); err != nil {
		t.Fatalf("EditMessage: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "Uploading...\n" {
		t.Fatalf("edited message = %q", data)
	}

	if err := client.DeleteMessage(ctx, local.ChatID, id); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("message file should be gone")
	}

	if err := client.EditMessage(ctx, local.ChatID, id, "again"); err == nil {
		t.Fatal("editing a deleted message should fail")
	}
}

func TestRemoveSubmissionClearsInbox(t *testing.T) {
	client, inbox, _ := newClient(t)

	writeFile(t, filepath.Join(inbox, "doc.bin"), "payload")
	writeFile(t, filepath.Join(inbox, "doc.bin.caption"), "c")

	if err := client.RemoveSubmission(transport.MediaRef{ID: "doc.bin"}); err != nil {
		t.Fatalf("RemoveSubmission: %v", err)
	}
	if _, err := os.Stat(filepath.Join(inbox, "doc.bin")); !os.IsNotExist(err) {
		t.Fatal("submission should be removed")
	}
	// Removing again is harmless.
	if err := client.RemoveSubmission(transport.MediaRef{ID: "doc.bin"}); err != nil {
		t.Fatalf("repeat RemoveSubmission: %v", err)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
