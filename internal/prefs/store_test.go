package prefs_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"refile/internal/prefs"
	"refile/internal/services"
)

func newStore(t *testing.T) *prefs.Store {
	t.Helper()
	store, err := prefs.OpenPath(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEnsureUserCreatesDefaults(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.EnsureUser(ctx, 42); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	// Re-running must not clobber or fail.
	if err := store.EnsureUser(ctx, 42); err != nil {
		t.Fatalf("EnsureUser (repeat): %v", err)
	}

	p, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.FormatTemplate != "" {
		t.Fatalf("new user template = %q, want empty", p.FormatTemplate)
	}
	if p.FileSource != prefs.SourceFilename {
		t.Fatalf("new user source = %q, want filename", p.FileSource)
	}
	if !p.MetadataEnabled {
		t.Fatal("metadata should default to enabled")
	}
	if p.Metadata != prefs.DefaultMetadataFields() {
		t.Fatalf("metadata defaults = %+v", p.Metadata)
	}
	if p.Ban.Banned {
		t.Fatal("new user should not be banned")
	}
	if p.JoinDate.IsZero() {
		t.Fatal("join date should be recorded")
	}
}

func TestGetMissingUserReturnsNotFound(t *testing.T) {
	store := newStore(t)
	_, err := store.Get(context.Background(), 7)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("Get missing user error = %v, want ErrNotFound", err)
	}
}

func TestSettersRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	if err := store.EnsureUser(ctx, 1); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}

	if err := store.SetFormatTemplate(ctx, 1, "{season}{episode} {quality}"); err != nil {
		t.Fatalf("SetFormatTemplate: %v", err)
	}
	if err := store.SetFileSource(ctx, 1, prefs.SourceCaption); err != nil {
		t.Fatalf("SetFileSource: %v", err)
	}
	if err := store.SetCaption(ctx, 1, "my show"); err != nil {
		t.Fatalf("SetCaption: %v", err)
	}
	if err := store.SetThumbnail(ctx, 1, "thumb-ref-1"); err != nil {
		t.Fatalf("SetThumbnail: %v", err)
	}
	if err := store.SetMetadataEnabled(ctx, 1, false); err != nil {
		t.Fatalf("SetMetadataEnabled: %v", err)
	}
	fields := prefs.MetadataFields{
		Title: "t", Artist: "ar", Author: "au",
		VideoTitle: "v", AudioTitle: "a", SubtitleTitle: "s",
	}
	if err := store.SetMetadataFields(ctx, 1, fields); err != nil {
		t.Fatalf("SetMetadataFields: %v", err)
	}

	p, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.FormatTemplate != "{season}{episode} {quality}" {
		t.Fatalf("template = %q", p.FormatTemplate)
	}
	if p.FileSource != prefs.SourceCaption {
		t.Fatalf("source = %q", p.FileSource)
	}
	if p.Caption != "my show" || p.ThumbnailRef != "thumb-ref-1" {
		t.Fatalf("caption/thumb = %q/%q", p.Caption, p.ThumbnailRef)
	}
	if p.MetadataEnabled {
		t.Fatal("metadata should be disabled")
	}
	if p.Metadata != fields {
		t.Fatalf("metadata = %+v", p.Metadata)
	}
}

func TestSetFileSourceRejectsUnknownValue(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	if err := store.EnsureUser(ctx, 1); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	err := store.SetFileSource(ctx, 1, prefs.FileSource("clipboard"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("error = %v, want ErrConfiguration", err)
	}
}

func TestBanLifecycle(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	if err := store.EnsureUser(ctx, 9); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}

	if err := store.Ban(ctx, 9, "spam"); err != nil {
		t.Fatalf("Ban: %v", err)
	}
	p, err := store.Get(ctx, 9)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !p.Ban.Banned || p.Ban.Reason != "spam" || p.Ban.BannedOn.IsZero() {
		t.Fatalf("ban status = %+v", p.Ban)
	}

	if err := store.Unban(ctx, 9); err != nil {
		t.Fatalf("Unban: %v", err)
	}
	p, err = store.Get(ctx, 9)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Ban.Banned || p.Ban.Reason != "" {
		t.Fatalf("ban status after unban = %+v", p.Ban)
	}
}

func TestUserBookkeeping(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	for _, id := range []int64{1, 2, 3} {
		if err := store.EnsureUser(ctx, id); err != nil {
			t.Fatalf("EnsureUser(%d): %v", id, err)
		}
	}

	count, err := store.TotalUsers(ctx)
	if err != nil {
		t.Fatalf("TotalUsers: %v", err)
	}
	if count != 3 {
		t.Fatalf("TotalUsers = %d, want 3", count)
	}

	ids, err := store.AllUserIDs(ctx)
	if err != nil {
		t.Fatalf("AllUserIDs: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("AllUserIDs = %v", ids)
	}

	removed, err := store.DeleteUser(ctx, 2)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if !removed {
		t.Fatal("DeleteUser should report removal")
	}
	if removed, _ = store.DeleteUser(ctx, 2); removed {
		t.Fatal("second DeleteUser should report nothing removed")
	}
}
