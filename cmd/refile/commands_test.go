package main

import (
	"os"
	"path/filepath"
	"testing"

	"refile/internal/testsupport"
)

func TestConfigInitValidateShow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfgPath := writeTestConfig(t, cfg)

	out, err := runCLI(t, "", "config", "validate", "--path", cfgPath)
	if err != nil {
		t.Fatalf("config validate: %v\n%s", err, out)
	}
	requireContains(t, out, "is valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err = runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config at %s: %v", target, err)
	}

	if _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting an existing file")
	}

	out, err = runCLI(t, "", "config", "show", "--path", cfgPath)
	if err != nil {
		t.Fatalf("config show: %v\n%s", err, out)
	}
	requireContains(t, out, cfg.Paths.InboxDir)
}

func TestPrefsTemplateRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfgPath := writeTestConfig(t, cfg)

	out, err := runCLI(t, cfgPath, "prefs", "template", "set", "{season}x{episode} - {quality}")
	if err != nil {
		t.Fatalf("template set: %v\n%s", err, out)
	}

	out, err = runCLI(t, cfgPath, "prefs", "show")
	if err != nil {
		t.Fatalf("prefs show: %v\n%s", err, out)
	}
	requireContains(t, out, "{season}x{episode} - {quality}")

	out, err = runCLI(t, cfgPath, "users", "count")
	if err != nil {
		t.Fatalf("users count: %v\n%s", err, out)
	}
	requireContains(t, out, "1")
}

func TestPrefsSourceRejectsUnknownValue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfgPath := writeTestConfig(t, cfg)

	if _, err := runCLI(t, cfgPath, "prefs", "source", "bogus"); err == nil {
		t.Fatal("expected unknown source to be rejected")
	}
	if out, err := runCLI(t, cfgPath, "prefs", "source", "caption"); err != nil {
		t.Fatalf("prefs source caption: %v\n%s", err, out)
	}
}

func TestUsersBanLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfgPath := writeTestConfig(t, cfg)

	out, err := runCLI(t, cfgPath, "users", "ban", "42", "--reason", "spam")
	if err != nil {
		t.Fatalf("users ban: %v\n%s", err, out)
	}

	out, err = runCLI(t, cfgPath, "users", "list")
	if err != nil {
		t.Fatalf("users list: %v\n%s", err, out)
	}
	requireContains(t, out, "42")
	requireContains(t, out, "yes")

	if out, err = runCLI(t, cfgPath, "users", "unban", "42"); err != nil {
		t.Fatalf("users unban: %v\n%s", err, out)
	}
	out, err = runCLI(t, cfgPath, "users", "list")
	if err != nil {
		t.Fatalf("users list: %v\n%s", err, out)
	}
	requireContains(t, out, "no")

	if out, err = runCLI(t, cfgPath, "users", "delete", "42"); err != nil {
		t.Fatalf("users delete: %v\n%s", err, out)
	}
	if _, err := runCLI(t, cfgPath, "users", "delete", "42"); err == nil {
		t.Fatal("expected deleting a missing user to fail")
	}
}

func TestRenderWithExplicitTemplate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfgPath := writeTestConfig(t, cfg)

	out, err := runCLI(t, cfgPath, "render",
		"--template", "{season}{episode} {quality} {audio}",
		"Anime.S01E05.1080p.Dual.mkv")
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	requireContains(t, out, "0105 1080p Dual.mkv")
}

func TestRenderWithoutTemplateRequiresStoredOne(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfgPath := writeTestConfig(t, cfg)

	if _, err := runCLI(t, cfgPath, "render", "Show.S01E01.mkv"); err == nil {
		t.Fatal("expected render without a template to fail")
	}

	if out, err := runCLI(t, cfgPath, "prefs", "template", "set", "S{season}E{episode}"); err != nil {
		t.Fatalf("template set: %v\n%s", err, out)
	}
	out, err := runCLI(t, cfgPath, "render", "Show.S02E03.mkv")
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	requireContains(t, out, "S02E03.mkv")
}

func TestProcessRenamesInboxFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfgPath := writeTestConfig(t, cfg)

	if out, err := runCLI(t, cfgPath, "prefs", "template", "set", "{season}{episode} {quality} {audio}"); err != nil {
		t.Fatalf("template set: %v\n%s", err, out)
	}
	if out, err := runCLI(t, cfgPath, "prefs", "metadata", "disable"); err != nil {
		t.Fatalf("metadata disable: %v\n%s", err, out)
	}

	if err := os.MkdirAll(cfg.Paths.InboxDir, 0o755); err != nil {
		t.Fatalf("mkdir inbox: %v", err)
	}
	source := filepath.Join(cfg.Paths.InboxDir, "Anime.S01E05.1080p.Dual.mkv")
	if err := os.WriteFile(source, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write inbox file: %v", err)
	}

	out, err := runCLI(t, cfgPath, "process")
	if err != nil {
		t.Fatalf("process: %v\n%s", err, out)
	}
	requireContains(t, out, "0105 1080p Dual.mkv")

	delivered := filepath.Join(cfg.Paths.OutboxDir, "0105 1080p Dual.mkv")
	if _, err := os.Stat(delivered); err != nil {
		t.Fatalf("expected delivered file at %s: %v", delivered, err)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatalf("expected inbox file to be retired, stat err: %v", err)
	}

	out, err = runCLI(t, cfgPath, "process")
	if err != nil {
		t.Fatalf("second process: %v\n%s", err, out)
	}
	requireContains(t, out, "Nothing to process")
}
