package rename_test

import (
	"testing"

	"refile/internal/extract"
	"refile/internal/rename"
)

func TestRenderSubstitutesAllSpellings(t *testing.T) {
	x := extract.Extraction{Season: "01", Episode: "05", Quality: "1080p", Audio: "Dual"}
	cases := []struct {
		template string
		want     string
	}{
		{"{season}{episode} {quality} {audio}", "0105 1080p Dual"},
		{"{Season}x{Episode}", "01x05"},
		{"[S Season E Episode]", "[S 01 E 05]"},
		{"QUALITY-AUDIO", "1080p-Dual"},
		{"plain name", "plain name"},
	}
	for _, tc := range cases {
		if got := rename.Render(tc.template, x); got != tc.want {
			t.Fatalf("Render(%q) = %q, want %q", tc.template, got, tc.want)
		}
	}
}

func TestRenderDefaultsMissingFields(t *testing.T) {
	x := extract.Extraction{Quality: "Unknown"}
	got := rename.Render("{season}{episode} {quality} {audio}", x)
	if got != "XXXX Unknown Unknown" {
		t.Fatalf("Render = %q", got)
	}
}

func TestFilenameKeepsSourceExtension(t *testing.T) {
	x := extract.Parse("Anime.S01E05.1080p.Dual.mkv")
	got := rename.Filename("{season}{episode} {quality} {audio}", x, "Anime.S01E05.1080p.Dual.mkv", rename.KindVideo)
	if got != "0105 1080p Dual.mkv" {
		t.Fatalf("Filename = %q", got)
	}
}

func TestFilenameDefaultsExtensionByKind(t *testing.T) {
	x := extract.Extraction{Season: "01", Episode: "02", Quality: "Unknown"}
	if got := rename.Filename("{season}{episode}", x, "video", rename.KindVideo); got != "0102.mp4" {
		t.Fatalf("video default = %q", got)
	}
	if got := rename.Filename("{season}{episode}", x, "audio", rename.KindAudio); got != "0102.mp3" {
		t.Fatalf("audio default = %q", got)
	}
}

func TestCaptionFallsBackToBoldFilename(t *testing.T) {
	if got := rename.Caption("", "0105.mkv"); got != "**0105.mkv**" {
		t.Fatalf("fallback caption = %q", got)
	}
	if got := rename.Caption("my show", "0105.mkv"); got != "my show" {
		t.Fatalf("stored caption = %q", got)
	}
}
