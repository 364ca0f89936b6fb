// Package rename renders per-user naming templates from classified media
// fragments.
package rename

import (
	"path/filepath"
	"regexp"
	"strings"

	"refile/internal/extract"
)

// Placeholder spellings are replaced case-insensitively, in this exact order.
// The bare-word forms (Season, Episode, ...) intentionally rewrite ordinary
// words in the template, matching long-standing behavior users rely on.
var placeholders = []string{
	"{season}",
	"{episode}",
	"{quality}",
	"{audio}",
	"Season",
	"Episode",
	"QUALITY",
	"AUDIO",
}

var placeholderPatterns = compilePlaceholders()

func compilePlaceholders() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(placeholders))
	for i, p := range placeholders {
		patterns[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(p))
	}
	return patterns
}

// MediaKind distinguishes how a submission arrived, which decides the
// fallback extension when the source name carries none.
type MediaKind string

const (
	KindDocument MediaKind = "document"
	KindVideo    MediaKind = "video"
	KindAudio    MediaKind = "audio"
)

// Render substitutes every placeholder spelling in template with the
// classified values. Missing season or episode become "XX"; missing audio
// becomes "Unknown". Quality arrives pre-defaulted by the classifier.
func Render(template string, x extract.Extraction) string {
	values := []string{
		orDefault(x.Season, "XX"),
		orDefault(x.Episode, "XX"),
		x.Quality,
		orDefault(x.Audio, "Unknown"),
		orDefault(x.Season, "XX"),
		orDefault(x.Episode, "XX"),
		x.Quality,
		orDefault(x.Audio, "Unknown"),
	}
	out := template
	for i, re := range placeholderPatterns {
		out = re.ReplaceAllLiteralString(out, values[i])
	}
	return out
}

// Filename renders the template and appends the extension taken from the
// source file name, or a kind-derived default when the source has none.
func Filename(template string, x extract.Extraction, sourceName string, kind MediaKind) string {
	ext := filepath.Ext(sourceName)
	if ext == "" {
		if kind == KindVideo {
			ext = ".mp4"
		} else {
			ext = ".mp3"
		}
	}
	return Render(template, x) + ext
}

// Caption returns the user's stored caption, or a bold rendition of the new
// name when no caption is set.
func Caption(stored, newFilename string) string {
	if strings.TrimSpace(stored) == "" {
		return "**" + newFilename + "**"
	}
	return stored
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
