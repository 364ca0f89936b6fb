package extract

import "regexp"

// Extraction carries the classified fragments of a media file name or
// caption. Empty fields mean the corresponding pattern list never matched;
// Quality is the exception and defaults to "Unknown".
type Extraction struct {
	Season  string
	Episode string
	Quality string
	Audio   string
}

// seasonEpisodePattern pairs a compiled expression with the capture shape it
// produces. Patterns with a single capture group classify an episode number
// without a season.
type seasonEpisodePattern struct {
	re          *regexp.Regexp
	episodeOnly bool
}

// Pattern order is load-bearing. Earlier entries are more specific; the final
// bare-number entry is a catch-all that will happily pick up resolution
// digits, and downstream behavior depends on that.
var seasonEpisodePatterns = []seasonEpisodePattern{
	{re: regexp.MustCompile(`S(\d+)(?:E|EP)(\d+)`)},
	{re: regexp.MustCompile(`S(\d+)[\s-]*(?:E|EP)(\d+)`)},
	{re: regexp.MustCompile(`(?i)Season\s*(\d+)\s*Episode\s*(\d+)`)},
	{re: regexp.MustCompile(`\[S(\d+)\]\[E(\d+)\]`)},
	{re: regexp.MustCompile(`S(\d+)[^\d]*(\d+)`)},
	{re: regexp.MustCompile(`(?i)(?:E|EP|Episode)\s*(\d+)`), episodeOnly: true},
	{re: regexp.MustCompile(`\b(\d+)\b`), episodeOnly: true},
}

type qualityPattern struct {
	re *regexp.Regexp
	// rewrite overrides the captured text when non-empty.
	rewrite string
}

var qualityPatterns = []qualityPattern{
	{re: regexp.MustCompile(`(?i)\b(\d{3,4}[pi])\b`)},
	{re: regexp.MustCompile(`(?i)\b(4k|2160p)\b`), rewrite: "4k"},
	{re: regexp.MustCompile(`(?i)\b(2k|1440p)\b`), rewrite: "2k"},
	{re: regexp.MustCompile(`(?i)\b(HDRip|HDTV)\b`)},
	{re: regexp.MustCompile(`(?i)\b(4kX264|4kx265)\b`)},
	{re: regexp.MustCompile(`(?i)\[(\d{3,4}[pi])\]`)},
}

type audioPattern struct {
	re *regexp.Regexp
	// rewrite overrides the captured text when non-empty.
	rewrite string
	// suffix is appended to the captured text ([Sub] -> Subbed).
	suffix string
}

var audioPatterns = []audioPattern{
	{re: regexp.MustCompile(`(?i)\b(Multi|Dual)[-\s]?Audio\b`), rewrite: "Multi"},
	{re: regexp.MustCompile(`(?i)\b(Dual)[-\s]?(Audio|Track)?\b`), rewrite: "Dual"},
	{re: regexp.MustCompile(`(?i)\b(Sub(bed)?)\b`), rewrite: "Sub"},
	{re: regexp.MustCompile(`(?i)\b(Dub(bed)?)\b`), rewrite: "Dub"},
	{re: regexp.MustCompile(`\[(Sub|Dub)\]`), suffix: "bed"},
	{re: regexp.MustCompile(`\((Sub|Dub)\)`), suffix: "bed"},
	{re: regexp.MustCompile(`(?i)\b(Eng(lish)?\s*/\s*(Jap|Kor|Chi))\b`), rewrite: "Dual"},
	{re: regexp.MustCompile(`\b(TrueHD|DTS[- ]?HD|Atmos)\b`)},
	{re: regexp.MustCompile(`\[(Unknown)\]`)},
}

// SeasonEpisode classifies season and episode numbers from text. First match
// wins. An empty return value means the field was not found.
func SeasonEpisode(text string) (season, episode string) {
	for _, p := range seasonEpisodePatterns {
		match := p.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if p.episodeOnly {
			return "", match[1]
		}
		return match[1], match[2]
	}
	return "", ""
}

// Quality classifies the quality label from text, defaulting to "Unknown".
func Quality(text string) string {
	for _, p := range qualityPatterns {
		match := p.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if p.rewrite != "" {
			return p.rewrite
		}
		return match[1]
	}
	return "Unknown"
}

// Audio classifies the audio label from text. An empty return value means no
// pattern matched.
func Audio(text string) string {
	for _, p := range audioPatterns {
		match := p.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if p.rewrite != "" {
			return p.rewrite
		}
		return match[1] + p.suffix
	}
	return ""
}

// Parse runs all three classifiers over the same text.
func Parse(text string) Extraction {
	season, episode := SeasonEpisode(text)
	return Extraction{
		Season:  season,
		Episode: episode,
		Quality: Quality(text),
		Audio:   Audio(text),
	}
}
