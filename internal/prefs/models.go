package prefs

import "time"

// FileSource selects which text feeds the classifiers.
type FileSource string

const (
	SourceFilename FileSource = "filename"
	SourceCaption  FileSource = "caption"
)

// Default metadata field values applied when a user never customized them.
const (
	DefaultTitle         = "Renamed by ReFile"
	DefaultArtist        = "ReFile"
	DefaultAuthor        = "ReFile"
	DefaultVideoTitle    = "Encoded by ReFile"
	DefaultAudioTitle    = "By ReFile"
	DefaultSubtitleTitle = "By ReFile"
)

// MetadataFields carries the values embedded into renamed files by the
// tagger.
type MetadataFields struct {
	Title         string
	Artist        string
	Author        string
	VideoTitle    string
	AudioTitle    string
	SubtitleTitle string
}

// DefaultMetadataFields returns the placeholder values new users start with.
func DefaultMetadataFields() MetadataFields {
	return MetadataFields{
		Title:         DefaultTitle,
		Artist:        DefaultArtist,
		Author:        DefaultAuthor,
		VideoTitle:    DefaultVideoTitle,
		AudioTitle:    DefaultAudioTitle,
		SubtitleTitle: DefaultSubtitleTitle,
	}
}

// BanStatus records whether and why a user is banned.
type BanStatus struct {
	Banned   bool
	Reason   string
	BannedOn time.Time
}

// Preferences is the full per-user record.
type Preferences struct {
	UserID          int64
	JoinDate        time.Time
	FormatTemplate  string
	FileSource      FileSource
	Caption         string
	ThumbnailRef    string
	MetadataEnabled bool
	Metadata        MetadataFields
	Ban             BanStatus
}
