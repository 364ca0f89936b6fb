package pipeline

// Stage names the sequential steps of a rename run.
type Stage string

const (
	StageInit              Stage = "init"
	StagePreferencesLoaded Stage = "preferences_loaded"
	StageDuplicateChecked  Stage = "duplicate_checked"
	StageContentChecked    Stage = "content_checked"
	StageSourceTextSelect  Stage = "source_text_selected"
	StageExtracted         Stage = "extracted"
	StageRendered          Stage = "rendered"
	StageDownloaded        Stage = "downloaded"
	StageMetadataTagged    Stage = "metadata_tagged"
	StageThumbnailPrepared Stage = "thumbnail_prepared"
	StageUploaded          Stage = "uploaded"
	StageCleanedUp         Stage = "cleaned_up"
	StageErrored           Stage = "errored"
)

// Outcome classifies how a run terminated.
type Outcome string

const (
	// OutcomeCompleted is a successful delivery.
	OutcomeCompleted Outcome = "completed"
	// OutcomePreconditionNotMet means the user cannot be served yet
	// (no template configured, or banned). Not an error.
	OutcomePreconditionNotMet Outcome = "precondition_not_met"
	// OutcomeDuplicateSkip means the same file was submitted again inside
	// the guard window. Terminates silently.
	OutcomeDuplicateSkip Outcome = "duplicate_skip"
	// OutcomeContentRejected means the safety checker rejected the
	// submission, or failed and was treated as a rejection.
	OutcomeContentRejected Outcome = "content_rejected"
	// OutcomeFailed is any stage failure, timeouts included.
	OutcomeFailed Outcome = "failed"
)

// Result reports a finished run.
type Result struct {
	Outcome     Outcome
	Stage       Stage
	NewFilename string
	Err         error
}

// Completed reports whether the run delivered a renamed file.
func (r Result) Completed() bool { return r.Outcome == OutcomeCompleted }
