// Package services provides shared plumbing for external collaborators:
// sentinel error markers with stage-aware wrapping, and context annotation
// helpers used to thread user/file/stage identifiers into structured logs.
package services
