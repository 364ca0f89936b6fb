// Package logging centralizes slog construction and structured-field
// conventions for ReFile. It offers console and JSON handlers, context-derived
// attributes (user, file, stage, correlation ID), and a no-op logger for tests.
package logging
