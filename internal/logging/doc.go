// Package logging constructs the slog loggers used by every job and exposes
// the standardized attribute keys components share. Console output renders
// compact human-readable lines; JSON output targets log collectors.
package logging
