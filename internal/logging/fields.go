// Package logging provides the structured logger shared by the triage commands.
package logging

import "log/slog"

// Common field names for consistent logging.
const (
	FieldRunID    = "run_id"
	FieldSource   = "source"
	FieldPath     = "path"
	FieldFormat   = "format"
	FieldRecords  = "records"
	FieldFindings = "findings"
	FieldDuration = "duration_ms"
	FieldError    = "error"
	FieldReason   = "reason"
)

// RunID returns a slog attribute for the run ID.
func RunID(id string) slog.Attr {
	return slog.String(FieldRunID, id)
}

// Source returns a slog attribute for a log source name.
func Source(name string) slog.Attr {
	return slog.String(FieldSource, name)
}

// Path returns a slog attribute for a file path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Format returns a slog attribute for a document format.
func Format(format string) slog.Attr {
	return slog.String(FieldFormat, format)
}

// Records returns a slog attribute for a record count.
func Records(n int) slog.Attr {
	return slog.Int(FieldRecords, n)
}

// Findings returns a slog attribute for a finding count.
func Findings(n int) slog.Attr {
	return slog.Int(FieldFindings, n)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// Reason returns a slog attribute explaining a skipped step.
func Reason(reason string) slog.Attr {
	return slog.String(FieldReason, reason)
}
