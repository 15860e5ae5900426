package analyzer

import (
	"context"

	"github.com/telhawk-systems/telhawk-triage/internal/models"
)

// WindowsOptions configures a WindowsAnalyzer.
type WindowsOptions struct {
	// Field holds the event identifier, e.g. "EventCode".
	Field string
	// SuspiciousIDs is the allowlist of identifiers worth reporting.
	SuspiciousIDs []string
}

// WindowsAnalyzer counts Windows event identifiers and keeps the allowlisted ones.
type WindowsAnalyzer struct {
	field      string
	suspicious map[string]struct{}
}

// NewWindowsAnalyzer copies opts into a new analyzer.
func NewWindowsAnalyzer(opts WindowsOptions) *WindowsAnalyzer {
	ids := make(map[string]struct{}, len(opts.SuspiciousIDs))
	for _, id := range opts.SuspiciousIDs {
		ids[id] = struct{}{}
	}
	return &WindowsAnalyzer{field: opts.Field, suspicious: ids}
}

func (a *WindowsAnalyzer) Name() string { return "windows" }

// Analyze returns allowlisted identifiers in frequency order, labeled "Windows".
func (a *WindowsAnalyzer) Analyze(ctx context.Context, records []models.NormalizedRecord) []models.EventCount {
	table := CountValues(fieldValues(records, a.field))

	kept := make([]models.Frequency, 0, len(table))
	for _, row := range table {
		if _, ok := a.suspicious[row.Value]; ok {
			kept = append(kept, row)
		}
	}
	return toEventCounts(kept, models.SourceWindows)
}
