package logging

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// RunIDKey is the context key for analysis run IDs.
const RunIDKey = contextKey("run-id")

// NewRunID generates a run ID.
func NewRunID() string {
	return uuid.New().String()
}

// ContextWithRunID stores runID in ctx.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID extracts the run ID from the context.
// Returns empty string if not found.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}
