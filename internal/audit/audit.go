// Package audit records every advisory operation the engine performs.
//
// Entries are append-only and size-bounded. Sensitive input fields are
// redacted before storage and outputs are deep-copied, so a stored entry
// can never leak secrets or alias caller-owned data.
package audit

import "time"

// Entry is one recorded advisory operation.
type Entry struct {
	ID               string         `json:"id"`
	Timestamp        time.Time      `json:"timestamp"`
	Operation        string         `json:"operation"`
	Input            map[string]any `json:"input"`
	Output           map[string]any `json:"output"`
	ProcessingTimeMs float64        `json:"processingTimeMs"`
	Version          string         `json:"version"`
}

// Stats summarizes the current log contents.
type Stats struct {
	TotalEntries int            `json:"totalEntries"`
	ByOperation  map[string]int `json:"byOperation"`
	OldestEntry  *time.Time     `json:"oldestEntry,omitempty"`
	NewestEntry  *time.Time     `json:"newestEntry,omitempty"`
}

// Logger records advisory operations. Injected as an interface so callers
// and tests can swap implementations without touching global state.
type Logger interface {
	// Log records one operation. start anchors the processing-time
	// measurement.
	Log(operation string, input, output map[string]any, start time.Time) Entry
	// Recent returns up to limit entries, newest first.
	Recent(limit int) []Entry
	// ByOperation returns up to limit entries for one operation, newest
	// first.
	ByOperation(operation string, limit int) []Entry
	// Stats summarizes the log.
	Stats() Stats
	// Prune drops the oldest entries until at most keep remain, returning
	// how many were dropped.
	Prune(keep int) int
}
