package audit

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/soukly/nucleus/internal/idgen"
)

// DefaultCap bounds the in-memory log when no cap is configured.
const DefaultCap = 10000

// sensitiveKeys are input field names whose values are never stored.
var sensitiveKeys = map[string]bool{
	"password":      true,
	"token":         true,
	"secret":        true,
	"apikey":        true,
	"api_key":       true,
	"authorization": true,
	"ssn":           true,
	"creditcard":    true,
	"credit_card":   true,
}

const redactedPlaceholder = "[REDACTED]"

// MemoryLogger is a mutex-serialized, size-bounded, append-only log. When
// full, the oldest entry is dropped to admit the new one.
type MemoryLogger struct {
	mu      sync.RWMutex
	entries []Entry
	cap     int
	version string
}

// NewMemoryLogger creates a bounded in-memory logger. cap <= 0 uses
// DefaultCap. version is stamped on every entry.
func NewMemoryLogger(cap int, version string) *MemoryLogger {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &MemoryLogger{cap: cap, version: version}
}

func (l *MemoryLogger) Log(operation string, input, output map[string]any, start time.Time) Entry {
	entry := Entry{
		ID:               idgen.WithPrefix("aud_"),
		Timestamp:        time.Now().UTC(),
		Operation:        operation,
		Input:            redact(input),
		Output:           sanitize(output),
		ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000,
		Version:          l.version,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.cap {
		drop := len(l.entries) - l.cap + 1
		l.entries = append(l.entries[:0], l.entries[drop:]...)
	}
	l.entries = append(l.entries, entry)
	return entry
}

func (l *MemoryLogger) Recent(limit int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(limit, func(Entry) bool { return true })
}

func (l *MemoryLogger) ByOperation(operation string, limit int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(limit, func(e Entry) bool { return e.Operation == operation })
}

// collect walks newest-first under the caller's lock.
func (l *MemoryLogger) collect(limit int, match func(Entry) bool) []Entry {
	if limit <= 0 {
		limit = 100
	}
	result := make([]Entry, 0, limit)
	for i := len(l.entries) - 1; i >= 0 && len(result) < limit; i-- {
		if match(l.entries[i]) {
			result = append(result, l.entries[i])
		}
	}
	return result
}

func (l *MemoryLogger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := Stats{
		TotalEntries: len(l.entries),
		ByOperation:  make(map[string]int),
	}
	for _, e := range l.entries {
		stats.ByOperation[e.Operation]++
	}
	if len(l.entries) > 0 {
		oldest := l.entries[0].Timestamp
		newest := l.entries[len(l.entries)-1].Timestamp
		stats.OldestEntry = &oldest
		stats.NewestEntry = &newest
	}
	return stats
}

func (l *MemoryLogger) Prune(keep int) int {
	if keep < 0 {
		keep = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) <= keep {
		return 0
	}
	dropped := len(l.entries) - keep
	l.entries = append(l.entries[:0], l.entries[dropped:]...)
	return dropped
}

// redact copies the input map, replacing values of sensitive keys.
// Matching is case-insensitive on the key name.
func redact(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(input))
	for k, v := range input {
		if sensitiveKeys[strings.ToLower(k)] {
			out[k] = redactedPlaceholder
			continue
		}
		out[k] = v
	}
	return out
}

// sanitize deep-copies the output through a JSON round-trip so stored
// entries never alias caller data. Unserializable outputs are replaced
// with a placeholder instead of failing the operation.
func sanitize(output map[string]any) map[string]any {
	if output == nil {
		return map[string]any{}
	}
	raw, err := json.Marshal(output)
	if err != nil {
		return map[string]any{"error": "output not serializable"}
	}
	var copied map[string]any
	if err := json.Unmarshal(raw, &copied); err != nil {
		return map[string]any{"error": "output not serializable"}
	}
	return copied
}
