package audit

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLogCreatesEntry(t *testing.T) {
	l := NewMemoryLogger(100, "1.0.0")
	start := time.Now()

	entry := l.Log("classify_intent",
		map[string]any{"signals": 3},
		map[string]any{"type": "BUY"},
		start,
	)

	if !strings.HasPrefix(entry.ID, "aud_") {
		t.Errorf("id = %q, want aud_ prefix", entry.ID)
	}
	if entry.Operation != "classify_intent" {
		t.Errorf("operation = %q", entry.Operation)
	}
	if entry.Version != "1.0.0" {
		t.Errorf("version = %q", entry.Version)
	}
	if entry.ProcessingTimeMs < 0 {
		t.Errorf("processingTimeMs = %f", entry.ProcessingTimeMs)
	}

	recent := l.Recent(10)
	if len(recent) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(recent))
	}
}

func TestLogRedactsSensitiveKeys(t *testing.T) {
	l := NewMemoryLogger(100, "1.0.0")

	entry := l.Log("compute_trust",
		map[string]any{
			"userId":   "u1",
			"password": "hunter2",
			"Token":    "tok_abc",
			"api_key":  "key_123",
		},
		nil,
		time.Now(),
	)

	if entry.Input["userId"] != "u1" {
		t.Errorf("non-sensitive key altered: %v", entry.Input["userId"])
	}
	for _, k := range []string{"password", "Token", "api_key"} {
		if entry.Input[k] != "[REDACTED]" {
			t.Errorf("%s = %v, want [REDACTED]", k, entry.Input[k])
		}
	}
}

func TestLogDeepCopiesOutput(t *testing.T) {
	l := NewMemoryLogger(100, "1.0.0")

	output := map[string]any{"nested": map[string]any{"score": 95}}
	entry := l.Log("compute_trust", nil, output, time.Now())

	// Mutating the caller's map must not change the stored entry.
	output["nested"].(map[string]any)["score"] = 0

	nested, ok := entry.Output["nested"].(map[string]any)
	if !ok {
		t.Fatalf("nested output missing: %+v", entry.Output)
	}
	if nested["score"] != float64(95) {
		t.Errorf("stored output aliased caller data: %v", nested["score"])
	}
}

func TestLogUnserializableOutput(t *testing.T) {
	l := NewMemoryLogger(100, "1.0.0")

	entry := l.Log("assess_risk", nil, map[string]any{"ch": make(chan int)}, time.Now())

	if entry.Output["error"] != "output not serializable" {
		t.Errorf("expected placeholder output, got %+v", entry.Output)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	l := NewMemoryLogger(100, "1.0.0")
	for i := 0; i < 5; i++ {
		l.Log(fmt.Sprintf("op_%d", i), nil, nil, time.Now())
	}

	recent := l.Recent(3)
	if len(recent) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(recent))
	}
	if recent[0].Operation != "op_4" || recent[2].Operation != "op_2" {
		t.Errorf("wrong order: %s, %s, %s", recent[0].Operation, recent[1].Operation, recent[2].Operation)
	}
}

func TestByOperationFilters(t *testing.T) {
	l := NewMemoryLogger(100, "1.0.0")
	l.Log("classify_intent", nil, nil, time.Now())
	l.Log("assess_risk", nil, nil, time.Now())
	l.Log("classify_intent", nil, nil, time.Now())

	got := l.ByOperation("classify_intent", 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	for _, e := range got {
		if e.Operation != "classify_intent" {
			t.Errorf("unexpected operation %s", e.Operation)
		}
	}
}

func TestCapDropsOldest(t *testing.T) {
	l := NewMemoryLogger(3, "1.0.0")
	for i := 0; i < 5; i++ {
		l.Log(fmt.Sprintf("op_%d", i), nil, nil, time.Now())
	}

	stats := l.Stats()
	if stats.TotalEntries != 3 {
		t.Fatalf("expected 3 entries at cap, got %d", stats.TotalEntries)
	}

	recent := l.Recent(10)
	if recent[len(recent)-1].Operation != "op_2" {
		t.Errorf("oldest surviving entry = %s, want op_2", recent[len(recent)-1].Operation)
	}
}

func TestStats(t *testing.T) {
	l := NewMemoryLogger(100, "1.0.0")

	empty := l.Stats()
	if empty.TotalEntries != 0 || empty.OldestEntry != nil || empty.NewestEntry != nil {
		t.Errorf("empty stats = %+v", empty)
	}

	l.Log("classify_intent", nil, nil, time.Now())
	l.Log("classify_intent", nil, nil, time.Now())
	l.Log("assess_risk", nil, nil, time.Now())

	stats := l.Stats()
	if stats.TotalEntries != 3 {
		t.Errorf("total = %d", stats.TotalEntries)
	}
	if stats.ByOperation["classify_intent"] != 2 || stats.ByOperation["assess_risk"] != 1 {
		t.Errorf("byOperation = %v", stats.ByOperation)
	}
	if stats.OldestEntry == nil || stats.NewestEntry == nil {
		t.Fatal("missing oldest/newest timestamps")
	}
	if stats.NewestEntry.Before(*stats.OldestEntry) {
		t.Error("newest precedes oldest")
	}
}

func TestPrune(t *testing.T) {
	l := NewMemoryLogger(100, "1.0.0")
	for i := 0; i < 10; i++ {
		l.Log(fmt.Sprintf("op_%d", i), nil, nil, time.Now())
	}

	if dropped := l.Prune(4); dropped != 6 {
		t.Errorf("dropped = %d, want 6", dropped)
	}
	if l.Stats().TotalEntries != 4 {
		t.Errorf("remaining = %d, want 4", l.Stats().TotalEntries)
	}

	recent := l.Recent(10)
	if recent[0].Operation != "op_9" || recent[len(recent)-1].Operation != "op_6" {
		t.Errorf("prune removed wrong end: %+v", recent)
	}

	if dropped := l.Prune(100); dropped != 0 {
		t.Errorf("prune above size dropped %d", dropped)
	}
}

func TestConcurrentLogging(t *testing.T) {
	l := NewMemoryLogger(1000, "1.0.0")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Log(fmt.Sprintf("op_%d", n), nil, nil, time.Now())
				l.Recent(5)
				l.Stats()
			}
		}(i)
	}
	wg.Wait()

	if got := l.Stats().TotalEntries; got != 500 {
		t.Errorf("total = %d, want 500", got)
	}
}
