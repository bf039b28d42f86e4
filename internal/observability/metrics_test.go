package observability

import (
	"testing"
	"time"
)

func TestMetricsCalculator_CountsByType(t *testing.T) {
	log := newTestLog(t)
	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	writeAll(t, log,
		Event{Time: base, Level: "INFO", Type: "session.created", Data: map[string]any{"session_id": "s-1", "kind": "problem-analysis"}},
		Event{Time: base.Add(1 * time.Minute), Level: "INFO", Type: "thought.submitted", Data: map[string]any{"session_id": "s-1"}},
		Event{Time: base.Add(2 * time.Minute), Level: "INFO", Type: "thought.revised", Data: map[string]any{"session_id": "s-1"}},
		Event{Time: base.Add(3 * time.Minute), Level: "INFO", Type: "thought.branched", Data: map[string]any{"branch_id": "alt"}},
		Event{Time: base.Add(4 * time.Minute), Level: "INFO", Type: "session.created", Data: map[string]any{"session_id": "s-2", "kind": "solution-planning"}},
		Event{Time: base.Add(5 * time.Minute), Level: "INFO", Type: "session.saved", Data: map[string]any{"session_id": "s-1", "status": "completed"}},
		Event{Time: base.Add(6 * time.Minute), Level: "INFO", Type: "session.exported", Data: map[string]any{"session_id": "s-1", "format": "markdown"}},
		Event{Time: base.Add(7 * time.Minute), Level: "INFO", Type: "session.exported", Data: map[string]any{"session_id": "s-1", "format": "json"}},
		Event{Time: base.Add(8 * time.Minute), Level: "WARN", Type: "session.persist_failed", Data: map[string]any{"session_id": "s-2"}},
		Event{Time: base.Add(9 * time.Minute), Level: "WARN", Type: "session.load_skipped", Data: map[string]any{"path": "bad.json"}},
	)

	m, err := NewMetricsCalculator(log).Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}

	checks := []struct {
		name string
		got  int
		want int
	}{
		{"ThoughtsSubmitted", m.ThoughtsSubmitted, 3},
		{"Revisions", m.Revisions, 1},
		{"Branches", m.Branches, 1},
		{"SessionsCreated", m.SessionsCreated, 2},
		{"SessionsSaved", m.SessionsSaved, 1},
		{"Exports", m.Exports, 2},
		{"PersistFailures", m.PersistFailures, 1},
		{"LoadSkipped", m.LoadSkipped, 1},
		{"EventCount", m.EventCount, 10},
		{"SessionsByKind[problem-analysis]", m.SessionsByKind["problem-analysis"], 1},
		{"SessionsByKind[solution-planning]", m.SessionsByKind["solution-planning"], 1},
		{"ExportsByFormat[markdown]", m.ExportsByFormat["markdown"], 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}

	if m.OldestEvent == nil || !m.OldestEvent.Equal(base) {
		t.Errorf("expected oldest event %v, got %v", base, m.OldestEvent)
	}
	if m.NewestEvent == nil || !m.NewestEvent.Equal(base.Add(9*time.Minute)) {
		t.Errorf("expected newest event %v, got %v", base.Add(9*time.Minute), m.NewestEvent)
	}
}

func TestMetricsCalculator_SinceExcludesOlderEvents(t *testing.T) {
	log := newTestLog(t)
	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	writeAll(t, log,
		Event{Time: base.Add(-48 * time.Hour), Level: "INFO", Type: "thought.submitted"},
		Event{Time: base, Level: "INFO", Type: "thought.submitted"},
	)

	m, err := NewMetricsCalculator(log).Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.ThoughtsSubmitted != 1 {
		t.Errorf("expected 1 thought in window, got %d", m.ThoughtsSubmitted)
	}
}

func TestMetricsCalculator_EmptyLog(t *testing.T) {
	m, err := NewMetricsCalculator(newTestLog(t)).Calculate(time.Time{})
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.EventCount != 0 || m.OldestEvent != nil || m.NewestEvent != nil {
		t.Errorf("expected empty metrics, got %+v", m)
	}
	if m.SessionsByKind == nil || m.ExportsByFormat == nil {
		t.Error("expected initialised maps")
	}
}
