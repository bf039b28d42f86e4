package observability

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"
)

var thoughtEventTypes = []string{"thought.submitted", "thought.revised", "thought.branched"}

var allEventTypes = []string{
	"thought.submitted",
	"thought.revised",
	"thought.branched",
	"session.created",
	"session.saved",
	"session.exported",
	"session.persist_failed",
	"session.load_skipped",
}

// TestProperty1_ThoughtCountCoversRevisionsAndBranches verifies that every
// thought event counts once towards ThoughtsSubmitted, and revisions and
// branches are subsets of it.
func TestProperty1_ThoughtCountCoversRevisionsAndBranches(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		el, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		numEvents := rapid.IntRange(1, 30).Draw(rt, "numEvents")
		baseTime := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
		revised, branched := 0, 0

		for i := 0; i < numEvents; i++ {
			eventType := rapid.SampledFrom(thoughtEventTypes).Draw(rt, fmt.Sprintf("eventType_%d", i))
			switch eventType {
			case "thought.revised":
				revised++
			case "thought.branched":
				branched++
			}
			event := Event{
				Time:    baseTime.Add(time.Duration(i) * time.Minute),
				Level:   "INFO",
				Type:    eventType,
				Message: eventType,
				Data:    map[string]any{"thought_number": i + 1},
			}
			if err := el.Write(event); err != nil {
				t.Fatalf("writing event: %v", err)
			}
		}

		metrics, err := NewMetricsCalculator(el).Calculate(baseTime.Add(-time.Hour))
		if err != nil {
			t.Fatalf("calculating metrics: %v", err)
		}

		if metrics.ThoughtsSubmitted != numEvents {
			rt.Errorf("ThoughtsSubmitted = %d, want %d", metrics.ThoughtsSubmitted, numEvents)
		}
		if metrics.Revisions != revised {
			rt.Errorf("Revisions = %d, want %d", metrics.Revisions, revised)
		}
		if metrics.Branches != branched {
			rt.Errorf("Branches = %d, want %d", metrics.Branches, branched)
		}
	})
}

// TestProperty2_MetricsEventCountIsTotal verifies that EventCount equals the
// number of events in the window regardless of their types.
func TestProperty2_MetricsEventCountIsTotal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		el, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		numEvents := rapid.IntRange(1, 20).Draw(rt, "numEvents")
		baseTime := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

		for i := 0; i < numEvents; i++ {
			eventType := rapid.SampledFrom(allEventTypes).Draw(rt, fmt.Sprintf("eventType_%d", i))
			hoursOffset := rapid.IntRange(0, 168).Draw(rt, fmt.Sprintf("hoursOffset_%d", i))
			event := Event{
				Time:    baseTime.Add(time.Duration(hoursOffset) * time.Hour),
				Level:   "INFO",
				Type:    eventType,
				Message: eventType,
				Data:    map[string]any{"session_id": fmt.Sprintf("s-%d", i%3)},
			}
			if err := el.Write(event); err != nil {
				t.Fatalf("writing event: %v", err)
			}
		}

		metrics, err := NewMetricsCalculator(el).Calculate(baseTime.Add(-time.Hour))
		if err != nil {
			t.Fatalf("calculating metrics: %v", err)
		}
		if metrics.EventCount != numEvents {
			rt.Errorf("EventCount = %d, want %d", metrics.EventCount, numEvents)
		}
	})
}
