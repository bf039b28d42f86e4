package observability

import (
	"fmt"
	"time"
)

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	ThoughtsSubmitted int            `json:"thoughts_submitted"`
	Revisions         int            `json:"revisions"`
	Branches          int            `json:"branches"`
	SessionsCreated   int            `json:"sessions_created"`
	SessionsByKind    map[string]int `json:"sessions_by_kind"`
	SessionsSaved     int            `json:"sessions_saved"`
	Exports           int            `json:"exports"`
	ExportsByFormat   map[string]int `json:"exports_by_format"`
	PersistFailures   int            `json:"persist_failures"`
	LoadSkipped       int            `json:"load_skipped"`
	EventCount        int            `json:"event_count"`
	OldestEvent       *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent       *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into
// metrics. ThoughtsSubmitted counts every accepted thought, including
// revisions and branches.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		SessionsByKind:  make(map[string]int),
		ExportsByFormat: make(map[string]int),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventThoughtSubmitted:
			m.ThoughtsSubmitted++
		case EventThoughtRevised:
			m.ThoughtsSubmitted++
			m.Revisions++
		case EventThoughtBranched:
			m.ThoughtsSubmitted++
			m.Branches++
		case EventSessionCreated:
			m.SessionsCreated++
			if kind, ok := event.Data["kind"].(string); ok {
				m.SessionsByKind[kind]++
			}
		case EventSessionSaved:
			m.SessionsSaved++
		case EventSessionExported:
			m.Exports++
			if format, ok := event.Data["format"].(string); ok {
				m.ExportsByFormat[format]++
			}
		case EventSessionPersistFailed:
			m.PersistFailures++
		case EventSessionLoadSkipped:
			m.LoadSkipped++
		}
	}

	return m, nil
}
