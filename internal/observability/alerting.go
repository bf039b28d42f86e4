package observability

import (
	"fmt"
	"sort"
	"time"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string         `json:"id"`
	Condition   string         `json:"condition"`
	Severity    AlertSeverity  `json:"severity"`
	Message     string         `json:"message"`
	Sessions    []AlertSession `json:"sessions,omitempty"`
	TriggeredAt time.Time      `json:"triggered_at"`
}

// AlertSession names a reasoning session an alert is about. Title is empty
// when no lifecycle event recorded one.
type AlertSession struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	MaxPersistFailures int `yaml:"max_persist_failures" json:"max_persist_failures"`
	StaleHours         int `yaml:"stale_threshold_hours" json:"stale_threshold_hours"`
	MaxRevisions       int `yaml:"max_revisions" json:"max_revisions"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		MaxPersistFailures: 0,
		StaleHours:         24,
		MaxRevisions:       10,
	}
}

// AlertEngine evaluates alert conditions against the event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

// alertEngine implements AlertEngine by reading events and checking thresholds.
type alertEngine struct {
	eventLog   EventLog
	thresholds AlertThresholds
}

// NewAlertEngine creates a new AlertEngine with the given EventLog and thresholds.
func NewAlertEngine(eventLog EventLog, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		eventLog:   eventLog,
		thresholds: thresholds,
	}
}

// Evaluate reads events and checks all alert conditions, returning any
// triggered alerts ordered by severity then ID.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := time.Now().UTC()

	events, err := ae.eventLog.Read(EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("reading events for alerts: %w", err)
	}

	titles := sessionTitles(events)

	var alerts []Alert
	alerts = append(alerts, ae.checkPersistFailures(events, titles, now)...)
	alerts = append(alerts, ae.checkStaleSessions(events, titles, now)...)
	alerts = append(alerts, ae.checkRevisionChurn(events, titles, now)...)

	sort.SliceStable(alerts, func(i, j int) bool {
		if severityRank(alerts[i].Severity) != severityRank(alerts[j].Severity) {
			return severityRank(alerts[i].Severity) < severityRank(alerts[j].Severity)
		}
		return alerts[i].ID < alerts[j].ID
	})
	return alerts, nil
}

// checkPersistFailures fires when more session writes failed than allowed.
// The alert lists each affected session once, in id order.
func (ae *alertEngine) checkPersistFailures(events []Event, titles map[string]string, now time.Time) []Alert {
	failures := 0
	affected := make(map[string]bool)
	for _, event := range events {
		if event.Type != EventSessionPersistFailed {
			continue
		}
		failures++
		if id := event.SessionID(); id != "" {
			affected[id] = true
		}
	}
	if failures <= ae.thresholds.MaxPersistFailures {
		return nil
	}

	ids := make([]string, 0, len(affected))
	for id := range affected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	sessions := make([]AlertSession, 0, len(ids))
	for _, id := range ids {
		sessions = append(sessions, AlertSession{ID: id, Title: titles[id]})
	}

	return []Alert{{
		ID:          "persist-failures",
		Condition:   "session_persist_failed",
		Severity:    SeverityHigh,
		Message:     fmt.Sprintf("%d session write(s) failed across %d session(s); on-disk sessions may be stale", failures, len(ids)),
		Sessions:    sessions,
		TriggeredAt: now,
	}}
}

// checkStaleSessions looks for active sessions with no activity for longer
// than the threshold. A session saved as completed or paused is not active.
func (ae *alertEngine) checkStaleSessions(events []Event, titles map[string]string, now time.Time) []Alert {
	lastActivity := make(map[string]time.Time)
	status := make(map[string]string)

	for _, event := range events {
		sessionID := event.SessionID()
		if sessionID == "" {
			continue
		}
		switch event.Type {
		case EventSessionCreated:
			status[sessionID] = "active"
		case EventSessionSaved:
			if s, ok := event.Data["status"].(string); ok {
				status[sessionID] = s
			}
		case EventSessionExported, EventSessionPersistFailed:
			continue
		}
		if event.Time.After(lastActivity[sessionID]) {
			lastActivity[sessionID] = event.Time
		}
	}

	threshold := time.Duration(ae.thresholds.StaleHours) * time.Hour
	var alerts []Alert
	for sessionID, last := range lastActivity {
		if status[sessionID] == "active" && now.Sub(last) > threshold {
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("stale-%s", sessionID),
				Condition:   "session_stale",
				Severity:    SeverityLow,
				Message:     fmt.Sprintf("session %s has had no thoughts for more than %d hours", sessionID, ae.thresholds.StaleHours),
				Sessions:    []AlertSession{{ID: sessionID, Title: titles[sessionID]}},
				TriggeredAt: now,
			})
		}
	}
	return alerts
}

// checkRevisionChurn looks for sessions revising thoughts more often than
// the threshold allows.
func (ae *alertEngine) checkRevisionChurn(events []Event, titles map[string]string, now time.Time) []Alert {
	revisions := make(map[string]int)
	for _, event := range events {
		if event.Type != EventThoughtRevised {
			continue
		}
		if sessionID := event.SessionID(); sessionID != "" {
			revisions[sessionID]++
		}
	}

	var alerts []Alert
	for sessionID, n := range revisions {
		if n > ae.thresholds.MaxRevisions {
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("churn-%s", sessionID),
				Condition:   "revision_churn",
				Severity:    SeverityMedium,
				Message:     fmt.Sprintf("session %s has %d revisions, exceeding the maximum of %d", sessionID, n, ae.thresholds.MaxRevisions),
				Sessions:    []AlertSession{{ID: sessionID, Title: titles[sessionID]}},
				TriggeredAt: now,
			})
		}
	}
	return alerts
}

// sessionTitles maps session ids to the latest title their lifecycle events
// recorded. Saves that leave the title unchanged carry it again.
func sessionTitles(events []Event) map[string]string {
	titles := make(map[string]string)
	for _, event := range events {
		id, title := event.SessionID(), event.SessionTitle()
		if id != "" && title != "" {
			titles[id] = title
		}
	}
	return titles
}

func severityRank(s AlertSeverity) int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}
