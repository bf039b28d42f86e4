package models

import "time"

// SessionKind tags what produced an analysis session.
type SessionKind string

const (
	KindProblemAnalysis  SessionKind = "problem-analysis"
	KindSolutionPlanning SessionKind = "solution-planning"
	KindOptionEvaluation SessionKind = "option-evaluation"
	KindCustom           SessionKind = "custom"
)

// SessionStatus represents the lifecycle state of an analysis session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionPaused    SessionStatus = "paused"
)

// ValidSessionStatus reports whether s is one of the known statuses.
func ValidSessionStatus(s SessionStatus) bool {
	switch s {
	case SessionActive, SessionCompleted, SessionPaused:
		return true
	}
	return false
}

// AnalysisSession is a persisted unit of work binding a problem or solution
// context to the thoughts submitted against it. Metadata values are kept in
// their JSON-decoded form (map[string]any, []any, float64, string, bool) so
// that an in-memory session and its reloaded copy compare equal.
type AnalysisSession struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Kind      SessionKind     `json:"type"`
	Thoughts  []ThoughtRecord `json:"thoughts"`
	CreatedAt time.Time       `json:"created"`
	UpdatedAt time.Time       `json:"updated"`
	Status    SessionStatus   `json:"status"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
}

// Clone returns a copy whose thought slice and metadata map can be mutated
// without affecting s. Metadata values are shared.
func (s *AnalysisSession) Clone() *AnalysisSession {
	cp := *s
	if s.Thoughts != nil {
		cp.Thoughts = make([]ThoughtRecord, len(s.Thoughts))
		copy(cp.Thoughts, s.Thoughts)
	}
	if s.Metadata != nil {
		cp.Metadata = make(map[string]any, len(s.Metadata))
		for k, v := range s.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

// SessionIndexEntry is the summary row kept in the session index for listing
// without decoding every session record.
type SessionIndexEntry struct {
	ID           string        `yaml:"id"`
	Title        string        `yaml:"title"`
	Kind         SessionKind   `yaml:"kind"`
	Status       SessionStatus `yaml:"status"`
	ThoughtCount int           `yaml:"thought_count"`
	Updated      time.Time     `yaml:"updated"`
}

// SessionIndex is the master index of all persisted analysis sessions.
type SessionIndex struct {
	Version  string              `yaml:"version"`
	Sessions []SessionIndexEntry `yaml:"sessions"`
}
