package models

import "time"

// ThoughtRecord is one step in a sequential reasoning chain. JSON names follow
// the sequential-thinking wire protocol so persisted sessions stay readable by
// existing clients.
type ThoughtRecord struct {
	Text               string    `json:"thought"`
	Index              int       `json:"thoughtNumber"`
	TotalEstimate      int       `json:"totalThoughts"`
	ContinuationNeeded bool      `json:"nextThoughtNeeded"`
	IsRevision         *bool     `json:"isRevision,omitempty"`
	RevisesIndex       *int      `json:"revisesThought,omitempty"`
	BranchOriginIndex  *int      `json:"branchFromThought,omitempty"`
	BranchID           string    `json:"branchId,omitempty"`
	MoreThoughtsNeeded *bool     `json:"needsMoreThoughts,omitempty"`
	CreatedAt          time.Time `json:"timestamp"`
	Confidence         *float64  `json:"confidence,omitempty"`
	Tags               []string  `json:"tags,omitempty"`
}

// Revision reports whether the record reconsiders an earlier thought.
func (r ThoughtRecord) Revision() bool {
	return r.IsRevision != nil && *r.IsRevision
}

// Branched reports whether the record belongs in the branch index. Both the
// origin index and the branch id must be present.
func (r ThoughtRecord) Branched() bool {
	return r.BranchOriginIndex != nil && r.BranchID != ""
}
