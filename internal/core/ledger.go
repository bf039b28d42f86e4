package core

import (
	"sort"
	"sync"
	"time"

	"github.com/valter-silva-au/seqthink/pkg/models"
)

// ThoughtInput is a thought submission as received at the boundary. Pointer
// fields distinguish "absent" from zero values so validation can name the
// first missing field.
type ThoughtInput struct {
	Text               *string
	Index              *int
	TotalEstimate      *int
	ContinuationNeeded *bool
	IsRevision         *bool
	RevisesIndex       *int
	BranchOriginIndex  *int
	BranchID           string
	MoreThoughtsNeeded *bool
	Confidence         *float64
	Tags               []string
	SessionID          string
}

// ValidateThought checks the required fields of in, in submission order, and
// builds a ThoughtRecord stamped with now. totalEstimate is raised to index
// when the submission overruns the estimate.
func ValidateThought(in ThoughtInput, now time.Time) (models.ThoughtRecord, error) {
	if in.Text == nil || *in.Text == "" {
		return models.ThoughtRecord{}, invalid("thought", "must be a non-empty string")
	}
	if in.Index == nil || *in.Index < 1 {
		return models.ThoughtRecord{}, invalid("thoughtNumber", "must be a positive integer")
	}
	if in.TotalEstimate == nil || *in.TotalEstimate < 1 {
		return models.ThoughtRecord{}, invalid("totalThoughts", "must be a positive integer")
	}
	if in.ContinuationNeeded == nil {
		return models.ThoughtRecord{}, invalid("nextThoughtNeeded", "must be a boolean")
	}
	if in.RevisesIndex != nil && *in.RevisesIndex < 1 {
		return models.ThoughtRecord{}, invalid("revisesThought", "must be a positive integer")
	}
	if in.BranchOriginIndex != nil && *in.BranchOriginIndex < 1 {
		return models.ThoughtRecord{}, invalid("branchFromThought", "must be a positive integer")
	}

	rec := models.ThoughtRecord{
		Text:               *in.Text,
		Index:              *in.Index,
		TotalEstimate:      *in.TotalEstimate,
		ContinuationNeeded: *in.ContinuationNeeded,
		IsRevision:         in.IsRevision,
		RevisesIndex:       in.RevisesIndex,
		BranchOriginIndex:  in.BranchOriginIndex,
		BranchID:           in.BranchID,
		MoreThoughtsNeeded: in.MoreThoughtsNeeded,
		CreatedAt:          now,
		Confidence:         in.Confidence,
		Tags:               in.Tags,
	}
	if rec.Index > rec.TotalEstimate {
		rec.TotalEstimate = rec.Index
	}
	return rec, nil
}

// LedgerSnapshot describes the ledger right after an append.
type LedgerSnapshot struct {
	BranchIDs     []string
	HistoryLength int
}

// ThoughtLedger is the in-memory, append-only history of thought records plus
// the branch index. It is never persisted; sessions carry their own copies.
type ThoughtLedger struct {
	mu       sync.Mutex
	history  []models.ThoughtRecord
	branches map[string][]models.ThoughtRecord
}

// NewThoughtLedger returns an empty ledger.
func NewThoughtLedger() *ThoughtLedger {
	return &ThoughtLedger{branches: make(map[string][]models.ThoughtRecord)}
}

// Append records rec in history and, when it carries both a branch origin and
// a branch id, in that branch.
func (l *ThoughtLedger) Append(rec models.ThoughtRecord) LedgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.history = append(l.history, rec)
	if rec.Branched() {
		l.branches[rec.BranchID] = append(l.branches[rec.BranchID], rec)
	}
	return LedgerSnapshot{
		BranchIDs:     l.branchIDsLocked(),
		HistoryLength: len(l.history),
	}
}

// History returns a copy of all records in submission order.
func (l *ThoughtLedger) History() []models.ThoughtRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.ThoughtRecord(nil), l.history...)
}

// Branch returns a copy of the records filed under id.
func (l *ThoughtLedger) Branch(id string) []models.ThoughtRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.ThoughtRecord(nil), l.branches[id]...)
}

// BranchIDs returns the known branch ids in sorted order.
func (l *ThoughtLedger) BranchIDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.branchIDsLocked()
}

// Len returns the history length.
func (l *ThoughtLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.history)
}

func (l *ThoughtLedger) branchIDsLocked() []string {
	ids := make([]string, 0, len(l.branches))
	for id := range l.branches {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
