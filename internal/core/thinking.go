package core

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/valter-silva-au/seqthink/pkg/models"
)

// ThinkingService coordinates the thought ledger, the session store and the
// scoring library behind every session-bearing operation.
type ThinkingService interface {
	SubmitThought(in ThoughtInput) (*SubmitResult, error)
	AnalyzeProblem(req ProblemAnalysisRequest) (*ProblemAnalysisResult, error)
	PlanSolution(req SolutionPlanRequest) (*SolutionPlanResult, error)
	EvaluateOptions(req OptionEvaluationRequest) (*OptionEvaluationResult, error)
	SaveSession(req SaveSessionRequest) (*SaveSessionResult, error)
	ExportAnalysis(sessionID string, format ExportFormat) (*ExportResult, error)
	GetSession(id string) (*models.AnalysisSession, error)
	ListSessions() []models.AnalysisSession
}

// SubmitResult is returned for every accepted thought.
type SubmitResult struct {
	Index              int      `json:"thoughtNumber"`
	TotalEstimate      int      `json:"totalThoughts"`
	ContinuationNeeded bool     `json:"nextThoughtNeeded"`
	BranchIDs          []string `json:"branches"`
	HistoryLength      int      `json:"thoughtHistoryLength"`
	SessionID          string   `json:"sessionId,omitempty"`
}

// ProblemAnalysisResult is returned by AnalyzeProblem.
type ProblemAnalysisResult struct {
	SessionID string   `json:"sessionId"`
	Analysis  string   `json:"analysis"`
	Framework string   `json:"framework"`
	NextSteps []string `json:"nextSteps"`
	Status    string   `json:"status"`
}

// SolutionPlanResult is returned by PlanSolution.
type SolutionPlanResult struct {
	SessionID      string           `json:"sessionId"`
	Problem        string           `json:"problem"`
	Solutions      []Solution       `json:"solutions"`
	Ranking        []ScoredSolution `json:"ranking"`
	Analysis       string           `json:"analysis"`
	Recommendation string           `json:"recommendation"`
	Status         string           `json:"status"`
}

// OptionEvaluationResult is returned by EvaluateOptions.
type OptionEvaluationResult struct {
	Evaluation     OptionEvaluationRequest `json:"evaluation"`
	Scores         map[string]float64      `json:"scores"`
	Ranking        []RankedOption          `json:"ranking"`
	Recommendation RankedOption            `json:"recommendation"`
	Analysis       string                  `json:"analysis"`
	SessionID      string                  `json:"sessionId,omitempty"`
	Status         string                  `json:"status"`
}

// SaveSessionRequest updates an existing session. Empty fields are left
// unchanged.
type SaveSessionRequest struct {
	SessionID string
	Title     string
	Notes     string
	Status    models.SessionStatus
}

// SaveSessionResult confirms a save. Saved is false when the session id was
// unknown and nothing was written.
type SaveSessionResult struct {
	Message   string    `json:"message"`
	SessionID string    `json:"sessionId,omitempty"`
	Saved     bool      `json:"saved"`
	Timestamp time.Time `json:"timestamp"`
}

// ExportResult carries a rendered session.
type ExportResult struct {
	SessionID string    `json:"sessionId"`
	Format    string    `json:"format"`
	Content   string    `json:"content"`
	Exported  time.Time `json:"exported"`
}

type thinkingService struct {
	mu     sync.Mutex
	ledger *ThoughtLedger
	store  SessionStore
	events EventLogger
	diag   io.Writer
	now    func() time.Time
	newID  func() string
}

// NewThinkingService creates a ThinkingService. events and diag may be nil;
// diag receives a rendered box for every accepted thought.
func NewThinkingService(ledger *ThoughtLedger, store SessionStore, events EventLogger, diag io.Writer) ThinkingService {
	return &thinkingService{
		ledger: ledger,
		store:  store,
		events: events,
		diag:   diag,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// SubmitThought validates in, appends it to the ledger and, when a session id
// is given, to that session.
func (s *thinkingService) SubmitThought(in ThoughtInput) (*SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, err := ValidateThought(in, now)
	if err != nil {
		return nil, err
	}

	var session *models.AnalysisSession
	if in.SessionID != "" {
		sess, ok := s.store.Get(in.SessionID)
		if !ok {
			return nil, &NotFoundError{Kind: "session", ID: in.SessionID}
		}
		session = sess
	}

	snap := s.ledger.Append(rec)

	if session != nil {
		session.Thoughts = append(session.Thoughts, rec)
		session.UpdatedAt = now
		s.persist(session)
	}

	eventType := "thought.submitted"
	switch {
	case rec.Revision():
		eventType = "thought.revised"
	case rec.Branched():
		eventType = "thought.branched"
	}
	s.logEvent(eventType, map[string]any{
		"thought_number": rec.Index,
		"total_thoughts": rec.TotalEstimate,
		"branch_id":      rec.BranchID,
		"session_id":     in.SessionID,
	})

	if s.diag != nil {
		fmt.Fprintln(s.diag, RenderThought(rec))
	}

	return &SubmitResult{
		Index:              rec.Index,
		TotalEstimate:      rec.TotalEstimate,
		ContinuationNeeded: rec.ContinuationNeeded,
		BranchIDs:          snap.BranchIDs,
		HistoryLength:      snap.HistoryLength,
		SessionID:          in.SessionID,
	}, nil
}

// AnalyzeProblem opens a problem-analysis session and applies the requested
// framework.
func (s *thinkingService) AnalyzeProblem(req ProblemAnalysisRequest) (*ProblemAnalysisResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	fw := LookupFramework(req.Framework)

	meta := map[string]any{
		"framework": req.Framework,
		"problem":   req.Problem,
	}
	if req.Context != "" {
		meta["context"] = req.Context
	}
	if len(req.Stakeholders) > 0 {
		meta["stakeholders"] = req.Stakeholders
	}
	if len(req.Constraints) > 0 {
		meta["constraints"] = req.Constraints
	}
	if len(req.Objectives) > 0 {
		meta["objectives"] = req.Objectives
	}

	session, err := s.openSession(models.KindProblemAnalysis, "Problem Analysis: "+truncateTitle(req.Problem), meta)
	if err != nil {
		return nil, err
	}

	return &ProblemAnalysisResult{
		SessionID: session.ID,
		Analysis:  ApplyFramework(req, fw),
		Framework: req.Framework,
		NextSteps: fw.NextSteps,
		Status:    "analysis_complete",
	}, nil
}

// PlanSolution opens a solution-planning session and scores every solution.
func (s *thinkingService) PlanSolution(req SolutionPlanRequest) (*SolutionPlanResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	meta := map[string]any{
		"problem":   req.Problem,
		"solutions": req.Solutions,
	}
	if len(req.NextSteps) > 0 {
		meta["nextSteps"] = req.NextSteps
	}
	session, err := s.openSession(models.KindSolutionPlanning, "Solution Planning: "+truncateTitle(req.Problem), meta)
	if err != nil {
		return nil, err
	}

	best, _ := RecommendSolution(req.Solutions)
	return &SolutionPlanResult{
		SessionID:      session.ID,
		Problem:        req.Problem,
		Solutions:      req.Solutions,
		Ranking:        RankSolutions(req.Solutions),
		Analysis:       SolutionAnalysis(req.Solutions),
		Recommendation: fmt.Sprintf("Recommended: %s (Score: %d/10)", best.Title, best.Score),
		Status:         "planning_complete",
	}, nil
}

// EvaluateOptions ranks options by weighted criteria. When req.Persist is
// set the evaluation is also recorded as an option-evaluation session.
func (s *thinkingService) EvaluateOptions(req OptionEvaluationRequest) (*OptionEvaluationResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	ranking := RankOptions(req.Options, req.Criteria)
	res := &OptionEvaluationResult{
		Evaluation:     req,
		Scores:         ScoreOptions(req.Options, req.Criteria),
		Ranking:        ranking,
		Recommendation: ranking[0],
		Analysis:       EvaluationAnalysis(ranking, req.Criteria),
		Status:         "evaluation_complete",
	}
	if req.Persist {
		meta := map[string]any{
			"options":        req.Options,
			"criteria":       req.Criteria,
			"recommendation": ranking[0].Name,
		}
		session, err := s.openSession(models.KindOptionEvaluation, "Option Evaluation: "+truncateTitle(ranking[0].Name), meta)
		if err != nil {
			return nil, err
		}
		res.SessionID = session.ID
	}
	return res, nil
}

// SaveSession updates title, notes and status of a known session and
// persists it. Unknown ids are not an error.
func (s *thinkingService) SaveSession(req SaveSessionRequest) (*SaveSessionResult, error) {
	if req.Status != "" && !models.ValidSessionStatus(req.Status) {
		return nil, invalid("status", "must be one of active, completed, paused")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	res := &SaveSessionResult{
		Message:   "Session saved successfully",
		SessionID: req.SessionID,
		Timestamp: now,
	}
	if req.SessionID == "" {
		return res, nil
	}
	session, ok := s.store.Get(req.SessionID)
	if !ok {
		return res, nil
	}

	session.UpdatedAt = now
	if req.Title != "" {
		session.Title = req.Title
	}
	if req.Notes != "" {
		if session.Metadata == nil {
			session.Metadata = make(map[string]any)
		}
		session.Metadata["notes"] = req.Notes
	}
	if req.Status != "" {
		session.Status = req.Status
	}
	s.persist(session)
	s.logEvent("session.saved", map[string]any{
		"session_id": session.ID,
		"title":      session.Title,
		"status":     string(session.Status),
	})

	res.Saved = true
	return res, nil
}

// ExportAnalysis renders a known session. Exports never modify the session,
// so repeated exports of an unchanged session yield identical content.
func (s *thinkingService) ExportAnalysis(sessionID string, format ExportFormat) (*ExportResult, error) {
	if sessionID == "" {
		return nil, invalid("sessionId", "is required")
	}
	session, ok := s.store.Get(sessionID)
	if !ok {
		return nil, &NotFoundError{Kind: "session", ID: sessionID}
	}
	content, err := RenderSession(session, format)
	if err != nil {
		return nil, err
	}
	s.logEvent("session.exported", map[string]any{"session_id": sessionID, "format": string(format)})
	return &ExportResult{
		SessionID: sessionID,
		Format:    string(format),
		Content:   content,
		Exported:  s.now(),
	}, nil
}

// GetSession returns a copy of a known session.
func (s *thinkingService) GetSession(id string) (*models.AnalysisSession, error) {
	session, ok := s.store.Get(id)
	if !ok {
		return nil, &NotFoundError{Kind: "session", ID: id}
	}
	return session, nil
}

// ListSessions returns all sessions, most recently updated first.
func (s *thinkingService) ListSessions() []models.AnalysisSession {
	return s.store.List()
}

func (s *thinkingService) openSession(kind models.SessionKind, title string, meta map[string]any) (*models.AnalysisSession, error) {
	normalized, err := normalizeMetadata(meta)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	session := &models.AnalysisSession{
		ID:        s.newID(),
		Title:     title,
		Kind:      kind,
		Thoughts:  []models.ThoughtRecord{},
		CreatedAt: now,
		UpdatedAt: now,
		Status:    models.SessionActive,
		Metadata:  normalized,
	}
	s.persist(session)
	s.logEvent("session.created", map[string]any{
		"session_id": session.ID,
		"title":      session.Title,
		"kind":       string(kind),
	})
	return session, nil
}

// persist writes session through the store. Failures are logged and
// swallowed; the in-memory copy stays authoritative.
func (s *thinkingService) persist(session *models.AnalysisSession) {
	if err := s.store.Persist(session); err != nil {
		s.logEvent("session.persist_failed", map[string]any{
			"session_id": session.ID,
			"title":      session.Title,
			"error":      err.Error(),
		})
	}
}

func (s *thinkingService) logEvent(eventType string, data map[string]any) {
	if s.events == nil {
		return
	}
	_ = s.events.LogEvent(eventType, data) // Best-effort.
}

// normalizeMetadata round-trips meta through JSON so it holds the same value
// shapes a reloaded session would.
func normalizeMetadata(meta map[string]any) (map[string]any, error) {
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encoding session metadata: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding session metadata: %w", err)
	}
	return out, nil
}

func truncateTitle(s string) string {
	r := []rune(s)
	if len(r) <= 50 {
		return s
	}
	return string(r[:50]) + "..."
}
