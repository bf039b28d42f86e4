package core

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/valter-silva-au/seqthink/pkg/models"
)

// memSessionStore implements SessionStore in memory. Persist keeps the
// session even when failPersist is set, matching the file store.
type memSessionStore struct {
	mu          sync.Mutex
	sessions    map[string]*models.AnalysisSession
	persisted   int
	failPersist bool
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]*models.AnalysisSession)}
}

func (m *memSessionStore) Get(id string) (*models.AnalysisSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

func (m *memSessionStore) Persist(s *models.AnalysisSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	if m.failPersist {
		return errors.New("disk full")
	}
	m.persisted++
	return nil
}

func (m *memSessionStore) List() []models.AnalysisSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AnalysisSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, *s.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// recordingLogger captures logged events.
type recordingLogger struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Type string
	Data map[string]any
}

func (r *recordingLogger) LogEvent(eventType string, data map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Type: eventType, Data: data})
	return nil
}

func (r *recordingLogger) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type testService struct {
	*thinkingService
	store  *memSessionStore
	events *recordingLogger
}

func newTestService(t *testing.T) *testService {
	t.Helper()
	store := newMemSessionStore()
	events := &recordingLogger{}
	svc := NewThinkingService(NewThoughtLedger(), store, events, nil).(*thinkingService)

	var n int
	svc.newID = func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return &testService{thinkingService: svc, store: store, events: events}
}

func TestSubmitThought_WithoutSession(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.SubmitThought(validInput(1, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Index != 1 || res.TotalEstimate != 3 || !res.ContinuationNeeded {
		t.Errorf("result = %+v", res)
	}
	if res.HistoryLength != 1 || res.SessionID != "" {
		t.Errorf("result = %+v", res)
	}
	if got := svc.events.types(); len(got) != 1 || got[0] != "thought.submitted" {
		t.Errorf("events = %v", got)
	}
}

func TestSubmitThought_EventTypes(t *testing.T) {
	svc := newTestService(t)

	rev := validInput(2, 3)
	rev.IsRevision = boolPtr(true)
	rev.RevisesIndex = intPtr(1)
	branch := validInput(2, 3)
	branch.BranchOriginIndex = intPtr(1)
	branch.BranchID = "alt"

	for _, in := range []ThoughtInput{validInput(1, 3), rev, branch} {
		if _, err := svc.SubmitThought(in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	want := []string{"thought.submitted", "thought.revised", "thought.branched"}
	got := svc.events.types()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestSubmitThought_UnknownSessionMutatesNothing(t *testing.T) {
	svc := newTestService(t)

	in := validInput(1, 2)
	in.SessionID = "missing"
	_, err := svc.SubmitThought(in)

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if svc.ledger.Len() != 0 {
		t.Errorf("ledger grew to %d", svc.ledger.Len())
	}
	if len(svc.events.types()) != 0 {
		t.Errorf("events logged: %v", svc.events.types())
	}
}

func TestSubmitThought_InvalidMutatesNothing(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.SubmitThought(ThoughtInput{Text: strPtr("x")}); err == nil {
		t.Fatal("expected validation error")
	}
	if svc.ledger.Len() != 0 {
		t.Errorf("ledger grew to %d", svc.ledger.Len())
	}
}

func TestSubmitThought_AppendsToSession(t *testing.T) {
	svc := newTestService(t)
	pa, err := svc.AnalyzeProblem(ProblemAnalysisRequest{Problem: "latency", Framework: "swot"})
	if err != nil {
		t.Fatalf("AnalyzeProblem: %v", err)
	}

	in := validInput(4, 2)
	in.SessionID = pa.SessionID
	res, err := svc.SubmitThought(in)
	if err != nil {
		t.Fatalf("SubmitThought: %v", err)
	}
	if res.SessionID != pa.SessionID || res.TotalEstimate != 4 {
		t.Errorf("result = %+v", res)
	}

	session, err := svc.GetSession(pa.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(session.Thoughts) != 1 || session.Thoughts[0].TotalEstimate != 4 {
		t.Errorf("session thoughts = %+v", session.Thoughts)
	}
	if !session.UpdatedAt.After(session.CreatedAt) {
		t.Error("UpdatedAt not advanced")
	}
	if svc.store.persisted != 2 {
		t.Errorf("persisted %d times, want 2", svc.store.persisted)
	}
}

func TestAnalyzeProblem(t *testing.T) {
	svc := newTestService(t)
	long := strings.Repeat("x", 60)

	res, err := svc.AnalyzeProblem(ProblemAnalysisRequest{
		Problem:      long,
		Framework:    "design-thinking",
		Stakeholders: []string{"users"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != "analysis_complete" || res.Framework != "design-thinking" {
		t.Errorf("result = %+v", res)
	}
	if len(res.NextSteps) != 5 {
		t.Errorf("NextSteps = %v", res.NextSteps)
	}

	session, err := svc.GetSession(res.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session.Kind != models.KindProblemAnalysis || session.Status != models.SessionActive {
		t.Errorf("session = %+v", session)
	}
	if want := "Problem Analysis: " + strings.Repeat("x", 50) + "..."; session.Title != want {
		t.Errorf("Title = %q, want %q", session.Title, want)
	}
	// Metadata holds JSON-decoded shapes.
	if sh, ok := session.Metadata["stakeholders"].([]any); !ok || len(sh) != 1 {
		t.Errorf("stakeholders metadata = %#v", session.Metadata["stakeholders"])
	}
	if _, ok := session.Metadata["context"]; ok {
		t.Error("absent context should not be stored")
	}
}

func TestAnalyzeProblem_ShortTitleNotTruncated(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.AnalyzeProblem(ProblemAnalysisRequest{Problem: "short", Framework: "swot"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	session, _ := svc.GetSession(res.SessionID)
	if session.Title != "Problem Analysis: short" {
		t.Errorf("Title = %q", session.Title)
	}
}

func TestAnalyzeProblem_Validation(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.AnalyzeProblem(ProblemAnalysisRequest{Framework: "swot"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "problem" {
		t.Fatalf("expected problem ValidationError, got %v", err)
	}
	if len(svc.store.List()) != 0 {
		t.Error("session created despite validation failure")
	}
}

func TestPlanSolution(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.PlanSolution(SolutionPlanRequest{
		Problem: "slow pages",
		Solutions: []Solution{
			{Title: "Rewrite", Description: "d", Effort: "high", Impact: "high", Risk: "high"},
			{Title: "Cache", Description: "d", Effort: "medium", Impact: "high", Risk: "low"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Recommendation != "Recommended: Cache (Score: 9/10)" {
		t.Errorf("Recommendation = %q", res.Recommendation)
	}
	if res.Ranking[0].Title != "Cache" || res.Status != "planning_complete" {
		t.Errorf("result = %+v", res)
	}
	session, err := svc.GetSession(res.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session.Kind != models.KindSolutionPlanning {
		t.Errorf("Kind = %s", session.Kind)
	}
}

func TestEvaluateOptions_PersistOptional(t *testing.T) {
	svc := newTestService(t)
	options, criteria := exampleOptions()

	res, err := svc.EvaluateOptions(OptionEvaluationRequest{Options: options, Criteria: criteria})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Recommendation.Name != "A" || res.SessionID != "" {
		t.Errorf("result = %+v", res)
	}
	if len(svc.store.List()) != 0 {
		t.Error("evaluation without persist created a session")
	}

	res, err = svc.EvaluateOptions(OptionEvaluationRequest{Options: options, Criteria: criteria, Persist: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	session, err := svc.GetSession(res.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session.Kind != models.KindOptionEvaluation || session.Metadata["recommendation"] != "A" {
		t.Errorf("session = %+v", session)
	}
}

func TestSaveSession(t *testing.T) {
	svc := newTestService(t)
	pa, _ := svc.AnalyzeProblem(ProblemAnalysisRequest{Problem: "p", Framework: "swot"})

	res, err := svc.SaveSession(SaveSessionRequest{
		SessionID: pa.SessionID,
		Title:     "Renamed",
		Notes:     "follow up",
		Status:    models.SessionCompleted,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Saved || res.Message != "Session saved successfully" {
		t.Errorf("result = %+v", res)
	}
	session, _ := svc.GetSession(pa.SessionID)
	if session.Title != "Renamed" || session.Status != models.SessionCompleted || session.Metadata["notes"] != "follow up" {
		t.Errorf("session = %+v", session)
	}
}

func TestSaveSession_UnknownIDSucceeds(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.SaveSession(SaveSessionRequest{SessionID: "ghost", Title: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Saved {
		t.Error("Saved = true for unknown session")
	}
	if svc.store.persisted != 0 {
		t.Errorf("persisted %d times", svc.store.persisted)
	}
}

func TestSaveSession_InvalidStatus(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.SaveSession(SaveSessionRequest{SessionID: "x", Status: "archived"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "status" {
		t.Fatalf("expected status ValidationError, got %v", err)
	}
}

func TestExportAnalysis(t *testing.T) {
	svc := newTestService(t)
	pa, _ := svc.AnalyzeProblem(ProblemAnalysisRequest{Problem: "p", Framework: "swot"})

	first, err := svc.ExportAnalysis(pa.SessionID, ExportMarkdown)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.ExportAnalysis(pa.SessionID, ExportMarkdown)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Content != second.Content {
		t.Error("repeated exports differ")
	}
	if first.Format != "markdown" {
		t.Errorf("Format = %q", first.Format)
	}

	_, err = svc.ExportAnalysis("ghost", ExportJSON)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
	_, err = svc.ExportAnalysis("", ExportJSON)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestPersistFailureIsLoggedNotReturned(t *testing.T) {
	svc := newTestService(t)
	svc.store.failPersist = true

	res, err := svc.AnalyzeProblem(ProblemAnalysisRequest{Problem: "p", Framework: "swot"})
	if err != nil {
		t.Fatalf("persist failure surfaced: %v", err)
	}
	if _, err := svc.GetSession(res.SessionID); err != nil {
		t.Errorf("session lost after persist failure: %v", err)
	}

	var found bool
	for _, e := range svc.events.events {
		if e.Type == "session.persist_failed" {
			found = true
			if e.Data["session_id"] != res.SessionID {
				t.Errorf("persist_failed session_id = %v", e.Data["session_id"])
			}
			sess, _ := svc.GetSession(res.SessionID)
			if e.Data["title"] != sess.Title {
				t.Errorf("persist_failed title = %v, want %q", e.Data["title"], sess.Title)
			}
		}
	}
	if !found {
		t.Errorf("no persist_failed event in %v", svc.events.types())
	}
}

func TestSubmitThought_RendersDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	svc := NewThinkingService(NewThoughtLedger(), newMemSessionStore(), nil, &buf)
	if _, err := svc.SubmitThought(validInput(1, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Thought 1/1") {
		t.Errorf("diagnostic output = %q", buf.String())
	}
}
