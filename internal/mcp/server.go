// Package mcp provides an MCP (Model Context Protocol) server that exposes
// seqthink's sequential-thinking, analysis and reasoning-thread operations as
// MCP tools for AI assistants.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/seqthink/internal/core"
	"github.com/valter-silva-au/seqthink/internal/observability"
	"github.com/valter-silva-au/seqthink/pkg/models"
)

// Server wraps seqthink services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	svc         core.ThinkingService
	engine      *core.QuantumEngine
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// NewServer creates a new MCP server. metricsCalc and alertEngine may be nil
// if observability is disabled.
func NewServer(svc core.ThinkingService, engine *core.QuantumEngine, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, name, version string) *Server {
	if name == "" {
		name = "sequential-thinking-server"
	}
	if version == "" {
		version = "dev"
	}
	if engine == nil {
		engine = core.NewQuantumEngine()
	}

	s := &Server{
		svc:         svc,
		engine:      engine,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: name, Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input types ---
//
// The structs describe the advertised input schema. Arguments are decoded by
// decodeArgs rather than validated by the SDK, so missing and mistyped input
// is reported through the failure envelope with the offending field name
// rather than as a protocol error.

type thoughtInput struct {
	Thought           *string  `json:"thought,omitempty" jsonschema:"your current thinking step"`
	NextThoughtNeeded *bool    `json:"nextThoughtNeeded,omitempty" jsonschema:"whether another thought step is needed"`
	ThoughtNumber     *int     `json:"thoughtNumber,omitempty" jsonschema:"current thought number, starting at 1"`
	TotalThoughts     *int     `json:"totalThoughts,omitempty" jsonschema:"estimated total thoughts needed"`
	IsRevision        *bool    `json:"isRevision,omitempty" jsonschema:"whether this revises previous thinking"`
	RevisesThought    *int     `json:"revisesThought,omitempty" jsonschema:"which thought is being reconsidered"`
	BranchFromThought *int     `json:"branchFromThought,omitempty" jsonschema:"branching point thought number"`
	BranchID          string   `json:"branchId,omitempty" jsonschema:"branch identifier"`
	NeedsMoreThoughts *bool    `json:"needsMoreThoughts,omitempty" jsonschema:"if more thoughts are needed beyond the estimate"`
	Confidence        *float64 `json:"confidence,omitempty" jsonschema:"confidence in this thought between 0 and 1"`
	Tags              []string `json:"tags,omitempty" jsonschema:"free-form labels"`
	SessionID         string   `json:"sessionId,omitempty" jsonschema:"session to append this thought to, as returned by analyze_problem or plan_solution"`

	// typeErr is the first mistyped field that ValidateThought does not check.
	typeErr error
}

// UnmarshalJSON decodes each argument on its own. A mistyped field that
// ValidateThought checks is replaced by a value it rejects, so the reported
// field keeps the submission order thought, thoughtNumber, totalThoughts,
// nextThoughtNeeded.
func (t *thoughtInput) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return &core.ValidationError{Field: "arguments", Reason: "must be a JSON object"}
	}

	t.Thought = checkedField(fields, "thought", "")
	t.ThoughtNumber = checkedField(fields, "thoughtNumber", 0)
	t.TotalThoughts = checkedField(fields, "totalThoughts", 0)
	t.NextThoughtNeeded = uncheckedBool(fields, "nextThoughtNeeded")
	t.RevisesThought = checkedField(fields, "revisesThought", 0)
	t.BranchFromThought = checkedField(fields, "branchFromThought", 0)

	t.typeErr = firstError(
		optionalField(fields, "isRevision", &t.IsRevision),
		optionalField(fields, "branchId", &t.BranchID),
		optionalField(fields, "needsMoreThoughts", &t.NeedsMoreThoughts),
		optionalField(fields, "confidence", &t.Confidence),
		optionalField(fields, "tags", &t.Tags),
		optionalField(fields, "sessionId", &t.SessionID),
	)
	return nil
}

type analyzeProblemInput struct {
	Problem      string   `json:"problem,omitempty" jsonschema:"the problem to analyze"`
	Context      string   `json:"context,omitempty" jsonschema:"additional context or background"`
	Framework    string   `json:"framework,omitempty" jsonschema:"analysis framework: swot, root-cause, design-thinking, systems or custom"`
	Stakeholders []string `json:"stakeholders,omitempty" jsonschema:"key stakeholders"`
	Constraints  []string `json:"constraints,omitempty" jsonschema:"known constraints"`
	Objectives   []string `json:"objectives,omitempty" jsonschema:"desired outcomes"`
}

type solutionInput struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Pros        []string `json:"pros,omitempty"`
	Cons        []string `json:"cons,omitempty"`
	Effort      string   `json:"effort,omitempty" jsonschema:"low, medium or high"`
	Impact      string   `json:"impact,omitempty" jsonschema:"low, medium or high"`
	Risk        string   `json:"risk,omitempty" jsonschema:"low, medium or high"`
}

type planSolutionInput struct {
	Problem   string          `json:"problem,omitempty" jsonschema:"the problem being solved"`
	Solutions []solutionInput `json:"solutions,omitempty" jsonschema:"candidate solutions; each needs title, description, effort, impact and risk"`
	NextSteps []string        `json:"nextSteps,omitempty" jsonschema:"follow-up actions"`
}

type optionInput struct {
	Name        string             `json:"name,omitempty"`
	Description string             `json:"description,omitempty"`
	Criteria    map[string]float64 `json:"criteria,omitempty" jsonschema:"score of this option per criterion name"`
}

type criterionInput struct {
	Name        string   `json:"name,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
	Description string   `json:"description,omitempty"`
}

type evaluateOptionsInput struct {
	Options  []optionInput    `json:"options,omitempty" jsonschema:"options to compare"`
	Criteria []criterionInput `json:"criteria,omitempty" jsonschema:"weighted evaluation criteria"`
	Persist  bool             `json:"persist,omitempty" jsonschema:"also record the evaluation as an option-evaluation session"`
}

type saveSessionInput struct {
	SessionID string `json:"sessionId,omitempty" jsonschema:"session ID to save"`
	Title     string `json:"title,omitempty" jsonschema:"session title"`
	Notes     string `json:"notes,omitempty" jsonschema:"additional notes"`
	Status    string `json:"status,omitempty" jsonschema:"active, completed or paused"`
}

type exportAnalysisInput struct {
	SessionID string `json:"sessionId,omitempty" jsonschema:"session to export"`
	Format    string `json:"format,omitempty" jsonschema:"export format: json, markdown or summary"`
}

type quantumReasoningInput struct {
	Problem    string   `json:"problem,omitempty" jsonschema:"problem to reason about"`
	Strategies []string `json:"strategies,omitempty" jsonschema:"strategies to run: aggressive, conservative, creative, analytical, intuitive"`
}

type quantumThoughtInput struct {
	ID                    string   `json:"id,omitempty"`
	Content               string   `json:"content,omitempty"`
	Confidence            float64  `json:"confidence,omitempty"`
	Thread                int      `json:"thread,omitempty"`
	Connections           []string `json:"connections,omitempty"`
	BreakthroughPotential float64  `json:"breakthrough_potential,omitempty"`
	OptimizationScore     float64  `json:"optimization_score,omitempty"`
}

type threadInput struct {
	ID          int                   `json:"id,omitempty"`
	Strategy    string                `json:"strategy,omitempty"`
	Thoughts    []quantumThoughtInput `json:"thoughts,omitempty"`
	Performance float64               `json:"performance,omitempty"`
}

type aiCoachInput struct {
	Thoughts []quantumThoughtInput `json:"thoughts,omitempty" jsonschema:"current thoughts to analyze"`
}

type fusionAnalysisInput struct {
	Threads []threadInput `json:"threads,omitempty" jsonschema:"reasoning threads to fuse"`
}

type predictOutcomeInput struct {
	Solution any `json:"solution,omitempty" jsonschema:"solution to forecast"`
}

type optimizeThinkingInput struct {
	Session any `json:"session,omitempty" jsonschema:"reasoning session to optimize"`
}

type listSessionsInput struct{}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type getAlertsInput struct{}

// --- Tool output types ---

type threadSummary struct {
	Strategy    models.Strategy `json:"strategy"`
	Performance float64         `json:"performance"`
	Thoughts    int             `json:"thoughts"`
}

type quantumReasoningOutput struct {
	Type             string                  `json:"type"`
	Problem          string                  `json:"problem"`
	ParallelInsights []threadSummary         `json:"parallel_insights"`
	Fusion           core.FusionResult       `json:"quantum_fusion"`
	Breakthroughs    []core.Breakthrough     `json:"breakthroughs"`
	SuperhumanScore  float64                 `json:"superhuman_score"`
	NextOptimization core.OptimizationTarget `json:"next_optimization"`
	Status           string                  `json:"status"`
}

type aiCoachOutput struct {
	Type          string                   `json:"type"`
	Suggestions   []models.CoachSuggestion `json:"suggestions"`
	CoachingScore float64                  `json:"coaching_score"`
	Status        string                   `json:"status"`
}

type fusionAnalysisOutput struct {
	Type string `json:"type"`
	core.FusionAnalysisResult
	Status string `json:"status"`
}

type predictOutcomeOutput struct {
	Type     string `json:"type"`
	Solution any    `json:"solution"`
	core.OutcomePrediction
	Status string `json:"status"`
}

type optimizeThinkingOutput struct {
	Type string `json:"type"`
	core.ThinkingOptimization
	Status string `json:"status"`
}

type sessionSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	Thoughts int    `json:"thoughts"`
	Updated  string `json:"updated"`
}

type listSessionsOutput struct {
	Sessions []sessionSummary `json:"sessions"`
	Count    int              `json:"count"`
}

type getAlertsOutput struct {
	Alerts []observability.Alert `json:"alerts"`
	Count  int                   `json:"count"`
}

// failureEnvelope is the body of every failed tool call.
type failureEnvelope struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

// --- Tool registration ---
//
// Handlers declare an `any` output so that success and failure envelopes,
// which have different shapes, both travel as plain JSON text.

// toolHandler is a tool handler over decoded arguments.
type toolHandler[In any] func(context.Context, *gomcp.CallToolRequest, In) (*gomcp.CallToolResult, any, error)

// addTool registers h with the input schema inferred from In. Arguments are
// decoded by decodeArgs instead of being validated by the SDK, so every bad
// argument ends in the failure envelope.
func addTool[In any](server *gomcp.Server, tool *gomcp.Tool, h toolHandler[In]) {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		panic(fmt.Sprintf("tool %q: input schema: %v", tool.Name, err))
	}
	tool.InputSchema = schema

	server.AddTool(tool, func(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		var in In
		if err := decodeArgs(req.Params.Arguments, &in); err != nil {
			return failureResult(err), nil
		}
		res, _, err := h(ctx, req, in)
		if err != nil {
			return failureResult(err), nil
		}
		return res, nil
	})
}

func (s *Server) registerTools() {
	addTool(s.server, &gomcp.Tool{
		Name: "sequentialthinking",
		Description: `A tool for dynamic and reflective problem-solving through numbered thoughts.
Each thought may revise an earlier one (isRevision + revisesThought) or branch
from it (branchFromThought + branchId). totalThoughts is an estimate and is
raised automatically when thoughtNumber exceeds it. Pass a sessionId returned
by analyze_problem or plan_solution to record the thought in that session.`,
	}, s.handleSequentialThinking)

	addTool(s.server, &gomcp.Tool{
		Name:        "analyze_problem",
		Description: "Problem analysis using a fixed framework (swot, root-cause, design-thinking, systems). Opens a session and returns its id.",
	}, s.handleAnalyzeProblem)

	addTool(s.server, &gomcp.Tool{
		Name:        "plan_solution",
		Description: "Score candidate solutions by effort, impact and risk and recommend the best one. Opens a session and returns its id.",
	}, s.handlePlanSolution)

	addTool(s.server, &gomcp.Tool{
		Name:        "evaluate_options",
		Description: "Multi-criteria decision analysis: rank options by the weighted mean of their criterion scores.",
	}, s.handleEvaluateOptions)

	addTool(s.server, &gomcp.Tool{
		Name:        "save_session",
		Description: "Update the title, notes or status of a session and persist it. Unknown session ids are acknowledged without saving.",
	}, s.handleSaveSession)

	addTool(s.server, &gomcp.Tool{
		Name:        "export_analysis",
		Description: "Export a session as json, markdown or a short summary.",
	}, s.handleExportAnalysis)

	addTool(s.server, &gomcp.Tool{
		Name:        "quantum_reasoning",
		Description: "Run one synthetic reasoning thread per strategy, fuse the strongest insights and flag breakthroughs.",
	}, s.handleQuantumReasoning)

	addTool(s.server, &gomcp.Tool{
		Name:        "ai_coach",
		Description: "Advisory suggestions (pivot, breakthrough, merge) for a set of reasoning thoughts.",
	}, s.handleAICoach)

	addTool(s.server, &gomcp.Tool{
		Name:        "fusion_analysis",
		Description: "Group reasoning threads, list cross-thread connections and summarise each group.",
	}, s.handleFusionAnalysis)

	addTool(s.server, &gomcp.Tool{
		Name:        "predict_outcome",
		Description: "Forecast the success probability of a solution from fixed factor estimates.",
	}, s.handlePredictOutcome)

	addTool(s.server, &gomcp.Tool{
		Name:        "optimize_thinking",
		Description: "Suggest adjustments to a reasoning session from fixed efficiency estimates.",
	}, s.handleOptimizeThinking)

	addTool(s.server, &gomcp.Tool{
		Name:        "list_sessions",
		Description: "List analysis sessions, most recently updated first.",
	}, s.handleListSessions)

	addTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Aggregated metrics from the event log: thoughts, revisions, branches, sessions, exports and persistence failures.",
	}, s.handleGetMetrics)

	addTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (persistence failures, stale sessions, revision churn).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleSequentialThinking(_ context.Context, _ *gomcp.CallToolRequest, input thoughtInput) (*gomcp.CallToolResult, any, error) {
	in := core.ThoughtInput{
		Text:               input.Thought,
		Index:              input.ThoughtNumber,
		TotalEstimate:      input.TotalThoughts,
		ContinuationNeeded: input.NextThoughtNeeded,
		IsRevision:         input.IsRevision,
		RevisesIndex:       input.RevisesThought,
		BranchOriginIndex:  input.BranchFromThought,
		BranchID:           input.BranchID,
		MoreThoughtsNeeded: input.NeedsMoreThoughts,
		Confidence:         input.Confidence,
		Tags:               input.Tags,
		SessionID:          input.SessionID,
	}
	if input.typeErr != nil {
		if _, err := core.ValidateThought(in, time.Now()); err != nil {
			return failureResult(err), nil, nil
		}
		return failureResult(input.typeErr), nil, nil
	}

	res, err := s.svc.SubmitThought(in)
	if err != nil {
		return failureResult(err), nil, nil
	}
	return successResult(res)
}

func (s *Server) handleAnalyzeProblem(_ context.Context, _ *gomcp.CallToolRequest, input analyzeProblemInput) (*gomcp.CallToolResult, any, error) {
	res, err := s.svc.AnalyzeProblem(core.ProblemAnalysisRequest{
		Problem:      input.Problem,
		Framework:    input.Framework,
		Context:      input.Context,
		Stakeholders: input.Stakeholders,
		Constraints:  input.Constraints,
		Objectives:   input.Objectives,
	})
	if err != nil {
		return failureResult(err), nil, nil
	}
	return successResult(res)
}

func (s *Server) handlePlanSolution(_ context.Context, _ *gomcp.CallToolRequest, input planSolutionInput) (*gomcp.CallToolResult, any, error) {
	req := core.SolutionPlanRequest{
		Problem:   input.Problem,
		NextSteps: input.NextSteps,
	}
	for _, sol := range input.Solutions {
		req.Solutions = append(req.Solutions, core.Solution(sol))
	}
	res, err := s.svc.PlanSolution(req)
	if err != nil {
		return failureResult(err), nil, nil
	}
	return successResult(res)
}

func (s *Server) handleEvaluateOptions(_ context.Context, _ *gomcp.CallToolRequest, input evaluateOptionsInput) (*gomcp.CallToolResult, any, error) {
	req := core.OptionEvaluationRequest{Persist: input.Persist}
	for _, opt := range input.Options {
		req.Options = append(req.Options, core.Option(opt))
	}
	for i, c := range input.Criteria {
		if c.Weight == nil {
			return failureResult(&core.ValidationError{
				Field:  fmt.Sprintf("criteria[%d].weight", i),
				Reason: "is required",
			}), nil, nil
		}
		req.Criteria = append(req.Criteria, core.Criterion{
			Name:        c.Name,
			Weight:      *c.Weight,
			Description: c.Description,
		})
	}
	res, err := s.svc.EvaluateOptions(req)
	if err != nil {
		return failureResult(err), nil, nil
	}
	return successResult(res)
}

func (s *Server) handleSaveSession(_ context.Context, _ *gomcp.CallToolRequest, input saveSessionInput) (*gomcp.CallToolResult, any, error) {
	res, err := s.svc.SaveSession(core.SaveSessionRequest{
		SessionID: input.SessionID,
		Title:     input.Title,
		Notes:     input.Notes,
		Status:    models.SessionStatus(input.Status),
	})
	if err != nil {
		return failureResult(err), nil, nil
	}
	return successResult(res)
}

func (s *Server) handleExportAnalysis(_ context.Context, _ *gomcp.CallToolRequest, input exportAnalysisInput) (*gomcp.CallToolResult, any, error) {
	res, err := s.svc.ExportAnalysis(input.SessionID, core.ExportFormat(input.Format))
	if err != nil {
		return failureResult(err), nil, nil
	}
	return successResult(res)
}

func (s *Server) handleQuantumReasoning(_ context.Context, _ *gomcp.CallToolRequest, input quantumReasoningInput) (*gomcp.CallToolResult, any, error) {
	if input.Problem == "" {
		return failureResult(&core.ValidationError{Field: "problem", Reason: "is required"}), nil, nil
	}
	strategies := make([]models.Strategy, len(input.Strategies))
	for i, name := range input.Strategies {
		strategies[i] = models.Strategy(name)
	}

	result := s.engine.RunParallelReasoning(input.Problem, strategies)

	out := quantumReasoningOutput{
		Type:             "quantum_reasoning",
		Problem:          input.Problem,
		ParallelInsights: make([]threadSummary, len(result.Threads)),
		Fusion:           result.Fusion,
		Breakthroughs:    result.Breakthroughs,
		SuperhumanScore:  result.SuperhumanScore,
		NextOptimization: result.NextOptimization,
		Status:           "quantum_complete",
	}
	for i, th := range result.Threads {
		out.ParallelInsights[i] = threadSummary{
			Strategy:    th.Strategy,
			Performance: th.Performance,
			Thoughts:    len(th.Thoughts),
		}
	}
	return successResult(out)
}

func (s *Server) handleAICoach(_ context.Context, _ *gomcp.CallToolRequest, input aiCoachInput) (*gomcp.CallToolResult, any, error) {
	if input.Thoughts == nil {
		return failureResult(&core.ValidationError{Field: "thoughts", Reason: "is required"}), nil, nil
	}

	suggestions := core.AICoach(toQuantumThoughts(input.Thoughts))
	out := aiCoachOutput{
		Type:        "ai_coach",
		Suggestions: suggestions,
		Status:      "coaching_complete",
	}
	if len(suggestions) > 3 {
		out.Suggestions = suggestions[:3]
	}
	if len(suggestions) > 0 {
		out.CoachingScore = suggestions[0].Confidence
	}
	return successResult(out)
}

func (s *Server) handleFusionAnalysis(_ context.Context, _ *gomcp.CallToolRequest, input fusionAnalysisInput) (*gomcp.CallToolResult, any, error) {
	if input.Threads == nil {
		return failureResult(&core.ValidationError{Field: "threads", Reason: "is required"}), nil, nil
	}

	threads := make([]models.ReasoningThread, len(input.Threads))
	for i, th := range input.Threads {
		threads[i] = models.ReasoningThread{
			ID:          th.ID,
			Strategy:    models.Strategy(th.Strategy),
			Thoughts:    toQuantumThoughts(th.Thoughts),
			Performance: th.Performance,
		}
	}

	return successResult(fusionAnalysisOutput{
		Type:                 "fusion_analysis",
		FusionAnalysisResult: core.FusionAnalysis(threads),
		Status:               "fusion_complete",
	})
}

func (s *Server) handlePredictOutcome(_ context.Context, _ *gomcp.CallToolRequest, input predictOutcomeInput) (*gomcp.CallToolResult, any, error) {
	if input.Solution == nil {
		return failureResult(&core.ValidationError{Field: "solution", Reason: "is required"}), nil, nil
	}
	return successResult(predictOutcomeOutput{
		Type:              "outcome_prediction",
		Solution:          input.Solution,
		OutcomePrediction: core.PredictOutcome(input.Solution),
		Status:            "prediction_complete",
	})
}

func (s *Server) handleOptimizeThinking(_ context.Context, _ *gomcp.CallToolRequest, input optimizeThinkingInput) (*gomcp.CallToolResult, any, error) {
	if input.Session == nil {
		return failureResult(&core.ValidationError{Field: "session", Reason: "is required"}), nil, nil
	}
	return successResult(optimizeThinkingOutput{
		Type:                 "thinking_optimization",
		ThinkingOptimization: core.OptimizeThinking(input.Session),
		Status:               "optimization_complete",
	})
}

func (s *Server) handleListSessions(_ context.Context, _ *gomcp.CallToolRequest, _ listSessionsInput) (*gomcp.CallToolResult, any, error) {
	sessions := s.svc.ListSessions()
	out := listSessionsOutput{
		Sessions: make([]sessionSummary, len(sessions)),
		Count:    len(sessions),
	}
	for i, sess := range sessions {
		out.Sessions[i] = sessionSummary{
			ID:       sess.ID,
			Title:    sess.Title,
			Type:     string(sess.Kind),
			Status:   string(sess.Status),
			Thoughts: len(sess.Thoughts),
			Updated:  sess.UpdatedAt.Format(time.RFC3339),
		}
	}
	return successResult(out)
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, any, error) {
	if s.metricsCalc == nil {
		return failureResult(errors.New("metrics calculator not available (observability may be disabled)")), nil, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}
	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return failureResult(fmt.Errorf("parsing since duration: %w", err)), nil, nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return failureResult(fmt.Errorf("calculating metrics: %w", err)), nil, nil
	}
	return successResult(metrics)
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, any, error) {
	if s.alertEngine == nil {
		return failureResult(errors.New("alert engine not available (observability may be disabled)")), nil, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return failureResult(fmt.Errorf("evaluating alerts: %w", err)), nil, nil
	}
	if alerts == nil {
		alerts = []observability.Alert{}
	}
	return successResult(getAlertsOutput{Alerts: alerts, Count: len(alerts)})
}

// --- Argument decoding ---

// decodeArgs unmarshals raw tool arguments into v. Type mismatches become a
// *core.ValidationError naming the field.
func decodeArgs(raw json.RawMessage, v any) error {
	if isNull(raw) {
		return nil
	}
	err := json.Unmarshal(raw, v)
	if err == nil {
		return nil
	}

	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	var terr *json.UnmarshalTypeError
	if errors.As(err, &terr) {
		field := terr.Field
		if field == "" {
			field = "arguments"
		}
		return &core.ValidationError{Field: field, Reason: fmt.Sprintf("must be %s, got %s", kindOf(terr.Type), terr.Value)}
	}
	return &core.ValidationError{Field: "arguments", Reason: "must be a JSON object"}
}

// checkedField decodes fields[name]. Absent and null fields yield nil; a value
// of the wrong type yields rejected.
func checkedField[T any](fields map[string]json.RawMessage, name string, rejected T) *T {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return &rejected
	}
	return &v
}

// uncheckedBool decodes fields[name], treating a mistyped value as absent.
func uncheckedBool(fields map[string]json.RawMessage, name string) *bool {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// optionalField decodes fields[name] into dst, leaving dst untouched when the
// field is absent or null.
func optionalField[T any](fields map[string]json.RawMessage, name string, dst *T) error {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return &core.ValidationError{Field: name, Reason: "must be " + kindOf(reflect.TypeFor[T]())}
	}
	*dst = v
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// kindOf names the JSON type expected for t.
func kindOf(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}

// --- Helpers ---

func toQuantumThoughts(in []quantumThoughtInput) []models.QuantumThought {
	out := make([]models.QuantumThought, len(in))
	for i, t := range in {
		connections := t.Connections
		if connections == nil {
			connections = []string{}
		}
		out[i] = models.QuantumThought{
			ID:                    t.ID,
			Content:               t.Content,
			Confidence:            t.Confidence,
			ThreadID:              t.Thread,
			Connections:           connections,
			BreakthroughPotential: t.BreakthroughPotential,
			OptimizationScore:     t.OptimizationScore,
		}
	}
	return out
}

// successResult renders v as indented JSON text.
func successResult(v any) (*gomcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return failureResult(fmt.Errorf("encoding result: %w", err)), nil, nil
	}
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: string(data)}},
	}, nil, nil
}

// failureResult converts err into the {"error", "status":"failed"} envelope.
func failureResult(err error) *gomcp.CallToolResult {
	data, _ := json.MarshalIndent(failureEnvelope{Error: err.Error(), Status: "failed"}, "", "  ")
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: string(data)}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
