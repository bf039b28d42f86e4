package core

import (
	"fmt"
	"strings"
)

// Framework is a named, ordered analysis procedure.
type Framework struct {
	Key       string
	Name      string
	Steps     []string
	NextSteps []string
}

// frameworkCatalogue holds the built-in frameworks keyed by selector name.
var frameworkCatalogue = map[string]Framework{
	"swot": {
		Key:       "swot",
		Name:      "SWOT Analysis",
		Steps:     []string{"Strengths", "Weaknesses", "Opportunities", "Threats"},
		NextSteps: []string{"Leverage strengths", "Address weaknesses", "Capitalize on opportunities", "Mitigate threats"},
	},
	"root-cause": {
		Key:       "root-cause",
		Name:      "5-Why Root Cause Analysis",
		Steps:     []string{"Problem definition", "Why 1", "Why 2", "Why 3", "Why 4", "Why 5", "Root cause"},
		NextSteps: []string{"Address root cause", "Implement preventive measures", "Monitor results"},
	},
	"design-thinking": {
		Key:       "design-thinking",
		Name:      "Design Thinking Process",
		Steps:     []string{"Empathize", "Define", "Ideate", "Prototype", "Test"},
		NextSteps: []string{"User research", "Problem framing", "Solution brainstorming", "Rapid prototyping", "User testing"},
	},
	"systems": {
		Key:       "systems",
		Name:      "Systems Thinking",
		Steps:     []string{"System boundaries", "Stakeholders", "Relationships", "Feedback loops", "Leverage points"},
		NextSteps: []string{"Map system dynamics", "Identify intervention points", "Design system changes"},
	},
}

// LookupFramework returns the framework registered under name, falling back
// to SWOT for unknown names (including "custom").
func LookupFramework(name string) Framework {
	if fw, ok := frameworkCatalogue[name]; ok {
		return fw
	}
	return frameworkCatalogue["swot"]
}

// ProblemAnalysisRequest is the input to AnalyzeProblem.
type ProblemAnalysisRequest struct {
	Problem      string   `json:"problem" validate:"required"`
	Framework    string   `json:"framework" validate:"required"`
	Context      string   `json:"context,omitempty"`
	Stakeholders []string `json:"stakeholders,omitempty"`
	Constraints  []string `json:"constraints,omitempty"`
	Objectives   []string `json:"objectives,omitempty"`
}

// ApplyFramework renders the analysis narrative for req under fw. Absent
// optional fields appear as explicit placeholders.
func ApplyFramework(req ProblemAnalysisRequest, fw Framework) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Applied %s to analyze: %s\n\n", fw.Name, req.Problem)
	fmt.Fprintf(&b, "Framework steps: %s\n\n", strings.Join(fw.Steps, " → "))
	fmt.Fprintf(&b, "Context: %s\n", orPlaceholder(req.Context, "Not provided"))
	fmt.Fprintf(&b, "Stakeholders: %s\n", joinOrPlaceholder(req.Stakeholders, "Not specified"))
	fmt.Fprintf(&b, "Constraints: %s\n", joinOrPlaceholder(req.Constraints, "None specified"))
	fmt.Fprintf(&b, "Objectives: %s", joinOrPlaceholder(req.Objectives, "Not specified"))
	return b.String()
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func joinOrPlaceholder(items []string, placeholder string) string {
	if len(items) == 0 {
		return placeholder
	}
	return strings.Join(items, ", ")
}
