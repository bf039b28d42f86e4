package core

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Solution is one candidate in a solution plan. Effort, impact and risk are
// expected to be low, medium or high; other values score as medium.
type Solution struct {
	Title       string   `json:"title,omitempty" validate:"required"`
	Description string   `json:"description,omitempty" validate:"required"`
	Pros        []string `json:"pros,omitempty"`
	Cons        []string `json:"cons,omitempty"`
	Effort      string   `json:"effort,omitempty" validate:"required"`
	Impact      string   `json:"impact,omitempty" validate:"required"`
	Risk        string   `json:"risk,omitempty" validate:"required"`
}

// SolutionPlanRequest is the input to PlanSolution.
type SolutionPlanRequest struct {
	Problem   string     `json:"problem" validate:"required"`
	Solutions []Solution `json:"solutions" validate:"required,min=1,dive"`
	NextSteps []string   `json:"nextSteps,omitempty"`
}

// ScoredSolution pairs a solution with its 0-10 score.
type ScoredSolution struct {
	Solution
	Score int `json:"score"`
}

var (
	effortScale = map[string]int{"low": 3, "medium": 2, "high": 1}
	impactScale = map[string]int{"low": 1, "medium": 2, "high": 3}
	riskScale   = map[string]int{"low": 3, "medium": 2, "high": 1}
)

func scaleValue(scale map[string]int, level string) int {
	if v, ok := scale[level]; ok {
		return v
	}
	return 2
}

// ScoreSolution maps effort, impact and risk onto three-point scales and
// rescales their sum to an integer in [3, 10].
func ScoreSolution(sol Solution) int {
	sum := scaleValue(effortScale, sol.Effort) +
		scaleValue(impactScale, sol.Impact) +
		scaleValue(riskScale, sol.Risk)
	return int(math.Round(float64(sum) * 10 / 9))
}

// RankSolutions scores every solution and orders them by score descending.
// Equal scores keep their input order.
func RankSolutions(solutions []Solution) []ScoredSolution {
	ranked := make([]ScoredSolution, len(solutions))
	for i, sol := range solutions {
		ranked[i] = ScoredSolution{Solution: sol, Score: ScoreSolution(sol)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// RecommendSolution returns the highest scoring solution, preferring the
// earliest on ties. ok is false for an empty list.
func RecommendSolution(solutions []Solution) (best ScoredSolution, ok bool) {
	ranked := RankSolutions(solutions)
	if len(ranked) == 0 {
		return ScoredSolution{}, false
	}
	return ranked[0], true
}

// SolutionAnalysis renders one score line per solution in input order.
func SolutionAnalysis(solutions []Solution) string {
	lines := make([]string, len(solutions))
	for i, sol := range solutions {
		lines[i] = fmt.Sprintf("%s: Score %d/10 (Effort: %s, Impact: %s, Risk: %s)",
			sol.Title, ScoreSolution(sol), sol.Effort, sol.Impact, sol.Risk)
	}
	return "Solution Analysis:\n" + strings.Join(lines, "\n")
}

// Option is one alternative in a multi-criteria evaluation. Criteria maps a
// criterion name to this option's value for it.
type Option struct {
	Name        string             `json:"name,omitempty" validate:"required"`
	Description string             `json:"description,omitempty"`
	Criteria    map[string]float64 `json:"criteria,omitempty" validate:"required"`
}

// Criterion is a named, weighted evaluation axis.
type Criterion struct {
	Name        string  `json:"name,omitempty" validate:"required"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description,omitempty"`
}

// OptionEvaluationRequest is the input to EvaluateOptions.
type OptionEvaluationRequest struct {
	Options  []Option    `json:"options" validate:"required,min=1,dive"`
	Criteria []Criterion `json:"criteria" validate:"dive"`
	Persist  bool        `json:"persist,omitempty"`
}

// RankedOption pairs an option with its weighted score.
type RankedOption struct {
	Option
	Score float64 `json:"score"`
}

// ScoreOptions computes the weighted average of each option's criterion
// values. Missing values count as 0; a non-positive total weight scores 0.
func ScoreOptions(options []Option, criteria []Criterion) map[string]float64 {
	scores := make(map[string]float64, len(options))
	for _, opt := range options {
		scores[opt.Name] = weightedScore(opt, criteria)
	}
	return scores
}

func weightedScore(opt Option, criteria []Criterion) float64 {
	var total, weights float64
	for _, c := range criteria {
		total += opt.Criteria[c.Name] * c.Weight
		weights += c.Weight
	}
	if weights <= 0 {
		return 0
	}
	return total / weights
}

// RankOptions orders options by weighted score descending. Equal scores keep
// their input order; the first entry is the recommendation.
func RankOptions(options []Option, criteria []Criterion) []RankedOption {
	ranked := make([]RankedOption, len(options))
	for i, opt := range options {
		ranked[i] = RankedOption{Option: opt, Score: weightedScore(opt, criteria)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// EvaluationAnalysis summarises the winning option and the criteria used.
func EvaluationAnalysis(ranking []RankedOption, criteria []Criterion) string {
	if len(ranking) == 0 {
		return "No options evaluated"
	}
	winner := ranking[0]
	parts := make([]string, len(criteria))
	for i, c := range criteria {
		parts[i] = fmt.Sprintf("%s (weight: %s)", c.Name, formatWeight(c.Weight))
	}
	return fmt.Sprintf("Top choice: %s with score %.2f\nEvaluation criteria: %s\nKey differentiators: %s",
		winner.Name, winner.Score, strings.Join(parts, ", "), orPlaceholder(winner.Description, "Not provided"))
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
