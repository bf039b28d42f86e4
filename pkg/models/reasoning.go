package models

// Strategy names one synthetic line of reasoning.
type Strategy string

const (
	StrategyAggressive   Strategy = "aggressive"
	StrategyConservative Strategy = "conservative"
	StrategyCreative     Strategy = "creative"
	StrategyAnalytical   Strategy = "analytical"
	StrategyIntuitive    Strategy = "intuitive"
)

// DefaultStrategies is the strategy set used when a caller names none.
var DefaultStrategies = []Strategy{
	StrategyAggressive,
	StrategyCreative,
	StrategyAnalytical,
	StrategyIntuitive,
	StrategyConservative,
}

// QuantumThought is a generated thought inside a reasoning thread.
type QuantumThought struct {
	ID                    string   `json:"id"`
	Content               string   `json:"content"`
	Confidence            float64  `json:"confidence"`
	ThreadID              int      `json:"thread"`
	Connections           []string `json:"connections"`
	BreakthroughPotential float64  `json:"breakthrough_potential"`
	OptimizationScore     float64  `json:"optimization_score"`
}

// ReasoningThread is one strategy's line of generated thoughts.
type ReasoningThread struct {
	ID          int              `json:"id"`
	Strategy    Strategy         `json:"strategy"`
	Thoughts    []QuantumThought `json:"thoughts"`
	Performance float64          `json:"performance"`
}

// CoachSuggestionType classifies an advisory suggestion.
type CoachSuggestionType string

const (
	SuggestOptimization CoachSuggestionType = "optimization"
	SuggestBreakthrough CoachSuggestionType = "breakthrough"
	SuggestPivot        CoachSuggestionType = "pivot"
	SuggestMerge        CoachSuggestionType = "merge"
	SuggestExplore      CoachSuggestionType = "explore"
)

// CoachSuggestion is one advisory produced by the reasoning coach.
type CoachSuggestion struct {
	Type       CoachSuggestionType `json:"type"`
	Message    string              `json:"message"`
	Confidence float64             `json:"confidence"`
	Impact     float64             `json:"impact"`
}
