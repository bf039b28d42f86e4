package core

// The analyze* functions below are stub policies: they return fixed values
// and never inspect their argument.

func analyzeComplexity(any) float64 { return 0.7 }
func analyzeFeasibility(any) float64 { return 0.8 }
func analyzeImpact(any) float64 { return 0.9 }
func analyzeRisk(any) float64 { return 0.3 }
func analyzeInnovation(any) float64 { return 0.85 }

// OutcomeFactors are the per-solution inputs to the success estimate.
type OutcomeFactors struct {
	Complexity  float64 `json:"complexity"`
	Feasibility float64 `json:"feasibility"`
	Impact      float64 `json:"impact"`
	Risk        float64 `json:"risk"`
	Innovation  float64 `json:"innovation"`
}

// OutcomePrediction is the forecast for a proposed solution.
type OutcomePrediction struct {
	Factors                   OutcomeFactors `json:"factors"`
	SuccessProbability        float64        `json:"success_probability"`
	FailureModes              []string       `json:"failure_modes"`
	OptimizationOpportunities []string       `json:"optimization_opportunities"`
	ImplementationScore       float64        `json:"implementation_score"`
	BreakthroughPotential     float64        `json:"breakthrough_potential"`
}

// PredictOutcome estimates the success of solution as
// clamp01((feasibility + impact - risk + innovation) / 4).
func PredictOutcome(solution any) OutcomePrediction {
	f := OutcomeFactors{
		Complexity:  analyzeComplexity(solution),
		Feasibility: analyzeFeasibility(solution),
		Impact:      analyzeImpact(solution),
		Risk:        analyzeRisk(solution),
		Innovation:  analyzeInnovation(solution),
	}
	success := (f.Feasibility + f.Impact - f.Risk + f.Innovation) / 4
	return OutcomePrediction{
		Factors:                   f,
		SuccessProbability:        max(0, min(1, success)),
		FailureModes:              []string{"Implementation complexity", "Resource constraints"},
		OptimizationOpportunities: []string{"Simplify approach", "Increase resources"},
		ImplementationScore:       f.Feasibility,
		BreakthroughPotential:     f.Innovation,
	}
}

// sessionPerformance is the stub assessment behind OptimizeThinking.
type sessionPerformance struct {
	efficiency  float64
	potential   float64
	bottlenecks []string
}

func analyzeSessionPerformance(any) sessionPerformance {
	return sessionPerformance{
		efficiency:  0.8,
		potential:   0.9,
		bottlenecks: []string{"Thread synchronization", "Insight fusion"},
	}
}

// ThinkingAdjustments are the recommendations of OptimizeThinking.
type ThinkingAdjustments struct {
	StrategyAdjustments []string `json:"strategy_adjustments"`
	FocusAreas          []string `json:"focus_areas"`
	EfficiencyBoosts    []string `json:"efficiency_boosts"`
	BreakthroughPaths   []string `json:"breakthrough_paths"`
}

// ThinkingOptimization is the output of OptimizeThinking.
type ThinkingOptimization struct {
	CurrentEfficiency      float64             `json:"current_efficiency"`
	OptimizationPotential  float64             `json:"optimization_potential"`
	Bottlenecks            []string            `json:"bottlenecks"`
	RecommendedAdjustments ThinkingAdjustments `json:"recommended_adjustments"`
	ExpectedImprovement    float64             `json:"expected_improvement"`
}

// OptimizeThinking returns fixed efficiency figures and recommendations for
// a reasoning session.
func OptimizeThinking(session any) ThinkingOptimization {
	perf := analyzeSessionPerformance(session)
	return ThinkingOptimization{
		CurrentEfficiency:     perf.efficiency,
		OptimizationPotential: perf.potential,
		Bottlenecks:           perf.bottlenecks,
		RecommendedAdjustments: ThinkingAdjustments{
			StrategyAdjustments: []string{"Increase creative thread weight", "Reduce conservative bias"},
			FocusAreas:          []string{"Breakthrough detection", "Cross-thread synthesis"},
			EfficiencyBoosts:    []string{"Parallel processing optimization", "Real-time fusion"},
			BreakthroughPaths:   []string{"Creative-analytical fusion", "Intuitive-aggressive hybrid"},
		},
		ExpectedImprovement: 0.25,
	}
}
