package core

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/valter-silva-au/seqthink/pkg/models"
)

// breakthroughThreshold is the potential a fused insight must exceed to be
// reported as a breakthrough.
const breakthroughThreshold = 0.85

// QuantumEngine synthesises per-strategy reasoning threads and scores them.
// Threads are computed one after another; nothing here runs concurrently.
type QuantumEngine struct {
	newID func() string
}

// NewQuantumEngine returns an engine that tags thoughts with random ids.
func NewQuantumEngine() *QuantumEngine {
	return &QuantumEngine{newID: func() string { return uuid.NewString()[:8] }}
}

// strategyTemplate holds the fixed text and constants of one strategy.
type strategyTemplate struct {
	prefix       string
	label        string
	angle        string
	confidence   float64
	breakthrough float64
	optimization float64
}

func templateFor(s models.Strategy) (strategyTemplate, bool) {
	switch s {
	case models.StrategyAggressive:
		return strategyTemplate{"agg", "AGGRESSIVE", "Push boundaries, take calculated risks, move fast", 0.8, 0.9, 0.85}, true
	case models.StrategyCreative:
		return strategyTemplate{"cre", "CREATIVE", "Think outside the box, unconventional solutions, innovation focus", 0.75, 0.95, 0.8}, true
	case models.StrategyAnalytical:
		return strategyTemplate{"ana", "ANALYTICAL", "Data-driven, systematic analysis, logical progression", 0.9, 0.7, 0.9}, true
	case models.StrategyIntuitive:
		return strategyTemplate{"int", "INTUITIVE", "Pattern recognition, gut instincts, holistic understanding", 0.7, 0.85, 0.75}, true
	case models.StrategyConservative:
		return strategyTemplate{"con", "CONSERVATIVE", "Risk mitigation, proven methods, stable solutions", 0.85, 0.6, 0.8}, true
	}
	return strategyTemplate{}, false
}

// FusionResult holds the top insights merged across threads.
type FusionResult struct {
	FusedInsights     []models.QuantumThought `json:"fused_insights"`
	FusionConfidence  float64                 `json:"fusion_confidence"`
	BreakthroughScore float64                 `json:"breakthrough_score"`
}

// Breakthrough is a fused insight whose potential clears the threshold.
type Breakthrough struct {
	Thought    string  `json:"thought"`
	Potential  float64 `json:"potential"`
	Confidence float64 `json:"confidence"`
}

// OptimizationTarget names the weakest thread.
type OptimizationTarget struct {
	Strategy    models.Strategy `json:"strategy"`
	Performance float64         `json:"performance"`
	Message     string          `json:"message"`
}

// ParallelReasoningResult is everything RunParallelReasoning computes.
type ParallelReasoningResult struct {
	Threads          []models.ReasoningThread `json:"threads"`
	Fusion           FusionResult             `json:"quantum_fusion"`
	Breakthroughs    []Breakthrough           `json:"breakthroughs"`
	SuperhumanScore  float64                  `json:"superhuman_score"`
	NextOptimization OptimizationTarget       `json:"next_optimization"`
}

// RunParallelReasoning builds one thread per strategy (the default set when
// strategies is empty), then fuses and scores them.
func (e *QuantumEngine) RunParallelReasoning(problem string, strategies []models.Strategy) ParallelReasoningResult {
	if len(strategies) == 0 {
		strategies = models.DefaultStrategies
	}
	threads := make([]models.ReasoningThread, len(strategies))
	for i, s := range strategies {
		threads[i] = models.ReasoningThread{
			ID:       i,
			Strategy: s,
			Thoughts: e.strategyThoughts(problem, s, i),
		}
		threads[i].Performance = ThreadPerformance(threads[i].Thoughts)
	}

	fusion := Fuse(threads)
	return ParallelReasoningResult{
		Threads:          threads,
		Fusion:           fusion,
		Breakthroughs:    DetectBreakthroughs(fusion),
		SuperhumanScore:  SuperhumanScore(threads),
		NextOptimization: NextOptimization(threads),
	}
}

// strategyThoughts returns the single templated thought for s, or nothing
// when the strategy is unknown.
func (e *QuantumEngine) strategyThoughts(problem string, s models.Strategy, threadID int) []models.QuantumThought {
	tmpl, ok := templateFor(s)
	if !ok {
		return []models.QuantumThought{}
	}
	return []models.QuantumThought{{
		ID:                    tmpl.prefix + "_" + e.newID(),
		Content:               fmt.Sprintf("%s APPROACH: %s - %s", tmpl.label, problem, tmpl.angle),
		Confidence:            tmpl.confidence,
		ThreadID:              threadID,
		Connections:           []string{},
		BreakthroughPotential: tmpl.breakthrough,
		OptimizationScore:     tmpl.optimization,
	}}
}

// ThreadPerformance is the mean of confidence × optimisation score, or 0 for
// an empty thread.
func ThreadPerformance(thoughts []models.QuantumThought) float64 {
	if len(thoughts) == 0 {
		return 0
	}
	var sum float64
	for _, t := range thoughts {
		sum += t.Confidence * t.OptimizationScore
	}
	return sum / float64(len(thoughts))
}

// Fuse keeps the three thoughts with the highest confidence × breakthrough
// potential across all threads.
func Fuse(threads []models.ReasoningThread) FusionResult {
	var all []models.QuantumThought
	for _, t := range threads {
		all = append(all, t.Thoughts...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence*all[i].BreakthroughPotential > all[j].Confidence*all[j].BreakthroughPotential
	})
	if len(all) > 3 {
		all = all[:3]
	}

	res := FusionResult{FusedInsights: all}
	if len(all) == 0 {
		res.FusedInsights = []models.QuantumThought{}
		return res
	}
	var conf float64
	res.BreakthroughScore = all[0].BreakthroughPotential
	for _, t := range all {
		conf += t.Confidence
		if t.BreakthroughPotential > res.BreakthroughScore {
			res.BreakthroughScore = t.BreakthroughPotential
		}
	}
	res.FusionConfidence = conf / float64(len(all))
	return res
}

// DetectBreakthroughs reports fused insights with potential above 0.85.
func DetectBreakthroughs(fused FusionResult) []Breakthrough {
	out := []Breakthrough{}
	for _, t := range fused.FusedInsights {
		if t.BreakthroughPotential > breakthroughThreshold {
			out = append(out, Breakthrough{
				Thought:    t.Content,
				Potential:  t.BreakthroughPotential,
				Confidence: t.Confidence,
			})
		}
	}
	return out
}

// SuperhumanScore combines mean thread performance with a diversity bonus of
// 0.1 per thread and a 0.2 bonus when any thought exceeds 0.9 potential,
// capped at 1.
func SuperhumanScore(threads []models.ReasoningThread) float64 {
	if len(threads) == 0 {
		return 0
	}
	var perf float64
	bonus := 0.0
	for _, t := range threads {
		perf += t.Performance
		for _, th := range t.Thoughts {
			if th.BreakthroughPotential > 0.9 {
				bonus = 0.2
			}
		}
	}
	score := perf/float64(len(threads)) + 0.1*float64(len(threads)) + bonus
	return min(1.0, score)
}

// NextOptimization picks the thread with the lowest performance; the first
// one wins ties. threads is not reordered.
func NextOptimization(threads []models.ReasoningThread) OptimizationTarget {
	if len(threads) == 0 {
		return OptimizationTarget{Message: "No threads to optimize"}
	}
	worst := threads[0]
	for _, t := range threads[1:] {
		if t.Performance < worst.Performance {
			worst = t
		}
	}
	return OptimizationTarget{
		Strategy:    worst.Strategy,
		Performance: worst.Performance,
		Message:     fmt.Sprintf("Optimize %s thread - current performance: %.2f", worst.Strategy, worst.Performance),
	}
}
