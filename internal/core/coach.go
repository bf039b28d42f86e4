package core

import (
	"sort"

	"github.com/valter-silva-au/seqthink/pkg/models"
)

// thoughtPatterns are the coarse signals the coach reacts to.
type thoughtPatterns struct {
	repetitive            float64
	breakthroughPotential float64
	connectionDensity     float64
}

// analyzeThoughtPatterns is a stub policy: repetition is a flat 0.3 for more
// than one thought and is never inspected further.
func analyzeThoughtPatterns(thoughts []models.QuantumThought) thoughtPatterns {
	p := thoughtPatterns{}
	if len(thoughts) > 1 {
		p.repetitive = 0.3
	}
	var links int
	for i, t := range thoughts {
		if i == 0 || t.BreakthroughPotential > p.breakthroughPotential {
			p.breakthroughPotential = t.BreakthroughPotential
		}
		links += len(t.Connections)
	}
	p.connectionDensity = float64(links) / float64(len(thoughts))
	return p
}

// AICoach returns advisory suggestions for thoughts, strongest first
// (confidence × impact). An empty input yields no suggestions.
func AICoach(thoughts []models.QuantumThought) []models.CoachSuggestion {
	suggestions := []models.CoachSuggestion{}
	if len(thoughts) == 0 {
		return suggestions
	}
	p := analyzeThoughtPatterns(thoughts)

	if p.repetitive > 0.7 {
		suggestions = append(suggestions, models.CoachSuggestion{
			Type:       models.SuggestPivot,
			Message:    "Detected repetitive thinking. Try exploring from a completely different angle.",
			Confidence: 0.9,
			Impact:     0.8,
		})
	}
	if p.breakthroughPotential > 0.8 {
		suggestions = append(suggestions, models.CoachSuggestion{
			Type:       models.SuggestBreakthrough,
			Message:    "High breakthrough potential detected. Push deeper on this line of thinking.",
			Confidence: 0.95,
			Impact:     0.95,
		})
	}
	if p.connectionDensity < 0.3 {
		suggestions = append(suggestions, models.CoachSuggestion{
			Type:       models.SuggestMerge,
			Message:    "Low connection density. Look for hidden relationships between your thoughts.",
			Confidence: 0.85,
			Impact:     0.7,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence*suggestions[i].Impact > suggestions[j].Confidence*suggestions[j].Impact
	})
	return suggestions
}
