package core

import (
	"sort"
	"strconv"

	"github.com/valter-silva-au/seqthink/pkg/models"
)

// CrossConnection tags a thought with the thread that produced it.
type CrossConnection struct {
	Thread  int    `json:"thread"`
	Thought string `json:"thought"`
}

// ClusterInsight summarises one thought cluster.
type ClusterInsight struct {
	Cluster    string `json:"cluster"`
	Insights   int    `json:"insights"`
	TopInsight string `json:"top_insight"`
}

// FusionAnalysisResult is the output of FusionAnalysis.
type FusionAnalysisResult struct {
	ThoughtClusters     map[string][]models.QuantumThought `json:"thought_clusters"`
	CrossConnections    []CrossConnection                  `json:"cross_connections"`
	SynthesizedInsights []ClusterInsight                   `json:"synthesized_insights"`
	FusionScore         float64                            `json:"fusion_score"`
	EmergentProperties  []string                           `json:"emergent_properties"`
}

// FusionAnalysis groups thoughts by their thread id, lists every thought
// against its owning thread, and summarises each group.
func FusionAnalysis(threads []models.ReasoningThread) FusionAnalysisResult {
	clusters := make(map[int][]models.QuantumThought)
	connections := []CrossConnection{}
	for _, t := range threads {
		for _, th := range t.Thoughts {
			clusters[th.ThreadID] = append(clusters[th.ThreadID], th)
			connections = append(connections, CrossConnection{Thread: t.ID, Thought: th.Content})
		}
	}

	keys := make([]int, 0, len(clusters))
	for k := range clusters {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	byName := make(map[string][]models.QuantumThought, len(clusters))
	synthesis := make([]ClusterInsight, 0, len(keys))
	for _, k := range keys {
		name := strconv.Itoa(k)
		byName[name] = clusters[k]
		synthesis = append(synthesis, ClusterInsight{
			Cluster:    name,
			Insights:   len(clusters[k]),
			TopInsight: clusters[k][0].Content,
		})
	}

	emergent := []string{}
	if len(synthesis) > 2 {
		emergent = []string{"Cross-thread synergy detected", "Pattern emergence identified"}
	}

	return FusionAnalysisResult{
		ThoughtClusters:     byName,
		CrossConnections:    connections,
		SynthesizedInsights: synthesis,
		FusionScore:         min(1.0, float64(len(synthesis))*0.2),
		EmergentProperties:  emergent,
	}
}
