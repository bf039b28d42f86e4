package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/seqthink/pkg/models"
)

// ExportFormat selects a session rendering.
type ExportFormat string

const (
	ExportJSON     ExportFormat = "json"
	ExportMarkdown ExportFormat = "markdown"
	ExportSummary  ExportFormat = "summary"
)

// RenderSession renders session in format. Unrecognised formats fall back to
// JSON. Rendering is a pure function of the session.
func RenderSession(session *models.AnalysisSession, format ExportFormat) (string, error) {
	switch format {
	case ExportMarkdown:
		return renderMarkdown(session)
	case ExportSummary:
		return renderSummary(session), nil
	default:
		data, err := json.MarshalIndent(session, "", "  ")
		if err != nil {
			return "", fmt.Errorf("rendering session %s as json: %w", session.ID, err)
		}
		return string(data), nil
	}
}

func renderMarkdown(session *models.AnalysisSession) (string, error) {
	meta := "{}"
	if len(session.Metadata) > 0 {
		data, err := json.MarshalIndent(session.Metadata, "", "  ")
		if err != nil {
			return "", fmt.Errorf("rendering session %s metadata: %w", session.ID, err)
		}
		meta = string(data)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", session.Title)
	fmt.Fprintf(&b, "**Created:** %s\n", session.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "**Type:** %s\n", session.Kind)
	fmt.Fprintf(&b, "**Status:** %s\n\n", session.Status)
	fmt.Fprintf(&b, "## Analysis\n\n%s\n\n", meta)
	b.WriteString("## Thoughts\n\n")

	sections := make([]string, len(session.Thoughts))
	for i, t := range session.Thoughts {
		sections[i] = fmt.Sprintf("### Thought %d\n%s", t.Index, t.Text)
	}
	b.WriteString(strings.Join(sections, "\n\n"))
	return b.String(), nil
}

func renderSummary(session *models.AnalysisSession) string {
	return fmt.Sprintf("Summary: %s\nCompleted: %s\nKey insights: %d thoughts captured\nRecommendations: See detailed analysis",
		session.Title, session.UpdatedAt.UTC().Format(time.RFC3339), len(session.Thoughts))
}
