package core

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/valter-silva-au/seqthink/pkg/models"
)

var (
	thoughtBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	revisionHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	branchHeader   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	thoughtHeader  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
)

// ThoughtHeader returns the plain header line for rec: "Revision", "Branch"
// or "Thought", its position and any revision/branch context.
func ThoughtHeader(rec models.ThoughtRecord) string {
	switch {
	case rec.Revision():
		revises := "?"
		if rec.RevisesIndex != nil {
			revises = fmt.Sprintf("%d", *rec.RevisesIndex)
		}
		return fmt.Sprintf("Revision %d/%d (revising thought %s)", rec.Index, rec.TotalEstimate, revises)
	case rec.BranchOriginIndex != nil:
		return fmt.Sprintf("Branch %d/%d (from thought %d, ID: %s)", rec.Index, rec.TotalEstimate, *rec.BranchOriginIndex, rec.BranchID)
	default:
		return fmt.Sprintf("Thought %d/%d", rec.Index, rec.TotalEstimate)
	}
}

// RenderThought draws rec as a bordered box for the diagnostic stream.
func RenderThought(rec models.ThoughtRecord) string {
	style := thoughtHeader
	switch {
	case rec.Revision():
		style = revisionHeader
	case rec.BranchOriginIndex != nil:
		style = branchHeader
	}
	header := style.Render(ThoughtHeader(rec))
	return thoughtBox.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", rec.Text))
}
