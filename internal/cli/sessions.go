package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/seqthink/internal/core"
	"github.com/valter-silva-au/seqthink/pkg/models"
)

var (
	sessionsStatusFilter string
	sessionsJSON         bool
	sessionsExportFormat string
	sessionsExportOutput string
	sessionsSaveTitle    string
	sessionsSaveNotes    string
	sessionsSaveStatus   string
)

var tableHeaderStyle = lipgloss.NewStyle().Bold(true)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect and manage analysis sessions",
	Long:  `Commands for listing, viewing, exporting and updating the analysis sessions kept in the sessions directory.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List analysis sessions, most recently updated first",
	Long: `List all analysis sessions known to the session store.

Optionally filter to a single status using --status (active, completed, paused).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ThinkingSvc == nil {
			return fmt.Errorf("thinking service not initialized")
		}

		var sessions []models.AnalysisSession
		for _, s := range ThinkingSvc.ListSessions() {
			if sessionsStatusFilter != "" && string(s.Status) != sessionsStatusFilter {
				continue
			}
			sessions = append(sessions, s)
		}

		out := cmd.OutOrStdout()
		if sessionsJSON {
			if sessions == nil {
				sessions = []models.AnalysisSession{}
			}
			data, err := json.MarshalIndent(sessions, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting sessions as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}

		header := fmt.Sprintf("  %-36s %-18s %-10s %-8s %-17s %s", "ID", "TYPE", "STATUS", "THOUGHTS", "UPDATED", "TITLE")
		fmt.Fprintln(out, tableHeaderStyle.Render(header))
		for _, s := range sessions {
			fmt.Fprintf(out, "  %-36s %-18s %-10s %-8d %-17s %s\n",
				s.ID, s.Kind, s.Status, len(s.Thoughts), s.UpdatedAt.Format("2006-01-02 15:04"), s.Title)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session and its thoughts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ThinkingSvc == nil {
			return fmt.Errorf("thinking service not initialized")
		}
		session, err := ThinkingSvc.GetSession(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, tableHeaderStyle.Render(session.Title))
		fmt.Fprintf(out, "  %-10s %s\n", "ID:", session.ID)
		fmt.Fprintf(out, "  %-10s %s\n", "Type:", session.Kind)
		fmt.Fprintf(out, "  %-10s %s\n", "Status:", session.Status)
		fmt.Fprintf(out, "  %-10s %s\n", "Created:", session.CreatedAt.Format("2006-01-02 15:04 UTC"))
		fmt.Fprintf(out, "  %-10s %s\n", "Updated:", session.UpdatedAt.Format("2006-01-02 15:04 UTC"))
		if notes, ok := session.Metadata["notes"].(string); ok && notes != "" {
			fmt.Fprintf(out, "  %-10s %s\n", "Notes:", notes)
		}

		if len(session.Thoughts) == 0 {
			fmt.Fprintln(out, "\nNo thoughts recorded.")
			return nil
		}
		fmt.Fprintln(out)
		for _, t := range session.Thoughts {
			fmt.Fprintln(out, core.RenderThought(t))
		}
		return nil
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session as json, markdown or summary",
	Long: `Render a session in the requested format and print it, or write it to a
file with --output. Unrecognised formats fall back to json.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ThinkingSvc == nil {
			return fmt.Errorf("thinking service not initialized")
		}
		res, err := ThinkingSvc.ExportAnalysis(args[0], core.ExportFormat(strings.ToLower(sessionsExportFormat)))
		if err != nil {
			return err
		}

		if sessionsExportOutput == "" {
			fmt.Fprintln(cmd.OutOrStdout(), res.Content)
			return nil
		}
		if err := os.WriteFile(sessionsExportOutput, []byte(res.Content+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing export to %s: %w", sessionsExportOutput, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported session %s to %s\n", res.SessionID, sessionsExportOutput)
		return nil
	},
}

var sessionsSaveCmd = &cobra.Command{
	Use:   "save <session-id>",
	Short: "Update a session's title, notes or status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ThinkingSvc == nil {
			return fmt.Errorf("thinking service not initialized")
		}
		res, err := ThinkingSvc.SaveSession(core.SaveSessionRequest{
			SessionID: args[0],
			Title:     sessionsSaveTitle,
			Notes:     sessionsSaveNotes,
			Status:    models.SessionStatus(sessionsSaveStatus),
		})
		if err != nil {
			return err
		}
		if !res.Saved {
			return fmt.Errorf("session %s not found", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved session %s\n", res.SessionID)
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().StringVar(&sessionsStatusFilter, "status", "", "Filter by status (active, completed, paused)")
	sessionsListCmd.Flags().BoolVar(&sessionsJSON, "json", false, "Output sessions as JSON")

	sessionsExportCmd.Flags().StringVar(&sessionsExportFormat, "format", "markdown", "Export format (json, markdown, summary)")
	sessionsExportCmd.Flags().StringVarP(&sessionsExportOutput, "output", "o", "", "Write the export to this file instead of stdout")

	sessionsSaveCmd.Flags().StringVar(&sessionsSaveTitle, "title", "", "New session title")
	sessionsSaveCmd.Flags().StringVar(&sessionsSaveNotes, "notes", "", "Notes to attach to the session")
	sessionsSaveCmd.Flags().StringVar(&sessionsSaveStatus, "status", "", "New status (active, completed, paused)")

	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsExportCmd, sessionsSaveCmd)
	rootCmd.AddCommand(sessionsCmd)
}
