package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "seqthink",
	Short: "Sequential thinking - a reasoning ledger served over MCP",
	Long: `seqthink records chains of reasoning steps with revisions and branches,
keeps analysis sessions on disk, and serves scoring and reasoning tools to
AI assistants over the Model Context Protocol.

Use "seqthink mcp serve" to start the server, and the sessions, metrics,
alerts and dashboard commands to inspect what it has recorded.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "seqthink %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
