package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	thinkmcp "github.com/valter-silva-au/seqthink/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the seqthink MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the seqthink MCP server on stdio",
	Long: `Start the seqthink MCP server on stdio transport.

The server exposes the thought ledger and the analysis tools to AI assistants:
sequentialthinking, analyze_problem, plan_solution, evaluate_options,
save_session, export_analysis, quantum_reasoning, ai_coach, fusion_analysis,
predict_outcome, optimize_thinking, list_sessions, get_metrics, get_alerts.

Thought boxes are written to stderr when render.thoughts is enabled; stdout
carries only protocol traffic.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ThinkingSvc == nil {
			return fmt.Errorf("thinking service not initialized")
		}

		srv := thinkmcp.NewServer(ThinkingSvc, Engine, MetricsCalc, AlertEngine, ServerName, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
