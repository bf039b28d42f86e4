package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/seqthink/internal/observability"
)

var (
	eventsType    string
	eventsSession string
	eventsLevel   string
	eventsSince   string
	eventsLimit   int
	eventsJSON    bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent entries from the event log",
	Long: `List recent reasoning events (thoughts, revisions, saves, exports,
persistence failures) from the event log, newest last.

Filter by event type, session id or level. --limit keeps only the most
recent N matches.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized (enable events in %s)", configHint())
		}

		since, err := parseSinceDuration(eventsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		events, err := EventLog.Read(observability.EventFilter{
			Since:     &since,
			Type:      eventsType,
			Level:     strings.ToUpper(eventsLevel),
			SessionID: eventsSession,
		})
		if err != nil {
			return fmt.Errorf("reading event log: %w", err)
		}
		if eventsLimit > 0 && len(events) > eventsLimit {
			events = events[len(events)-eventsLimit:]
		}

		out := cmd.OutOrStdout()
		if eventsJSON {
			data, err := json.MarshalIndent(events, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting events as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(events) == 0 {
			fmt.Fprintln(out, "No events found.")
			return nil
		}
		for _, ev := range events {
			line := fmt.Sprintf("%s %-5s %-22s %s",
				ev.Time.UTC().Format(time.RFC3339), ev.Level, ev.Type, ev.Message)
			if id := ev.SessionID(); id != "" && eventsSession == "" {
				line += " [" + id + "]"
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

// configHint names the config file the user should edit.
func configHint() string {
	if BasePath == "" {
		return ".thinkconfig"
	}
	return filepath.Join(BasePath, ".thinkconfig")
}

func init() {
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "Only show events of this type (e.g. thought.submitted)")
	eventsCmd.Flags().StringVar(&eventsSession, "session", "", "Only show events for this session id")
	eventsCmd.Flags().StringVar(&eventsLevel, "level", "", "Only show events at this level (INFO, WARN, ERROR)")
	eventsCmd.Flags().StringVar(&eventsSince, "since", "7d", "Time window (e.g. 7d, 24h)")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 50, "Show at most this many recent events (0 for all)")
	eventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "Output events as JSON")
	rootCmd.AddCommand(eventsCmd)
}
