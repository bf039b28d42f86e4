// Package internal provides the App struct that wires all components of the
// seqthink server together and initializes the CLI layer.
package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/seqthink/internal/cli"
	"github.com/valter-silva-au/seqthink/internal/core"
	"github.com/valter-silva-au/seqthink/internal/observability"
	"github.com/valter-silva-au/seqthink/internal/storage"
	"github.com/valter-silva-au/seqthink/pkg/models"
)

// configFileNames are the names ResolveBasePath looks for while walking up
// from the working directory.
var configFileNames = []string{".thinkconfig", ".thinkconfig.yaml", ".thinkconfig.yml"}

// App holds all service dependencies for the seqthink server.
type App struct {
	BasePath string
	Config   *models.GlobalConfig

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Storage layer
	SessionStore storage.SessionStoreManager

	// Core services
	Ledger      *core.ThoughtLedger
	ThinkingSvc core.ThinkingService
	Engine      *core.QuantumEngine

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of the seqthink server. basePath is
// the root directory holding .thinkconfig, the sessions directory and the
// event log.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	app.Config = cfg

	// --- Observability ---
	if cfg.EventsEnabled {
		app.EventLog, err = observability.NewJSONLEventLog(cfg.EventLogPath)
		if err != nil {
			// Non-fatal: run without observability if the log can't be opened.
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		thresholds := observability.DefaultAlertThresholds()
		if cfg.Alerts.MaxPersistFailures > 0 {
			thresholds.MaxPersistFailures = cfg.Alerts.MaxPersistFailures
		}
		if cfg.Alerts.StaleHours > 0 {
			thresholds.StaleHours = cfg.Alerts.StaleHours
		}
		if cfg.Alerts.MaxRevisions > 0 {
			thresholds.MaxRevisions = cfg.Alerts.MaxRevisions
		}
		app.AlertEngine = observability.NewAlertEngine(app.EventLog, thresholds)
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if cfg.SlackWebhook != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.SlackWebhook)
	}

	var evtAdapter core.EventLogger
	if app.EventLog != nil {
		evtAdapter = &eventLogAdapter{log: app.EventLog}
	}

	// --- Session store ---
	app.SessionStore = storage.NewSessionStoreManager(cfg.SessionsDir)
	warnings, err := app.SessionStore.Load()
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	if evtAdapter != nil {
		for _, w := range warnings {
			data := map[string]any{"error": w.Error()}
			var perr *storage.PersistenceError
			if errors.As(w, &perr) {
				data["path"] = perr.Path
			}
			_ = evtAdapter.LogEvent("session.load_skipped", data) // Best-effort.
		}
	}

	// --- Core services ---
	var diag io.Writer
	if cfg.RenderThoughts {
		diag = os.Stderr
	}
	app.Ledger = core.NewThoughtLedger()
	app.ThinkingSvc = core.NewThinkingService(app.Ledger, app.SessionStore, evtAdapter, diag)
	app.Engine = core.NewQuantumEngine()

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.ServerName = cfg.ServerName
	cli.ThinkingSvc = app.ThinkingSvc
	cli.Engine = app.Engine

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the base path for seqthink data. It checks the
// SEQTHINK_HOME env var, then walks up from the current directory looking for
// .thinkconfig, then falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("SEQTHINK_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		for _, name := range configFileNames {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   eventLevel(eventType),
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}

// eventLevel maps event types that signal lost or unreadable data to WARN.
func eventLevel(eventType string) string {
	switch eventType {
	case "session.persist_failed", "session.load_skipped":
		return "WARN"
	default:
		return "INFO"
	}
}
