package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/seqthink/pkg/models"
)

// --- Helper ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// --- LoadGlobalConfig tests ---

func TestLoadGlobalConfig_Defaults_WhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cm := NewConfigurationManager(dir)

	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := filepath.Join(dir, "sessions"); cfg.SessionsDir != want {
		t.Errorf("SessionsDir = %q, want %q", cfg.SessionsDir, want)
	}
	if want := filepath.Join(dir, ".seqthink_events.jsonl"); cfg.EventLogPath != want {
		t.Errorf("EventLogPath = %q, want %q", cfg.EventLogPath, want)
	}
	if !cfg.EventsEnabled {
		t.Error("EventsEnabled = false, want true")
	}
	if !cfg.RenderThoughts {
		t.Error("RenderThoughts = false, want true")
	}
	if cfg.ServerName != "sequential-thinking-server" {
		t.Errorf("ServerName = %q", cfg.ServerName)
	}
	if cfg.Alerts != (models.AlertConfig{}) {
		t.Errorf("Alerts = %+v, want zero values", cfg.Alerts)
	}
	if cfg.SlackWebhook != "" {
		t.Errorf("SlackWebhook = %q, want empty", cfg.SlackWebhook)
	}
}

func TestLoadGlobalConfig_ReadsThinkconfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".thinkconfig.yaml", `
sessions:
  dir: data/sessions
events:
  path: /var/log/seqthink.jsonl
  enabled: false
render:
  thoughts: false
server:
  name: reasoning
alerts:
  max_persist_failures: 3
  stale_hours: 48
  max_revisions: 5
notifications:
  slack_webhook: https://hooks.slack.example/T000
`)
	cfg, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := filepath.Join(dir, "data", "sessions"); cfg.SessionsDir != want {
		t.Errorf("SessionsDir = %q, want %q", cfg.SessionsDir, want)
	}
	if cfg.EventLogPath != "/var/log/seqthink.jsonl" {
		t.Errorf("EventLogPath = %q", cfg.EventLogPath)
	}
	if cfg.EventsEnabled || cfg.RenderThoughts {
		t.Errorf("EventsEnabled/RenderThoughts = %v/%v, want false/false", cfg.EventsEnabled, cfg.RenderThoughts)
	}
	if cfg.ServerName != "reasoning" {
		t.Errorf("ServerName = %q", cfg.ServerName)
	}
	want := models.AlertConfig{MaxPersistFailures: 3, StaleHours: 48, MaxRevisions: 5}
	if cfg.Alerts != want {
		t.Errorf("Alerts = %+v, want %+v", cfg.Alerts, want)
	}
	if cfg.SlackWebhook != "https://hooks.slack.example/T000" {
		t.Errorf("SlackWebhook = %q", cfg.SlackWebhook)
	}
}

func TestLoadGlobalConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SEQTHINK_SERVER_NAME", "from-env")

	cfg, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerName != "from-env" {
		t.Errorf("ServerName = %q, want from-env", cfg.ServerName)
	}
}

func TestLoadGlobalConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".thinkconfig.yaml", "sessions: [unclosed\n")

	_, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err == nil {
		t.Fatal("expected error for malformed config")
	}
	if !strings.Contains(err.Error(), ".thinkconfig") {
		t.Errorf("error %q does not name the file", err)
	}
}

// --- ValidateConfig tests ---

func TestValidateConfig(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	valid := func() *models.GlobalConfig {
		return &models.GlobalConfig{
			SessionsDir:   "/tmp/sessions",
			EventLogPath:  "/tmp/events.jsonl",
			EventsEnabled: true,
			ServerName:    "s",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*models.GlobalConfig)
		wantErr string
	}{
		{"valid", func(*models.GlobalConfig) {}, ""},
		{"empty sessions dir", func(c *models.GlobalConfig) { c.SessionsDir = "" }, "sessions.dir"},
		{"empty event path", func(c *models.GlobalConfig) { c.EventLogPath = "" }, "events.path"},
		{"empty event path, events off", func(c *models.GlobalConfig) { c.EventLogPath = ""; c.EventsEnabled = false }, ""},
		{"empty server name", func(c *models.GlobalConfig) { c.ServerName = "" }, "server.name"},
		{"negative stale hours", func(c *models.GlobalConfig) { c.Alerts.StaleHours = -1 }, "alerts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cm.ValidateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}

	if err := cm.ValidateConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}
