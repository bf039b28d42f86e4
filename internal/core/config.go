// Package core contains the reasoning logic of seqthink: the thought ledger,
// the framework and scoring library, the synthetic reasoning-thread engine,
// the session service that ties them to persistence, and configuration.
package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/valter-silva-au/seqthink/pkg/models"
)

// ConfigurationManager loads and validates the .thinkconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the root directory where .thinkconfig resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// defaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func defaultGlobalConfig(basePath string) *models.GlobalConfig {
	return &models.GlobalConfig{
		SessionsDir:    filepath.Join(basePath, "sessions"),
		EventLogPath:   filepath.Join(basePath, ".seqthink_events.jsonl"),
		EventsEnabled:  true,
		RenderThoughts: true,
		ServerName:     "sequential-thinking-server",
	}
}

// LoadGlobalConfig reads .thinkconfig from the base path. If the file does
// not exist, defaults are returned. Relative paths are resolved against the
// base path.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := defaultGlobalConfig(cm.basePath)

	v := viper.New()
	v.SetConfigName(".thinkconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("SEQTHINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("sessions.dir", cfg.SessionsDir)
	v.SetDefault("events.path", cfg.EventLogPath)
	v.SetDefault("events.enabled", cfg.EventsEnabled)
	v.SetDefault("render.thoughts", cfg.RenderThoughts)
	v.SetDefault("server.name", cfg.ServerName)
	v.SetDefault("alerts.max_persist_failures", 0)
	v.SetDefault("alerts.stale_hours", 0)
	v.SetDefault("alerts.max_revisions", 0)
	v.SetDefault("notifications.slack_webhook", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading .thinkconfig: %w", err)
		}
	}

	cfg.SessionsDir = cm.resolve(v.GetString("sessions.dir"))
	cfg.EventLogPath = cm.resolve(v.GetString("events.path"))
	cfg.EventsEnabled = v.GetBool("events.enabled")
	cfg.RenderThoughts = v.GetBool("render.thoughts")
	cfg.ServerName = v.GetString("server.name")
	cfg.Alerts = models.AlertConfig{
		MaxPersistFailures: v.GetInt("alerts.max_persist_failures"),
		StaleHours:         v.GetInt("alerts.stale_hours"),
		MaxRevisions:       v.GetInt("alerts.max_revisions"),
	}
	cfg.SlackWebhook = v.GetString("notifications.slack_webhook")

	return cfg, nil
}

func (cm *viperConfigManager) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cm.basePath, p)
}

// ValidateConfig checks cfg for values the server cannot run with.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}
	if cfg.SessionsDir == "" {
		return fmt.Errorf("sessions.dir must not be empty")
	}
	if cfg.EventsEnabled && cfg.EventLogPath == "" {
		return fmt.Errorf("events.path must not be empty when events are enabled")
	}
	if cfg.ServerName == "" {
		return fmt.Errorf("server.name must not be empty")
	}
	if cfg.Alerts.MaxPersistFailures < 0 || cfg.Alerts.StaleHours < 0 || cfg.Alerts.MaxRevisions < 0 {
		return fmt.Errorf("alerts thresholds must not be negative")
	}
	return nil
}
