package models

// GlobalConfig holds system-wide settings read from .thinkconfig via Viper.
type GlobalConfig struct {
	SessionsDir    string      `yaml:"sessions_dir" mapstructure:"sessions_dir"`
	EventLogPath   string      `yaml:"event_log_path" mapstructure:"event_log_path"`
	EventsEnabled  bool        `yaml:"events_enabled" mapstructure:"events_enabled"`
	RenderThoughts bool        `yaml:"render_thoughts" mapstructure:"render_thoughts"`
	ServerName     string      `yaml:"server_name" mapstructure:"server_name"`
	Alerts         AlertConfig `yaml:"alerts" mapstructure:"alerts"`
	SlackWebhook   string      `yaml:"slack_webhook" mapstructure:"slack_webhook"`
}

// AlertConfig holds the thresholds evaluated by `seqthink alerts`.
// Zero or negative values fall back to the built-in defaults.
type AlertConfig struct {
	MaxPersistFailures int `yaml:"max_persist_failures" mapstructure:"max_persist_failures"`
	StaleHours         int `yaml:"stale_hours" mapstructure:"stale_hours"`
	MaxRevisions       int `yaml:"max_revisions" mapstructure:"max_revisions"`
}
