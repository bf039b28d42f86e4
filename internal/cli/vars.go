package cli

import (
	"github.com/valter-silva-au/seqthink/internal/core"
	"github.com/valter-silva-au/seqthink/internal/observability"
)

// Service instances, set during app initialization in app.go.
var (
	ThinkingSvc core.ThinkingService
	Engine      *core.QuantumEngine
	BasePath    string
	ServerName  string
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
