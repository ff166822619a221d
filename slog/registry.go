package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/knowcore"
)

// Ensure LoggingRegistry implements knowcore.AdapterRegistry.
var _ knowcore.AdapterRegistry = (*LoggingRegistry)(nil)

// LoggingRegistry wraps an AdapterRegistry with debug logging for framework
// detection.
type LoggingRegistry struct {
	next   knowcore.AdapterRegistry
	logger *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next knowcore.AdapterRegistry, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, logger: logger}
}

// AdapterForHTML delegates to the wrapped registry and logs the detected
// framework and chosen adapter.
func (r *LoggingRegistry) AdapterForHTML(html string) (*knowcore.Adapter, knowcore.Framework) {
	begin := time.Now()
	adapter, framework := r.next.AdapterForHTML(html)
	frameworkName := string(framework)
	if framework == knowcore.FrameworkUnknown {
		frameworkName = "(unknown)"
	}
	adapterName := ""
	if adapter != nil {
		adapterName = adapter.Name
	}
	r.logger.Debug("framework detection",
		"framework", frameworkName,
		"adapter", adapterName,
		"duration", time.Since(begin),
	)
	return adapter, framework
}
