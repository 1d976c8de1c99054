// Package tools provides MCP tool handlers and registration.
package tools

import (
	"log/slog"

	"github.com/lamina-ai/recall-go/internal/memory"
	"github.com/lamina-ai/recall-go/internal/metrics"
)

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Memory  *memory.Manager
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

func (d *Dependencies) logger() *slog.Logger {
	if d == nil || d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
