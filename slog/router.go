package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/knowcore"
)

// Ensure LoggingRouter implements knowcore.Router.
var _ knowcore.Router = (*LoggingRouter)(nil)

// LoggingRouter wraps a Router and logs which adapter handles each raw
// document.
type LoggingRouter struct {
	next   knowcore.Router
	logger *slog.Logger
}

// NewLoggingRouter creates a new LoggingRouter.
func NewLoggingRouter(next knowcore.Router, logger *slog.Logger) *LoggingRouter {
	return &LoggingRouter{next: next, logger: logger}
}

// SelectAdapter delegates to the wrapped router.
func (r *LoggingRouter) SelectAdapter(ctx context.Context, raw *knowcore.RawDoc, html string) (adapter *knowcore.Adapter, err error) {
	defer func() {
		if err != nil {
			r.logger.Warn("route", "rawdoc_id", raw.RawDocID, "source", raw.SourceURI, "err", err)
			return
		}
		name := ""
		if adapter != nil {
			name = adapter.Name
		}
		r.logger.Debug("route", "rawdoc_id", raw.RawDocID, "source", raw.SourceURI, "adapter", name)
	}()
	return r.next.SelectAdapter(ctx, raw, html)
}
