// Package slog provides logging decorators for knowcore services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/knowcore"
)

// Ensure LoggingFetcher implements knowcore.Fetcher.
var _ knowcore.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging of every request.
type LoggingFetcher struct {
	next   knowcore.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next knowcore.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs size, duration and
// failure reason.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (res *knowcore.FetchResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "duration", time.Since(begin)}
		if res != nil {
			attrs = append(attrs, "bytes", len(res.Data), "content_type", res.ContentType)
		}
		if err != nil {
			if reason := knowcore.FetchReason(err); reason != "" {
				attrs = append(attrs, "reason", reason)
			}
			f.logger.Warn("fetch", append(attrs, "err", err)...)
			return
		}
		f.logger.Info("fetch", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
