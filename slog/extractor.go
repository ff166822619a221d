package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/knowcore"
)

// Ensure LoggingExtractor implements knowcore.Extractor.
var _ knowcore.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging.
type LoggingExtractor struct {
	next   knowcore.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next knowcore.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the block count.
func (e *LoggingExtractor) Extract(rawHTML string, adapter *knowcore.Adapter, sourceURI string) (res *knowcore.ExtractResult, err error) {
	defer func(begin time.Time) {
		blocks := 0
		if res != nil {
			blocks = len(res.Blocks)
		}
		name := ""
		if adapter != nil {
			name = adapter.Name
		}
		e.logger.Debug("extract",
			"source", sourceURI,
			"adapter", name,
			"bytes", len(rawHTML),
			"blocks", blocks,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(rawHTML, adapter, sourceURI)
}
