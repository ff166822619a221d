package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/knowcore"
)

// Ensure LoggingDocumentWriter implements knowcore.DocumentWriter.
var _ knowcore.DocumentWriter = (*LoggingDocumentWriter)(nil)

// LoggingDocumentWriter wraps a DocumentWriter with logging. The sink name
// tells apart several writers in one pipeline.
type LoggingDocumentWriter struct {
	next   knowcore.DocumentWriter
	sink   string
	logger *slog.Logger
}

// NewLoggingDocumentWriter creates a new LoggingDocumentWriter.
func NewLoggingDocumentWriter(next knowcore.DocumentWriter, sink string, logger *slog.Logger) *LoggingDocumentWriter {
	return &LoggingDocumentWriter{next: next, sink: sink, logger: logger}
}

// WriteDocument delegates to the wrapped writer.
func (w *LoggingDocumentWriter) WriteDocument(ctx context.Context, doc *knowcore.Document) (err error) {
	defer func(begin time.Time) {
		w.logger.Info("write document",
			"sink", w.sink,
			"doc_id", doc.DocID,
			"sections", len(doc.Sections),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteDocument(ctx, doc)
}
