package mock

import (
	"context"

	"github.com/fwojciec/knowcore"
)

var _ knowcore.DocumentWriter = (*DocumentWriter)(nil)

// DocumentWriter is a mock implementation of knowcore.DocumentWriter.
type DocumentWriter struct {
	WriteDocumentFn func(ctx context.Context, doc *knowcore.Document) error
}

func (w *DocumentWriter) WriteDocument(ctx context.Context, doc *knowcore.Document) error {
	return w.WriteDocumentFn(ctx, doc)
}

var _ knowcore.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of knowcore.DocumentService.
type DocumentService struct {
	WriteDocumentFn    func(ctx context.Context, doc *knowcore.Document) error
	FindDocumentByIDFn func(ctx context.Context, id string) (*knowcore.Document, error)
	FindDocumentsFn    func(ctx context.Context, filter knowcore.DocumentFilter) ([]*knowcore.Document, error)
	DeleteDocumentFn   func(ctx context.Context, id string) error
}

func (s *DocumentService) WriteDocument(ctx context.Context, doc *knowcore.Document) error {
	return s.WriteDocumentFn(ctx, doc)
}

func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*knowcore.Document, error) {
	return s.FindDocumentByIDFn(ctx, id)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter knowcore.DocumentFilter) ([]*knowcore.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}

func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	return s.DeleteDocumentFn(ctx, id)
}
