package mock

import (
	"context"

	"github.com/fwojciec/knowcore"
)

var _ knowcore.RawDocService = (*RawDocService)(nil)

// RawDocService is a mock implementation of knowcore.RawDocService.
type RawDocService struct {
	CreateRawDocFn   func(ctx context.Context, raw *knowcore.RawDoc, content []byte) error
	FindRawDocByIDFn func(ctx context.Context, id string) (*knowcore.RawDoc, error)
	FindRawDocsFn    func(ctx context.Context, filter knowcore.RawDocFilter) ([]*knowcore.RawDoc, error)
	ReadContentFn    func(ctx context.Context, raw *knowcore.RawDoc) ([]byte, error)
	MarkProcessedFn  func(ctx context.Context, id string) error
}

func (s *RawDocService) CreateRawDoc(ctx context.Context, raw *knowcore.RawDoc, content []byte) error {
	return s.CreateRawDocFn(ctx, raw, content)
}

func (s *RawDocService) FindRawDocByID(ctx context.Context, id string) (*knowcore.RawDoc, error) {
	return s.FindRawDocByIDFn(ctx, id)
}

func (s *RawDocService) FindRawDocs(ctx context.Context, filter knowcore.RawDocFilter) ([]*knowcore.RawDoc, error) {
	return s.FindRawDocsFn(ctx, filter)
}

func (s *RawDocService) ReadContent(ctx context.Context, raw *knowcore.RawDoc) ([]byte, error) {
	return s.ReadContentFn(ctx, raw)
}

func (s *RawDocService) MarkProcessed(ctx context.Context, id string) error {
	return s.MarkProcessedFn(ctx, id)
}
