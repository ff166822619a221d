package mock

import "github.com/fwojciec/knowcore"

var _ knowcore.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of knowcore.Extractor.
type Extractor struct {
	ExtractFn func(rawHTML string, adapter *knowcore.Adapter, sourceURI string) (*knowcore.ExtractResult, error)
}

func (e *Extractor) Extract(rawHTML string, adapter *knowcore.Adapter, sourceURI string) (*knowcore.ExtractResult, error) {
	return e.ExtractFn(rawHTML, adapter, sourceURI)
}

var _ knowcore.MetaFallback = (*MetaFallback)(nil)

// MetaFallback is a mock implementation of knowcore.MetaFallback.
type MetaFallback struct {
	FallbackFn func(rawHTML string, sourceURI string) (*knowcore.RawMeta, error)
}

func (m *MetaFallback) Fallback(rawHTML string, sourceURI string) (*knowcore.RawMeta, error) {
	return m.FallbackFn(rawHTML, sourceURI)
}
