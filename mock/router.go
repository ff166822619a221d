package mock

import (
	"context"

	"github.com/fwojciec/knowcore"
)

var _ knowcore.Router = (*Router)(nil)

// Router is a mock implementation of knowcore.Router.
type Router struct {
	SelectAdapterFn func(ctx context.Context, raw *knowcore.RawDoc, html string) (*knowcore.Adapter, error)
}

func (r *Router) SelectAdapter(ctx context.Context, raw *knowcore.RawDoc, html string) (*knowcore.Adapter, error) {
	return r.SelectAdapterFn(ctx, raw, html)
}

var _ knowcore.AdapterLoader = (*AdapterLoader)(nil)

// AdapterLoader is a mock implementation of knowcore.AdapterLoader.
type AdapterLoader struct {
	LoadAdapterFn func(ref string) (*knowcore.Adapter, error)
}

func (l *AdapterLoader) LoadAdapter(ref string) (*knowcore.Adapter, error) {
	return l.LoadAdapterFn(ref)
}

var _ knowcore.FrameworkDetector = (*FrameworkDetector)(nil)

// FrameworkDetector is a mock implementation of knowcore.FrameworkDetector.
type FrameworkDetector struct {
	DetectFn func(html string) knowcore.Framework
}

func (d *FrameworkDetector) Detect(html string) knowcore.Framework {
	return d.DetectFn(html)
}

var _ knowcore.AdapterRegistry = (*AdapterRegistry)(nil)

// AdapterRegistry is a mock implementation of knowcore.AdapterRegistry.
type AdapterRegistry struct {
	AdapterForHTMLFn func(html string) (*knowcore.Adapter, knowcore.Framework)
}

func (r *AdapterRegistry) AdapterForHTML(html string) (*knowcore.Adapter, knowcore.Framework) {
	return r.AdapterForHTMLFn(html)
}
