package ingest

import (
	"context"

	"github.com/fwojciec/knowcore"
)

// Ensure Router implements knowcore.Router at compile time.
var _ knowcore.Router = (*Router)(nil)

// Router selects adapters from an ordered route list, falling back to a
// framework-detected built-in adapter.
type Router struct {
	Routes   []knowcore.Route
	Loader   knowcore.AdapterLoader
	Registry knowcore.AdapterRegistry
}

// SelectAdapter returns the adapter of the first matching route whose
// adapter exists. Routes naming a missing adapter are skipped; an adapter
// that exists but fails to load is an error. Without a matching route the
// registry picks an adapter from the page HTML.
// Returns ENOTFOUND if no adapter is available.
func (r *Router) SelectAdapter(_ context.Context, raw *knowcore.RawDoc, html string) (*knowcore.Adapter, error) {
	if r.Loader != nil {
		for _, route := range r.Routes {
			if !route.Match(raw.SourceURI) {
				continue
			}
			adapter, err := r.Loader.LoadAdapter(route.Adapter)
			if knowcore.ErrorCode(err) == knowcore.ENOTFOUND {
				continue
			} else if err != nil {
				return nil, err
			}
			return adapter, nil
		}
	}

	if r.Registry != nil {
		if adapter, _ := r.Registry.AdapterForHTML(html); adapter != nil {
			return adapter, nil
		}
	}
	return nil, knowcore.Errorf(knowcore.ENOTFOUND, "no adapter for %q", raw.SourceURI)
}
