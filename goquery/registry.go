package goquery

import "github.com/fwojciec/knowcore"

var _ knowcore.AdapterRegistry = (*Registry)(nil)

// Registry manages framework-specific adapters and auto-detects frameworks
// from HTML content. It uses a FrameworkDetector to identify the
// documentation framework and returns the matching adapter, falling back
// to a generic adapter when the framework is unknown or no adapter is
// registered for it.
type Registry struct {
	detector knowcore.FrameworkDetector
	fallback *knowcore.Adapter
	adapters map[knowcore.Framework]*knowcore.Adapter
}

// NewRegistry creates a new Registry with the given detector and fallback
// adapter.
func NewRegistry(detector knowcore.FrameworkDetector, fallback *knowcore.Adapter) *Registry {
	return &Registry{
		detector: detector,
		fallback: fallback,
		adapters: make(map[knowcore.Framework]*knowcore.Adapter),
	}
}

// NewDefaultRegistry returns a Registry holding every built-in adapter with
// the generic adapter as fallback.
func NewDefaultRegistry() *Registry {
	r := NewRegistry(NewDetector(), GenericAdapter())
	for f, a := range BuiltinAdapters() {
		r.Register(f, a)
	}
	return r
}

// Get returns the adapter for a specific framework.
// Returns nil if no adapter is registered for the framework.
func (r *Registry) Get(framework knowcore.Framework) *knowcore.Adapter {
	return r.adapters[framework]
}

// AdapterForHTML detects the framework from HTML and returns its adapter.
// The fallback adapter is returned with FrameworkUnknown when no framework
// specific adapter applies.
func (r *Registry) AdapterForHTML(html string) (*knowcore.Adapter, knowcore.Framework) {
	framework := r.detector.Detect(html)
	if a, ok := r.adapters[framework]; ok {
		return a, framework
	}
	return r.fallback, knowcore.FrameworkUnknown
}

// Register adds an adapter for a framework, replacing any existing one.
func (r *Registry) Register(framework knowcore.Framework, adapter *knowcore.Adapter) {
	r.adapters[framework] = adapter
}

// List returns all registered frameworks.
func (r *Registry) List() []knowcore.Framework {
	frameworks := make([]knowcore.Framework, 0, len(r.adapters))
	for f := range r.adapters {
		frameworks = append(frameworks, f)
	}
	return frameworks
}
