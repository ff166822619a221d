package knowcore

import (
	"context"
	"net/url"
	"strings"
)

// Route maps a source URI pattern to the adapter that should parse it.
// An empty or "*" Domain matches any host.
type Route struct {
	Domain     string `json:"domain"`
	PathPrefix string `json:"path_prefix"`
	Adapter    string `json:"adapter"`
}

// Match reports whether the route applies to uri. URLs are matched by
// host and path; local paths never match a concrete domain and are
// matched by prefix as-is.
func (r Route) Match(uri string) bool {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return false
	}

	host, path := "", uri
	if u, err := url.Parse(uri); err == nil && u.Scheme != "" && u.Host != "" {
		host = strings.ToLower(u.Host)
		path = u.Path
	}
	if path == "" {
		path = "/"
	}

	domain := strings.ToLower(strings.TrimSpace(r.Domain))
	if domain != "" && domain != "*" && domain != host {
		return false
	}
	prefix := strings.TrimSpace(r.PathPrefix)
	return prefix == "" || strings.HasPrefix(path, prefix)
}

// Router selects the adapter used to parse a raw document.
type Router interface {
	// SelectAdapter returns the adapter for raw. The page HTML may be
	// inspected when no route matches.
	// Returns ENOTFOUND if no adapter is available.
	SelectAdapter(ctx context.Context, raw *RawDoc, html string) (*Adapter, error)
}
