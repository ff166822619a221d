// Package trafilatura supplies fallback document metadata using
// go-trafilatura's metadata extraction.
package trafilatura

import (
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/knowcore"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure MetaFallback implements knowcore.MetaFallback at compile time.
var _ knowcore.MetaFallback = (*MetaFallback)(nil)

// MetaFallback reads title, authors, dates, language, description and tags
// the way trafilatura finds them in arbitrary pages.
type MetaFallback struct{}

// NewMetaFallback creates a new MetaFallback.
func NewMetaFallback() *MetaFallback {
	return &MetaFallback{}
}

// Fallback extracts metadata from rawHTML.
// Returns EINVALID for empty input.
func (f *MetaFallback) Fallback(rawHTML string, sourceURI string) (*knowcore.RawMeta, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, knowcore.Errorf(knowcore.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}
	if base := knowcore.HTTPBase(sourceURI); base != "" {
		if u, err := url.Parse(base); err == nil {
			opts.OriginalURL = u
		}
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	md := result.Metadata
	tags := md.Tags
	if len(tags) == 0 {
		tags = md.Categories
	}
	return &knowcore.RawMeta{
		Title:       strings.TrimSpace(md.Title),
		URL:         strings.TrimSpace(md.URL),
		Authors:     splitAuthors(md.Author),
		PublishedAt: formatDate(md.Date),
		Language:    strings.TrimSpace(md.Language),
		Description: strings.TrimSpace(md.Description),
		Tags:        dedupe(tags),
	}, nil
}

// splitAuthors splits trafilatura's "; " joined author list.
func splitAuthors(s string) []string {
	return dedupe(strings.Split(s, ";"))
}

func dedupe(values []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// formatDate renders a date-only value as YYYY-MM-DD and anything with a
// time of day as RFC 3339.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if h, m, s := t.Clock(); h == 0 && m == 0 && s == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}
