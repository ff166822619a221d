// Package readability supplies fallback document metadata using
// go-readability.
package readability

import (
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/knowcore"
	"github.com/go-shiori/go-readability"
)

// Ensure MetaFallback implements knowcore.MetaFallback at compile time.
var _ knowcore.MetaFallback = (*MetaFallback)(nil)

// MetaFallback reads the article title, byline, excerpt, language and
// publication times found by readability.
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

	var pageURL *url.URL
	if base := knowcore.HTTPBase(sourceURI); base != "" {
		pageURL, _ = url.Parse(base)
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	if err != nil {
		return nil, err
	}

	meta := &knowcore.RawMeta{
		Title:       strings.TrimSpace(article.Title),
		Language:    strings.TrimSpace(article.Language),
		Description: strings.TrimSpace(article.Excerpt),
		PublishedAt: formatTime(article.PublishedTime),
		UpdatedAt:   formatTime(article.ModifiedTime),
	}
	if byline := cleanByline(article.Byline); byline != "" {
		meta.Authors = []string{byline}
	}
	return meta, nil
}

// cleanByline strips a leading "By" from a byline.
func cleanByline(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 3 && strings.EqualFold(s[:3], "by ") {
		s = strings.TrimSpace(s[3:])
	}
	return s
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
