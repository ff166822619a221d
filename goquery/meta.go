package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/knowcore"
	"golang.org/x/net/html"
)

// ExtractMeta resolves document metadata from the adapter's meta selectors.
// Fields whose selectors match nothing are left empty. A relative url is
// resolved against sourceURI when it is an absolute HTTP(S) URL.
func ExtractMeta(doc *goquery.Selection, specs map[string]knowcore.SelectorSpec, sourceURI string) knowcore.RawMeta {
	var m knowcore.RawMeta
	m.Title = metaValue(doc, specs[knowcore.MetaTitle])
	m.URL = metaValue(doc, specs[knowcore.MetaURL])
	m.PublishedAt = metaValue(doc, specs[knowcore.MetaPublishedAt])
	m.UpdatedAt = metaValue(doc, specs[knowcore.MetaUpdatedAt])
	m.Language = metaValue(doc, specs[knowcore.MetaLanguage])
	m.Description = metaValue(doc, specs[knowcore.MetaDescription])
	m.Authors = metaValues(doc, specs[knowcore.MetaAuthors], false)
	m.Tags = metaValues(doc, specs[knowcore.MetaTags], true)

	if m.URL != "" {
		m.URL = resolveHref(baseURL(sourceURI), m.URL)
	}
	return m
}

// metaValue returns the value of the first spec entry that yields non-empty
// text or attribute content.
func metaValue(doc *goquery.Selection, spec knowcore.SelectorSpec) string {
	for _, s := range spec {
		sel, ok := knowcore.ParseSelector(s)
		if !ok {
			continue
		}
		n := EvaluateOne(doc, sel.CSS)
		if n == nil {
			continue
		}
		if v := nodeValue(n, sel.Attr); v != "" {
			return v
		}
	}
	return ""
}

// metaValues collects one value per matched node for the first spec entry
// that yields any. Empty strings and duplicates are dropped; order is kept.
// With split set, comma separated values are broken into separate entries.
func metaValues(doc *goquery.Selection, spec knowcore.SelectorSpec, split bool) []string {
	for _, s := range spec {
		sel, ok := knowcore.ParseSelector(s)
		if !ok {
			continue
		}
		var values []string
		seen := make(map[string]bool)
		add := func(v string) {
			v = strings.TrimSpace(v)
			if v == "" || seen[v] {
				return
			}
			seen[v] = true
			values = append(values, v)
		}
		for _, n := range Evaluate(doc, sel.CSS) {
			v := nodeValue(n, sel.Attr)
			if !split {
				add(v)
				continue
			}
			for _, part := range strings.Split(v, ",") {
				add(part)
			}
		}
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

// nodeValue returns the named attribute of n, or its text when name is empty.
func nodeValue(n *html.Node, name string) string {
	if name != "" {
		return attr(n, name)
	}
	return flatText(n)
}
