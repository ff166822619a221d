package knowcore

import "strings"

// BlockType identifies the kind of a content block.
type BlockType string

// Block kinds. The set is closed: adapters can only classify nodes into one
// of these.
const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
	BlockCode      BlockType = "code"
	BlockFigure    BlockType = "figure"
	BlockList      BlockType = "list"
	BlockTable     BlockType = "table"
	BlockGeneric   BlockType = "generic"
)

// Valid reports whether t is a known block kind.
func (t BlockType) Valid() bool {
	switch t {
	case BlockHeading, BlockParagraph, BlockCode, BlockFigure, BlockList, BlockTable, BlockGeneric:
		return true
	}
	return false
}

// Well-known meta field names.
const (
	MetaTitle       = "title"
	MetaURL         = "url"
	MetaAuthors     = "authors"
	MetaPublishedAt = "published_at"
	MetaUpdatedAt   = "updated_at"
	MetaLanguage    = "language"
	MetaDescription = "description"
	MetaTags        = "tags"
)

// SelectorSpec is an ordered list of fallback selectors. The first entry
// producing a non-empty value wins.
type SelectorSpec []string

// First returns the first selector of the spec, or "" if the spec is empty.
func (s SelectorSpec) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// BlockRule maps nodes matching Selector to a block of the given Type.
// Attrs maps output fields (src, caption, id, language, ...) to source
// attribute names.
type BlockRule struct {
	Selector string            `json:"selector" validate:"required"`
	Type     BlockType         `json:"type" validate:"required,oneof=heading paragraph code figure list table generic"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

// Attr returns the source attribute mapped to field, or def if unmapped.
func (r BlockRule) Attr(field, def string) string {
	if v := strings.TrimSpace(r.Attrs[field]); v != "" {
		return v
	}
	return def
}

// ContentConfig locates the content root and classifies its descendants.
type ContentConfig struct {
	Root   string      `json:"root"`
	Blocks []BlockRule `json:"blocks" validate:"dive"`
	Ignore []string    `json:"ignore,omitempty"`
}

// Adapter describes how to extract metadata and content blocks from a
// specific site's or generic HTML structure.
type Adapter struct {
	Name    string                  `json:"name"`
	Meta    map[string]SelectorSpec `json:"meta"`
	Content ContentConfig           `json:"content"`
}

// Validate returns an error if the adapter contains invalid fields.
func (a *Adapter) Validate() error {
	for i, rule := range a.Content.Blocks {
		if strings.TrimSpace(rule.Selector) == "" {
			return Errorf(EINVALID, "adapter %q: block %d selector required", a.Name, i)
		}
		if !rule.Type.Valid() {
			return Errorf(EINVALID, "adapter %q: block %d has unknown type %q", a.Name, i, rule.Type)
		}
	}
	return nil
}

// selectorPrefix marks a selector expression as CSS.
const selectorPrefix = "css:"

// Selector is a parsed selector expression: a CSS selector and an optional
// attribute whose value is read instead of the node text.
type Selector struct {
	CSS  string
	Attr string
}

// ParseSelector parses "css:<selector>" optionally suffixed "@<attr>".
// It returns false if the expression lacks the css: prefix or names no
// selector.
func ParseSelector(spec string) (Selector, bool) {
	spec = strings.TrimSpace(spec)
	if !strings.HasPrefix(spec, selectorPrefix) {
		return Selector{}, false
	}
	rest := strings.TrimSpace(spec[len(selectorPrefix):])

	var sel Selector
	if i := strings.LastIndex(rest, "@"); i >= 0 && isAttrName(rest[i+1:]) {
		sel.CSS = strings.TrimSpace(rest[:i])
		sel.Attr = strings.TrimSpace(rest[i+1:])
	} else {
		sel.CSS = rest
	}
	if sel.CSS == "" {
		return Selector{}, false
	}
	return sel, true
}

// TrimSelector strips an optional css: prefix from a content selector.
// Root and block selectors are accepted with or without the prefix.
func TrimSelector(spec string) string {
	spec = strings.TrimSpace(spec)
	return strings.TrimSpace(strings.TrimPrefix(spec, selectorPrefix))
}

// isAttrName reports whether s can be an attribute name. It keeps "@"
// inside attribute-value selectors (a[href^="mailto:x@y"]) from being read
// as an attribute suffix.
func isAttrName(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == ':', r == '.':
		default:
			return false
		}
	}
	return true
}

// AdapterLoader loads adapter configurations by reference (typically a
// path relative to a configuration root).
type AdapterLoader interface {
	LoadAdapter(ref string) (*Adapter, error)
}
