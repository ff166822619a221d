package knowcore

import (
	"encoding/json"
	"strings"
)

// Link is an inline link recorded while rendering block content.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Annotations carries kind-specific side data for downstream consumers.
type Annotations struct {
	Language string            `json:"language,omitempty"`
	Links    []Link            `json:"links,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

// AssetRef is an unresolved figure source emitted by the extractor.
type AssetRef struct {
	OriginalSrc string `json:"original_src"`
	Caption     string `json:"caption"`
}

// ListItem is one entry of a nested list. An item without children is a
// leaf and serializes as a plain string; otherwise it serializes as
// {"text": ..., "items": [...]}.
type ListItem struct {
	Text  string
	Items []ListItem
}

// IsLeaf reports whether the item has no sub-list.
func (i ListItem) IsLeaf() bool {
	return len(i.Items) == 0
}

type listNode struct {
	Text  string     `json:"text"`
	Items []ListItem `json:"items"`
}

// MarshalJSON implements json.Marshaler.
func (i ListItem) MarshalJSON() ([]byte, error) {
	if i.IsLeaf() {
		return json.Marshal(i.Text)
	}
	return json.Marshal(listNode{Text: i.Text, Items: i.Items})
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *ListItem) UnmarshalJSON(data []byte) error {
	if trimmed := strings.TrimSpace(string(data)); strings.HasPrefix(trimmed, `"`) {
		i.Items = nil
		return json.Unmarshal(data, &i.Text)
	}
	var n listNode
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	i.Text, i.Items = n.Text, n.Items
	return nil
}

// ListDepth returns the nesting depth of items: 1 for a flat list, 0 for
// no items.
func ListDepth(items []ListItem) int {
	depth := 0
	for _, item := range items {
		if d := 1 + ListDepth(item.Items); d > depth {
			depth = d
		}
	}
	return depth
}

// Block is one unit of extracted content. Kind-specific fields are only set
// for their kind: Level for headings, Items for lists, Header and Rows for
// tables, Assets for figures.
type Block struct {
	Type        BlockType   `json:"type"`
	SectionID   string      `json:"section_id,omitempty"`
	Content     string      `json:"content"`
	Level       int         `json:"level,omitempty"`
	Items       []ListItem  `json:"items,omitempty"`
	Header      []string    `json:"header,omitempty"`
	Rows        [][]string  `json:"rows,omitempty"`
	Assets      []AssetRef  `json:"assets,omitempty"`
	Annotations Annotations `json:"annotations"`
}

// RawMeta is document metadata as found in the page, before defaults and
// timestamp parsing are applied.
type RawMeta struct {
	Title       string   `json:"title,omitempty"`
	URL         string   `json:"url,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	PublishedAt string   `json:"published_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
	Language    string   `json:"language,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Merge fills fields that are empty in m with values from other.
// Fields already present in m are never overwritten.
func (m *RawMeta) Merge(other *RawMeta) {
	if other == nil {
		return
	}
	if m.Title == "" {
		m.Title = other.Title
	}
	if m.URL == "" {
		m.URL = other.URL
	}
	if len(m.Authors) == 0 {
		m.Authors = other.Authors
	}
	if m.PublishedAt == "" {
		m.PublishedAt = other.PublishedAt
	}
	if m.UpdatedAt == "" {
		m.UpdatedAt = other.UpdatedAt
	}
	if m.Language == "" {
		m.Language = other.Language
	}
	if m.Description == "" {
		m.Description = other.Description
	}
	if len(m.Tags) == 0 {
		m.Tags = other.Tags
	}
}

// ExtractResult is the output of content extraction: metadata plus blocks
// in strict document order.
type ExtractResult struct {
	Meta          RawMeta `json:"meta"`
	Blocks        []Block `json:"sections"`
	ParserVersion string  `json:"parser_version"`
}

// Extractor turns an HTML page into metadata and an ordered block sequence
// as described by an adapter.
type Extractor interface {
	// Extract parses rawHTML and applies the adapter. The sourceURI is used
	// as the base for relative links when it is an absolute HTTP(S) URL.
	// Returns EINVALID if no HTML tree can be built from the input.
	Extract(rawHTML string, adapter *Adapter, sourceURI string) (*ExtractResult, error)
}

// MetaFallback supplies generic metadata for fields an adapter did not
// produce.
type MetaFallback interface {
	Fallback(rawHTML string, sourceURI string) (*RawMeta, error)
}
