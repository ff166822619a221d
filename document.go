package knowcore

import (
	"context"
	"time"
)

// UntitledTitle replaces an empty document title.
const UntitledTitle = "Untitled"

// Document is the canonical normalized representation of an ingested source.
type Document struct {
	DocID    string    `json:"doc_id"`
	Meta     Meta      `json:"meta"`
	Sections []Section `json:"sections"`
}

// Source describes where a Document came from.
type Source struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	URL      string `json:"url"`
	RawDocID string `json:"rawdoc_id"`
}

// Meta is document-level metadata.
type Meta struct {
	Title         string     `json:"title"`
	Source        Source     `json:"source"`
	CanonicalURL  string     `json:"canonical_url,omitempty"`
	Authors       []string   `json:"authors"`
	PublishedAt   *time.Time `json:"published_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
	IngestedAt    time.Time  `json:"ingested_at"`
	Language      string     `json:"language"`
	Description   string     `json:"description,omitempty"`
	Tags          []string   `json:"tags"`
	ParserVersion string     `json:"parser_version"`
}

// Section is a normalized block. For figures, Assets holds one record per
// image; records are empty until the asset resolver fills them.
type Section struct {
	SectionID   string      `json:"section_id"`
	Type        BlockType   `json:"type"`
	Level       int         `json:"level,omitempty"`
	Content     string      `json:"content"`
	Items       []ListItem  `json:"items"`
	Header      []string    `json:"header,omitempty"`
	Rows        [][]string  `json:"rows"`
	Assets      []Asset     `json:"assets"`
	Annotations Annotations `json:"annotations"`
}

// AssetDir is the directory, relative to the document sink, that holds
// asset files.
const AssetDir = "assets"

// Asset is a figure image reference. OriginalSrc is the unresolved source
// and is cleared once resolution has been attempted.
type Asset struct {
	AssetID     string `json:"asset_id"`
	Path        string `json:"path"`
	Caption     string `json:"caption"`
	OriginalSrc string `json:"original_src,omitempty"`
}

// Resolved reports whether the asset points at a stored file.
func (a Asset) Resolved() bool {
	return a.AssetID != ""
}

// AssetPath returns the document-relative path of an asset file.
func AssetPath(assetID string) string {
	return AssetDir + "/" + assetID
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.DocID == "" {
		return Errorf(EINVALID, "document ID required")
	}
	seen := make(map[string]struct{}, len(d.Sections))
	for i, s := range d.Sections {
		if s.SectionID == "" {
			return Errorf(EINVALID, "section %d ID required", i)
		}
		if _, ok := seen[s.SectionID]; ok {
			return Errorf(EINVALID, "duplicate section ID %q", s.SectionID)
		}
		seen[s.SectionID] = struct{}{}
	}
	return nil
}

// Clone returns a copy of d whose sections and assets can be modified
// without affecting d.
func (d *Document) Clone() *Document {
	other := *d
	other.Sections = make([]Section, len(d.Sections))
	for i, s := range d.Sections {
		if s.Assets != nil {
			s.Assets = append([]Asset(nil), s.Assets...)
		}
		other.Sections[i] = s
	}
	return &other
}

// DocumentWriter persists or renders documents.
type DocumentWriter interface {
	WriteDocument(ctx context.Context, doc *Document) error
}

// DocumentService represents a service for managing stored documents.
type DocumentService interface {
	DocumentWriter

	// FindDocumentByID retrieves a document by ID.
	// Returns ENOTFOUND if document does not exist.
	FindDocumentByID(ctx context.Context, id string) (*Document, error)

	// FindDocuments retrieves documents matching the filter.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)

	// DeleteDocument permanently removes a document.
	// Returns ENOTFOUND if document does not exist.
	DeleteDocument(ctx context.Context, id string) error
}

// DocumentFilter represents a filter for FindDocuments.
type DocumentFilter struct {
	ID        *string `json:"id"`
	RawDocID  *string `json:"rawdocId"`
	SourceURL *string `json:"sourceUrl"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
