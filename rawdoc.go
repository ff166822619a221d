package knowcore

import (
	"context"
	"strings"
	"time"
)

// Source types produced by acquisition.
const (
	SourceTypeURL            = "url"
	SourceTypeSingleFileHTML = "singlefile_html"
)

// RawDoc describes an acquired, not-yet-parsed source document.
type RawDoc struct {
	RawDocID      string         `json:"rawdoc_id"`
	SourceType    string         `json:"source_type"`
	SourceURI     string         `json:"source_uri"`
	FetchTime     time.Time      `json:"fetch_time"`
	StoragePath   string         `json:"storage_path"`
	ContentType   string         `json:"content_type"`
	ContentLength int            `json:"content_length"`
	Metadata      map[string]any `json:"metadata"`
}

// Validate returns an error if the raw document contains invalid fields.
func (r *RawDoc) Validate() error {
	if r.RawDocID == "" {
		return Errorf(EINVALID, "rawdoc ID required")
	}
	if r.SourceURI == "" {
		return Errorf(EINVALID, "rawdoc source URI required")
	}
	return nil
}

// IsHTML reports whether the raw document can be parsed as HTML.
func (r *RawDoc) IsHTML() bool {
	return r.SourceType == SourceTypeURL || r.SourceType == SourceTypeSingleFileHTML
}

// BaseURL returns the source URI if it is an absolute HTTP(S) URL, or "".
func (r *RawDoc) BaseURL() string {
	return HTTPBase(r.SourceURI)
}

// HTTPBase returns uri if it is an absolute HTTP(S) URL, or "".
func HTTPBase(uri string) string {
	lower := strings.ToLower(strings.TrimSpace(uri))
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return strings.TrimSpace(uri)
	}
	return ""
}

// RawDocService represents a service for managing acquired raw documents.
type RawDocService interface {
	// CreateRawDoc stores content and the raw document record.
	// An empty RawDocID is assigned by the service.
	CreateRawDoc(ctx context.Context, raw *RawDoc, content []byte) error

	// FindRawDocByID retrieves a raw document by ID.
	// Returns ENOTFOUND if the raw document does not exist.
	FindRawDocByID(ctx context.Context, id string) (*RawDoc, error)

	// FindRawDocs retrieves raw documents matching the filter.
	FindRawDocs(ctx context.Context, filter RawDocFilter) ([]*RawDoc, error)

	// ReadContent returns the stored content of a raw document.
	ReadContent(ctx context.Context, raw *RawDoc) ([]byte, error)

	// MarkProcessed records that a raw document has been ingested.
	MarkProcessed(ctx context.Context, id string) error
}

// RawDocFilter represents a filter for FindRawDocs.
type RawDocFilter struct {
	ID      *string `json:"id"`
	Pending *bool   `json:"pending"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
