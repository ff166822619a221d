package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/knowcore"
)

// Compile-time interface verification.
var _ knowcore.DocumentService = (*DocumentService)(nil)

// DocumentService implements knowcore.DocumentService using SQLite. The
// full document is stored as JSON next to columns used for lookups.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

// sectionsHash hashes the serialized sections so re-ingesting unchanged
// content can be detected.
func sectionsHash(doc *knowcore.Document) (string, error) {
	data, err := json.Marshal(doc.Sections)
	if err != nil {
		return "", err
	}
	return hashContent(data), nil
}

// WriteDocument inserts the document or replaces the stored version.
func (s *DocumentService) WriteDocument(ctx context.Context, doc *knowcore.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	hash, err := sectionsHash(doc)
	if err != nil {
		return err
	}
	ingestedAt := doc.Meta.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, rawdoc_id, source_type, source_url, source_path, title, language,
			parser_version, section_count, content_hash, body, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			rawdoc_id = excluded.rawdoc_id,
			source_type = excluded.source_type,
			source_url = excluded.source_url,
			source_path = excluded.source_path,
			title = excluded.title,
			language = excluded.language,
			parser_version = excluded.parser_version,
			section_count = excluded.section_count,
			content_hash = excluded.content_hash,
			body = excluded.body,
			ingested_at = excluded.ingested_at
	`, doc.DocID, doc.Meta.Source.RawDocID, doc.Meta.Source.Type, doc.Meta.Source.URL, doc.Meta.Source.Path,
		doc.Meta.Title, doc.Meta.Language, doc.Meta.ParserVersion, len(doc.Sections), hash, string(body),
		ingestedAt.UTC().Format(time.RFC3339Nano))

	return err
}

// ContentHash returns the stored sections hash of a document.
// Returns ENOTFOUND if the document does not exist.
func (s *DocumentService) ContentHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, "SELECT content_hash FROM documents WHERE id = ?", id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", knowcore.Errorf(knowcore.ENOTFOUND, "document not found")
	}
	return hash, err
}

// FindDocumentByID retrieves a document by ID.
func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*knowcore.Document, error) {
	var body, ingestedAt string
	err := s.db.QueryRowContext(ctx, "SELECT body, ingested_at FROM documents WHERE id = ?", id).Scan(&body, &ingestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, knowcore.Errorf(knowcore.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}
	return decodeDocument(body, ingestedAt)
}

// FindDocuments retrieves documents matching the filter, most recently
// ingested first.
func (s *DocumentService) FindDocuments(ctx context.Context, filter knowcore.DocumentFilter) ([]*knowcore.Document, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT body, ingested_at FROM documents WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.RawDocID != nil {
		query.WriteString(" AND rawdoc_id = ?")
		args = append(args, *filter.RawDocID)
	}
	if filter.SourceURL != nil {
		query.WriteString(" AND source_url = ?")
		args = append(args, *filter.SourceURL)
	}
	query.WriteString(" ORDER BY ingested_at DESC, id ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []*knowcore.Document{}
	for rows.Next() {
		var body, ingestedAt string
		if err := rows.Scan(&body, &ingestedAt); err != nil {
			return nil, err
		}
		doc, err := decodeDocument(body, ingestedAt)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

func decodeDocument(body, ingestedAt string) (*knowcore.Document, error) {
	var doc knowcore.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, knowcore.Errorf(knowcore.EINTERNAL, "corrupt document body: %v", err)
	}
	t, err := parseRFC3339(ingestedAt, "ingested_at")
	if err != nil {
		return nil, err
	}
	doc.Meta.IngestedAt = t
	return &doc, nil
}

// DeleteDocument permanently removes a document.
func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return knowcore.Errorf(knowcore.ENOTFOUND, "document not found")
	}

	return nil
}
