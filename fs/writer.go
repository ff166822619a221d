package fs

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/fwojciec/knowcore"
)

// Ensure Writer implements knowcore.DocumentWriter at compile time.
var _ knowcore.DocumentWriter = (*Writer)(nil)

// Writer writes each document as <doc_id>.json and, optionally,
// <doc_id>.md to a directory. Asset paths in the output are relative to
// that directory.
type Writer struct {
	baseDir  string
	markdown bool
}

// NewWriter creates a Writer for baseDir. When markdown is set a Markdown
// rendering is written next to the JSON file.
func NewWriter(baseDir string, markdown bool) *Writer {
	return &Writer{baseDir: baseDir, markdown: markdown}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.baseDir
}

// JSONPath returns the JSON output path for a document ID.
func (w *Writer) JSONPath(docID string) string {
	return filepath.Join(w.baseDir, docID+".json")
}

// MarkdownPath returns the Markdown output path for a document ID.
func (w *Writer) MarkdownPath(docID string) string {
	return filepath.Join(w.baseDir, docID+".md")
}

// WriteDocument writes the document files, replacing existing ones.
func (w *Writer) WriteDocument(_ context.Context, doc *knowcore.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := validRawDocID(doc.DocID); err != nil {
		return knowcore.Errorf(knowcore.EINVALID, "invalid document ID %q", doc.DocID)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(w.JSONPath(doc.DocID), append(data, '\n')); err != nil {
		return err
	}
	if !w.markdown {
		return nil
	}
	return writeFileAtomic(w.MarkdownPath(doc.DocID), []byte(FormatDocument(doc)))
}
