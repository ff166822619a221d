package fs_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/knowcore"
	"github.com/fwojciec/knowcore/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *knowcore.Document {
	return &knowcore.Document{
		DocID: "doc-1",
		Meta: knowcore.Meta{
			Title:      "Getting Started",
			Source:     knowcore.Source{Type: knowcore.SourceTypeURL, URL: "https://example.com/start", RawDocID: "raw-1"},
			Authors:    []string{},
			IngestedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
			Tags:       []string{},
		},
		Sections: []knowcore.Section{
			{SectionID: "heading-1", Type: knowcore.BlockHeading, Level: 1, Content: "Getting Started"},
			{SectionID: "paragraph-1", Type: knowcore.BlockParagraph, Content: "Install the tool."},
		},
	}
}

func TestWriter_WriteDocument(t *testing.T) {
	t.Parallel()

	// Given a writer with Markdown enabled
	dir := t.TempDir()
	w := fs.NewWriter(dir, true)
	doc := sampleDocument()

	// When a document is written
	err := w.WriteDocument(context.Background(), doc)

	// Then the JSON file decodes back to the document
	require.NoError(t, err)
	data, err := os.ReadFile(w.JSONPath("doc-1"))
	require.NoError(t, err)
	var got knowcore.Document
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, doc.DocID, got.DocID)
	assert.Equal(t, doc.Meta.Title, got.Meta.Title)
	assert.Len(t, got.Sections, 2)

	// And a Markdown rendering is written next to it
	md, err := os.ReadFile(w.MarkdownPath("doc-1"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Getting Started")
}

func TestWriter_WriteDocumentWithoutMarkdown(t *testing.T) {
	t.Parallel()

	w := fs.NewWriter(t.TempDir(), false)

	err := w.WriteDocument(context.Background(), sampleDocument())

	require.NoError(t, err)
	_, err = os.Stat(w.MarkdownPath("doc-1"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriter_WriteDocumentValidates(t *testing.T) {
	t.Parallel()

	w := fs.NewWriter(t.TempDir(), true)

	t.Run("missing ID", func(t *testing.T) {
		t.Parallel()
		doc := sampleDocument()
		doc.DocID = ""
		err := w.WriteDocument(context.Background(), doc)
		assert.Equal(t, knowcore.EINVALID, knowcore.ErrorCode(err))
	})

	t.Run("path in ID", func(t *testing.T) {
		t.Parallel()
		doc := sampleDocument()
		doc.DocID = "../escape"
		err := w.WriteDocument(context.Background(), doc)
		assert.Equal(t, knowcore.EINVALID, knowcore.ErrorCode(err))
	})
}
