package ingest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/knowcore"
	"github.com/fwojciec/knowcore/fs"
	"github.com/fwojciec/knowcore/goquery"
	"github.com/fwojciec/knowcore/ingest"
	"github.com/fwojciec/knowcore/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenarioAdapter = &knowcore.Adapter{
	Name: "scenario",
	Content: knowcore.ContentConfig{
		Root: "body",
		Blocks: []knowcore.BlockRule{
			{Selector: "h1,h2", Type: knowcore.BlockHeading},
			{Selector: "p", Type: knowcore.BlockParagraph},
			{Selector: "img", Type: knowcore.BlockFigure},
		},
	},
}

type pipelineFixture struct {
	rawdocs  *fs.RawDocStore
	assets   *fs.AssetStore
	writer   *fs.Writer
	pipeline *ingest.Pipeline
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	dir := t.TempDir()
	assets, err := fs.NewAssetStore(filepath.Join(dir, "docs", knowcore.AssetDir))
	require.NoError(t, err)
	f := &pipelineFixture{
		rawdocs: fs.NewRawDocStore(filepath.Join(dir, "rawdocs")),
		assets:  assets,
		writer:  fs.NewWriter(filepath.Join(dir, "docs"), true),
	}
	f.pipeline = &ingest.Pipeline{
		RawDocs: f.rawdocs,
		Router: &ingest.Router{
			Routes: []knowcore.Route{{Domain: "*", Adapter: "scenario"}},
			Loader: &mock.AdapterLoader{
				LoadAdapterFn: func(ref string) (*knowcore.Adapter, error) {
					return scenarioAdapter, nil
				},
			},
		},
		Extractor:  goquery.NewExtractor(),
		Normalizer: testNormalizer(),
		Resolver:   ingest.NewResolver(nil, assets),
		Sinks:      []knowcore.DocumentWriter{f.writer},
	}
	return f
}

func (f *pipelineFixture) create(t *testing.T, raw *knowcore.RawDoc, html string) *knowcore.RawDoc {
	t.Helper()
	require.NoError(t, f.rawdocs.CreateRawDoc(context.Background(), raw, []byte(html)))
	return raw
}

func TestPipeline_Ingest(t *testing.T) {
	t.Parallel()

	t.Run("heading paragraph and inline image", func(t *testing.T) {
		t.Parallel()

		f := newPipelineFixture(t)
		raw := f.create(t, &knowcore.RawDoc{SourceType: knowcore.SourceTypeSingleFileHTML, SourceURI: "/tmp/page.html"},
			`<body><h1>Title</h1><p>Hello <a href="/x">link</a></p><img src="data:image/png;base64,AAAA="></body>`)

		doc, err := f.pipeline.Ingest(context.Background(), raw)

		require.NoError(t, err)
		require.Len(t, doc.Sections, 3)

		assert.Equal(t, knowcore.BlockHeading, doc.Sections[0].Type)
		assert.Equal(t, 1, doc.Sections[0].Level)
		assert.Equal(t, "Title", doc.Sections[0].Content)

		assert.Equal(t, knowcore.BlockParagraph, doc.Sections[1].Type)
		assert.Equal(t, "Hello [link](/x)", doc.Sections[1].Content)

		assert.Equal(t, knowcore.BlockFigure, doc.Sections[2].Type)
		require.Len(t, doc.Sections[2].Assets, 1)
		asset := doc.Sections[2].Assets[0]
		assert.Equal(t, ingest.AssetID([]byte{0, 0, 0}, ".png"), asset.AssetID)
		assert.Equal(t, "assets/"+asset.AssetID, asset.Path)

		_, err = os.Stat(f.assets.Path(asset.AssetID))
		require.NoError(t, err)
		_, err = os.Stat(f.writer.JSONPath(doc.DocID))
		require.NoError(t, err)

		pending := true
		left, err := f.rawdocs.FindRawDocs(context.Background(), knowcore.RawDocFilter{Pending: &pending})
		require.NoError(t, err)
		assert.Empty(t, left)
	})

	t.Run("ingest by ID", func(t *testing.T) {
		t.Parallel()

		f := newPipelineFixture(t)
		raw := f.create(t, &knowcore.RawDoc{SourceType: knowcore.SourceTypeURL, SourceURI: "https://example.com/a"}, `<body><h2>Hi</h2></body>`)

		doc, err := f.pipeline.IngestByID(context.Background(), raw.RawDocID)

		require.NoError(t, err)
		assert.Equal(t, raw.RawDocID, doc.Meta.Source.RawDocID)
		assert.Equal(t, "https://example.com/a", doc.Meta.Source.URL)
	})

	t.Run("unknown raw document", func(t *testing.T) {
		t.Parallel()

		f := newPipelineFixture(t)

		_, err := f.pipeline.IngestByID(context.Background(), "missing")

		var pe *knowcore.PipelineError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, knowcore.StageRead, pe.Stage)
		assert.Equal(t, knowcore.ENOTFOUND, knowcore.ErrorCode(err))
	})

	t.Run("unsupported source type", func(t *testing.T) {
		t.Parallel()

		f := newPipelineFixture(t)
		raw := &knowcore.RawDoc{RawDocID: "pdf-1", SourceType: "pdf", SourceURI: "/tmp/a.pdf"}

		_, err := f.pipeline.Ingest(context.Background(), raw)

		var pe *knowcore.PipelineError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, knowcore.StageRead, pe.Stage)
		assert.Equal(t, "pdf-1", pe.RawDocID)
		assert.Equal(t, knowcore.ENOTIMPLEMENTED, knowcore.ErrorCode(err))
	})

	t.Run("empty input is a fatal extraction error", func(t *testing.T) {
		t.Parallel()

		f := newPipelineFixture(t)
		raw := f.create(t, &knowcore.RawDoc{SourceType: knowcore.SourceTypeURL, SourceURI: "https://example.com/empty"}, "   ")

		_, err := f.pipeline.Ingest(context.Background(), raw)

		var pe *knowcore.PipelineError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, knowcore.StageExtract, pe.Stage)
		assert.Equal(t, knowcore.EINVALID, knowcore.ErrorCode(err))

		pending := true
		left, err := f.rawdocs.FindRawDocs(context.Background(), knowcore.RawDocFilter{Pending: &pending})
		require.NoError(t, err)
		assert.Len(t, left, 1)
	})

	t.Run("sink failure leaves the document pending", func(t *testing.T) {
		t.Parallel()

		f := newPipelineFixture(t)
		f.pipeline.Sinks = append(f.pipeline.Sinks, &mock.DocumentWriter{
			WriteDocumentFn: func(ctx context.Context, doc *knowcore.Document) error {
				return errors.New("index unavailable")
			},
		})
		raw := f.create(t, &knowcore.RawDoc{SourceType: knowcore.SourceTypeURL, SourceURI: "https://example.com/a"}, `<body><p>x</p></body>`)

		_, err := f.pipeline.Ingest(context.Background(), raw)

		var pe *knowcore.PipelineError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, knowcore.StageWrite, pe.Stage)

		got, err := f.rawdocs.FindRawDocs(context.Background(), knowcore.RawDocFilter{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		pending := true
		left, err := f.rawdocs.FindRawDocs(context.Background(), knowcore.RawDocFilter{Pending: &pending})
		require.NoError(t, err)
		assert.Len(t, left, 1)
	})

	t.Run("meta fallback fills only missing fields", func(t *testing.T) {
		t.Parallel()

		f := newPipelineFixture(t)
		var calls int
		f.pipeline.MetaFallbacks = []knowcore.MetaFallback{
			&mock.MetaFallback{
				FallbackFn: func(rawHTML, sourceURI string) (*knowcore.RawMeta, error) {
					calls++
					return nil, errors.New("cannot parse")
				},
			},
			&mock.MetaFallback{
				FallbackFn: func(rawHTML, sourceURI string) (*knowcore.RawMeta, error) {
					calls++
					return &knowcore.RawMeta{Title: "Fallback Title", Language: "de", Authors: []string{"Grace"}}, nil
				},
			},
		}
		adapter := *scenarioAdapter
		adapter.Meta = map[string]knowcore.SelectorSpec{knowcore.MetaLanguage: {"css:html@lang"}}
		f.pipeline.Router = &mock.Router{
			SelectAdapterFn: func(ctx context.Context, raw *knowcore.RawDoc, html string) (*knowcore.Adapter, error) {
				return &adapter, nil
			},
		}
		raw := f.create(t, &knowcore.RawDoc{SourceType: knowcore.SourceTypeURL, SourceURI: "https://example.com/a"}, `<html lang="en"><body><p>x</p></body></html>`)

		doc, err := f.pipeline.Ingest(context.Background(), raw)

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, "Fallback Title", doc.Meta.Title)
		assert.Equal(t, "en", doc.Meta.Language)
		assert.Equal(t, []string{"Grace"}, doc.Meta.Authors)
	})
}
