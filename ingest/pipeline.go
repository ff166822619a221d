package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/knowcore"
)

// Pipeline runs one raw document through routing, extraction,
// normalization, asset resolution and the sinks. Each call is independent;
// a Pipeline may be shared by concurrent callers.
type Pipeline struct {
	RawDocs       knowcore.RawDocService
	Router        knowcore.Router
	Extractor     knowcore.Extractor
	MetaFallbacks []knowcore.MetaFallback
	Normalizer    *Normalizer
	Resolver      *Resolver
	Sinks         []knowcore.DocumentWriter
	Logger        *slog.Logger
}

// IngestByID loads the raw document with id and ingests it.
func (p *Pipeline) IngestByID(ctx context.Context, id string) (*knowcore.Document, error) {
	raw, err := p.RawDocs.FindRawDocByID(ctx, id)
	if err != nil {
		return nil, &knowcore.PipelineError{RawDocID: id, Stage: knowcore.StageRead, Err: err}
	}
	return p.Ingest(ctx, raw)
}

// Ingest produces the Document for raw, writes it to every sink and marks
// raw processed. Failures are returned as *knowcore.PipelineError naming
// the stage.
func (p *Pipeline) Ingest(ctx context.Context, raw *knowcore.RawDoc) (*knowcore.Document, error) {
	begin := time.Now()
	fail := func(stage knowcore.Stage, err error) error {
		return &knowcore.PipelineError{RawDocID: raw.RawDocID, Stage: stage, Err: err}
	}

	if !raw.IsHTML() {
		return nil, fail(knowcore.StageRead, knowcore.Errorf(knowcore.ENOTIMPLEMENTED, "unsupported source type %q", raw.SourceType))
	}
	content, err := p.RawDocs.ReadContent(ctx, raw)
	if err != nil {
		return nil, fail(knowcore.StageRead, err)
	}
	html := string(content)

	adapter, err := p.Router.SelectAdapter(ctx, raw, html)
	if err != nil {
		return nil, fail(knowcore.StageRoute, err)
	}

	res, err := p.Extractor.Extract(html, adapter, raw.SourceURI)
	if err != nil {
		return nil, fail(knowcore.StageExtract, err)
	}
	p.fillMeta(raw, html, &res.Meta)

	normalizer := p.Normalizer
	if normalizer == nil {
		normalizer = NewNormalizer()
	}
	doc := normalizer.Normalize(res, raw)

	if p.Resolver != nil {
		resolved, report, err := p.Resolver.Resolve(ctx, doc, raw.BaseURL())
		if err != nil {
			return nil, fail(knowcore.StageAssets, err)
		}
		doc = resolved
		if report.Resolved+report.Failed > 0 {
			p.logger().Debug("assets", "rawdoc_id", raw.RawDocID, "resolved", report.Resolved, "failed", report.Failed)
		}
	}

	for _, sink := range p.Sinks {
		if err := sink.WriteDocument(ctx, doc); err != nil {
			return nil, fail(knowcore.StageWrite, err)
		}
	}
	if err := p.RawDocs.MarkProcessed(ctx, raw.RawDocID); err != nil {
		return nil, fail(knowcore.StageWrite, err)
	}

	p.logger().Info("ingested",
		"rawdoc_id", raw.RawDocID,
		"doc_id", doc.DocID,
		"adapter", adapter.Name,
		"sections", len(doc.Sections),
		"duration", time.Since(begin),
	)
	return doc, nil
}

// fillMeta merges fallback metadata into fields the adapter left empty.
// Fallback failures are logged and ignored.
func (p *Pipeline) fillMeta(raw *knowcore.RawDoc, html string, meta *knowcore.RawMeta) {
	for _, fb := range p.MetaFallbacks {
		if metaComplete(meta) {
			return
		}
		extra, err := fb.Fallback(html, raw.SourceURI)
		if err != nil {
			p.logger().Debug("meta fallback failed", "rawdoc_id", raw.RawDocID, "err", err)
			continue
		}
		meta.Merge(extra)
	}
}

func metaComplete(m *knowcore.RawMeta) bool {
	return m.Title != "" && len(m.Authors) > 0 && m.PublishedAt != "" && m.Language != "" && m.Description != ""
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return discardLogger
	}
	return p.Logger
}
