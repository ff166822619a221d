package ingest

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/knowcore"
	"golang.org/x/sync/errgroup"
)

// Default poller settings.
const (
	DefaultPollInterval    = 30 * time.Second
	DefaultPollConcurrency = 4
)

// Ingester ingests a single raw document.
type Ingester interface {
	Ingest(ctx context.Context, raw *knowcore.RawDoc) (*knowcore.Document, error)
}

// IngestFunc adapts a function to Ingester.
type IngestFunc func(ctx context.Context, raw *knowcore.RawDoc) (*knowcore.Document, error)

// Ingest calls f.
func (f IngestFunc) Ingest(ctx context.Context, raw *knowcore.RawDoc) (*knowcore.Document, error) {
	return f(ctx, raw)
}

// PollResult counts the outcomes of one poll pass.
type PollResult struct {
	Processed int
	Failed    int
}

// Poller repeatedly ingests pending raw documents. Failed documents stay
// pending and are retried on the next pass.
type Poller struct {
	RawDocs     knowcore.RawDocService
	Ingester    Ingester
	Interval    time.Duration
	Concurrency int
	Logger      *slog.Logger
}

// Run polls immediately and then every Interval until ctx is canceled.
func (p *Poller) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res, err := p.Poll(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			p.logger().Error("poll", "err", err)
		} else if res.Processed+res.Failed > 0 {
			p.logger().Info("poll", "processed", res.Processed, "failed", res.Failed)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Poll runs one pass over the pending raw documents with bounded
// parallelism. Per-document failures are logged and counted, not returned.
func (p *Poller) Poll(ctx context.Context) (PollResult, error) {
	pending := true
	raws, err := p.RawDocs.FindRawDocs(ctx, knowcore.RawDocFilter{Pending: &pending})
	if err != nil {
		return PollResult{}, err
	}

	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultPollConcurrency
	}

	var processed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, raw := range raws {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if _, err := p.Ingester.Ingest(gctx, raw); err != nil {
				failed.Add(1)
				p.logger().Warn("ingest failed", "rawdoc_id", raw.RawDocID, "source", raw.SourceURI, "err", err)
				return nil
			}
			processed.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return PollResult{Processed: int(processed.Load()), Failed: int(failed.Load())}, ctx.Err()
}

func (p *Poller) logger() *slog.Logger {
	if p.Logger == nil {
		return discardLogger
	}
	return p.Logger
}
