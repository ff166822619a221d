package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/knowcore"
	"golang.org/x/sync/errgroup"
)

// DefaultAcquireConcurrency bounds parallel fetches during sitemap
// acquisition.
const DefaultAcquireConcurrency = 8

// Acquirer fetches or imports source documents and records them as raw
// documents.
type Acquirer struct {
	Fetcher     knowcore.Fetcher
	RawDocs     knowcore.RawDocService
	Sitemaps    knowcore.SitemapService
	Concurrency int
	RetryDelays []time.Duration
	Logger      *slog.Logger
}

// AcquireURL fetches url and stores it as a raw document of type url.
func (a *Acquirer) AcquireURL(ctx context.Context, url string) (*knowcore.RawDoc, error) {
	res, err := fetchWithRetry(ctx, a.Fetcher, url, a.RetryDelays, func(attempt int, err error) {
		a.logger().Info("retry", "url", url, "attempt", attempt, "err", err)
	})
	if err != nil {
		return nil, err
	}

	raw := &knowcore.RawDoc{
		SourceType:  knowcore.SourceTypeURL,
		SourceURI:   url,
		ContentType: mediaType(res.ContentType),
		Metadata:    map[string]any{},
	}
	if res.URL != "" && res.URL != url {
		raw.Metadata["final_url"] = res.URL
	}
	if err := a.RawDocs.CreateRawDoc(ctx, raw, res.Data); err != nil {
		return nil, err
	}
	return raw, nil
}

// AcquireFile imports a local HTML file as a raw document of type
// singlefile_html. sourceURI, when set, is recorded for routing and as the
// base for relative links; it defaults to the file's absolute path.
// Returns ENOTFOUND if the file does not exist and ENOTIMPLEMENTED for
// files that are not .html or .htm.
func (a *Acquirer) AcquireFile(ctx context.Context, path, sourceURI string) (*knowcore.RawDoc, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", "":
	default:
		return nil, knowcore.Errorf(knowcore.ENOTIMPLEMENTED, "unsupported file type %q", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, knowcore.Errorf(knowcore.ENOTFOUND, "file %q not found", path)
	} else if err != nil {
		return nil, err
	}

	if sourceURI == "" {
		if abs, err := filepath.Abs(path); err == nil {
			sourceURI = abs
		} else {
			sourceURI = path
		}
	}
	raw := &knowcore.RawDoc{
		SourceType:  knowcore.SourceTypeSingleFileHTML,
		SourceURI:   sourceURI,
		ContentType: "text/html",
		Metadata:    map[string]any{"original_path": path},
	}
	if err := a.RawDocs.CreateRawDoc(ctx, raw, data); err != nil {
		return nil, err
	}
	return raw, nil
}

// ProgressType indicates the type of progress event.
type ProgressType int

// Progress event types.
const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressEvent reports progress during bulk acquisition.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressFunc is a callback for reporting acquisition progress. Calls are
// serialized.
type ProgressFunc func(event ProgressEvent)

// AcquireResult holds the outcome of a bulk acquisition.
type AcquireResult struct {
	RawDocs []*knowcore.RawDoc
	Failed  int
}

// AcquireSitemap discovers URLs from the site's sitemaps and acquires each
// one. Individual failures are counted, not returned.
func (a *Acquirer) AcquireSitemap(ctx context.Context, baseURL string, filter *knowcore.URLFilter, progress ProgressFunc) (*AcquireResult, error) {
	urls, err := a.Sitemaps.DiscoverURLs(ctx, baseURL, filter)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	notify := func(e ProgressEvent) {
		if progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		progress(e)
	}
	notify(ProgressEvent{Type: ProgressStarted, Total: len(urls)})

	concurrency := a.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultAcquireConcurrency
	}

	raws := make([]*knowcore.RawDoc, len(urls))
	var completed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, url := range urls {
		g.Go(func() error {
			raw, err := a.AcquireURL(gctx, url)
			done := int(completed.Add(1))
			if err != nil {
				failed.Add(1)
				notify(ProgressEvent{Type: ProgressFailed, Completed: done, Total: len(urls), URL: url, Error: err})
				return nil
			}
			raws[i] = raw
			notify(ProgressEvent{Type: ProgressCompleted, Completed: done, Total: len(urls), URL: url})
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &AcquireResult{Failed: int(failed.Load())}
	for _, raw := range raws {
		if raw != nil {
			result.RawDocs = append(result.RawDocs, raw)
		}
	}
	notify(ProgressEvent{Type: ProgressFinished, Completed: len(urls), Total: len(urls)})
	return result, nil
}

// mediaType strips parameters from a content type.
func mediaType(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	return strings.TrimSpace(ct)
}

func (a *Acquirer) logger() *slog.Logger {
	if a.Logger == nil {
		return discardLogger
	}
	return a.Logger
}
