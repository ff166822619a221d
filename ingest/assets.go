package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/knowcore"
)

// hashPrefix bounds how much of an asset is hashed for its ID.
const hashPrefix = 64 << 10

// Failure reasons for assets that never reach a fetch.
const (
	AssetDecode   knowcore.FetchFailure = "decode"
	AssetUnusable knowcore.FetchFailure = "unusable"
)

// AssetID returns the content address of data with the given extension
// (including the leading dot): hex xxhash64 of the first 64 KiB.
func AssetID(data []byte, ext string) string {
	if len(data) > hashPrefix {
		data = data[:hashPrefix]
	}
	return fmt.Sprintf("%016x%s", xxhash.Sum64(data), ext)
}

// DecodeDataURI decodes an inline image "data:image/<subtype>[;...];base64,<payload>"
// and returns its bytes and extension. Padding and alphabet variants are
// tolerated.
func DecodeDataURI(src string) ([]byte, string, error) {
	rest, ok := cutPrefixFold(strings.TrimSpace(src), "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data URI")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("data URI without payload")
	}
	params := strings.Split(header, ";")
	mediaType := strings.ToLower(strings.TrimSpace(params[0]))
	subtype, ok := strings.CutPrefix(mediaType, "image/")
	if !ok || subtype == "" {
		return nil, "", fmt.Errorf("data URI is not an image: %q", mediaType)
	}
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if !isBase64 {
		return nil, "", fmt.Errorf("data URI is not base64 encoded")
	}

	if strings.Contains(payload, "%") {
		if unescaped, err := url.PathUnescape(payload); err == nil {
			payload = unescaped
		}
	}
	data, err := decodeBase64(payload)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty data URI payload")
	}
	return data, extensionForSubtype(subtype), nil
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

// decodeBase64 strips whitespace and padding and tries the standard then
// URL-safe alphabet.
func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, payload)
	payload = strings.TrimRight(payload, "=")

	data, err := base64.RawStdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}
	if data, urlErr := base64.RawURLEncoding.DecodeString(payload); urlErr == nil {
		return data, nil
	}
	return nil, err
}

func extensionForSubtype(subtype string) string {
	subtype, _, _ = strings.Cut(subtype, "+")
	subtype = strings.TrimPrefix(subtype, "x-")
	if subtype == "jpeg" {
		subtype = "jpg"
	}
	return "." + subtype
}

// ExtensionForContentType maps a response content type to a file
// extension. Unrecognized types default to .png.
func ExtensionForContentType(ct string) string {
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "png"):
		return ".png"
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		return ".jpg"
	case strings.Contains(ct, "gif"):
		return ".gif"
	case strings.Contains(ct, "webp"):
		return ".webp"
	default:
		return ".png"
	}
}

// AssetFailure records one asset that could not be resolved.
type AssetFailure struct {
	Section string
	Source  string
	Reason  knowcore.FetchFailure
	Err     error
}

// ResolveReport summarizes one Resolve call.
type ResolveReport struct {
	Resolved int
	Failed   int
	Failures []AssetFailure
}

// Resolver turns figure placeholders into content-addressed asset files.
type Resolver struct {
	Fetcher knowcore.Fetcher
	Store   knowcore.AssetStore
	Logger  *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(fetcher knowcore.Fetcher, store knowcore.AssetStore) *Resolver {
	return &Resolver{Fetcher: fetcher, Store: store}
}

// fetched is the explicit outcome of obtaining one asset's bytes.
type fetched struct {
	data   []byte
	ext    string
	reason knowcore.FetchFailure
	err    error
}

func (f fetched) ok() bool {
	return f.reason == "" && len(f.data) > 0
}

// Resolve returns a copy of doc whose figure assets point at stored files.
// Relative sources are resolved against baseURL, or the document's source
// URL when baseURL is empty. Assets that cannot be obtained get an empty
// record; only a failing store write is returned as an error (EINTERNAL).
// Sections are never reordered or removed.
func (r *Resolver) Resolve(ctx context.Context, doc *knowcore.Document, baseURL string) (*knowcore.Document, *ResolveReport, error) {
	out := doc.Clone()
	report := &ResolveReport{}
	if baseURL == "" {
		baseURL = doc.Meta.Source.URL
	}
	base := parseBase(baseURL)
	cache := map[string]fetched{}

	for i := range out.Sections {
		s := &out.Sections[i]
		if s.Type != knowcore.BlockFigure {
			continue
		}
		for j := range s.Assets {
			a := &s.Assets[j]
			src := strings.TrimSpace(a.OriginalSrc)
			if src == "" {
				continue
			}
			a.OriginalSrc = ""
			a.AssetID, a.Path = "", ""

			f, seen := cache[src]
			if !seen {
				f = r.obtain(ctx, src, base)
				cache[src] = f
			}
			if !f.ok() {
				report.Failed++
				report.Failures = append(report.Failures, AssetFailure{Section: s.SectionID, Source: truncateSource(src), Reason: f.reason, Err: f.err})
				r.logger().Debug("asset unresolved", "section", s.SectionID, "src", truncateSource(src), "reason", f.reason, "err", f.err)
				continue
			}

			id := AssetID(f.data, f.ext)
			if err := r.Store.PutAsset(ctx, id, f.data); err != nil {
				return nil, report, knowcore.Errorf(knowcore.EINTERNAL, "store asset %s: %v", id, err)
			}
			a.AssetID = id
			a.Path = knowcore.AssetPath(id)
			report.Resolved++
		}
	}
	return out, report, nil
}

// obtain decodes or fetches the bytes behind src.
func (r *Resolver) obtain(ctx context.Context, src string, base *url.URL) fetched {
	if _, ok := cutPrefixFold(src, "data:"); ok {
		data, ext, err := DecodeDataURI(src)
		if err != nil {
			return fetched{reason: AssetDecode, err: err}
		}
		return fetched{data: data, ext: ext}
	}

	target, ok := absoluteURL(src, base)
	if !ok {
		return fetched{reason: AssetUnusable}
	}
	if r.Fetcher == nil {
		return fetched{reason: AssetUnusable, err: fmt.Errorf("no fetcher configured")}
	}
	res, err := r.Fetcher.Fetch(ctx, target)
	if err != nil {
		reason := knowcore.FetchReason(err)
		if reason == "" {
			reason = knowcore.FetchNetwork
		}
		return fetched{reason: reason, err: err}
	}
	if len(res.Data) == 0 {
		return fetched{reason: knowcore.FetchRead, err: io.ErrUnexpectedEOF}
	}
	return fetched{data: res.Data, ext: ExtensionForContentType(res.ContentType)}
}

// absoluteURL returns src as an absolute HTTP(S) URL, resolving it against
// base when relative.
func absoluteURL(src string, base *url.URL) (string, bool) {
	u, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	if !u.IsAbs() {
		if base == nil {
			return "", false
		}
		u = base.ResolveReference(u)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return u.String(), true
}

func parseBase(s string) *url.URL {
	if knowcore.HTTPBase(s) == "" {
		return nil
	}
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return u
}

// truncateSource keeps inline payloads out of logs and reports.
func truncateSource(src string) string {
	const limit = 96
	if len(src) <= limit {
		return src
	}
	return src[:limit] + "..."
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return discardLogger
	}
	return r.Logger
}

var discardLogger = slog.New(slog.DiscardHandler)
