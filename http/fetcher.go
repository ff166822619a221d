// Package http provides HTTP implementations of knowcore.Fetcher and
// knowcore.SitemapService. The same fetcher acquires pages and downloads
// figure images; it does not execute JavaScript.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/knowcore"
)

const (
	// DefaultFetchTimeout bounds a single request including the body read.
	DefaultFetchTimeout = 15 * time.Second

	// DefaultMaxBytes caps the size of a response body.
	DefaultMaxBytes = 32 << 20
)

// DefaultUserAgent identifies requests made by the fetcher.
var DefaultUserAgent = "knowcore/" + knowcore.ParserVersion

// Ensure Fetcher implements knowcore.Fetcher at compile time.
var _ knowcore.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves content from HTTP(S) URLs. Failures are returned as
// *knowcore.FetchError so callers can tell timeouts, bad statuses and
// network errors apart.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	maxBytes  int64
	limiter   knowcore.DomainLimiter
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for each request.
// Defaults to DefaultFetchTimeout (15s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBytes caps the accepted response body size.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// WithLimiter rate limits requests per host.
func WithLimiter(l knowcore.DomainLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithClient replaces the underlying HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		maxBytes:  DefaultMaxBytes,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{}
	}
	return f
}

// Fetch retrieves the body at rawURL. Only 2xx responses succeed.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*knowcore.FetchResult, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &knowcore.FetchError{URL: rawURL, Reason: knowcore.FetchInvalid, Err: err}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, u.Hostname()); err != nil {
			return nil, &knowcore.FetchError{URL: rawURL, Reason: classify(err, knowcore.FetchNetwork), Err: err}
		}
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &knowcore.FetchError{URL: rawURL, Reason: knowcore.FetchInvalid, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &knowcore.FetchError{URL: rawURL, Reason: classify(err, knowcore.FetchNetwork), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &knowcore.FetchError{URL: rawURL, Reason: knowcore.FetchStatus, StatusCode: resp.StatusCode}
	}

	body := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &knowcore.FetchError{URL: rawURL, Reason: classify(err, knowcore.FetchRead), Err: err}
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, &knowcore.FetchError{
			URL:    rawURL,
			Reason: knowcore.FetchRead,
			Err:    fmt.Errorf("body exceeds %d bytes", f.maxBytes),
		}
	}

	return &knowcore.FetchResult{
		URL:         resp.Request.URL.String(),
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// classify maps deadline errors to FetchTimeout and everything else to def.
func classify(err error, def knowcore.FetchFailure) knowcore.FetchFailure {
	if errors.Is(err, context.DeadlineExceeded) {
		return knowcore.FetchTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return knowcore.FetchTimeout
	}
	return def
}
