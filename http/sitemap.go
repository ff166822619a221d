package http

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/knowcore"
)

// Ensure SitemapService implements knowcore.SitemapService.
var _ knowcore.SitemapService = (*SitemapService)(nil)

// SitemapService discovers page URLs from website sitemaps. Requests go
// through a knowcore.Fetcher so they share its timeout and rate limits.
type SitemapService struct {
	fetcher knowcore.Fetcher
}

// NewSitemapService creates a new SitemapService using fetcher.
func NewSitemapService(fetcher knowcore.Fetcher) *SitemapService {
	return &SitemapService{fetcher: fetcher}
}

// DiscoverURLs returns the deduplicated page URLs of a site's sitemaps in
// the order they are listed. Returns an empty slice if no sitemap exists.
//
// When baseURL has a non-root path (e.g., https://example.com/docs/),
// only URLs below that path are returned.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *knowcore.URLFilter) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, knowcore.Errorf(knowcore.EINVALID, "invalid base URL %q", baseURL)
	}
	prefix := strings.TrimSuffix(base.Path, "/")
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}

	locations, err := s.sitemapLocations(ctx, root)
	if err != nil {
		return nil, err
	}

	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)
	urls := []string{}
	for _, loc := range locations {
		found, err := s.readSitemap(ctx, loc, seenSitemaps)
		if err != nil {
			return nil, err
		}
		for _, u := range found {
			if seenURLs[u] || !underPath(u, prefix) || !filter.Match(u) {
				continue
			}
			seenURLs[u] = true
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// underPath reports whether rawURL's path is prefix or below it. An empty
// prefix admits every URL.
func underPath(rawURL, prefix string) bool {
	if prefix == "" {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Path == prefix || strings.HasPrefix(u.Path, prefix+"/")
}

// sitemapLocations reads Sitemap: directives from robots.txt and falls back
// to /sitemap.xml when there are none.
func (s *SitemapService) sitemapLocations(ctx context.Context, root *url.URL) ([]string, error) {
	res, err := s.fetcher.Fetch(ctx, root.JoinPath("robots.txt").String())
	if err == nil {
		var locations []string
		scanner := bufio.NewScanner(bytes.NewReader(res.Data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if len(line) > len("sitemap:") && strings.EqualFold(line[:len("sitemap:")], "sitemap:") {
				if loc := strings.TrimSpace(line[len("sitemap:"):]); loc != "" {
					locations = append(locations, loc)
				}
			}
		}
		if len(locations) > 0 {
			return locations, nil
		}
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return []string{root.JoinPath("sitemap.xml").String()}, nil
}

// readSitemap fetches a urlset or sitemapindex document. Index entries are
// followed recursively; each sitemap is read at most once. A missing
// sitemap yields no URLs.
func (s *SitemapService) readSitemap(ctx context.Context, loc string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[loc] {
		return nil, nil
	}
	seen[loc] = true

	res, err := s.fetcher.Fetch(ctx, loc)
	if err != nil {
		var fe *knowcore.FetchError
		if errors.As(err, &fe) && fe.Reason == knowcore.FetchStatus {
			return nil, nil
		}
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(res.Data); err != nil {
		return nil, fmt.Errorf("parsing sitemap %s: %w", loc, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parsing sitemap %s: empty document", loc)
	}

	if root.Tag == "sitemapindex" {
		var urls []string
		for _, child := range locs(root, "sitemap") {
			found, err := s.readSitemap(ctx, child, seen)
			if err != nil {
				return nil, err
			}
			urls = append(urls, found...)
		}
		return urls, nil
	}
	return locs(root, "url"), nil
}

// locs returns the trimmed <loc> values of root's children named tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if v := strings.TrimSpace(loc.Text()); v != "" {
			out = append(out, v)
		}
	}
	return out
}
