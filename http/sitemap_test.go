package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/knowcore"
	khttp "github.com/fwojciec/knowcore/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("reads sitemap listed in robots.txt", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt": "User-agent: *\nDisallow: /private/\nsitemap: {{BASE}}/pages.xml\n",
			"/pages.xml": urlset("{{BASE}}/docs/intro", "{{BASE}}/docs/guide"),
		})

		urls, err := newSitemapService().DiscoverURLs(context.Background(), srv.URL, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/docs/intro", srv.URL + "/docs/guide"}, urls)
	})

	t.Run("falls back to sitemap.xml", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": urlset("{{BASE}}/page1"),
		})

		urls, err := newSitemapService().DiscoverURLs(context.Background(), srv.URL, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/page1"}, urls)
	})

	t.Run("follows sitemap index and deduplicates", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>{{BASE}}/sitemap-docs.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-api.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-docs.xml</loc></sitemap>
</sitemapindex>`,
			"/sitemap-docs.xml": urlset("{{BASE}}/docs/intro", "{{BASE}}/api/ref"),
			"/sitemap-api.xml":  urlset("{{BASE}}/api/ref"),
		})

		urls, err := newSitemapService().DiscoverURLs(context.Background(), srv.URL, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/docs/intro", srv.URL + "/api/ref"}, urls)
	})

	t.Run("restricts to base path and applies filter", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": urlset("{{BASE}}/docs", "{{BASE}}/docs/intro", "{{BASE}}/docs/old/x", "{{BASE}}/documentation", "{{BASE}}/blog/post"),
		})
		filter, err := knowcore.CompileURLFilter(nil, []string{`/old/`})
		require.NoError(t, err)

		urls, err := newSitemapService().DiscoverURLs(context.Background(), srv.URL+"/docs/", filter)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/docs", srv.URL + "/docs/intro"}, urls)
	})

	t.Run("no sitemap yields empty list", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{})

		urls, err := newSitemapService().DiscoverURLs(context.Background(), srv.URL, nil)

		require.NoError(t, err)
		assert.NotNil(t, urls)
		assert.Empty(t, urls)
	})

	t.Run("sitemap without root element is an error", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": "not xml at all",
		})

		_, err := newSitemapService().DiscoverURLs(context.Background(), srv.URL, nil)

		assert.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": urlset("{{BASE}}/page1"),
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newSitemapService().DiscoverURLs(ctx, srv.URL, nil)

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rejects invalid base URL", func(t *testing.T) {
		t.Parallel()

		_, err := newSitemapService().DiscoverURLs(context.Background(), "not a url", nil)

		assert.Equal(t, knowcore.EINVALID, knowcore.ErrorCode(err))
	})
}

func newSitemapService() *khttp.SitemapService {
	return khttp.NewSitemapService(khttp.NewFetcher())
}

func urlset(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, loc := range locs {
		b.WriteString("  <url><loc>" + loc + "</loc></url>\n")
	}
	b.WriteString("</urlset>")
	return b.String()
}

// newTestServer creates a test HTTP server with the given path->content mapping.
// Content strings may contain {{BASE}} which is replaced with the server URL.
func newTestServer(t *testing.T, content map[string]string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(r.URL.Path, ".txt") {
			w.Header().Set("Content-Type", "text/plain")
		} else {
			w.Header().Set("Content-Type", "application/xml")
		}
		_, _ = w.Write([]byte(strings.ReplaceAll(body, "{{BASE}}", srv.URL)))
	}))
	t.Cleanup(srv.Close)

	return srv
}
