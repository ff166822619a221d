package goquery_test

import (
	"testing"

	"github.com/fwojciec/knowcore"
	"github.com/fwojciec/knowcore/goquery"
	"github.com/stretchr/testify/assert"
)

const metaPage = `<html lang="en"><head>
<title>Page Title</title>
<meta property="og:title" content="">
<link rel="canonical" href="/posts/hello">
<meta name="author" content="Ada">
<meta name="author" content="Grace">
<meta name="author" content="Ada">
<meta name="author" content=" ">
<meta name="keywords" content="go, html , parsing">
<meta property="article:published_time" content="2024-03-01T10:00:00Z">
</head><body><h1>Heading Title</h1></body></html>`

func TestExtractMeta(t *testing.T) {
	t.Parallel()

	t.Run("first non-empty fallback wins", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, metaPage)
		specs := map[string]knowcore.SelectorSpec{
			knowcore.MetaTitle: {"css:meta[property='og:title']@content", "css:h1", "css:title"},
		}

		m := goquery.ExtractMeta(doc.Selection, specs, "")

		assert.Equal(t, "Heading Title", m.Title)
	})

	t.Run("authors keep order and drop duplicates and blanks", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, metaPage)
		specs := map[string]knowcore.SelectorSpec{
			knowcore.MetaAuthors: {"css:meta[name=author]@content"},
		}

		m := goquery.ExtractMeta(doc.Selection, specs, "")

		assert.Equal(t, []string{"Ada", "Grace"}, m.Authors)
	})

	t.Run("tags split comma separated values", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, metaPage)
		specs := map[string]knowcore.SelectorSpec{
			knowcore.MetaTags: {"css:meta[property='article:tag']@content", "css:meta[name=keywords]@content"},
		}

		m := goquery.ExtractMeta(doc.Selection, specs, "")

		assert.Equal(t, []string{"go", "html", "parsing"}, m.Tags)
	})

	t.Run("relative url resolved against http source", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, metaPage)
		specs := map[string]knowcore.SelectorSpec{
			knowcore.MetaURL: {"css:link[rel=canonical]@href"},
		}

		m := goquery.ExtractMeta(doc.Selection, specs, "https://example.com/blog/index.html")

		assert.Equal(t, "https://example.com/posts/hello", m.URL)
	})

	t.Run("relative url kept for local source", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, metaPage)
		specs := map[string]knowcore.SelectorSpec{
			knowcore.MetaURL: {"css:link[rel=canonical]@href"},
		}

		m := goquery.ExtractMeta(doc.Selection, specs, "/data/page.html")

		assert.Equal(t, "/posts/hello", m.URL)
	})

	t.Run("missing and malformed selectors leave fields empty", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, metaPage)
		specs := map[string]knowcore.SelectorSpec{
			knowcore.MetaUpdatedAt:   {"css:meta[property='article:modified_time']@content"},
			knowcore.MetaDescription: {"css:meta[[[@content"},
			knowcore.MetaLanguage:    {"html@lang"},
		}

		m := goquery.ExtractMeta(doc.Selection, specs, "")

		assert.Empty(t, m.UpdatedAt)
		assert.Empty(t, m.Description)
		assert.Empty(t, m.Language, "meta selectors require the css: prefix")
	})

	t.Run("attribute values are returned raw", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, metaPage)
		specs := map[string]knowcore.SelectorSpec{
			knowcore.MetaPublishedAt: {"css:meta[property='article:published_time']@content"},
			knowcore.MetaLanguage:    {"css:html@lang"},
		}

		m := goquery.ExtractMeta(doc.Selection, specs, "")

		assert.Equal(t, "2024-03-01T10:00:00Z", m.PublishedAt)
		assert.Equal(t, "en", m.Language)
	})
}
