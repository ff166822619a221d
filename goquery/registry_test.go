package goquery_test

import (
	"testing"

	"github.com/fwojciec/knowcore"
	"github.com/fwojciec/knowcore/goquery"
	"github.com/fwojciec/knowcore/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AdapterForHTML(t *testing.T) {
	t.Parallel()

	fallback := &knowcore.Adapter{Name: "fallback"}

	t.Run("returns adapter for detected framework", func(t *testing.T) {
		t.Parallel()

		detector := &mock.FrameworkDetector{
			DetectFn: func(string) knowcore.Framework { return knowcore.FrameworkSphinx },
		}
		registry := goquery.NewRegistry(detector, fallback)
		registry.Register(knowcore.FrameworkSphinx, &knowcore.Adapter{Name: "sphinx"})

		a, f := registry.AdapterForHTML("<html></html>")

		assert.Equal(t, "sphinx", a.Name)
		assert.Equal(t, knowcore.FrameworkSphinx, f)
	})

	t.Run("returns fallback for unknown framework", func(t *testing.T) {
		t.Parallel()

		detector := &mock.FrameworkDetector{
			DetectFn: func(string) knowcore.Framework { return knowcore.FrameworkUnknown },
		}
		registry := goquery.NewRegistry(detector, fallback)

		a, f := registry.AdapterForHTML("<html></html>")

		assert.Same(t, fallback, a)
		assert.Equal(t, knowcore.FrameworkUnknown, f)
	})

	t.Run("returns fallback when detected framework has no adapter", func(t *testing.T) {
		t.Parallel()

		detector := &mock.FrameworkDetector{
			DetectFn: func(string) knowcore.Framework { return knowcore.FrameworkNextra },
		}
		registry := goquery.NewRegistry(detector, fallback)

		a, _ := registry.AdapterForHTML("<html></html>")

		assert.Same(t, fallback, a)
	})
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	registry := goquery.NewRegistry(&mock.FrameworkDetector{}, nil)
	assert.Nil(t, registry.Get(knowcore.FrameworkMkDocs))

	registry.Register(knowcore.FrameworkMkDocs, &knowcore.Adapter{Name: "first"})
	registry.Register(knowcore.FrameworkMkDocs, &knowcore.Adapter{Name: "second"})

	require.NotNil(t, registry.Get(knowcore.FrameworkMkDocs))
	assert.Equal(t, "second", registry.Get(knowcore.FrameworkMkDocs).Name)
	assert.Equal(t, []knowcore.Framework{knowcore.FrameworkMkDocs}, registry.List())
}

func TestNewDefaultRegistry(t *testing.T) {
	t.Parallel()

	registry := goquery.NewDefaultRegistry()

	assert.Len(t, registry.List(), 7)
	for _, f := range registry.List() {
		a := registry.Get(f)
		require.NotNil(t, a)
		assert.NoError(t, a.Validate(), f)
	}

	t.Run("built-in adapter extracts MkDocs article", func(t *testing.T) {
		t.Parallel()

		html := `<html lang="en"><head><title>Setup</title><meta name="generator" content="mkdocs-1.5"></head>
<body><nav class="md-nav"><ul><li>Home</li></ul></nav>
<div class="md-content"><article>
<h1>Setup<a class="headerlink" href="#setup">¶</a></h1>
<p>Install it.</p>
<pre><code class="language-sh">pip install thing</code></pre>
</article></div></body></html>`

		a, f := registry.AdapterForHTML(html)
		require.Equal(t, knowcore.FrameworkMkDocs, f)

		res, err := goquery.NewExtractor().Extract(html, a, "https://docs.example.com/setup/")

		require.NoError(t, err)
		assert.Equal(t, "Setup", res.Meta.Title)
		assert.Equal(t, "en", res.Meta.Language)
		require.Len(t, res.Blocks, 3)
		assert.Equal(t, "Setup", res.Blocks[0].Content)
		assert.Equal(t, "Install it.", res.Blocks[1].Content)
		assert.Equal(t, "sh", res.Blocks[2].Annotations.Language)
	})

	t.Run("unknown pages use the generic adapter", func(t *testing.T) {
		t.Parallel()

		a, f := registry.AdapterForHTML(`<html><body><main><p>x</p></main></body></html>`)

		assert.Equal(t, knowcore.FrameworkUnknown, f)
		assert.Equal(t, goquery.GenericAdapterName, a.Name)
	})
}
