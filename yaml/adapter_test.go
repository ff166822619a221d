package yaml_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fwojciec/knowcore"
	"github.com/fwojciec/knowcore/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blogAdapter = `
meta:
  title: "css:h1.post-title"
  url: ["css:link[rel=canonical]@href", "css:meta[property='og:url']@content"]
  authors: "css:.byline .author"
content:
  root: "css:article"
  blocks:
    - selector: "h1, h2, h3"
      type: heading
    - selector: "img"
      type: figure
      attrs:
        src: data-src
        caption: title
    - selector: "p"
  ignore:
    - "css:.share"
`

func TestParseAdapter(t *testing.T) {
	t.Parallel()

	t.Run("decodes scalar and list selector specs", func(t *testing.T) {
		t.Parallel()

		a, err := yaml.ParseAdapter([]byte(blogAdapter), "blog")

		require.NoError(t, err)
		assert.Equal(t, "blog", a.Name)
		assert.Equal(t, knowcore.SelectorSpec{"css:h1.post-title"}, a.Meta[knowcore.MetaTitle])
		assert.Equal(t, knowcore.SelectorSpec{"css:link[rel=canonical]@href", "css:meta[property='og:url']@content"}, a.Meta[knowcore.MetaURL])
		assert.Equal(t, "css:article", a.Content.Root)
		assert.Equal(t, []string{"css:.share"}, a.Content.Ignore)
	})

	t.Run("keeps block rule order and defaults type to paragraph", func(t *testing.T) {
		t.Parallel()

		a, err := yaml.ParseAdapter([]byte(blogAdapter), "blog")

		require.NoError(t, err)
		require.Len(t, a.Content.Blocks, 3)
		assert.Equal(t, knowcore.BlockHeading, a.Content.Blocks[0].Type)
		assert.Equal(t, knowcore.BlockFigure, a.Content.Blocks[1].Type)
		assert.Equal(t, "data-src", a.Content.Blocks[1].Attr("src", "src"))
		assert.Equal(t, knowcore.BlockParagraph, a.Content.Blocks[2].Type)
	})

	t.Run("explicit name wins over default", func(t *testing.T) {
		t.Parallel()

		a, err := yaml.ParseAdapter([]byte("name: custom\n"), "file")

		require.NoError(t, err)
		assert.Equal(t, "custom", a.Name)
	})

	t.Run("rejects unknown block type", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.ParseAdapter([]byte("content:\n  blocks:\n    - selector: video\n      type: video\n"), "bad")

		assert.Equal(t, knowcore.EINVALID, knowcore.ErrorCode(err))
	})

	t.Run("rejects missing block selector", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.ParseAdapter([]byte("content:\n  blocks:\n    - type: heading\n"), "bad")

		assert.Equal(t, knowcore.EINVALID, knowcore.ErrorCode(err))
	})

	t.Run("rejects malformed selector spec", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.ParseAdapter([]byte("meta:\n  title:\n    css: h1\n"), "bad")

		assert.Equal(t, knowcore.EINVALID, knowcore.ErrorCode(err))
	})
}

func TestAdapterLoader_LoadAdapter(t *testing.T) {
	t.Parallel()

	t.Run("loads relative reference with and without extension", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "sites"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sites", "blog.yaml"), []byte(blogAdapter), 0o644))
		loader := yaml.NewAdapterLoader(dir)

		a, err := loader.LoadAdapter("sites/blog.yaml")
		require.NoError(t, err)
		assert.Equal(t, "blog", a.Name)

		b, err := loader.LoadAdapter("sites/blog")
		require.NoError(t, err)
		assert.Equal(t, a.Content, b.Content)
	})

	t.Run("caches loaded adapters", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "blog.yaml")
		require.NoError(t, os.WriteFile(path, []byte(blogAdapter), 0o644))
		loader := yaml.NewAdapterLoader(dir)

		var wg sync.WaitGroup
		results := make([]*knowcore.Adapter, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				a, err := loader.LoadAdapter("blog.yaml")
				assert.NoError(t, err)
				results[i] = a
			}(i)
		}
		wg.Wait()

		require.NoError(t, os.Remove(path))
		again, err := loader.LoadAdapter("blog.yaml")
		require.NoError(t, err)
		for _, a := range results {
			assert.Same(t, again, a)
		}
	})

	t.Run("returns not found for missing file", func(t *testing.T) {
		t.Parallel()

		loader := yaml.NewAdapterLoader(t.TempDir())

		_, err := loader.LoadAdapter("missing")

		assert.Equal(t, knowcore.ENOTFOUND, knowcore.ErrorCode(err))
	})

	t.Run("returns invalid for broken file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("meta: [unclosed"), 0o644))
		loader := yaml.NewAdapterLoader(dir)

		_, err := loader.LoadAdapter("broken.yaml")

		assert.Equal(t, knowcore.EINVALID, knowcore.ErrorCode(err))
	})
}
