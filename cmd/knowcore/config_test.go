package main_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/knowcore"
	main "github.com/fwojciec/knowcore/cmd/knowcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowcore.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("file values override defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
[paths]
docs = "/srv/docs"
db = "/srv/index.db"

[fetch]
timeout_seconds = 5
requests_per_second = 2.5

[poll]
interval_seconds = 10

[meta]
fallbacks = ["readability"]
`)

		cfg, err := main.LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, "/srv/docs", cfg.Paths.Docs)
		assert.Equal(t, "/srv/index.db", cfg.Paths.DB)
		assert.Equal(t, filepath.Join("data", "rawdocs"), cfg.Paths.RawDocs)
		assert.Equal(t, 5*time.Second, cfg.Timeout())
		assert.InDelta(t, 2.5, cfg.Fetch.RequestsPerSecond, 0.001)
		assert.Equal(t, 10*time.Second, cfg.PollInterval())
		assert.Equal(t, []string{"readability"}, cfg.Meta.Fallbacks)
		assert.Equal(t, filepath.Join("/srv/docs", "assets"), cfg.AssetDir())
	})

	t.Run("missing explicit file", func(t *testing.T) {
		t.Parallel()

		_, err := main.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))

		assert.Equal(t, knowcore.ENOTFOUND, knowcore.ErrorCode(err))
	})

	t.Run("malformed file", func(t *testing.T) {
		t.Parallel()

		_, err := main.LoadConfig(writeConfig(t, "[paths\n"))

		assert.Equal(t, knowcore.EINVALID, knowcore.ErrorCode(err))
	})

	t.Run("unknown fallback", func(t *testing.T) {
		t.Parallel()

		_, err := main.LoadConfig(writeConfig(t, "[meta]\nfallbacks = [\"llm\"]\n"))

		assert.Equal(t, knowcore.EINVALID, knowcore.ErrorCode(err))
	})
}

func TestConfig_Override(t *testing.T) {
	t.Parallel()

	cfg := main.DefaultConfig()
	cfg.Override(main.Globals{Docs: "/out", Assets: "/blobs"})

	assert.Equal(t, "/out", cfg.Paths.Docs)
	assert.Equal(t, "/blobs", cfg.AssetDir())
	assert.Equal(t, filepath.Join("data", "rawdocs"), cfg.Paths.RawDocs)
}
