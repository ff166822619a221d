package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/knowcore"
	"github.com/fwojciec/knowcore/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Content-Addressed Asset Storage
// Assets are stored once per id and written atomically.

func TestAssetStore_PutAssetWritesFile(t *testing.T) {
	t.Parallel()

	// Given an empty asset store
	dir := filepath.Join(t.TempDir(), "assets")
	store, err := fs.NewAssetStore(dir)
	require.NoError(t, err)

	// When I put an asset
	err = store.PutAsset(context.Background(), "abc123.png", []byte("png-bytes"))

	// Then the file exists with the given content
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "abc123.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	// And the store reports it present
	ok, err := store.HasAsset(context.Background(), "abc123.png")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAssetStore_PutAssetTwiceKeepsSingleFile(t *testing.T) {
	t.Parallel()

	// Given a store holding an asset
	dir := t.TempDir()
	store, err := fs.NewAssetStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.PutAsset(context.Background(), "same.jpg", []byte("first")))

	// When the same id is put again
	err = store.PutAsset(context.Background(), "same.jpg", []byte("second"))

	// Then the original content is kept and no temp files remain
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "same.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAssetStore_HasAssetMissing(t *testing.T) {
	t.Parallel()

	store, err := fs.NewAssetStore(t.TempDir())
	require.NoError(t, err)

	ok, err := store.HasAsset(context.Background(), "nope.png")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAssetStore_SeesExistingFilesOnOpen(t *testing.T) {
	t.Parallel()

	// Given a directory that already holds an asset
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.gif"), []byte("gif"), 0o644))

	// When a store is opened over it
	store, err := fs.NewAssetStore(dir)
	require.NoError(t, err)

	// Then the existing asset is reported present
	ok, err := store.HasAsset(context.Background(), "old.gif")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAssetStore_RejectsInvalidIDs(t *testing.T) {
	t.Parallel()

	store, err := fs.NewAssetStore(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"", ".", "..", "../escape.png", `a\b.png`, ".tmp-x"} {
		err := store.PutAsset(context.Background(), id, []byte("x"))
		assert.Equal(t, knowcore.EINVALID, knowcore.ErrorCode(err), "id %q", id)
	}
}
