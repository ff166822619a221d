package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/knowcore"
	"github.com/fwojciec/knowcore/bloom"
)

// Ensure AssetStore implements knowcore.AssetStore at compile time.
var _ knowcore.AssetStore = (*AssetStore)(nil)

// AssetStore stores content-addressed asset files in a flat directory.
// Concurrent writers of the same id are safe: each write is a rename of a
// complete file with identical content.
type AssetStore struct {
	dir  string
	seen *bloom.Filter
}

// NewAssetStore opens the asset directory, creating it if needed, and
// records the ids already present.
func NewAssetStore(dir string) (*AssetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	n := uint(len(entries) * 2)
	if n < 100_000 {
		n = 100_000
	}
	s := &AssetStore{dir: dir, seen: bloom.NewFilter(n, 0.001)}
	for _, e := range entries {
		if !e.IsDir() && !strings.HasPrefix(e.Name(), tempPrefix) {
			s.seen.Add(e.Name())
		}
	}
	return s, nil
}

// Dir returns the asset directory.
func (s *AssetStore) Dir() string {
	return s.dir
}

// Path returns the file path of the asset with id.
func (s *AssetStore) Path(id string) string {
	return filepath.Join(s.dir, id)
}

// PutAsset writes data under id. Existing assets are left untouched.
// Returns EINVALID for an id that is not a plain file name.
func (s *AssetStore) PutAsset(ctx context.Context, id string, data []byte) error {
	if err := validAssetID(id); err != nil {
		return err
	}
	if ok, err := s.HasAsset(ctx, id); err != nil {
		return err
	} else if ok {
		return nil
	}
	if err := writeFileAtomic(s.Path(id), data); err != nil {
		return err
	}
	s.seen.Add(id)
	return nil
}

// HasAsset reports whether an asset with id is stored. Ids the filter has
// never seen are reported missing without touching the disk.
func (s *AssetStore) HasAsset(_ context.Context, id string) (bool, error) {
	if err := validAssetID(id); err != nil {
		return false, err
	}
	if !s.seen.Test(id) {
		return false, nil
	}
	_, err := os.Stat(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func validAssetID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, tempPrefix) {
		return knowcore.Errorf(knowcore.EINVALID, "invalid asset ID %q", id)
	}
	return nil
}
