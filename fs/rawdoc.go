package fs

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/knowcore"
	"github.com/google/uuid"
)

// Ensure RawDocStore implements knowcore.RawDocService at compile time.
var _ knowcore.RawDocService = (*RawDocStore)(nil)

const (
	metaSuffix = ".meta.json"
	doneSuffix = ".done"
)

// RawDocStore keeps raw documents in a directory: the content as
// <id><ext>, the record as <id>.meta.json and a <id>.done marker once the
// document has been ingested.
type RawDocStore struct {
	dir string

	// NewID generates raw document IDs. Defaults to random UUIDs.
	NewID func() string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewRawDocStore creates a RawDocStore rooted at dir.
func NewRawDocStore(dir string) *RawDocStore {
	return &RawDocStore{
		dir:   dir,
		NewID: uuid.NewString,
		Now:   time.Now,
	}
}

// Dir returns the store directory.
func (s *RawDocStore) Dir() string {
	return s.dir
}

// MetaPath returns the path of the record file for id.
func (s *RawDocStore) MetaPath(id string) string {
	return filepath.Join(s.dir, id+metaSuffix)
}

func (s *RawDocStore) donePath(id string) string {
	return filepath.Join(s.dir, id+doneSuffix)
}

// CreateRawDoc writes content and the record. Missing ID, fetch time,
// storage path and content length are filled in on raw.
func (s *RawDocStore) CreateRawDoc(_ context.Context, raw *knowcore.RawDoc, content []byte) error {
	if raw.RawDocID == "" {
		raw.RawDocID = s.NewID()
	}
	if err := validRawDocID(raw.RawDocID); err != nil {
		return err
	}
	if raw.FetchTime.IsZero() {
		raw.FetchTime = s.Now().UTC()
	}
	if raw.StoragePath == "" {
		raw.StoragePath = filepath.Join(s.dir, raw.RawDocID+contentExt(raw))
	}
	raw.ContentLength = len(content)
	if err := raw.Validate(); err != nil {
		return err
	}

	if err := writeFileAtomic(raw.StoragePath, content); err != nil {
		return err
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.MetaPath(raw.RawDocID), data)
}

// contentExt picks the file extension for stored content: .bin when a
// declared content type is not HTML.
func contentExt(raw *knowcore.RawDoc) string {
	if raw.ContentType != "" && !strings.Contains(strings.ToLower(raw.ContentType), "html") {
		return ".bin"
	}
	return ".html"
}

// FindRawDocByID reads the record for id.
// Returns ENOTFOUND if no record exists.
func (s *RawDocStore) FindRawDocByID(_ context.Context, id string) (*knowcore.RawDoc, error) {
	if err := validRawDocID(id); err != nil {
		return nil, err
	}
	return s.readMeta(id)
}

func (s *RawDocStore) readMeta(id string) (*knowcore.RawDoc, error) {
	data, err := os.ReadFile(s.MetaPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, knowcore.Errorf(knowcore.ENOTFOUND, "rawdoc %q not found", id)
	} else if err != nil {
		return nil, err
	}
	var raw knowcore.RawDoc
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, knowcore.Errorf(knowcore.EINVALID, "rawdoc %q: %v", id, err)
	}
	if raw.RawDocID == "" {
		raw.RawDocID = id
	}
	return &raw, nil
}

// FindRawDocs returns records matching filter ordered by fetch time.
// A missing store directory yields no records.
func (s *RawDocStore) FindRawDocs(_ context.Context, filter knowcore.RawDocFilter) ([]*knowcore.RawDoc, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []*knowcore.RawDoc{}, nil
	} else if err != nil {
		return nil, err
	}

	docs := []*knowcore.RawDoc{}
	for _, e := range entries {
		id, ok := strings.CutSuffix(e.Name(), metaSuffix)
		if e.IsDir() || !ok || strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		if filter.ID != nil && *filter.ID != id {
			continue
		}
		if filter.Pending != nil && *filter.Pending == s.isDone(id) {
			continue
		}
		raw, err := s.readMeta(id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, raw)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].FetchTime.Equal(docs[j].FetchTime) {
			return docs[i].FetchTime.Before(docs[j].FetchTime)
		}
		return docs[i].RawDocID < docs[j].RawDocID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(docs) {
			return []*knowcore.RawDoc{}, nil
		}
		docs = docs[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(docs) {
		docs = docs[:filter.Limit]
	}
	return docs, nil
}

func (s *RawDocStore) isDone(id string) bool {
	_, err := os.Stat(s.donePath(id))
	return err == nil
}

// ReadContent returns the stored content of raw. Relative storage paths are
// resolved against the store directory when they do not exist as given.
// Returns ENOTFOUND if the content file is missing.
func (s *RawDocStore) ReadContent(_ context.Context, raw *knowcore.RawDoc) ([]byte, error) {
	path := raw.StoragePath
	if path == "" {
		return nil, knowcore.Errorf(knowcore.EINVALID, "rawdoc %q has no storage path", raw.RawDocID)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !filepath.IsAbs(path) {
		data, err = os.ReadFile(filepath.Join(s.dir, path))
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, knowcore.Errorf(knowcore.ENOTFOUND, "rawdoc %q content not found", raw.RawDocID)
	}
	return data, err
}

// MarkProcessed writes the done marker for id.
// Returns ENOTFOUND if no record exists.
func (s *RawDocStore) MarkProcessed(_ context.Context, id string) error {
	if err := validRawDocID(id); err != nil {
		return err
	}
	if _, err := os.Stat(s.MetaPath(id)); errors.Is(err, fs.ErrNotExist) {
		return knowcore.Errorf(knowcore.ENOTFOUND, "rawdoc %q not found", id)
	}
	return writeFileAtomic(s.donePath(id), []byte(s.Now().UTC().Format(time.RFC3339)+"\n"))
}

func validRawDocID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return knowcore.Errorf(knowcore.EINVALID, "invalid rawdoc ID %q", id)
	}
	return nil
}
