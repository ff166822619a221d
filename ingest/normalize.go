// Package ingest turns acquired raw documents into normalized documents:
// it routes, extracts, normalizes, resolves assets and hands the result to
// sinks.
package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/fwojciec/knowcore"
	"github.com/google/uuid"
)

// timeLayouts are tried in order when parsing page timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02 Jan 2006",
	"2006/01/02",
}

// ParseTime parses a page timestamp. The common layouts are tried first;
// anything else goes through dateparse. Values without a zone are taken
// as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Normalizer maps extraction output to the Document schema. It performs no
// I/O.
type Normalizer struct {
	// NewID generates document IDs. Defaults to random UUIDs.
	NewID func() string

	// Now returns the ingest time. Defaults to time.Now.
	Now func() time.Time
}

// NewNormalizer creates a Normalizer with UUID IDs and the wall clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{NewID: uuid.NewString, Now: time.Now}
}

// Normalize builds a Document from res for raw. Figure sections get one
// unresolved asset per placeholder. A nil res or raw is a programming error
// and panics.
func (n *Normalizer) Normalize(res *knowcore.ExtractResult, raw *knowcore.RawDoc) *knowcore.Document {
	if res == nil || raw == nil {
		panic("ingest: normalize called without extraction result or raw document")
	}

	doc := &knowcore.Document{
		DocID:    n.NewID(),
		Meta:     n.meta(res, raw),
		Sections: make([]knowcore.Section, 0, len(res.Blocks)),
	}

	ids := sectionIDs{counters: map[knowcore.BlockType]int{}, used: map[string]bool{}}
	for _, b := range res.Blocks {
		doc.Sections = append(doc.Sections, knowcore.Section{
			SectionID:   ids.next(b),
			Type:        b.Type,
			Level:       headingLevel(b),
			Content:     b.Content,
			Items:       nonNil(b.Items),
			Header:      b.Header,
			Rows:        nonNil(b.Rows),
			Assets:      placeholders(b.Assets),
			Annotations: b.Annotations,
		})
	}
	return doc
}

func (n *Normalizer) meta(res *knowcore.ExtractResult, raw *knowcore.RawDoc) knowcore.Meta {
	m := res.Meta
	title := strings.TrimSpace(m.Title)
	if title == "" {
		title = knowcore.UntitledTitle
	}
	version := res.ParserVersion
	if version == "" {
		version = knowcore.ParserVersion
	}
	return knowcore.Meta{
		Title: title,
		Source: knowcore.Source{
			Type:     raw.SourceType,
			Path:     raw.StoragePath,
			URL:      raw.BaseURL(),
			RawDocID: raw.RawDocID,
		},
		CanonicalURL:  m.URL,
		Authors:       nonNil(m.Authors),
		PublishedAt:   timePtr(m.PublishedAt),
		UpdatedAt:     timePtr(m.UpdatedAt),
		IngestedAt:    n.Now().UTC(),
		Language:      m.Language,
		Description:   m.Description,
		Tags:          nonNil(m.Tags),
		ParserVersion: version,
	}
}

func timePtr(s string) *time.Time {
	t, ok := ParseTime(s)
	if !ok {
		return nil
	}
	return &t
}

func headingLevel(b knowcore.Block) int {
	if b.Type != knowcore.BlockHeading {
		return 0
	}
	if b.Level < 1 || b.Level > 6 {
		return 1
	}
	return b.Level
}

func placeholders(refs []knowcore.AssetRef) []knowcore.Asset {
	assets := make([]knowcore.Asset, 0, len(refs))
	for _, r := range refs {
		assets = append(assets, knowcore.Asset{OriginalSrc: r.OriginalSrc, Caption: r.Caption})
	}
	return assets
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// sectionIDs assigns unique section IDs: the block's own ID when present,
// else <kind>-<n> from a per-kind counter. Collisions get a -2, -3, ...
// suffix.
type sectionIDs struct {
	counters map[knowcore.BlockType]int
	used     map[string]bool
}

func (s *sectionIDs) next(b knowcore.Block) string {
	id := strings.TrimSpace(b.SectionID)
	if id == "" {
		s.counters[b.Type]++
		id = string(b.Type) + "-" + strconv.Itoa(s.counters[b.Type])
	}
	candidate := id
	for i := 2; s.used[candidate]; i++ {
		candidate = id + "-" + strconv.Itoa(i)
	}
	s.used[candidate] = true
	return candidate
}
