package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/knowcore"
	"github.com/fwojciec/knowcore/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkWriteDocument measures upserts of a typical ingested page into a
// file-backed index.
func BenchmarkWriteDocument(b *testing.B) {
	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	svc := sqlite.NewDocumentService(db)
	ctx := context.Background()

	sections := make([]knowcore.Section, 0, 20)
	for i := range 20 {
		sections = append(sections, knowcore.Section{
			SectionID: fmt.Sprintf("paragraph-%d", i+1),
			Type:      knowcore.BlockParagraph,
			Content:   "Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
		})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		doc := &knowcore.Document{
			DocID: fmt.Sprintf("doc-%d", i%100),
			Meta: knowcore.Meta{
				Title:      fmt.Sprintf("Page %d", i),
				Source:     knowcore.Source{Type: knowcore.SourceTypeURL, URL: fmt.Sprintf("https://example.com/docs/page%d", i%100)},
				IngestedAt: time.Now(),
			},
			Sections: sections,
		}
		if err := svc.WriteDocument(ctx, doc); err != nil {
			b.Fatal(err)
		}
	}
}
