package main

import (
	"fmt"

	"github.com/fwojciec/knowcore"
)

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	if (c.RawDocID == "") == !c.All {
		err := fmt.Errorf("exactly one of --rawdoc-id or --all is required")
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	if c.RawDocID != "" {
		doc, err := deps.Pipeline.IngestByID(deps.Ctx, c.RawDocID)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		printDocument(deps, doc)
		return nil
	}

	pending := true
	raws, err := deps.RawDocs.FindRawDocs(deps.Ctx, knowcore.RawDocFilter{Pending: &pending})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", knowcore.ErrorMessage(err))
		return err
	}
	if len(raws) == 0 {
		fmt.Fprintln(deps.Stdout, "No pending raw documents. Use 'knowcore acquire' to add some.")
		return nil
	}

	failed := 0
	for _, raw := range raws {
		doc, err := deps.Pipeline.Ingest(deps.Ctx, raw)
		if err != nil {
			failed++
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", raw.RawDocID, err)
			continue
		}
		printDocument(deps, doc)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d raw documents failed", failed, len(raws))
	}
	return nil
}

func printDocument(deps *Dependencies, doc *knowcore.Document) {
	fmt.Fprintf(deps.Stdout, "%s  %s  %q  %d sections\n",
		doc.Meta.Source.RawDocID, doc.DocID, doc.Meta.Title, len(doc.Sections))
}
