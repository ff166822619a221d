package main

import (
	"fmt"
	"regexp"

	"github.com/fwojciec/knowcore"
	"github.com/fwojciec/knowcore/ingest"
)

// Run executes the acquire command.
func (c *AcquireCmd) Run(deps *Dependencies) error {
	sources := 0
	for _, s := range []string{c.URL, c.File, c.Sitemap} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		err := fmt.Errorf("exactly one of --url, --file or --sitemap is required")
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	switch {
	case c.URL != "":
		raw, err := deps.Acquirer.AcquireURL(deps.Ctx, c.URL)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		c.printRawDoc(deps, raw)
		return nil

	case c.File != "":
		raw, err := deps.Acquirer.AcquireFile(deps.Ctx, c.File, c.SourceURI)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", knowcore.ErrorMessage(err))
			return err
		}
		c.printRawDoc(deps, raw)
		return nil
	}

	var urlFilter *knowcore.URLFilter
	if len(c.Filter) > 0 {
		urlFilter = &knowcore.URLFilter{}
		for _, pattern := range c.Filter {
			re, err := regexp.Compile(pattern)
			if err != nil {
				fmt.Fprintf(deps.Stderr, "error: invalid filter pattern %q: %v\n", pattern, err)
				return err
			}
			urlFilter.Include = append(urlFilter.Include, re)
		}
	}
	if c.Concurrency > 0 {
		deps.Acquirer.Concurrency = c.Concurrency
	}

	progress := func(event ingest.ProgressEvent) {
		switch event.Type {
		case ingest.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Found %d URLs\n", event.Total)
		case ingest.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", TruncateURL(event.URL, 60), event.Error)
		}
	}

	result, err := deps.Acquirer.AcquireSitemap(deps.Ctx, c.Sitemap, urlFilter, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error acquiring: %v\n", err)
		return err
	}
	var size int
	for _, raw := range result.RawDocs {
		c.printRawDoc(deps, raw)
		size += raw.ContentLength
	}
	fmt.Fprintf(deps.Stdout, "  Saved %d raw documents (%s, %d failed)\n",
		len(result.RawDocs), FormatBytes(size), result.Failed)
	return nil
}

func (c *AcquireCmd) printRawDoc(deps *Dependencies, raw *knowcore.RawDoc) {
	fmt.Fprintf(deps.Stdout, "%s  %s\n", raw.RawDocID, deps.RawDocs.MetaPath(raw.RawDocID))
}
