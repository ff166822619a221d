package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/knowcore"
	"github.com/fwojciec/knowcore/fs"
	"github.com/fwojciec/knowcore/ingest"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config *Config

	RawDocs  *fs.RawDocStore
	Sitemaps knowcore.SitemapService
	Acquirer *ingest.Acquirer
	Router   knowcore.Router
	Pipeline *ingest.Pipeline
}

// Globals are flags shared by every command.
type Globals struct {
	Config   string `help:"TOML config file" type:"path" env:"KNOWCORE_CONFIG"`
	RawDocs  string `name:"rawdocs" help:"Raw document directory" type:"path" env:"KNOWCORE_RAWDOCS"`
	Assets   string `help:"Asset directory (default: <docs>/assets)" type:"path" env:"KNOWCORE_ASSETS"`
	Docs     string `help:"Document output directory" type:"path" env:"KNOWCORE_DOCS"`
	Routes   string `help:"Routes YAML file" type:"path" env:"KNOWCORE_ROUTES"`
	Adapters string `help:"Adapter YAML directory" type:"path" env:"KNOWCORE_ADAPTERS"`
	DB       string `help:"SQLite document index (disabled when empty)" type:"path" env:"KNOWCORE_DB"`
	Verbose  bool   `short:"v" help:"Log debug output"`
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Globals

	Acquire AcquireCmd `cmd:"" help:"Fetch or import source documents as raw documents"`
	Ingest  IngestCmd  `cmd:"" help:"Turn raw documents into normalized documents"`
	Poll    PollCmd    `cmd:"" help:"Ingest pending raw documents continuously"`
	Route   RouteCmd   `cmd:"" help:"Show the adapter selected for a source URI"`
}

// AcquireCmd is the "acquire" subcommand. Exactly one source is required.
type AcquireCmd struct {
	URL         string   `help:"Fetch a single URL"`
	File        string   `type:"path" help:"Import a saved HTML file"`
	SourceURI   string   `name:"source-uri" help:"Original URI of an imported file"`
	Sitemap     string   `help:"Fetch every URL listed in the site's sitemaps"`
	Filter      []string `short:"F" name:"filter" help:"Filter sitemap URLs by regex (repeatable)"`
	Concurrency int      `short:"c" help:"Concurrent fetch limit"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	RawDocID string `name:"rawdoc-id" help:"Ingest a single raw document"`
	All      bool   `help:"Ingest every pending raw document"`
}

// PollCmd is the "poll" subcommand.
type PollCmd struct {
	Interval    time.Duration `help:"Delay between passes"`
	Concurrency int           `short:"c" help:"Documents ingested in parallel"`
}

// RouteCmd is the "route" subcommand.
type RouteCmd struct {
	URI  string `arg:"" help:"Source URI"`
	HTML string `name:"html" help:"Page HTML used for framework detection"`
}
