package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/knowcore"
	"github.com/fwojciec/knowcore/fs"
	"github.com/fwojciec/knowcore/goquery"
	khttp "github.com/fwojciec/knowcore/http"
	"github.com/fwojciec/knowcore/ingest"
	"github.com/fwojciec/knowcore/readability"
	kslog "github.com/fwojciec/knowcore/slog"
	"github.com/fwojciec/knowcore/sqlite"
	"github.com/fwojciec/knowcore/trafilatura"
	"github.com/fwojciec/knowcore/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database backing the document index, if configured.
	DB *sqlite.DB

	// Fetcher replaces the HTTP fetcher. Set before calling Run() in tests.
	Fetcher knowcore.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("knowcore"),
		kong.Description("Turn HTML sources into normalized documents"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'knowcore --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := LoadConfig(cli.Config)
	if err != nil {
		return err
	}
	cfg.Override(cli.Globals)
	deps.Config = cfg

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := m.wire(deps, strings.Fields(kongCtx.Command())[0]); err != nil {
		return err
	}
	defer m.Close()

	return kongCtx.Run(deps)
}

// wire builds the services the command needs.
func (m *Main) wire(deps *Dependencies, cmd string) error {
	cfg, logger := deps.Config, deps.Logger

	deps.RawDocs = fs.NewRawDocStore(cfg.Paths.RawDocs)

	fetcher := m.Fetcher
	if fetcher == nil {
		opts := []khttp.Option{
			khttp.WithTimeout(cfg.Timeout()),
			khttp.WithMaxBytes(cfg.Fetch.MaxBytes),
		}
		if cfg.Fetch.RequestsPerSecond > 0 {
			opts = append(opts, khttp.WithLimiter(khttp.NewDomainLimiter(cfg.Fetch.RequestsPerSecond, cfg.Fetch.Burst)))
		}
		if cfg.Fetch.UserAgent != "" {
			opts = append(opts, khttp.WithUserAgent(cfg.Fetch.UserAgent))
		}
		fetcher = khttp.NewFetcher(opts...)
	}
	fetcher = kslog.NewLoggingFetcher(fetcher, logger)

	if cmd == "acquire" {
		deps.Sitemaps = kslog.NewLoggingSitemapService(khttp.NewSitemapService(fetcher), logger)
		deps.Acquirer = &ingest.Acquirer{
			Fetcher:     fetcher,
			RawDocs:     deps.RawDocs,
			Sitemaps:    deps.Sitemaps,
			Concurrency: cfg.Fetch.Concurrency,
			RetryDelays: ingest.DefaultRetryDelays(),
			Logger:      logger,
		}
		return nil
	}

	router, err := newRouter(cfg, logger)
	if err != nil {
		return err
	}
	deps.Router = router
	if cmd == "route" {
		return nil
	}

	assets, err := fs.NewAssetStore(cfg.AssetDir())
	if err != nil {
		return fmt.Errorf("failed to open asset store: %w", err)
	}
	resolver := ingest.NewResolver(fetcher, assets)
	resolver.Logger = logger

	sinks := []knowcore.DocumentWriter{
		kslog.NewLoggingDocumentWriter(fs.NewWriter(cfg.Paths.Docs, cfg.Meta.Markdown), "fs", logger),
	}
	if cfg.Paths.DB != "" {
		m.DB = sqlite.NewDB(cfg.Paths.DB)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(deps.Stderr, "Hint: Set KNOWCORE_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", cfg.Paths.DB, err)
		}
		sinks = append(sinks, kslog.NewLoggingDocumentWriter(sqlite.NewDocumentService(m.DB), "sqlite", logger))
	}

	deps.Pipeline = &ingest.Pipeline{
		RawDocs:       deps.RawDocs,
		Router:        deps.Router,
		Extractor:     kslog.NewLoggingExtractor(goquery.NewExtractor(), logger),
		MetaFallbacks: metaFallbacks(cfg.Meta.Fallbacks),
		Normalizer:    ingest.NewNormalizer(),
		Resolver:      resolver,
		Sinks:         sinks,
		Logger:        logger,
	}
	return nil
}

// newRouter loads the routes file and adapter directory. A missing routes
// file leaves only framework detection and the generic adapter.
func newRouter(cfg *Config, logger *slog.Logger) (knowcore.Router, error) {
	routes, err := yaml.LoadRoutes(cfg.Paths.Routes)
	if knowcore.ErrorCode(err) == knowcore.ENOTFOUND {
		logger.Debug("no routes file", "path", cfg.Paths.Routes)
	} else if err != nil {
		return nil, err
	}

	return kslog.NewLoggingRouter(&ingest.Router{
		Routes:   routes,
		Loader:   yaml.NewAdapterLoader(cfg.Paths.Adapters),
		Registry: kslog.NewLoggingRegistry(goquery.NewDefaultRegistry(), logger),
	}, logger), nil
}

func metaFallbacks(names []string) []knowcore.MetaFallback {
	var fallbacks []knowcore.MetaFallback
	for _, name := range names {
		switch name {
		case FallbackTrafilatura:
			fallbacks = append(fallbacks, trafilatura.NewMetaFallback())
		case FallbackReadability:
			fallbacks = append(fallbacks, readability.NewMetaFallback())
		}
	}
	return fallbacks
}
