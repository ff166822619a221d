package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/knowcore"
	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigFile is read from the working directory when --config is
// not given. A missing default file is not an error.
const DefaultConfigFile = "knowcore.toml"

// Config is the file-level configuration. Flags override it.
type Config struct {
	Paths PathsConfig `toml:"paths"`
	Fetch FetchConfig `toml:"fetch"`
	Poll  PollConfig  `toml:"poll"`
	Meta  MetaConfig  `toml:"meta"`
}

// PathsConfig locates the stores and adapter configuration.
type PathsConfig struct {
	RawDocs  string `toml:"rawdocs"`
	Assets   string `toml:"assets"`
	Docs     string `toml:"docs"`
	Routes   string `toml:"routes"`
	Adapters string `toml:"adapters"`
	DB       string `toml:"db"`
}

// FetchConfig tunes the HTTP fetcher shared by acquisition and assets.
type FetchConfig struct {
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	MaxBytes          int64   `toml:"max_bytes"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	UserAgent         string  `toml:"user_agent"`
	Concurrency       int     `toml:"concurrency"`
}

// PollConfig tunes the poll command.
type PollConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
	Concurrency     int `toml:"concurrency"`
}

// MetaConfig selects the generic metadata fallbacks, in order.
type MetaConfig struct {
	Fallbacks []string `toml:"fallbacks"`
	Markdown  bool     `toml:"markdown"`
}

// Meta fallback names.
const (
	FallbackTrafilatura = "trafilatura"
	FallbackReadability = "readability"
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			RawDocs:  filepath.Join("data", "rawdocs"),
			Docs:     filepath.Join("data", "docs"),
			Routes:   filepath.Join("config", "routes.yaml"),
			Adapters: filepath.Join("config", "adapters"),
		},
		Fetch: FetchConfig{
			TimeoutSeconds:    15,
			MaxBytes:          32 << 20,
			RequestsPerSecond: 1,
			Burst:             1,
			Concurrency:       8,
		},
		Poll: PollConfig{
			IntervalSeconds: 30,
			Concurrency:     4,
		},
		Meta: MetaConfig{
			Fallbacks: []string{FallbackTrafilatura, FallbackReadability},
			Markdown:  true,
		},
	}
}

// LoadConfig reads the TOML file at path over the defaults. An empty path
// reads DefaultConfigFile if it exists.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	} else if errors.Is(err, fs.ErrNotExist) {
		return nil, knowcore.Errorf(knowcore.ENOTFOUND, "config file %q not found", path)
	} else if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, knowcore.Errorf(knowcore.EINVALID, "config file %q: %v", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate returns an error if the configuration contains invalid fields.
func (c *Config) Validate() error {
	if c.Fetch.TimeoutSeconds < 0 {
		return knowcore.Errorf(knowcore.EINVALID, "fetch.timeout_seconds must not be negative")
	}
	if c.Fetch.RequestsPerSecond < 0 {
		return knowcore.Errorf(knowcore.EINVALID, "fetch.requests_per_second must not be negative")
	}
	if c.Poll.IntervalSeconds < 0 {
		return knowcore.Errorf(knowcore.EINVALID, "poll.interval_seconds must not be negative")
	}
	for _, name := range c.Meta.Fallbacks {
		switch name {
		case FallbackTrafilatura, FallbackReadability:
		default:
			return knowcore.Errorf(knowcore.EINVALID, "unknown meta fallback %q", name)
		}
	}
	return nil
}

// Override applies non-empty global flags on top of the file values.
func (c *Config) Override(g Globals) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Paths.RawDocs, g.RawDocs)
	set(&c.Paths.Assets, g.Assets)
	set(&c.Paths.Docs, g.Docs)
	set(&c.Paths.Routes, g.Routes)
	set(&c.Paths.Adapters, g.Adapters)
	set(&c.Paths.DB, g.DB)
}

// AssetDir returns the asset directory. It defaults to the assets
// directory inside the document sink so Markdown image paths resolve.
func (c *Config) AssetDir() string {
	if c.Paths.Assets != "" {
		return c.Paths.Assets
	}
	return filepath.Join(c.Paths.Docs, knowcore.AssetDir)
}

// Timeout returns the per-request fetch timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// PollInterval returns the delay between poll passes.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}
