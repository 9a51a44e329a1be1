package mdcrawl

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Configuration defaults.
const (
	DefaultConcurrency  = 1
	DefaultTimeout      = 300 * time.Second
	DefaultRetryCeiling = 3
	DefaultOutputBase   = "crawls"
)

// Renderer kinds accepted by Config.Renderer.
const (
	RendererRod  = "rod"
	RendererHTTP = "http"
)

// Markdown extraction modes accepted by Config.Markdown.
const (
	MarkdownNone        = ""
	MarkdownTrafilatura = "trafilatura"
	MarkdownReadability = "readability"
)

// Config is the resolved configuration of a crawl.
type Config struct {
	SeedURL    string
	Name       string
	OutputBase string

	Include []string
	Exclude []string

	Concurrency  int
	Timeout      time.Duration
	RetryCeiling int

	Renderer string
	Markdown string

	// RequestsPerSecond limits requests per host. Zero disables limiting.
	RequestsPerSecond float64

	Robots   bool
	Sitemap  bool
	Bloom    bool
	Journal  string
	MaxPages int
}

// DefaultConfig returns a config with every default applied.
func DefaultConfig() Config {
	return Config{
		OutputBase:   DefaultOutputBase,
		Concurrency:  DefaultConcurrency,
		Timeout:      DefaultTimeout,
		RetryCeiling: DefaultRetryCeiling,
		Renderer:     RendererRod,
	}
}

// OutputDir returns the directory artifacts are written to.
func (c *Config) OutputDir() string {
	return filepath.Join(c.OutputBase, c.Name)
}

// CombinedPath returns the path of the combined document, a sibling of
// the output directory.
func (c *Config) CombinedPath() string {
	return c.OutputDir() + ".md"
}

// Validate returns an EINVALID error describing the first invalid field.
func (c *Config) Validate() error {
	u, err := url.Parse(c.SeedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Errorf(EINVALID, "seed URL %q must be an absolute http(s) URL", c.SeedURL)
	}
	if c.Name == "" {
		return Errorf(EINVALID, "output name required")
	}
	if c.Name == "." || c.Name == ".." || strings.ContainsAny(c.Name, `/\`) {
		return Errorf(EINVALID, "output name %q must be a single path element", c.Name)
	}
	if c.OutputBase == "" {
		return Errorf(EINVALID, "output base directory required")
	}
	for _, p := range c.Include {
		if err := ValidatePattern(p); err != nil {
			return err
		}
	}
	for _, p := range c.Exclude {
		if err := ValidatePattern(p); err != nil {
			return err
		}
	}
	if c.Concurrency < 1 {
		return Errorf(EINVALID, "concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Timeout <= 0 {
		return Errorf(EINVALID, "timeout must be positive, got %s", c.Timeout)
	}
	if c.RetryCeiling < 0 {
		return Errorf(EINVALID, "retries must not be negative, got %d", c.RetryCeiling)
	}
	switch c.Renderer {
	case RendererRod, RendererHTTP:
	default:
		return Errorf(EINVALID, "unknown renderer %q (want %s or %s)", c.Renderer, RendererRod, RendererHTTP)
	}
	switch c.Markdown {
	case MarkdownNone, MarkdownTrafilatura, MarkdownReadability:
	default:
		return Errorf(EINVALID, "unknown markdown mode %q (want %s or %s)", c.Markdown, MarkdownTrafilatura, MarkdownReadability)
	}
	if c.RequestsPerSecond < 0 {
		return Errorf(EINVALID, "rate must not be negative")
	}
	if c.MaxPages < 0 {
		return Errorf(EINVALID, "max pages must not be negative")
	}
	return nil
}
