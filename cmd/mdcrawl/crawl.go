package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/mdcrawl"
	"github.com/fwojciec/mdcrawl/bloom"
	"github.com/fwojciec/mdcrawl/crawl"
	"github.com/fwojciec/mdcrawl/fs"
	"github.com/fwojciec/mdcrawl/glob"
	"github.com/fwojciec/mdcrawl/htmltomarkdown"
	mdhttp "github.com/fwojciec/mdcrawl/http"
	"github.com/fwojciec/mdcrawl/readability"
	mdslog "github.com/fwojciec/mdcrawl/slog"
	"github.com/fwojciec/mdcrawl/sqlite"
	"github.com/fwojciec/mdcrawl/trafilatura"
	"github.com/fwojciec/mdcrawl/yaml"
)

// bloomCapacity sizes the bloom filter when --max-pages is not set.
const bloomCapacity = 100_000

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	cfg, err := c.resolveConfig()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", describe(err))
		return err
	}

	filter, err := glob.NewFilter(cfg.SeedURL, cfg.Include, cfg.Exclude)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", describe(err))
		return err
	}

	renderer, err := deps.NewRenderer(cfg, deps.HTTPClient)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", describe(err))
		return err
	}
	defer renderer.Close()

	crawler := &crawl.Crawler{
		Renderer:     wrapRenderer(deps, cfg, renderer),
		Writer:       fs.NewWriter(cfg.OutputDir()),
		Filter:       filter,
		Concurrency:  cfg.Concurrency,
		Timeout:      cfg.Timeout,
		RetryCeiling: cfg.RetryCeiling,
		MaxPages:     cfg.MaxPages,
		OnCollision: func(path, previousURL, url string) {
			fmt.Fprintf(deps.Stderr, "warning: %s from %s replaced the page from %s\n", path, url, previousURL)
		},
	}
	if deps.Verbose {
		crawler.Writer = mdslog.NewLoggingArtifactWriter(crawler.Writer, deps.Logger)
	}
	if cfg.RequestsPerSecond > 0 {
		crawler.RateLimiter = crawl.NewDomainLimiter(cfg.RequestsPerSecond)
	}

	var robots *mdhttp.Robots
	if cfg.Robots || cfg.Sitemap {
		robots = mdhttp.NewRobots(deps.HTTPClient, mdhttp.DefaultUserAgent)
	}
	if cfg.Robots {
		crawler.Robots = robots
	}
	if cfg.Sitemap {
		var sitemaps mdcrawl.SitemapService = mdhttp.NewSitemapService(deps.HTTPClient, robots)
		if deps.Verbose {
			sitemaps = mdslog.NewLoggingSitemapService(sitemaps, deps.Logger)
		}
		crawler.Sitemaps = sitemaps
	}
	if cfg.Bloom {
		capacity := uint(bloomCapacity)
		if cfg.MaxPages > 0 {
			capacity = uint(cfg.MaxPages)
		}
		crawler.URLSet = bloom.NewURLSet(capacity, bloom.DefaultFalsePositiveRate)
	}

	var (
		journal *sqlite.Journal
		run     *mdcrawl.Run
	)
	if cfg.Journal != "" {
		db := sqlite.NewDB(cfg.Journal)
		if err := db.Open(); err != nil {
			fmt.Fprintf(deps.Stderr, "error: open journal %s: %v\n", cfg.Journal, err)
			return err
		}
		defer db.Close()

		journal = sqlite.NewJournal(db)
		run = &mdcrawl.Run{SeedURL: cfg.SeedURL, OutputDir: cfg.OutputDir()}
		if err := journal.StartRun(deps.Ctx, run); err != nil {
			fmt.Fprintf(deps.Stderr, "error: start journal run: %s\n", describe(err))
			return err
		}
		crawler.Journal = journal
		crawler.RunID = run.ID
		fmt.Fprintf(deps.Stdout, "Run %s\n", run.ID)
	}

	result, crawlErr := crawler.Crawl(deps.Ctx, cfg.SeedURL, progressPrinter(deps))
	if result == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", describe(crawlErr))
		return crawlErr
	}
	fmt.Fprintln(deps.Stdout, crawl.FormatSummary(result))

	if journal != nil {
		run.Saved = result.Saved
		run.Failed = result.Failed
		if err := journal.FinishRun(context.WithoutCancel(deps.Ctx), run); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: finish journal run: %s\n", describe(err))
		}
	}

	if crawlErr != nil {
		fmt.Fprintf(deps.Stderr, "crawl interrupted; run 'mdcrawl combine %s' to combine the pages saved so far\n", cfg.OutputDir())
		return crawlErr
	}
	if c.NoCombine {
		return nil
	}
	if result.Saved == 0 {
		fmt.Fprintln(deps.Stdout, "No pages saved; skipping combined document")
		return nil
	}

	var aggregator mdcrawl.Aggregator = fs.NewAggregator()
	if deps.Verbose {
		aggregator = mdslog.NewLoggingAggregator(aggregator, deps.Logger)
	}
	res, err := aggregator.Aggregate(deps.Ctx, cfg.OutputDir(), cfg.CombinedPath())
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", describe(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Combined %d files into %s (%s)\n", res.Files, res.Path, crawl.FormatBytes(res.Bytes))
	return nil
}

// resolveConfig layers defaults, the config file and flags, then validates.
func (c *CrawlCmd) resolveConfig() (mdcrawl.Config, error) {
	cfg := mdcrawl.DefaultConfig()
	if c.Config != "" {
		f, err := yaml.LoadConfig(c.Config)
		if err != nil {
			return cfg, err
		}
		f.Apply(&cfg)
	}

	setIf(&cfg.SeedURL, c.URL)
	setIf(&cfg.Name, c.Name)
	setIf(&cfg.OutputBase, c.Base)
	if len(c.Include) > 0 {
		cfg.Include = c.Include
	}
	if len(c.Exclude) > 0 {
		cfg.Exclude = c.Exclude
	}
	if c.Concurrency > 0 {
		cfg.Concurrency = c.Concurrency
	}
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
	if c.Retries >= 0 {
		cfg.RetryCeiling = c.Retries
	}
	setIf(&cfg.Renderer, c.Renderer)
	setIf(&cfg.Markdown, c.Markdown)
	if c.Rate > 0 {
		cfg.RequestsPerSecond = c.Rate
	}
	cfg.Robots = cfg.Robots || c.Robots
	cfg.Sitemap = cfg.Sitemap || c.Sitemap
	cfg.Bloom = cfg.Bloom || c.Bloom
	setIf(&cfg.Journal, c.Journal)
	if c.MaxPages > 0 {
		cfg.MaxPages = c.MaxPages
	}

	return cfg, cfg.Validate()
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// wrapRenderer adds Markdown conversion and logging around the renderer.
func wrapRenderer(deps *Dependencies, cfg mdcrawl.Config, r mdcrawl.Renderer) mdcrawl.Renderer {
	var extractor mdcrawl.Extractor
	switch cfg.Markdown {
	case mdcrawl.MarkdownTrafilatura:
		extractor = trafilatura.NewExtractor()
	case mdcrawl.MarkdownReadability:
		extractor = readability.NewExtractor()
	}
	if extractor != nil {
		r = &crawl.ConvertingRenderer{
			Renderer:  r,
			Extractor: extractor,
			Converter: htmltomarkdown.NewConverter(),
		}
	}
	if deps.Verbose {
		r = mdslog.NewLoggingRenderer(r, deps.Logger)
	}
	return r
}

// progressPrinter reports crawl events: saved pages on stdout, problems
// on stderr.
func progressPrinter(deps *Dependencies) crawl.ProgressFunc {
	return func(e crawl.ProgressEvent) {
		switch e.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Crawling %s\n", e.URL)
		case crawl.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "[%d/%d] %s\n", e.Completed, e.Total, e.Path)
		case crawl.ProgressRetrying:
			fmt.Fprintf(deps.Stderr, "retry %s (attempt %d): %s\n", crawl.TruncateURL(e.URL, 80), e.Attempt, describe(e.Error))
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "fail %s: %s\n", crawl.TruncateURL(e.URL, 80), describe(e.Error))
		case crawl.ProgressWarning:
			fmt.Fprintf(deps.Stderr, "warning: %s\n", describe(e.Error))
		}
	}
}
