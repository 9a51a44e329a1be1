package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/mdcrawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Verbose wraps services in logging decorators.
	Verbose bool

	HTTPClient      *http.Client
	NewRenderer     func(cfg mdcrawl.Config, client *http.Client) (mdcrawl.Renderer, error)
	NewTokenCounter func() (mdcrawl.TokenCounter, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log every render, write and sitemap lookup to stderr"`

	Crawl   CrawlCmd   `cmd:"" help:"Crawl a site into Markdown files and combine them"`
	Combine CombineCmd `cmd:"" help:"Combine a crawl output directory into one Markdown file"`
	Report  ReportCmd  `cmd:"" help:"List targets recorded in a crawl journal"`
}

// CrawlCmd is the "crawl" subcommand. Flags override values from --config.
type CrawlCmd struct {
	URL  string `arg:"" optional:"" help:"Seed URL"`
	Name string `arg:"" optional:"" help:"Output folder name"`

	Config      string        `help:"YAML config file"`
	Base        string        `help:"Output base directory (default: crawls)"`
	Include     []string      `short:"i" help:"Include URL glob (repeatable)"`
	Exclude     []string      `short:"x" help:"Exclude URL glob (repeatable)"`
	Concurrency int           `short:"c" help:"Concurrent renders (default: 1)"`
	Timeout     time.Duration `short:"t" help:"Per-page render timeout (default: 5m0s)"`
	Retries     int           `default:"-1" help:"Retries for blocked pages (default: 3)"`
	Renderer    string        `help:"Page renderer: rod or http (default: rod)"`
	Markdown    string        `help:"Convert main content to Markdown: trafilatura or readability"`
	Rate        float64       `help:"Requests per second per host (default: unlimited)"`
	Robots      bool          `help:"Respect robots.txt"`
	Sitemap     bool          `help:"Seed the crawl with sitemap URLs"`
	Bloom       bool          `help:"Track visited URLs in a bloom filter"`
	Journal     string        `help:"Record the run in a SQLite journal at this path"`
	MaxPages    int           `help:"Stop queueing new URLs after this many (default: unlimited)"`
	NoCombine   bool          `help:"Skip writing the combined document"`
}

// CombineCmd is the "combine" subcommand.
type CombineCmd struct {
	Dir    string `arg:"" help:"Crawl output directory"`
	Output string `short:"o" help:"Combined file path (default: <dir>.md)"`
	Tokens bool   `help:"Report the approximate token count of the combined document"`
}

// ReportCmd is the "report" subcommand.
type ReportCmd struct {
	Journal string `arg:"" help:"Journal database path"`
	RunID   string `name:"run" help:"Run ID (default: most recent run)"`
	All     bool   `help:"List every recorded target, not only failures"`
}

// describe returns the operator-facing text of an error.
func describe(err error) string {
	var e *mdcrawl.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
