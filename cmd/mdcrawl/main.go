package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/mdcrawl"
	"github.com/fwojciec/mdcrawl/gemini"
	mdhttp "github.com/fwojciec/mdcrawl/http"
	"github.com/fwojciec/mdcrawl/rod"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// HTTPClient is used for robots.txt, sitemaps and the http renderer.
	HTTPClient *http.Client

	// NewRenderer creates the renderer for a crawl.
	NewRenderer func(cfg mdcrawl.Config, client *http.Client) (mdcrawl.Renderer, error)

	// NewTokenCounter creates the counter used by combine --tokens.
	NewTokenCounter func() (mdcrawl.TokenCounter, error)
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
		NewRenderer: newRenderer,
		NewTokenCounter: func() (mdcrawl.TokenCounter, error) {
			return gemini.NewTokenCounter(gemini.DefaultModel)
		},
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:             ctx,
		Stdout:          stdout,
		Stderr:          stderr,
		HTTPClient:      m.HTTPClient,
		NewRenderer:     m.NewRenderer,
		NewTokenCounter: m.NewTokenCounter,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("mdcrawl"),
		kong.Description("Mirror a website into Markdown files and combine them into one document"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'mdcrawl --help' to see available commands")
	}
	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelInfo
	}
	deps.Verbose = cli.Verbose
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return kongCtx.Run(deps)
}

// newRenderer builds the renderer named by cfg.Renderer.
func newRenderer(cfg mdcrawl.Config, client *http.Client) (mdcrawl.Renderer, error) {
	switch cfg.Renderer {
	case mdcrawl.RendererHTTP:
		return mdhttp.NewRenderer(mdhttp.WithClient(client)), nil
	case mdcrawl.RendererRod:
		r, err := rod.NewRenderer()
		if err != nil {
			return nil, mdcrawl.Errorf(mdcrawl.EINTERNAL, "failed to start browser (Chrome or Chromium must be installed, or use --renderer http): %v", err)
		}
		return r, nil
	default:
		return nil, mdcrawl.Errorf(mdcrawl.EINVALID, "unknown renderer %q", cfg.Renderer)
	}
}
