package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/mdcrawl"
	"github.com/fwojciec/mdcrawl/crawl"
	"github.com/fwojciec/mdcrawl/fs"
	mdslog "github.com/fwojciec/mdcrawl/slog"
)

// Run executes the combine command.
func (c *CombineCmd) Run(deps *Dependencies) error {
	dir := filepath.Clean(c.Dir)
	output := c.Output
	if output == "" {
		output = dir + ".md"
	}

	var aggregator mdcrawl.Aggregator = fs.NewAggregator()
	if deps.Verbose {
		aggregator = mdslog.NewLoggingAggregator(aggregator, deps.Logger)
	}
	res, err := aggregator.Aggregate(deps.Ctx, dir, output)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", describe(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Combined %d files into %s (%s)\n", res.Files, res.Path, crawl.FormatBytes(res.Bytes))

	if !c.Tokens {
		return nil
	}

	counter, err := deps.NewTokenCounter()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: create token counter: %s\n", describe(err))
		return err
	}
	content, err := os.ReadFile(res.Path)
	if err != nil {
		return mdcrawl.Errorf(mdcrawl.EAGGREGATE, "read %s: %v", res.Path, err)
	}
	tokens, err := counter.CountTokens(deps.Ctx, string(content))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: count tokens: %s\n", describe(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Combined document is %s\n", crawl.FormatTokens(tokens))
	return nil
}
