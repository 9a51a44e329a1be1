package mdcrawl

import (
	"context"
	"strings"
)

// CombinedEntry is one artifact file included in a combined document.
type CombinedEntry struct {
	// Path is the artifact path relative to the crawl root, slash separated.
	Path    string
	Content string
}

// FormatCombined concatenates entries in the given order. Each entry is
// preceded by a "# <path>" header and followed by a blank line.
func FormatCombined(entries []CombinedEntry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString("# ")
		b.WriteString(e.Path)
		b.WriteString("\n\n")
		b.WriteString(e.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// AggregateResult summarizes an aggregation run.
type AggregateResult struct {
	Files int
	Bytes int
	Path  string
}

// Aggregator merges an artifact tree into a single document.
type Aggregator interface {
	// Aggregate collects every artifact under rootDir in lexicographic
	// order and replaces destPath with the combined document.
	// Failures carry the EAGGREGATE code and leave destPath untouched.
	Aggregate(ctx context.Context, rootDir, destPath string) (*AggregateResult, error)
}
