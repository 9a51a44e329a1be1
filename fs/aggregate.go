package fs

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fwojciec/mdcrawl"
)

var _ mdcrawl.Aggregator = (*Aggregator)(nil)

// Aggregator concatenates an artifact tree into a single Markdown file.
type Aggregator struct{}

// NewAggregator returns an Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate collects every *.md file under rootDir, orders them by their
// slash-separated relative path and writes the combined document to
// destPath. The destination is replaced only after the full document has
// been written.
func (a *Aggregator) Aggregate(ctx context.Context, rootDir, destPath string) (*mdcrawl.AggregateResult, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, mdcrawl.Errorf(mdcrawl.EAGGREGATE, "read %s: %v", rootDir, err)
	}
	if !info.IsDir() {
		return nil, mdcrawl.Errorf(mdcrawl.EAGGREGATE, "%s is not a directory", rootDir)
	}

	paths, err := a.collect(rootDir, destPath)
	if err != nil {
		return nil, err
	}

	entries := make([]mdcrawl.CombinedEntry, 0, len(paths))
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(rootDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, mdcrawl.Errorf(mdcrawl.EAGGREGATE, "read %s: %v", rel, err)
		}
		entries = append(entries, mdcrawl.CombinedEntry{Path: rel, Content: string(data)})
	}

	combined := mdcrawl.FormatCombined(entries)
	if err := os.MkdirAll(filepath.Dir(destPath), dirPerm); err != nil {
		return nil, mdcrawl.Errorf(mdcrawl.EAGGREGATE, "create directory for %s: %v", destPath, err)
	}
	if err := writeFileAtomic(destPath, []byte(combined)); err != nil {
		return nil, mdcrawl.Errorf(mdcrawl.EAGGREGATE, "write %s: %v", destPath, err)
	}

	return &mdcrawl.AggregateResult{
		Files: len(entries),
		Bytes: len(combined),
		Path:  destPath,
	}, nil
}

// collect returns the sorted slash-separated paths of artifacts under root.
// The destination file is skipped when it lives inside the tree.
func (a *Aggregator) collect(root, destPath string) ([]string, error) {
	destAbs, _ := filepath.Abs(destPath)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == destAbs {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, mdcrawl.Errorf(mdcrawl.EAGGREGATE, "walk %s: %v", root, err)
	}

	// WalkDir visits "a/index.md" before "a.md"; byte order puts "a.md" first.
	sort.Strings(paths)
	return paths, nil
}
