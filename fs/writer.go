package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/mdcrawl"
)

// Ensure Writer implements mdcrawl.ArtifactWriter at compile time.
var _ mdcrawl.ArtifactWriter = (*Writer)(nil)

// Writer writes artifacts as Markdown files below a root directory.
type Writer struct {
	root string
}

// NewWriter creates a Writer rooted at dir. The directory is created on
// first write.
func NewWriter(dir string) *Writer {
	return &Writer{root: dir}
}

// Root returns the output root directory.
func (w *Writer) Root() string {
	return w.root
}

// WriteArtifact writes the artifact, creating missing parent directories,
// and replaces any existing file at the same location.
func (w *Writer) WriteArtifact(ctx context.Context, a *mdcrawl.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(a.Directory) == 0 || a.Filename == "" {
		return "", mdcrawl.Errorf(mdcrawl.EWRITE, "artifact for %s has no location", a.SourceURL)
	}

	fullPath := filepath.Join(w.root, a.RelPath())
	rel, err := filepath.Rel(w.root, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", mdcrawl.Errorf(mdcrawl.EWRITE, "artifact path %q escapes output root", a.RelPath())
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), dirPerm); err != nil {
		return "", mdcrawl.Errorf(mdcrawl.EWRITE, "create directory for %s: %v", a.SourceURL, err)
	}
	if err := writeFileAtomic(fullPath, []byte(mdcrawl.FormatArtifact(a))); err != nil {
		return "", mdcrawl.Errorf(mdcrawl.EWRITE, "write %s: %v", fullPath, err)
	}
	return fullPath, nil
}
