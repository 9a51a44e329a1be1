package mdcrawl

import (
	"context"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// IndexFilename is the artifact name used for directory-like URLs.
const IndexFilename = "index.md"

// Artifact is one rendered page persisted as a single Markdown file.
type Artifact struct {
	// Directory holds the path segments below the output root.
	// The first segment is always the URL host.
	Directory []string
	Filename  string

	Title     string
	Body      string
	SourceURL string
}

// RelPath returns the artifact location relative to the output root,
// using the host operating system's separator.
func (a *Artifact) RelPath() string {
	parts := append(append([]string{}, a.Directory...), a.Filename)
	return filepath.Join(parts...)
}

// NewArtifact resolves the location of a rendered page and returns the
// artifact that should be written for it.
func NewArtifact(page *Page) (*Artifact, error) {
	dir, filename, err := ResolvePath(page.URL)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Directory: dir,
		Filename:  filename,
		Title:     page.Title,
		Body:      page.Text,
		SourceURL: page.URL,
	}, nil
}

// FormatArtifact renders the on-disk representation of an artifact.
func FormatArtifact(a *Artifact) string {
	var b strings.Builder
	b.WriteString("Retrieved from: ")
	b.WriteString(a.SourceURL)
	b.WriteString("\n\n# ")
	b.WriteString(a.Title)
	b.WriteString("\n\n")
	b.WriteString(a.Body)
	b.WriteString("\n\n")
	return b.String()
}

// ArtifactWriter persists artifacts under an output root.
type ArtifactWriter interface {
	// WriteArtifact writes the artifact, creating missing directories, and
	// returns the full path written. An existing file at the same location
	// is overwritten. Failures carry the EWRITE code.
	WriteArtifact(ctx context.Context, a *Artifact) (string, error)
}

// ResolvePath maps a URL to its artifact directory segments and filename.
// The mapping depends on the URL alone: the host becomes the first
// directory, query and fragment are ignored.
//
//	https://example.com/                      → [example.com], index.md
//	https://example.com/docs/guide            → [example.com docs guide], index.md
//	https://example.com/docs/guide/intro.html → [example.com docs guide], intro.md
func ResolvePath(rawURL string) ([]string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Host == "" {
		return nil, "", Errorf(EINVALID, "URL %q has no host", rawURL)
	}

	var segments []string
	for _, seg := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if seg == "" {
			continue
		}
		if seg == "." || seg == ".." || strings.Contains(seg, `\`) {
			return nil, "", Errorf(EINVALID, "URL %q: path traversal segment %q", rawURL, seg)
		}
		segments = append(segments, seg)
	}

	dir := []string{u.Host}
	if len(segments) == 0 {
		return dir, IndexFilename, nil
	}

	last := segments[len(segments)-1]
	if name, ok := splitExt(last); ok {
		dir = append(dir, segments[:len(segments)-1]...)
		return dir, name + ".md", nil
	}
	dir = append(dir, segments...)
	return dir, IndexFilename, nil
}

// splitExt returns the segment without its extension when it has one.
// A leading dot (".well-known") or a trailing dot ("v1.") is not an extension.
func splitExt(segment string) (string, bool) {
	ext := path.Ext(segment)
	if len(ext) < 2 || len(ext) == len(segment) {
		return "", false
	}
	return strings.TrimSuffix(segment, ext), true
}
