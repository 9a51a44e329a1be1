// Package trafilatura extracts the main content of pages with go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/mdcrawl"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ mdcrawl.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor that keeps links, tables and
// images inside the main content.
func NewExtractor() *Extractor {
	return &Extractor{opts: trafilatura.Options{
		EnableFallback: true,
		IncludeLinks:   true,
		IncludeImages:  true,
	}}
}

// Extract processes raw HTML and returns the main content. It returns an
// ENOTFOUND error when no main content could be identified.
func (e *Extractor) Extract(rawHTML string) (*mdcrawl.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, mdcrawl.Errorf(mdcrawl.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, mdcrawl.Errorf(mdcrawl.ENOTFOUND, "no main content: %v", err)
	}
	if result.ContentNode == nil {
		return nil, mdcrawl.Errorf(mdcrawl.ENOTFOUND, "no main content")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return nil, err
	}

	return &mdcrawl.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: buf.String(),
	}, nil
}
