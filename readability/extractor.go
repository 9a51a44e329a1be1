// Package readability extracts the main content of pages with go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/mdcrawl"
	"github.com/go-shiori/go-readability"
)

var _ mdcrawl.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content. It returns an
// ENOTFOUND error when the page has no readable article.
func (e *Extractor) Extract(rawHTML string) (*mdcrawl.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, mdcrawl.Errorf(mdcrawl.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, mdcrawl.Errorf(mdcrawl.ENOTFOUND, "no readable content: %v", err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return nil, mdcrawl.Errorf(mdcrawl.ENOTFOUND, "no readable content")
	}

	return &mdcrawl.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
