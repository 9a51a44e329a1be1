package crawl

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/mdcrawl"
)

var _ mdcrawl.Renderer = (*ConvertingRenderer)(nil)

// ConvertingRenderer replaces the plain visible text of a rendered page
// with Markdown produced from its main content.
type ConvertingRenderer struct {
	Renderer  mdcrawl.Renderer
	Extractor mdcrawl.Extractor
	Converter mdcrawl.Converter
}

// Render renders the URL and converts its HTML to Markdown. Pages without
// HTML keep their plain text. Extraction failures fall back to converting
// the whole document.
func (r *ConvertingRenderer) Render(ctx context.Context, url string) (*mdcrawl.Page, error) {
	page, err := r.Renderer.Render(ctx, url)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(page.HTML) == "" {
		return page, nil
	}

	html := page.HTML
	title := page.Title
	if extracted, err := r.Extractor.Extract(page.HTML); err == nil {
		html = extracted.ContentHTML
		if title == "" {
			title = extracted.Title
		}
	}

	markdown, err := r.Converter.Convert(html, page.URL)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", url, err)
	}

	out := *page
	out.Title = title
	out.Text = strings.TrimSpace(markdown)
	return &out, nil
}

// Close closes the wrapped renderer.
func (r *ConvertingRenderer) Close() error {
	return r.Renderer.Close()
}
