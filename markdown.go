package mdcrawl

import "context"

// ExtractResult holds the main content found in an HTML page.
type ExtractResult struct {
	// Title comes from page metadata (meta tags, JSON+LD, etc.).
	Title string

	// ContentHTML is the main content with navigation, footers and
	// sidebars removed.
	ContentHTML string
}

// Extractor strips boilerplate from rendered HTML.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter converts clean HTML (e.g., from an Extractor) into Markdown.
// Relative links and images resolve against pageURL when it is set.
type Converter interface {
	Convert(html, pageURL string) (string, error)
}

// TokenCounter counts tokens in text for a specific model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
