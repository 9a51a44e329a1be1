package mock

import (
	"context"

	"github.com/fwojciec/mdcrawl"
)

var (
	_ mdcrawl.Extractor    = (*Extractor)(nil)
	_ mdcrawl.Converter    = (*Converter)(nil)
	_ mdcrawl.TokenCounter = (*TokenCounter)(nil)
)

// Extractor is a mock implementation of mdcrawl.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*mdcrawl.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*mdcrawl.ExtractResult, error) {
	return e.ExtractFn(html)
}

// Converter is a mock implementation of mdcrawl.Converter.
type Converter struct {
	ConvertFn func(html, pageURL string) (string, error)
}

func (c *Converter) Convert(html, pageURL string) (string, error) {
	return c.ConvertFn(html, pageURL)
}

// TokenCounter is a mock implementation of mdcrawl.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}
