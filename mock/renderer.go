package mock

import (
	"context"

	"github.com/fwojciec/mdcrawl"
)

var _ mdcrawl.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of mdcrawl.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, url string) (*mdcrawl.Page, error)
	CloseFn  func() error
}

func (r *Renderer) Render(ctx context.Context, url string) (*mdcrawl.Page, error) {
	return r.RenderFn(ctx, url)
}

func (r *Renderer) Close() error {
	return r.CloseFn()
}
