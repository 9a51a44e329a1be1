package mock

import (
	"context"

	"github.com/fwojciec/mdcrawl"
)

var _ mdcrawl.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of mdcrawl.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *mdcrawl.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *mdcrawl.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}

var _ mdcrawl.RobotsPolicy = (*RobotsPolicy)(nil)

// RobotsPolicy is a mock implementation of mdcrawl.RobotsPolicy.
type RobotsPolicy struct {
	AllowedFn func(ctx context.Context, url string) bool
}

func (p *RobotsPolicy) Allowed(ctx context.Context, url string) bool {
	return p.AllowedFn(ctx, url)
}
