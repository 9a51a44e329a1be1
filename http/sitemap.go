package http

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/mdcrawl"
)

// Ensure SitemapService implements mdcrawl.SitemapService.
var _ mdcrawl.SitemapService = (*SitemapService)(nil)

// maxSitemapBytes limits the decompressed size of a single sitemap.
const maxSitemapBytes = 64 << 20

// SitemapService discovers URLs from website sitemaps via HTTP.
type SitemapService struct {
	client *http.Client
	robots *Robots
}

// NewSitemapService creates a new SitemapService. Sitemap locations are
// read from robots.txt through robots; when robots is nil a private
// Robots using client is created. If client is nil, http.DefaultClient
// is used.
func NewSitemapService(client *http.Client, robots *Robots) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	if robots == nil {
		robots = NewRobots(client, "")
	}
	return &SitemapService{client: client, robots: robots}
}

// DiscoverURLs finds all URLs listed in the site's sitemaps that match the
// filter. Returns an empty slice (not nil) if no sitemaps are found.
//
// Sitemaps that cannot be fetched or parsed are skipped; their errors are
// joined and returned alongside the URLs found in the remaining sitemaps.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *mdcrawl.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, mdcrawl.Errorf(mdcrawl.EINVALID, "invalid base URL: %s", baseURL)
	}

	// Sitemaps live at the root of the domain regardless of the seed path.
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}

	sitemapURLs, err := s.findSitemapURLs(ctx, root)
	if err != nil {
		return nil, err
	}

	urls := []string{}
	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)
	var errs []error

	for _, sitemapURL := range sitemapURLs {
		found, err := s.processSitemap(ctx, sitemapURL, seenSitemaps)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			errs = append(errs, err)
		}
		for _, u := range found {
			if seenURLs[u] || !filter.Match(u) {
				continue
			}
			seenURLs[u] = true
			urls = append(urls, u)
		}
	}

	return urls, errors.Join(errs...)
}

// findSitemapURLs discovers sitemap URLs from robots.txt or falls back to /sitemap.xml.
func (s *SitemapService) findSitemapURLs(ctx context.Context, root *url.URL) ([]string, error) {
	if sitemaps := s.robots.Sitemaps(ctx, root.String()); len(sitemaps) > 0 {
		return sitemaps, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sitemapURL := root.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	exists, err := s.urlExists(ctx, sitemapURL.String())
	if err != nil {
		// Propagate context errors, treat other errors as "not found"
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if exists {
		return []string{sitemapURL.String()}, nil
	}
	return nil, nil
}

// processSitemap fetches and parses a sitemap, handling both urlset and
// sitemapindex documents. Nested sitemaps that fail are skipped and their
// errors joined with the result.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Avoid processing the same sitemap twice
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	doc, err := s.fetchSitemap(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap XML at %s", sitemapURL)
	}

	if root.Tag != "sitemapindex" {
		return locs(root, "url"), nil
	}

	var (
		all  []string
		errs []error
	)
	for _, nested := range locs(root, "sitemap") {
		urls, err := s.processSitemap(ctx, nested, seen)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, err)
		}
		all = append(all, urls...)
	}
	return all, errors.Join(errs...)
}

// locs returns the trimmed <loc> values of the root's child elements
// with the given tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// fetchSitemap downloads and parses a sitemap, transparently handling
// gzip-compressed files.
func (s *SitemapService) fetchSitemap(ctx context.Context, sitemapURL string) (*etree.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.robots.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, sitemapURL)
	}

	var body io.Reader = resp.Body
	if strings.HasSuffix(strings.ToLower(req.URL.Path), ".gz") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("decompressing sitemap %s: %w", sitemapURL, err)
		}
		defer gz.Close()
		body = gz
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(io.LimitReader(body, maxSitemapBytes)); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML at %s: %w", sitemapURL, err)
	}
	return doc, nil
}

// urlExists checks if a URL returns 200 OK.
func (s *SitemapService) urlExists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.robots.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
