// Package http provides HTTP implementations of mdcrawl services: a static
// page renderer for sites that don't require JavaScript, sitemap discovery
// and robots.txt checks.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/mdcrawl"
	"github.com/fwojciec/mdcrawl/goquery"
)

// DefaultUserAgent identifies the crawler in requests and robots.txt checks.
const DefaultUserAgent = "mdcrawl/1.0 (+https://github.com/fwojciec/mdcrawl)"

// maxBodyBytes limits how much of a page is read.
const maxBodyBytes = 16 << 20

var _ mdcrawl.Renderer = (*Renderer)(nil)

// Renderer loads pages with plain HTTP requests. Unlike rod.Renderer it
// does not execute JavaScript and is suitable for static sites only.
type Renderer struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTimeout sets an overall timeout for each request. By default only
// the context passed to Render bounds a request.
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		r.timeout = d
	}
}

// WithClient sets the HTTP client used for requests.
func WithClient(c *http.Client) Option {
	return func(r *Renderer) {
		r.client = c
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(r *Renderer) {
		r.userAgent = ua
	}
}

// NewRenderer creates a new HTTP-based Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{userAgent: DefaultUserAgent}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = &http.Client{}
	}
	if r.timeout > 0 {
		c := *r.client
		c.Timeout = r.timeout
		r.client = &c
	}
	return r
}

// Render fetches the URL and extracts its title, visible text and links.
func (r *Renderer) Render(ctx context.Context, url string) (*mdcrawl.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, mdcrawl.Errorf(mdcrawl.EINVALID, "invalid request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,text/plain;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fetchError(ctx, url, err)
	}
	defer resp.Body.Close()

	switch status := resp.StatusCode; {
	case mdcrawl.IsBlockedStatus(status):
		return nil, mdcrawl.Errorf(mdcrawl.EBLOCKED, "%s: HTTP %d", url, status)
	case status == http.StatusNotFound || status == http.StatusGone:
		return nil, mdcrawl.Errorf(mdcrawl.ENOTFOUND, "%s: HTTP %d", url, status)
	case status >= 400:
		return nil, mdcrawl.Errorf(mdcrawl.EINTERNAL, "%s: HTTP %d", url, status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fetchError(ctx, url, err)
	}

	finalURL := resp.Request.URL.String()
	var page *mdcrawl.Page
	switch mediaType(resp.Header.Get("Content-Type"), body) {
	case "text/html", "application/xhtml+xml":
		page, err = goquery.ParsePage(string(body), finalURL)
		if err != nil {
			return nil, err
		}
	case "text/plain":
		page = &mdcrawl.Page{URL: finalURL, Text: strings.TrimSpace(string(body))}
	default:
		return nil, mdcrawl.Errorf(mdcrawl.EINVALID, "%s: unsupported content type %q", url, resp.Header.Get("Content-Type"))
	}

	if mdcrawl.LooksBlocked(page.Title, page.Text) {
		return nil, mdcrawl.Errorf(mdcrawl.EBLOCKED, "%s: anti-bot challenge page", url)
	}
	return page, nil
}

// Close releases resources. For the HTTP renderer this is a no-op since
// http.Client doesn't require explicit cleanup.
func (r *Renderer) Close() error {
	return nil
}

// mediaType returns the response media type, sniffing the body when the
// server did not declare one.
func mediaType(header string, body []byte) string {
	if header == "" {
		header = http.DetectContentType(body)
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}

func fetchError(ctx context.Context, url string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return mdcrawl.Errorf(mdcrawl.ETIMEOUT, "%s: no response in time", url)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("fetch %s: %w", url, err)
}
