package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/mdcrawl"
	"github.com/temoto/robotstxt"
)

var _ mdcrawl.RobotsPolicy = (*Robots)(nil)

// maxRobotsBytes limits how much of a robots.txt response is read.
const maxRobotsBytes = 512 * 1024

// Robots checks URLs against robots.txt rules, fetching each host's file
// once and caching it for the lifetime of the Robots value.
// Robots is safe for concurrent use.
type Robots struct {
	client    *http.Client
	userAgent string

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewRobots creates a robots.txt checker. If client is nil,
// http.DefaultClient is used.
func NewRobots(client *http.Client, userAgent string) *Robots {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Robots{
		client:    client,
		userAgent: userAgent,
		cache:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether the user agent may crawl the URL. A missing or
// unreadable robots.txt allows everything.
func (r *Robots) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	data := r.lookup(ctx, u)
	if data == nil {
		return true
	}
	return data.TestAgent(u.RequestURI(), r.userAgent)
}

// Sitemaps returns the Sitemap directives of the URL's host.
func (r *Robots) Sitemaps(ctx context.Context, rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	data := r.lookup(ctx, u)
	if data == nil {
		return nil
	}
	return data.Sitemaps
}

// lookup returns the cached rules for the URL's origin, fetching them on
// first use. It returns nil when the host has no usable robots.txt.
func (r *Robots) lookup(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	origin := strings.ToLower(u.Scheme + "://" + u.Host)

	r.mu.Lock()
	data, ok := r.cache[origin]
	r.mu.Unlock()
	if ok {
		return data
	}

	data = r.fetch(ctx, origin+"/robots.txt")
	// A cancelled fetch is not cached so a later call can retry it.
	if ctx.Err() != nil {
		return data
	}

	r.mu.Lock()
	r.cache[origin] = data
	r.mu.Unlock()
	return data
}

func (r *Robots) fetch(ctx context.Context, robotsURL string) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, http.NoBody)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil
	}
	return data
}
