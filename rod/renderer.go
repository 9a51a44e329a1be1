// Package rod renders pages in headless Chrome using go-rod.
package rod

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/fwojciec/mdcrawl"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Renderer implements mdcrawl.Renderer at compile time.
var _ mdcrawl.Renderer = (*Renderer)(nil)

// extractJS collects the title, visible text, HTTP status and every anchor
// href, including anchors inside open shadow roots. It also reports whether
// the document matches the challenge selector passed as its argument.
const extractJS = `(challengeSelector) => {
	const links = [];
	const walk = (root) => {
		root.querySelectorAll('a[href]').forEach((a) => links.push(a.href));
		root.querySelectorAll('*').forEach((el) => {
			if (el.shadowRoot) walk(el.shadowRoot);
		});
	};
	walk(document);
	const nav = performance.getEntriesByType('navigation')[0];
	return {
		title: document.title || '',
		text: document.body ? document.body.innerText : '',
		status: nav && nav.responseStatus ? nav.responseStatus : 0,
		challenge: document.querySelector(challengeSelector) !== null,
		links: links,
	};
}`

// Option configures a Renderer.
type Option func(*options)

type options struct {
	recycleAfter int64
}

// WithRecycleAfter sets how many pages are rendered before the browser
// process is replaced. A non-positive value disables recycling.
func WithRecycleAfter(n int64) Option {
	return func(o *options) {
		o.recycleAfter = n
	}
}

// Renderer loads pages in a managed headless browser and reads their
// title, visible text and links.
// Renderer is safe for concurrent use by multiple goroutines.
type Renderer struct {
	recycleAfter int64

	mu      sync.Mutex
	current *instance // nil once closed
	retired map[*instance]struct{}
}

var errClosed = mdcrawl.Errorf(mdcrawl.EINVALID, "renderer is closed")

// NewRenderer launches a headless browser.
// Close must be called when the Renderer is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewRenderer(opts ...Option) (*Renderer, error) {
	o := options{recycleAfter: DefaultRecycleAfter}
	for _, opt := range opts {
		opt(&o)
	}
	inst, err := launch()
	if err != nil {
		return nil, err
	}
	return &Renderer{
		recycleAfter: o.recycleAfter,
		current:      inst,
		retired:      make(map[*instance]struct{}),
	}, nil
}

// Render navigates to the URL in a fresh tab and extracts the page.
// The context deadline bounds navigation, load and extraction.
func (r *Renderer) Render(ctx context.Context, url string) (*mdcrawl.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inst, err := r.acquire()
	if err != nil {
		return nil, err
	}
	defer r.release(inst)

	tab, err := inst.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, renderError(ctx, url, err)
	}
	defer tab.Close()

	tab = tab.Context(ctx)
	if err := tab.Navigate(url); err != nil {
		return nil, renderError(ctx, url, err)
	}
	if err := tab.WaitLoad(); err != nil {
		return nil, renderError(ctx, url, err)
	}

	res, err := tab.Eval(extractJS, mdcrawl.ChallengeSelector)
	if err != nil {
		return nil, renderError(ctx, url, err)
	}
	html, err := tab.HTML()
	if err != nil {
		return nil, renderError(ctx, url, err)
	}

	page := &mdcrawl.Page{
		URL:   url,
		Title: strings.TrimSpace(res.Value.Get("title").Str()),
		Text:  strings.TrimSpace(res.Value.Get("text").Str()),
		HTML:  html,
	}
	for _, link := range res.Value.Get("links").Arr() {
		if href := link.Str(); strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			page.Links = append(page.Links, href)
		}
	}

	status := res.Value.Get("status").Int()
	switch {
	case mdcrawl.IsBlockedStatus(status):
		return nil, mdcrawl.Errorf(mdcrawl.EBLOCKED, "%s: HTTP %d", url, status)
	case status == http.StatusNotFound || status == http.StatusGone:
		return nil, mdcrawl.Errorf(mdcrawl.ENOTFOUND, "%s: HTTP %d", url, status)
	case status >= 400:
		return nil, mdcrawl.Errorf(mdcrawl.EINTERNAL, "%s: HTTP %d", url, status)
	case res.Value.Get("challenge").Bool(), mdcrawl.LooksBlocked(page.Title, page.Text):
		return nil, mdcrawl.Errorf(mdcrawl.EBLOCKED, "%s: anti-bot challenge page", url)
	}
	return page, nil
}

// renderError maps browser failures caused by the context deadline to ETIMEOUT.
func renderError(ctx context.Context, url string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return mdcrawl.Errorf(mdcrawl.ETIMEOUT, "%s: page did not load in time", url)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("render %s: %w", url, err)
}

// Close shuts down every browser process. Close is safe to call multiple
// times; renders started afterwards fail.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return nil
	}
	err := r.current.shutdown()
	r.current = nil
	for inst := range r.retired {
		_ = inst.shutdown()
	}
	clear(r.retired)
	return err
}

// LauncherPID returns the process ID of the current browser launcher, or
// zero once closed.
func (r *Renderer) LauncherPID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return 0
	}
	return r.current.launcher.PID()
}
