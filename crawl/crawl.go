// Package crawl provides crawl orchestration: the URL frontier, the
// coordinator loop that drives renderers, and artifact persistence.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fwojciec/mdcrawl"
	"golang.org/x/sync/errgroup"
)

// Crawler mirrors a site into Markdown artifacts starting from a seed URL.
type Crawler struct {
	Renderer mdcrawl.Renderer
	Writer   mdcrawl.ArtifactWriter

	// Filter decides which discovered links are followed. A nil filter
	// follows every link.
	Filter *mdcrawl.URLFilter

	// Optional collaborators.
	Sitemaps    mdcrawl.SitemapService
	Robots      mdcrawl.RobotsPolicy
	RateLimiter mdcrawl.DomainLimiter
	Journal     mdcrawl.Journal
	URLSet      mdcrawl.URLSet

	// RunID tags journal records. Required when Journal is set.
	RunID string

	Concurrency int
	Timeout     time.Duration

	// RetryCeiling is the number of retries for a blocked target. Zero
	// fails blocked targets on their first attempt.
	RetryCeiling int
	RetryDelays  []time.Duration

	// MaxPages caps the number of distinct URLs crawled. Zero means no limit.
	MaxPages int

	// OnCollision is called when two URLs resolve to the same artifact.
	// The later artifact has already replaced the earlier one.
	OnCollision func(path, previousURL, url string)
}

// Result holds the outcome of a crawl operation.
type Result struct {
	Saved      int
	Failed     int
	Retried    int
	Bytes      int
	Collisions int
	Failures   []mdcrawl.Target
}

// ProgressEvent reports progress during a crawl operation.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Path      string
	Attempt   int
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressRetrying
	ProgressFailed
	ProgressWarning
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// workResult holds the outcome of processing a single target.
type workResult struct {
	target *mdcrawl.Target
	path   string
	bytes  int
	hash   string
	links  []string
	err    error
}

// crawlState is owned by the coordinator goroutine.
type crawlState struct {
	frontier *Frontier
	result   Result
	written  map[string]string
	progress ProgressFunc
}

func (s *crawlState) emit(e ProgressEvent) {
	if s.progress == nil {
		return
	}
	stats := s.frontier.Stats()
	e.Completed = stats.Done + stats.Failed
	e.Total = s.frontier.Len()
	s.progress(e)
}

// Crawl renders the seed URL and every followable URL reachable from it,
// writing one artifact per rendered page. Per-target failures are recorded
// in the result and do not stop the crawl. When ctx is cancelled the crawl
// stops dispatching, waits for in-flight renders and returns the partial
// result together with the context error.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, progress ProgressFunc) (*Result, error) {
	seed, err := mdcrawl.NormalizeURL(seedURL)
	if err != nil {
		return nil, err
	}

	opts := []FrontierOption{
		WithConcurrency(c.Concurrency),
		WithRetryCeiling(c.RetryCeiling),
	}
	if c.RetryDelays != nil {
		opts = append(opts, WithRetryDelays(c.RetryDelays))
	}
	if c.URLSet != nil {
		opts = append(opts, WithURLSet(c.URLSet))
	}
	state := &crawlState{
		frontier: NewFrontier(opts...),
		written:  make(map[string]string),
		progress: progress,
	}
	state.frontier.Enqueue(seed)
	state.emit(ProgressEvent{Type: ProgressStarted, URL: seed})

	if c.Sitemaps != nil {
		urls, err := c.Sitemaps.DiscoverURLs(ctx, seed, c.Filter)
		if err != nil {
			state.emit(ProgressEvent{Type: ProgressWarning, URL: seed, Error: fmt.Errorf("sitemap discovery: %w", err)})
		}
		for _, u := range urls {
			c.enqueue(ctx, state, u)
		}
	}

	results := make(chan workResult)
	g, gctx := errgroup.WithContext(ctx)
	inFlight := 0

	for ctx.Err() == nil {
		for {
			target, ok := state.frontier.NextReady()
			if !ok {
				break
			}
			inFlight++
			g.Go(func() error {
				results <- c.process(gctx, target)
				return nil
			})
		}

		if inFlight == 0 && state.frontier.Empty() {
			break
		}

		var (
			retryC <-chan time.Time
			timer  *time.Timer
		)
		if wait, ok := state.frontier.RetryWait(); ok {
			if wait == 0 && inFlight == 0 {
				continue
			}
			timer = time.NewTimer(wait)
			retryC = timer.C
		}

		select {
		case r := <-results:
			inFlight--
			c.handle(ctx, state, r)
		case <-retryC:
		case <-ctx.Done():
		}
		if timer != nil {
			timer.Stop()
		}
	}

	// Drain renders that were in flight when the loop stopped.
	for ; inFlight > 0; inFlight-- {
		c.handle(ctx, state, <-results)
	}
	_ = g.Wait()

	state.result.Failures = state.frontier.Failures()
	state.emit(ProgressEvent{Type: ProgressFinished})

	if err := ctx.Err(); err != nil {
		return &state.result, err
	}
	return &state.result, nil
}

// process renders a target and writes its artifact.
func (c *Crawler) process(ctx context.Context, target *mdcrawl.Target) workResult {
	result := workResult{target: target}

	if c.RateLimiter != nil {
		if err := c.RateLimiter.Wait(ctx, Host(target.URL)); err != nil {
			result.err = err
			return result
		}
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = mdcrawl.DefaultTimeout
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := c.Renderer.Render(rctx, target.URL)
	if err != nil {
		if mdcrawl.ErrorCode(err) != mdcrawl.EBLOCKED && errors.Is(rctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = mdcrawl.Errorf(mdcrawl.ETIMEOUT, "render %s: no response within %s", target.URL, timeout)
		}
		result.err = err
		return result
	}

	// The artifact location follows the crawled URL, not any redirect target.
	rendered := *page
	rendered.URL = target.URL
	artifact, err := mdcrawl.NewArtifact(&rendered)
	if err != nil {
		result.err = err
		return result
	}
	// A page that finished rendering is persisted even if the crawl was
	// cancelled meanwhile.
	if _, err := c.Writer.WriteArtifact(context.WithoutCancel(ctx), artifact); err != nil {
		result.err = err
		return result
	}

	content := mdcrawl.FormatArtifact(artifact)
	result.path = filepath.ToSlash(artifact.RelPath())
	result.bytes = len(content)
	result.hash = ComputeHash(content)
	result.links = page.Links
	return result
}

// handle applies a work result to the frontier and the crawl result.
func (c *Crawler) handle(ctx context.Context, state *crawlState, r workResult) {
	target := r.target

	if r.err == nil {
		for _, link := range r.links {
			c.enqueue(ctx, state, link)
		}
		state.frontier.ReportResult(target, mdcrawl.OutcomeDone, nil)
		state.result.Saved++
		state.result.Bytes += r.bytes

		if prev, ok := state.written[r.path]; ok && prev != target.URL {
			state.result.Collisions++
			if c.OnCollision != nil {
				c.OnCollision(r.path, prev, target.URL)
			}
		}
		state.written[r.path] = target.URL

		c.record(ctx, state, target, r)
		state.emit(ProgressEvent{Type: ProgressCompleted, URL: target.URL, Path: r.path, Attempt: target.Attempt})
		return
	}

	outcome := mdcrawl.OutcomeFailed
	if mdcrawl.ErrorCode(r.err) == mdcrawl.EBLOCKED {
		outcome = mdcrawl.OutcomeBlocked
	}
	state.frontier.ReportResult(target, outcome, r.err)

	if target.State == mdcrawl.StateBlockedRetry {
		state.result.Retried++
		state.emit(ProgressEvent{Type: ProgressRetrying, URL: target.URL, Attempt: target.Attempt, Error: r.err})
		return
	}
	state.result.Failed++
	c.record(ctx, state, target, r)
	state.emit(ProgressEvent{Type: ProgressFailed, URL: target.URL, Attempt: target.Attempt, Error: r.err})
}

// enqueue adds a discovered link to the frontier if it is followable.
func (c *Crawler) enqueue(ctx context.Context, state *crawlState, link string) {
	u, err := mdcrawl.NormalizeURL(link)
	if err != nil {
		return
	}
	if !c.Filter.Match(u) {
		return
	}
	if c.MaxPages > 0 && state.frontier.Len() >= c.MaxPages {
		return
	}
	if c.Robots != nil && !c.Robots.Allowed(ctx, u) {
		return
	}
	state.frontier.Enqueue(u)
}

// record writes the terminal outcome of a target to the journal.
func (c *Crawler) record(ctx context.Context, state *crawlState, target *mdcrawl.Target, r workResult) {
	if c.Journal == nil {
		return
	}
	rec := &mdcrawl.TargetRecord{
		RunID:       c.RunID,
		URL:         target.URL,
		State:       target.State,
		Attempts:    target.Attempt,
		Path:        r.path,
		ContentHash: r.hash,
		FinishedAt:  time.Now().UTC(),
	}
	if r.err != nil {
		rec.Error = r.err.Error()
	}
	// Journal writes outlive cancellation so the final records are kept.
	if err := c.Journal.RecordTarget(context.WithoutCancel(ctx), rec); err != nil {
		state.emit(ProgressEvent{Type: ProgressWarning, URL: target.URL, Error: fmt.Errorf("journal: %w", err)})
	}
}
