package crawl

import (
	"sort"
	"sync"
	"time"

	"github.com/fwojciec/mdcrawl"
)

var _ mdcrawl.URLFrontier = (*Frontier)(nil)

// FrontierOption configures a Frontier.
type FrontierOption func(*Frontier)

// WithConcurrency sets the maximum number of InFlight targets.
func WithConcurrency(n int) FrontierOption {
	return func(f *Frontier) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithRetryCeiling sets how many times a blocked target is retried
// before it fails.
func WithRetryCeiling(n int) FrontierOption {
	return func(f *Frontier) {
		if n >= 0 {
			f.retryCeiling = n
		}
	}
}

// WithRetryDelays sets the backoff applied to blocked targets.
func WithRetryDelays(delays []time.Duration) FrontierOption {
	return func(f *Frontier) {
		f.delays = delays
	}
}

// WithURLSet replaces the exact visited set, e.g. with a Bloom filter.
func WithURLSet(s mdcrawl.URLSet) FrontierOption {
	return func(f *Frontier) {
		f.seen = s
	}
}

// WithClock overrides the time source used for backoff.
func WithClock(now func() time.Time) FrontierOption {
	return func(f *Frontier) {
		f.now = now
	}
}

// Frontier is an in-memory FIFO crawl frontier.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu sync.Mutex

	seen     mdcrawl.URLSet
	pending  []*mdcrawl.Target
	blocked  []*mdcrawl.Target
	inFlight int
	done     int
	failed   []*mdcrawl.Target
	enqueued int

	concurrency  int
	retryCeiling int
	delays       []time.Duration
	now          func() time.Time
}

// NewFrontier creates an empty frontier.
func NewFrontier(opts ...FrontierOption) *Frontier {
	f := &Frontier{
		seen:         NewURLSet(),
		concurrency:  mdcrawl.DefaultConcurrency,
		retryCeiling: mdcrawl.DefaultRetryCeiling,
		delays:       DefaultRetryDelays(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Enqueue normalizes the URL and adds it as a Pending target.
// Returns false if the URL is invalid or has already been seen.
func (f *Frontier) Enqueue(rawURL string) bool {
	u, err := mdcrawl.NormalizeURL(rawURL)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen.Test(u) {
		return false
	}
	f.seen.Add(u)
	f.enqueued++
	f.pending = append(f.pending, &mdcrawl.Target{URL: u, State: mdcrawl.StatePending})
	return true
}

// NextReady hands out the oldest Pending target, marking it InFlight.
// Blocked targets whose backoff has elapsed rejoin the queue first.
func (f *Frontier) NextReady() (*mdcrawl.Target, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.promoteBlocked()

	if f.inFlight >= f.concurrency || len(f.pending) == 0 {
		return nil, false
	}
	t := f.pending[0]
	f.pending[0] = nil
	f.pending = f.pending[1:]

	t.State = mdcrawl.StateInFlight
	t.Attempt++
	f.inFlight++
	return t, true
}

// promoteBlocked moves ready blocked targets to the back of the queue
// in the order they became ready. Must be called with mu held.
func (f *Frontier) promoteBlocked() {
	if len(f.blocked) == 0 {
		return
	}
	now := f.now()
	sort.SliceStable(f.blocked, func(i, j int) bool {
		return f.blocked[i].ReadyAt.Before(f.blocked[j].ReadyAt)
	})
	n := 0
	for _, t := range f.blocked {
		if t.ReadyAt.After(now) {
			break
		}
		t.State = mdcrawl.StatePending
		t.ReadyAt = time.Time{}
		f.pending = append(f.pending, t)
		n++
	}
	f.blocked = f.blocked[n:]
}

// ReportResult transitions an InFlight target. A blocked target is retried
// after backoff while its attempt count does not exceed the retry ceiling,
// so a target that is always blocked is rendered 1 + ceiling times.
// Targets that are not InFlight are ignored.
func (f *Frontier) ReportResult(t *mdcrawl.Target, outcome mdcrawl.Outcome, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t == nil || t.State != mdcrawl.StateInFlight {
		return
	}
	f.inFlight--
	t.Err = err

	switch outcome {
	case mdcrawl.OutcomeDone:
		t.State = mdcrawl.StateDone
		t.Err = nil
		f.done++
	case mdcrawl.OutcomeBlocked:
		if t.Attempt <= f.retryCeiling {
			t.State = mdcrawl.StateBlockedRetry
			t.ReadyAt = f.now().Add(BackoffDelay(f.delays, t.Attempt))
			f.blocked = append(f.blocked, t)
			return
		}
		t.State = mdcrawl.StateFailed
		f.failed = append(f.failed, t)
	default:
		t.State = mdcrawl.StateFailed
		f.failed = append(f.failed, t)
	}
}

// Empty returns true when no target is Pending, InFlight or BlockedRetry.
func (f *Frontier) Empty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending) == 0 && len(f.blocked) == 0 && f.inFlight == 0
}

// RetryWait returns the time until the earliest blocked target may be
// retried. The bool result is false when no target is blocked.
func (f *Frontier) RetryWait() (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.blocked) == 0 {
		return 0, false
	}
	earliest := f.blocked[0].ReadyAt
	for _, t := range f.blocked[1:] {
		if t.ReadyAt.Before(earliest) {
			earliest = t.ReadyAt
		}
	}
	return max(earliest.Sub(f.now()), 0), true
}

// Stats returns a snapshot of target counts.
func (f *Frontier) Stats() mdcrawl.FrontierStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return mdcrawl.FrontierStats{
		Pending:  len(f.pending),
		InFlight: f.inFlight,
		Blocked:  len(f.blocked),
		Done:     f.done,
		Failed:   len(f.failed),
	}
}

// Len returns the number of URLs ever accepted by Enqueue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enqueued
}

// Failures returns copies of the failed targets in the order they failed.
func (f *Frontier) Failures() []mdcrawl.Target {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]mdcrawl.Target, len(f.failed))
	for i, t := range f.failed {
		out[i] = *t
	}
	return out
}

// URLSet is an exact visited set. It is not safe for concurrent use on
// its own; Frontier guards it with its mutex.
type URLSet map[string]struct{}

// NewURLSet returns an empty exact set.
func NewURLSet() URLSet {
	return make(URLSet)
}

// Add records a URL.
func (s URLSet) Add(url string) {
	s[url] = struct{}{}
}

// Test returns true if the URL was added.
func (s URLSet) Test(url string) bool {
	_, ok := s[url]
	return ok
}
