package mdcrawl

import (
	"context"
	"time"
)

// TargetState is the lifecycle state of a crawl target.
type TargetState int

// Target states. Done and Failed are terminal.
const (
	StatePending TargetState = iota
	StateInFlight
	StateDone
	StateFailed
	StateBlockedRetry
)

// String returns the lowercase name of the state.
func (s TargetState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInFlight:
		return "in_flight"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateBlockedRetry:
		return "blocked_retry"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s TargetState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Target is a URL tracked by the frontier.
type Target struct {
	URL   string
	State TargetState

	// Attempt counts how many times the target has been handed out for
	// rendering. It is zero while the target has never been in flight.
	Attempt int

	// Err holds the last error reported for the target.
	Err error

	// ReadyAt is when a blocked target may be retried.
	ReadyAt time.Time
}

// Outcome is the result of processing an in-flight target.
type Outcome int

// Processing outcomes reported back to the frontier.
const (
	OutcomeDone Outcome = iota
	OutcomeBlocked
	OutcomeFailed
)

// FrontierStats is a snapshot of target counts per state.
type FrontierStats struct {
	Pending  int
	InFlight int
	Blocked  int
	Done     int
	Failed   int
}

// URLFrontier manages the crawl queue and target lifecycle.
// Implementations must be safe for concurrent use.
type URLFrontier interface {
	// Enqueue adds a URL as a Pending target.
	// Returns false if the URL has already been seen.
	Enqueue(url string) bool

	// NextReady returns the next Pending target and marks it InFlight.
	// Returns false when nothing is ready or the concurrency limit is reached.
	NextReady() (*Target, bool)

	// ReportResult transitions an InFlight target according to outcome.
	ReportResult(target *Target, outcome Outcome, err error)

	// Empty returns true when no target is Pending, InFlight or BlockedRetry.
	Empty() bool
}

// URLSet records normalized URLs seen by a frontier.
type URLSet interface {
	// Add records a URL.
	Add(url string)

	// Test returns true if the URL may have been added.
	Test(url string) bool
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
