package crawl_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/mdcrawl"
	"github.com/fwojciec/mdcrawl/bloom"
	"github.com/fwojciec/mdcrawl/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontier_Enqueue_rejects_duplicate_URLs(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()

	assert.True(t, f.Enqueue("https://example.com/docs/page1"))
	assert.False(t, f.Enqueue("https://example.com/docs/page1"))
	assert.False(t, f.Enqueue("https://EXAMPLE.com:443/docs/page1#intro"), "normalized duplicate should be rejected")
	assert.Equal(t, 1, f.Len())
}

func TestFrontier_Enqueue_rejects_invalid_URLs(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()

	assert.False(t, f.Enqueue("mailto:someone@example.com"))
	assert.False(t, f.Enqueue("/relative/path"))
	assert.True(t, f.Empty())
}

func TestFrontier_Enqueue_keeps_trailing_slash_distinct(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()

	assert.True(t, f.Enqueue("https://example.com/docs/x"))
	assert.True(t, f.Enqueue("https://example.com/docs/x/"))
}

func TestFrontier_NextReady_returns_FIFO_order(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(crawl.WithConcurrency(3))
	f.Enqueue("https://example.com/a")
	f.Enqueue("https://example.com/b")
	f.Enqueue("https://example.com/c")

	for _, want := range []string{"a", "b", "c"} {
		target, ok := f.NextReady()
		require.True(t, ok)
		assert.Equal(t, "https://example.com/"+want, target.URL)
		assert.Equal(t, mdcrawl.StateInFlight, target.State)
		assert.Equal(t, 1, target.Attempt)
	}

	_, ok := f.NextReady()
	assert.False(t, ok)
}

func TestFrontier_NextReady_respects_concurrency(t *testing.T) {
	t.Parallel()

	// Given the default concurrency of one
	f := crawl.NewFrontier()
	f.Enqueue("https://example.com/a")
	f.Enqueue("https://example.com/b")

	first, ok := f.NextReady()
	require.True(t, ok)

	// Then a second target is withheld until the first is reported
	_, ok = f.NextReady()
	assert.False(t, ok)

	f.ReportResult(first, mdcrawl.OutcomeDone, nil)

	second, ok := f.NextReady()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/b", second.URL)
}

func TestFrontier_ReportResult_done(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()
	f.Enqueue("https://example.com/")
	target, _ := f.NextReady()

	f.ReportResult(target, mdcrawl.OutcomeDone, nil)

	assert.Equal(t, mdcrawl.StateDone, target.State)
	assert.True(t, f.Empty())
	assert.Equal(t, mdcrawl.FrontierStats{Done: 1}, f.Stats())
}

func TestFrontier_ReportResult_failed(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()
	f.Enqueue("https://example.com/")
	target, _ := f.NextReady()
	renderErr := mdcrawl.Errorf(mdcrawl.ETIMEOUT, "timed out")

	f.ReportResult(target, mdcrawl.OutcomeFailed, renderErr)

	assert.Equal(t, mdcrawl.StateFailed, target.State)
	assert.True(t, f.Empty())
	failures := f.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "https://example.com/", failures[0].URL)
	assert.Equal(t, renderErr, failures[0].Err)
}

func TestFrontier_ReportResult_ignores_targets_not_in_flight(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()
	f.Enqueue("https://example.com/")
	target, _ := f.NextReady()
	f.ReportResult(target, mdcrawl.OutcomeDone, nil)

	// Reporting twice must not corrupt counters
	f.ReportResult(target, mdcrawl.OutcomeFailed, errors.New("late"))
	f.ReportResult(nil, mdcrawl.OutcomeDone, nil)

	assert.Equal(t, mdcrawl.StateDone, target.State)
	assert.Equal(t, mdcrawl.FrontierStats{Done: 1}, f.Stats())
}

func TestFrontier_retry_ceiling(t *testing.T) {
	t.Parallel()

	// Given a frontier with ceiling 3 and no backoff delay
	f := crawl.NewFrontier(
		crawl.WithRetryCeiling(3),
		crawl.WithRetryDelays(nil),
	)
	f.Enqueue("https://example.com/blocked")
	blockErr := mdcrawl.Errorf(mdcrawl.EBLOCKED, "HTTP 429")

	// When the target is blocked on every attempt
	renders := 0
	for !f.Empty() {
		target, ok := f.NextReady()
		require.True(t, ok)
		renders++
		f.ReportResult(target, mdcrawl.OutcomeBlocked, blockErr)
		require.LessOrEqual(t, renders, 10, "frontier did not terminate")
	}

	// Then it is rendered 1 + ceiling times and ends Failed
	assert.Equal(t, 4, renders)
	failures := f.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, 4, failures[0].Attempt)
	assert.Equal(t, mdcrawl.StateFailed, failures[0].State)
}

func TestFrontier_retry_ceiling_zero_fails_immediately(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(crawl.WithRetryCeiling(0))
	f.Enqueue("https://example.com/")
	target, _ := f.NextReady()

	f.ReportResult(target, mdcrawl.OutcomeBlocked, nil)

	assert.Equal(t, mdcrawl.StateFailed, target.State)
	assert.True(t, f.Empty())
}

func TestFrontier_blocked_target_waits_for_backoff(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := crawl.NewFrontier(
		crawl.WithRetryDelays([]time.Duration{10 * time.Second}),
		crawl.WithClock(func() time.Time { return now }),
	)
	f.Enqueue("https://example.com/")
	target, _ := f.NextReady()

	// When the target is blocked
	f.ReportResult(target, mdcrawl.OutcomeBlocked, nil)

	// Then it is not ready until the backoff elapses
	assert.Equal(t, mdcrawl.StateBlockedRetry, target.State)
	assert.False(t, f.Empty())
	_, ok := f.NextReady()
	assert.False(t, ok)
	wait, ok := f.RetryWait()
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, wait)
	assert.Equal(t, 1, f.Stats().Blocked)

	now = now.Add(10 * time.Second)

	retried, ok := f.NextReady()
	require.True(t, ok)
	assert.Same(t, target, retried)
	assert.Equal(t, 2, retried.Attempt)
}

func TestFrontier_RetryWait_without_blocked_targets(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()

	_, ok := f.RetryWait()

	assert.False(t, ok)
}

func TestFrontier_WithURLSet_bloom(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(crawl.WithURLSet(bloom.NewURLSet(100, 0.001)))

	assert.True(t, f.Enqueue("https://example.com/a"))
	assert.False(t, f.Enqueue("https://example.com/a"))
}

func TestFrontier_concurrent_enqueue(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier()

	// Given 10 goroutines each enqueueing the same 100 URLs
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				if f.Enqueue(fmt.Sprintf("https://example.com/page%d", i)) {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	// Then each URL is accepted exactly once
	assert.Equal(t, 100, accepted)
	assert.Equal(t, 100, f.Stats().Pending)
}

func TestBackoffDelay(t *testing.T) {
	t.Parallel()

	delays := []time.Duration{time.Second, 2 * time.Second}

	assert.Equal(t, time.Second, crawl.BackoffDelay(delays, 1))
	assert.Equal(t, 2*time.Second, crawl.BackoffDelay(delays, 2))
	assert.Equal(t, 2*time.Second, crawl.BackoffDelay(delays, 5))
	assert.Equal(t, time.Duration(0), crawl.BackoffDelay(nil, 1))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, crawl.DefaultRetryDelays())
}
