package crawl

import "time"

// DefaultRetryDelays returns the backoff delays for blocked targets: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// BackoffDelay returns the delay before retrying a target that was blocked
// on the given attempt (1-based). Attempts beyond the configured delays reuse
// the last one. An empty delay list means no delay.
func BackoffDelay(delays []time.Duration, attempt int) time.Duration {
	if len(delays) == 0 {
		return 0
	}
	i := min(max(attempt-1, 0), len(delays)-1)
	return delays[i]
}
