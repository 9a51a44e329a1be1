package mdcrawl

import (
	"context"
	"net/http"
	"strings"
)

// Page is the output of rendering a single URL.
type Page struct {
	URL   string
	Title string

	// Text is the visible text of the page body.
	Text string

	// HTML is the rendered document. Renderers may leave it empty.
	HTML string

	// Links holds absolute URLs of every anchor found on the page.
	Links []string
}

// Renderer loads a URL and extracts its title, visible text and links.
// Implementations may use browser automation to handle JavaScript-rendered content.
//
// Render returns an EBLOCKED error when the site signals throttling or
// anti-bot rejection, and an ETIMEOUT error (or one wrapping
// context.DeadlineExceeded) when the page did not load in time.
type Renderer interface {
	Render(ctx context.Context, url string) (*Page, error)

	// Close releases resources. Must be called when the Renderer is no longer needed.
	Close() error
}

// blockedStatuses are HTTP statuses treated as a transient block.
var blockedStatuses = map[int]bool{
	http.StatusUnauthorized:       true,
	http.StatusForbidden:          true,
	http.StatusTooManyRequests:    true,
	http.StatusServiceUnavailable: true,
}

// IsBlockedStatus reports whether an HTTP status indicates the site is
// throttling or rejecting the crawler rather than failing outright.
func IsBlockedStatus(code int) bool {
	return blockedStatuses[code]
}

// blockedMarkers are phrases that only appear on anti-bot interstitials.
// Generic words such as "captcha" or "access denied" are left out since
// documentation pages use them too.
var blockedMarkers = []string{
	"just a moment...",
	"attention required! | cloudflare",
	"checking your browser before accessing",
}

// ChallengeSelector matches DOM elements present only on anti-bot
// challenge pages. Renderers that hold a DOM check it in addition to
// LooksBlocked.
const ChallengeSelector = `#challenge-form, #challenge-running, #cf-challenge-running, iframe[src*="challenges.cloudflare.com"]`

// LooksBlocked reports whether a rendered page appears to be an anti-bot
// challenge instead of real content. Only the title and the beginning of
// the text are inspected so long pages mentioning these words still pass.
func LooksBlocked(title, text string) bool {
	const maxInspect = 512

	head := text
	if len(head) > maxInspect {
		head = head[:maxInspect]
	}
	haystack := strings.ToLower(title + "\n" + head)
	for _, marker := range blockedMarkers {
		if strings.Contains(haystack, marker) {
			return true
		}
	}
	return false
}
