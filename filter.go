package mdcrawl

import "strings"

// Pattern is a compiled URL glob.
type Pattern interface {
	// Match returns true if the URL matches the pattern.
	Match(url string) bool

	// String returns the source pattern.
	String() string
}

// MatchesAny returns true if the URL matches at least one pattern.
func MatchesAny(url string, patterns []Pattern) bool {
	for _, p := range patterns {
		if p.Match(url) {
			return true
		}
	}
	return false
}

// URLFilter decides which discovered URLs the crawl follows.
type URLFilter struct {
	// Include patterns - a URL must match at least one to be followed.
	Include []Pattern

	// Exclude patterns - URLs matching any pattern are never followed,
	// even when they also match an include pattern.
	Exclude []Pattern
}

// Match returns true if the URL is followable.
// If the filter is nil, all URLs pass. An empty include list matches nothing.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}
	if !MatchesAny(url, f.Include) {
		return false
	}
	return !MatchesAny(url, f.Exclude)
}

// ValidatePattern returns an EINVALID error unless the pattern is an
// absolute http(s) URL prefix.
func ValidatePattern(pattern string) error {
	if !strings.HasPrefix(pattern, "http://") && !strings.HasPrefix(pattern, "https://") {
		return Errorf(EINVALID, "invalid glob pattern %q: must start with http:// or https://", pattern)
	}
	return nil
}
