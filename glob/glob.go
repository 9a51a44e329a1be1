// Package glob compiles URL glob patterns using github.com/gobwas/glob.
//
// Patterns use '/' as the segment separator: "*" matches within a single
// path segment and "**" matches across segments.
package glob

import (
	"net/url"

	"github.com/fwojciec/mdcrawl"
	"github.com/gobwas/glob"
)

var _ mdcrawl.Pattern = (*Pattern)(nil)

// Pattern is a compiled URL glob.
type Pattern struct {
	source string
	g      glob.Glob
}

// Compile validates and compiles a URL glob pattern.
func Compile(pattern string) (*Pattern, error) {
	if err := mdcrawl.ValidatePattern(pattern); err != nil {
		return nil, err
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, mdcrawl.Errorf(mdcrawl.EINVALID, "invalid glob pattern %q: %v", pattern, err)
	}
	return &Pattern{source: pattern, g: g}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// Match returns true if the URL matches the pattern.
func (p *Pattern) Match(url string) bool {
	return p.g.Match(url)
}

// String returns the source pattern.
func (p *Pattern) String() string {
	return p.source
}

// CompileAll compiles every pattern, stopping at the first error.
func CompileAll(patterns []string) ([]mdcrawl.Pattern, error) {
	out := make([]mdcrawl.Pattern, 0, len(patterns))
	for _, s := range patterns {
		p, err := Compile(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Literal compiles a pattern matching exactly the given URL.
func Literal(rawURL string) (*Pattern, error) {
	return Compile(glob.QuoteMeta(rawURL))
}

// DefaultIncludes returns the include patterns used when none are
// configured: the exact seed URL and everything under the seed's origin.
// The seed is normalized first so the patterns match links in the form the
// crawler compares them.
func DefaultIncludes(seedURL string) ([]mdcrawl.Pattern, error) {
	seed, err := mdcrawl.NormalizeURL(seedURL)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(seed)
	if err != nil {
		return nil, mdcrawl.Errorf(mdcrawl.EINVALID, "invalid seed URL %q", seedURL)
	}
	exact, err := Literal(seed)
	if err != nil {
		return nil, err
	}
	origin, err := Compile(u.Scheme + "://" + glob.QuoteMeta(u.Host) + "/**")
	if err != nil {
		return nil, err
	}
	return []mdcrawl.Pattern{exact, origin}, nil
}

// NewFilter builds a URL filter from include and exclude pattern strings.
// When include is empty, DefaultIncludes of the seed URL is used.
func NewFilter(seedURL string, include, exclude []string) (*mdcrawl.URLFilter, error) {
	var (
		inc []mdcrawl.Pattern
		err error
	)
	if len(include) == 0 {
		inc, err = DefaultIncludes(seedURL)
	} else {
		inc, err = CompileAll(include)
	}
	if err != nil {
		return nil, err
	}
	exc, err := CompileAll(exclude)
	if err != nil {
		return nil, err
	}
	return &mdcrawl.URLFilter{Include: inc, Exclude: exc}, nil
}
