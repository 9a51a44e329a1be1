// Package bloom provides an approximate visited-URL set backed by a Bloom filter.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/mdcrawl"
)

var _ mdcrawl.URLSet = (*URLSet)(nil)

// DefaultFalsePositiveRate is used when the CLI enables the Bloom set.
const DefaultFalsePositiveRate = 0.001

// URLSet records visited URLs in bounded memory.
//
// Test may report a URL that was never added. A frontier using this set
// can therefore skip a URL, but never visit one twice.
type URLSet struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewURLSet creates a set sized for n expected URLs at the given false
// positive rate.
func NewURLSet(n uint, fpRate float64) *URLSet {
	return &URLSet{f: bloom.NewWithEstimates(n, fpRate)}
}

// Add records a URL.
func (s *URLSet) Add(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.AddString(url)
}

// Test returns true if the URL might have been added.
func (s *URLSet) Test(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.TestString(url)
}

// Len returns the approximate number of URLs in the set.
func (s *URLSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.f.ApproximatedSize())
}
