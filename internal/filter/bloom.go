package filter

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// CodeFilter is a thread-safe bloom filter over issued short codes. Redirect
// lookups consult it first so requests for codes that were never issued
// skip Redis and MySQL entirely.
type CodeFilter struct {
	filter *bloom.BloomFilter
	mu     sync.RWMutex
}

// NewCodeFilter creates a filter sized for the expected number of codes and
// target false positive rate.
func NewCodeFilter(capacity uint, fpRate float64) *CodeFilter {
	return &CodeFilter{
		filter: bloom.NewWithEstimates(capacity, fpRate),
	}
}

// Add records a newly issued short code
func (f *CodeFilter) Add(shortCode string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.AddString(shortCode)
}

// AddBatch records a set of short codes, used at startup to warm the filter
func (f *CodeFilter) AddBatch(shortCodes []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, code := range shortCodes {
		f.filter.AddString(code)
	}
}

// MightContain reports whether a short code may have been issued. False
// means the code definitely was never issued; true may be a false positive.
func (f *CodeFilter) MightContain(shortCode string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(shortCode)
}
