package cache

import (
	"sync"
	"sync/atomic"

	fhirprofiler "github.com/gofhir/profiler"
)

// ResultCache keeps the latest validation result per document. Every
// edit invalidates the document's entry, so a cached result is always
// consistent with the current tree.
type ResultCache struct {
	mu      sync.RWMutex
	results map[string]*fhirprofiler.ValidationResult

	hits          atomic.Uint64
	misses        atomic.Uint64
	invalidations atomic.Uint64
}

// NewResultCache creates an empty result cache.
func NewResultCache() *ResultCache {
	return &ResultCache{
		results: make(map[string]*fhirprofiler.ValidationResult),
	}
}

// Get returns the cached result for the document, or nil.
func (c *ResultCache) Get(documentID string) *fhirprofiler.ValidationResult {
	c.mu.RLock()
	r := c.results[documentID]
	c.mu.RUnlock()

	if r == nil {
		c.misses.Add(1)
		return nil
	}
	c.hits.Add(1)
	return r
}

// Put stores the result for the document.
func (c *ResultCache) Put(documentID string, result *fhirprofiler.ValidationResult) {
	c.mu.Lock()
	c.results[documentID] = result
	c.mu.Unlock()
}

// Invalidate drops the document's cached result.
func (c *ResultCache) Invalidate(documentID string) {
	c.mu.Lock()
	if _, ok := c.results[documentID]; ok {
		delete(c.results, documentID)
		c.invalidations.Add(1)
	}
	c.mu.Unlock()
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// ResultStats holds result-cache counters.
type ResultStats struct {
	Size          int    `json:"size"`
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Invalidations uint64 `json:"invalidations"`
}

// Stats returns a snapshot of the counters.
func (c *ResultCache) Stats() ResultStats {
	return ResultStats{
		Size:          c.Len(),
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Invalidations: c.invalidations.Load(),
	}
}
