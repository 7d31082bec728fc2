package cache

import (
	"fmt"
	"testing"

	fhirprofiler "github.com/gofhir/profiler"
)

func TestLRUGetPut(t *testing.T) {
	c := NewLRU[string, int](4)

	if _, ok := c.Get("a"); ok {
		t.Error("empty cache should miss")
	}
	c.Put("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}

	c.Put("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) after overwrite = %d, want 2", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRUEvictsLeastRecent(t *testing.T) {
	c := NewLRU[string, int](3)
	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("k%d", i), i)
	}

	// Touch k0 so k1 becomes the eviction candidate.
	if _, ok := c.Get("k0"); !ok {
		t.Fatal("k0 should be present")
	}
	c.Put("k3", 3)

	if _, ok := c.Get("k1"); ok {
		t.Error("k1 should have been evicted")
	}
	for _, key := range []string{"k0", "k2", "k3"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("%s should still be present", key)
		}
	}
}

func TestLRURemoveAndClear(t *testing.T) {
	c := NewLRU[string, int](4)
	c.Put("a", 1)
	c.Put("b", 2)

	if !c.Remove("a") {
		t.Error("Remove(a) should report true")
	}
	if c.Remove("a") {
		t.Error("second Remove(a) should report false")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("cleared cache should miss")
	}
}

func TestLRUCounters(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Put("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	if c.Hits() != 2 {
		t.Errorf("Hits() = %d, want 2", c.Hits())
	}
	if c.Misses() != 1 {
		t.Errorf("Misses() = %d, want 1", c.Misses())
	}
}

func TestLRUDefaultCapacity(t *testing.T) {
	c := NewLRU[int, int](0)
	for i := 0; i < 64; i++ {
		c.Put(i, i)
	}
	if c.Len() != 64 {
		t.Errorf("Len() = %d, want 64", c.Len())
	}
	c.Put(64, 64)
	if c.Len() != 64 {
		t.Errorf("Len() after overflow = %d, want 64", c.Len())
	}
}

func TestResultCache(t *testing.T) {
	c := NewResultCache()

	if got := c.Get("doc-1"); got != nil {
		t.Error("empty cache should return nil")
	}

	r := fhirprofiler.NewResult()
	c.Put("doc-1", r)
	if got := c.Get("doc-1"); got != r {
		t.Error("Get should return the stored result")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	c.Invalidate("doc-1")
	if got := c.Get("doc-1"); got != nil {
		t.Error("invalidated entry should be gone")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 2 || stats.Invalidations != 1 {
		t.Errorf("Stats() = %+v, want 1 hit, 2 misses, 1 invalidation", stats)
	}
	if stats.Size != 0 {
		t.Errorf("Size = %d, want 0", stats.Size)
	}
}
