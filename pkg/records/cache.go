package records

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hazyhaar/sijill/pkg/source"
)

// Cache owns one current Index for a category and rebuilds it when the
// source's freshness fingerprint changes. The swap is a single atomic
// pointer store, so in-flight queries keep the index they loaded and the
// query path never takes a lock. There is no partial state: either a
// complete new Index goes in, or the previous one keeps serving.
type Cache struct {
	src   source.Source
	cat   *Category
	cur   atomic.Pointer[Index]
	stale atomic.Bool
	mu    sync.Mutex // serializes rebuilds, not reads
}

// NewCache creates a cache; no index is built until the first Get.
func NewCache(src source.Source, cat *Category) *Cache {
	return &Cache{src: src, cat: cat}
}

// Category returns the schema this cache serves.
func (c *Cache) Category() *Category {
	return c.cat
}

// Invalidate forces a rebuild on the next Get regardless of the
// fingerprint; the current index keeps serving until then.
func (c *Cache) Invalidate() {
	c.stale.Store(true)
}

// Get returns the current index, rebuilding first if the source changed.
// When a rebuild fails and a previous index exists, Get returns that
// previous index together with the error so callers can keep serving
// stale-but-valid data and report the failure.
func (c *Cache) Get(ctx context.Context) (*Index, error) {
	forced := c.stale.Load()
	fp, err := c.src.Fingerprint()
	if err != nil {
		return c.cur.Load(), fmt.Errorf("fingerprint %s: %w", c.cat.ID, err)
	}
	if cur := c.cur.Load(); cur != nil && cur.Fingerprint == fp && !forced {
		return cur, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another rebuild may have won the race while we waited.
	if cur := c.cur.Load(); cur != nil && cur.Fingerprint == fp && !c.stale.Load() {
		return cur, nil
	}

	tab, err := c.src.Load(ctx)
	if err != nil {
		return c.cur.Load(), fmt.Errorf("load %s: %w", c.cat.ID, err)
	}

	ix := BuildIndex(c.cat, tab, fp)
	c.cur.Store(ix)
	c.stale.Store(false)
	return ix, nil
}
