package records

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Registry holds the cache for every configured category and serves
// search queries against whichever index is current.
type Registry struct {
	caches map[string]*Cache
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{caches: make(map[string]*Cache), logger: logger}
}

// Add registers a category cache. Later additions with the same ID win.
func (r *Registry) Add(c *Cache) {
	r.caches[c.Category().ID] = c
}

// Category returns a registered category schema by ID.
func (r *Registry) Category(id string) (*Category, bool) {
	c, ok := r.caches[id]
	if !ok {
		return nil, false
	}
	return c.Category(), true
}

// Categories returns all registered schemas sorted by ID for
// deterministic listings.
func (r *Registry) Categories() []*Category {
	out := make([]*Category, 0, len(r.caches))
	for _, c := range r.caches {
		out = append(out, c.Category())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Invalidate forces every cache to rebuild on its next query.
func (r *Registry) Invalidate() {
	for _, c := range r.caches {
		c.Invalidate()
	}
}

// Search runs a query against a category's current index. A failed
// rebuild with a previous index still standing degrades to serving the
// stale index with a warning; with no index at all it is an error.
func (r *Registry) Search(ctx context.Context, category string, q Query) (Result, error) {
	c, ok := r.caches[category]
	if !ok {
		return Result{}, fmt.Errorf("unknown category %q", category)
	}
	ix, err := c.Get(ctx)
	if ix == nil {
		return Result{}, err
	}
	if err != nil {
		r.logger.Warn("serving stale index", "category", category, "error", err)
	}
	return ix.Search(q)
}
