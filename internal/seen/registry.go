// Package seen tracks source URLs that previous runs already processed.
package seen

import (
	"context"
	"fmt"
	"sync"
)

// DefaultCapacity bounds the registry; oldest entries evict first.
const DefaultCapacity = 1000

// Store persists the ordered seen set between runs.
type Store interface {
	// Load returns the persisted URLs oldest first. A missing store is an
	// empty set, not an error.
	Load(ctx context.Context) ([]string, error)
	// Save replaces the persisted set with urls, oldest first.
	Save(ctx context.Context, urls []string) error
}

// Registry is a capacity-bounded FIFO set of source URLs. Marking is
// idempotent; inserting beyond capacity evicts the oldest entries. One
// logical writer per run; reads may happen concurrently with no write in
// flight, and the internal lock keeps even misuse from corrupting state.
type Registry struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	index    map[string]struct{}
	dirty    bool
}

// NewRegistry builds an empty registry with the given capacity.
// A non-positive capacity falls back to DefaultCapacity.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		capacity: capacity,
		index:    make(map[string]struct{}),
	}
}

// LoadRegistry builds a registry primed from the store.
func LoadRegistry(ctx context.Context, store Store, capacity int) (*Registry, error) {
	r := NewRegistry(capacity)
	if store == nil {
		return r, nil
	}
	urls, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load seen set: %w", err)
	}
	for _, u := range urls {
		r.Mark(u)
	}
	r.mu.Lock()
	r.dirty = false
	r.mu.Unlock()
	return r, nil
}

// Has reports whether url was already processed.
func (r *Registry) Has(url string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[url]
	return ok
}

// Mark records url as processed. Marking a known URL is a no-op.
func (r *Registry) Mark(url string) {
	if url == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[url]; ok {
		return
	}
	r.order = append(r.order, url)
	r.index[url] = struct{}{}
	r.dirty = true
	for len(r.order) > r.capacity {
		evicted := r.order[0]
		r.order = r.order[1:]
		delete(r.index, evicted)
	}
}

// Len returns the current set size.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Flush persists the set through store when it changed since load.
func (r *Registry) Flush(ctx context.Context, store Store) error {
	if store == nil {
		return nil
	}
	r.mu.Lock()
	if !r.dirty {
		r.mu.Unlock()
		return nil
	}
	snapshot := append([]string(nil), r.order...)
	r.mu.Unlock()

	if err := store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("save seen set: %w", err)
	}
	r.mu.Lock()
	r.dirty = false
	r.mu.Unlock()
	return nil
}
