// Package listcache keeps the raw collections fetched from the booking API,
// one snapshot per client and owner, so filter and page changes never hit
// the network.
package listcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/maypok86/otter"

	"github.com/me/busdesk/internal/listview"
)

// DefaultCapacity bounds the number of snapshots per collection.
const DefaultCapacity = 1024

// Key identifies one snapshot.
type Key struct {
	ClientID string
	OwnerID  string
}

func (k Key) String() string {
	if k.OwnerID == "" {
		return k.ClientID
	}
	return k.ClientID + "/" + k.OwnerID
}

// FetchFunc loads a fresh collection from the remote service.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Cache holds snapshots of one collection type.
type Cache[T listview.Record] struct {
	name   string
	mu     sync.Mutex // serializes read-modify-write patches
	store  otter.Cache[Key, []T]
	logger *slog.Logger
}

// New creates a cache whose snapshots expire after ttl.
func New[T listview.Record](name string, capacity int, ttl time.Duration, logger *slog.Logger) (*Cache[T], error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	store, err := otter.MustBuilder[Key, []T](capacity).
		WithTTL(ttl).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build %s cache: %w", name, err)
	}
	return &Cache[T]{
		name:   name,
		store:  store,
		logger: logger.With("component", "listcache", "collection", name),
	}, nil
}

// Load returns the snapshot for key, fetching it when absent, expired, or
// when refresh is set.
func (c *Cache[T]) Load(ctx context.Context, key Key, refresh bool, fetch FetchFunc[T]) ([]T, error) {
	if !refresh {
		if items, ok := c.store.Get(key); ok {
			return items, nil
		}
	}
	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	c.store.Set(key, items)
	c.logger.Debug("snapshot fetched", "key", key.String(), "count", len(items), "refresh", refresh)
	return items, nil
}

// Get returns the cached snapshot without fetching.
func (c *Cache[T]) Get(key Key) ([]T, bool) {
	return c.store.Get(key)
}

// Set installs a snapshot.
func (c *Cache[T]) Set(key Key, items []T) {
	c.store.Set(key, items)
}

// Invalidate drops the snapshot so the next Load fetches.
func (c *Cache[T]) Invalidate(key Key) {
	c.store.Delete(key)
}

// Patch replaces the record matching id in the snapshot with fn(record).
// It reports false when no snapshot is cached or no record matches.
func (c *Cache[T]) Patch(key Key, id string, fn func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := c.store.Get(key)
	if !ok {
		return false
	}
	next, ok := listview.PatchOne(items, id, fn)
	if ok {
		c.store.Set(key, next)
	}
	return ok
}

// Remove drops the record matching id from the snapshot.
func (c *Cache[T]) Remove(key Key, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := c.store.Get(key)
	if !ok {
		return false
	}
	next, ok := listview.RemoveOne(items, id)
	if ok {
		c.store.Set(key, next)
	}
	return ok
}

// Bind returns the snapshot for key as local state that row actions patch.
func (c *Cache[T]) Bind(key Key) *Snapshot[T] {
	return &Snapshot[T]{cache: c, key: key}
}

// Close releases the cache's background resources.
func (c *Cache[T]) Close() {
	c.store.Close()
}

// Snapshot is one cached collection viewed as patchable local state.
type Snapshot[T listview.Record] struct {
	cache *Cache[T]
	key   Key
}

// Patch replaces one record.
func (s *Snapshot[T]) Patch(id string, fn func(T) T) bool {
	return s.cache.Patch(s.key, id, fn)
}

// Remove drops one record.
func (s *Snapshot[T]) Remove(id string) bool {
	return s.cache.Remove(s.key, id)
}

// Items returns the current snapshot contents.
func (s *Snapshot[T]) Items() []T {
	items, _ := s.cache.Get(s.key)
	return items
}
