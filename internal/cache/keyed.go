// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/apex/log"
)

// Keyed is an in-memory cache of a keyed dataset. Entries are loaded on
// first use, never evicted and never overwritten.
//
// Lock order: mu before writesMu. writesMu is only ever taken while mu is
// held for writing.
type Keyed[K comparable, V any] struct {
	name   Name
	logger log.Interface
	clone  func(V) V

	mu      sync.RWMutex
	entries map[K]V

	writesMu sync.Mutex
	writes   int
}

// NewKeyed returns an empty keyed cache for the named dataset.
func NewKeyed[K comparable, V any](name Name, logger log.Interface) *Keyed[K, V] {
	return NewKeyedFrom[K, V](name, logger, nil)
}

// NewKeyedFrom returns a keyed cache seeded with preloaded, typically a map
// read back from the disk store. Seeded entries are hits and never trigger a
// load. The cache takes ownership of preloaded.
func NewKeyedFrom[K comparable, V any](name Name, logger log.Interface, preloaded map[K]V) *Keyed[K, V] {
	if preloaded == nil {
		preloaded = make(map[K]V)
	}
	if logger == nil {
		logger = log.Log
	}
	return &Keyed[K, V]{
		name:    name,
		logger:  logger,
		entries: preloaded,
	}
}

// WithClone sets the function used to copy values handed out to callers.
// Without one, values are returned by plain assignment.
func (c *Keyed[K, V]) WithClone(fn func(V) V) *Keyed[K, V] {
	c.clone = fn
	return c
}

// GetOrInsert returns the value for key, fetching it through loader on a
// miss. Concurrent callers missing on the same key result in a single fetch;
// the others wait and read the inserted value.
//
// Every FlushThreshold successful inserts the whole map is handed to
// loader.Persist while the write lock is still held, so other callers of
// this cache wait for the flush to finish.
func (c *Keyed[K, V]) GetOrInsert(ctx context.Context, key K, loader KeyLoader[K, V]) (V, error) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return c.copy(v), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have inserted key while we waited for the lock.
	if v, ok = c.entries[key]; ok {
		return c.copy(v), nil
	}

	c.logger.Debugf("cache miss: %s %v", c.name, key)

	v, err := FetchWithRetry(ctx, c.logger, loader, key, FetchAttempts)
	if err != nil {
		var zero V
		return zero, &Error{Kind: ErrDataLoading, Dataset: c.name, Key: fmt.Sprint(key), Err: err}
	}
	c.entries[key] = v

	if err := c.countWrite(ctx, loader); err != nil {
		var zero V
		return zero, err
	}

	return c.copy(v), nil
}

// countWrite must be called with mu held for writing.
func (c *Keyed[K, V]) countWrite(ctx context.Context, loader KeyLoader[K, V]) error {
	c.writesMu.Lock()
	defer c.writesMu.Unlock()

	c.writes++
	if c.writes < FlushThreshold {
		return nil
	}

	c.logger.Debugf("flushing %d %s entries", len(c.entries), c.name)
	if err := loader.Persist(ctx, c.entries); err != nil {
		// The counter stays at the threshold so the next insert retries.
		return &Error{Kind: ErrPersist, Dataset: c.name, Err: err}
	}
	c.writes = 0
	return nil
}

// Snapshot returns a shallow copy of the cached entries.
func (c *Keyed[K, V]) Snapshot() map[K]V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.entries)
}

// Len returns the number of cached entries.
func (c *Keyed[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Pending returns the number of inserts since the last flush. After a failed
// flush it stays at FlushThreshold until a later insert flushes successfully.
func (c *Keyed[K, V]) Pending() int {
	c.writesMu.Lock()
	defer c.writesMu.Unlock()
	return c.writes
}

// Name returns the dataset name.
func (c *Keyed[K, V]) Name() Name { return c.name }

func (c *Keyed[K, V]) copy(v V) V {
	if c.clone == nil {
		return v
	}
	return c.clone(v)
}
