// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"sync"

	"github.com/apex/log"
)

// Single caches one unkeyed value. Once filled it stays filled for the life
// of the process. It never persists itself; the owner snapshots it.
type Single[V any] struct {
	name   Name
	logger log.Interface
	clone  func(V) V

	mu     sync.RWMutex
	value  V
	filled bool
}

// NewSingle returns an empty single-value cache.
func NewSingle[V any](name Name, logger log.Interface) *Single[V] {
	if logger == nil {
		logger = log.Log
	}
	return &Single[V]{name: name, logger: logger}
}

// NewSingleFrom returns a single-value cache already holding v.
func NewSingleFrom[V any](name Name, logger log.Interface, v V) *Single[V] {
	c := NewSingle[V](name, logger)
	c.value = v
	c.filled = true
	return c
}

// WithClone sets the function used to copy the value handed out to callers.
func (c *Single[V]) WithClone(fn func(V) V) *Single[V] {
	c.clone = fn
	return c
}

// GetOrInsert returns the cached value, fetching it through loader the first
// time. Concurrent first callers result in a single fetch.
func (c *Single[V]) GetOrInsert(ctx context.Context, loader Loader[V]) (V, error) {
	c.mu.RLock()
	v, ok := c.value, c.filled
	c.mu.RUnlock()
	if ok {
		return c.copy(v), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filled {
		return c.copy(c.value), nil
	}

	c.logger.Debugf("cache miss: %s", c.name)

	v, err := loader.Fetch(ctx)
	if err != nil {
		var zero V
		return zero, &Error{Kind: ErrDataLoading, Dataset: c.name, Err: err}
	}
	c.value = v
	c.filled = true

	return c.copy(v), nil
}

// Snapshot returns the cached value and whether the cache is filled.
func (c *Single[V]) Snapshot() (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copy(c.value), c.filled
}

// Name returns the dataset name.
func (c *Single[V]) Name() Name { return c.name }

func (c *Single[V]) copy(v V) V {
	if c.clone == nil {
		return v
	}
	return c.clone(v)
}
