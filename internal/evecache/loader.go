// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package evecache

import (
	"context"

	"github.com/staranto/evectl/internal/cache"
)

// keyedLoader adapts one keyed ESI call to cache.KeyLoader. A nil store
// makes Persist a no-op.
type keyedLoader[K comparable, V any] struct {
	name  cache.Name
	fetch func(context.Context, K) (V, error)
	store *cache.Store
}

func (l keyedLoader[K, V]) Fetch(ctx context.Context, key K) (V, error) {
	return l.fetch(ctx, key)
}

func (l keyedLoader[K, V]) Persist(_ context.Context, values map[K]V) error {
	if l.store == nil {
		return nil
	}
	return l.store.Save(l.name, values)
}

// singleLoader adapts an ESI call with no key to cache.Loader.
type singleLoader[V any] func(context.Context) (V, error)

func (f singleLoader[V]) Fetch(ctx context.Context) (V, error) {
	return f(ctx)
}
