// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"time"

	"github.com/apex/log"

	"github.com/staranto/evectl/internal/retry"
)

const (
	// FlushThreshold is the number of successful inserts after which a keyed
	// cache asks its loader to persist the whole map.
	FlushThreshold = 100

	// FetchAttempts is the number of times a keyed fetch is tried.
	FetchAttempts = 5
)

// FetchDelay is the pause between two keyed fetch attempts.
var FetchDelay = time.Second

// Loader fetches a dataset that has no natural key, such as the list of all
// market prices.
type Loader[V any] interface {
	Fetch(ctx context.Context) (V, error)
}

// KeyLoader fetches one entry of a keyed dataset and persists the whole
// dataset when the cache asks it to.
type KeyLoader[K comparable, V any] interface {
	Fetch(ctx context.Context, key K) (V, error)
	Persist(ctx context.Context, values map[K]V) error
}

// FetchWithRetry fetches key through l, retrying retryable failures up to
// attempts times with FetchDelay between them. Retries are logged to logger.
func FetchWithRetry[K comparable, V any](
	ctx context.Context,
	logger log.Interface,
	l KeyLoader[K, V],
	key K,
	attempts int,
) (V, error) {
	return retry.Do(ctx, logger, attempts, FetchDelay, func(ctx context.Context) (V, error) {
		return l.Fetch(ctx, key)
	})
}
