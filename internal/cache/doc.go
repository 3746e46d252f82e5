// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache fronts remote data fetches with two tiers: in-memory caches
// that load each missing entry at most once, and a disk store that keeps
// timestamped JSON snapshots of whole datasets.
//
// Keyed caches batch their disk writes, asking the loader to persist the
// whole map every FlushThreshold successful inserts. Snapshots are only
// trusted for as long as the caller-chosen TTL allows.
package cache
