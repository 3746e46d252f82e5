// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package evecache puts a cache in front of every ESI dataset evectl reads.
//
// Each dataset has its own in-memory cache and, at cacheutil.LevelFull, a
// snapshot file that seeds the cache on start and is written back by
// EveCache.Persist. Keyed datasets also flush to disk every
// cache.FlushThreshold inserts.
package evecache
