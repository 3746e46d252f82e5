// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
)

// Level selects how much caching evectl does.
type Level int

const (
	// LevelDisabled sends every lookup to ESI.
	LevelDisabled Level = iota
	// LevelMemory caches lookups for the life of the process only.
	LevelMemory
	// LevelFull also seeds the caches from disk snapshots and writes them back.
	LevelFull
)

func (l Level) String() string {
	switch l {
	case LevelDisabled:
		return "disabled"
	case LevelMemory:
		return "memory"
	case LevelFull:
		return "full"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Levels lists the accepted level names, for flag help and validation.
func Levels() []string {
	return []string{LevelFull.String(), LevelMemory.String(), LevelDisabled.String()}
}

// ParseLevel accepts a level name in any case. An empty string is full.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return LevelFull, nil
	case "memory":
		return LevelMemory, nil
	case "disabled", "none", "off":
		return LevelDisabled, nil
	}
	return LevelDisabled, fmt.Errorf("invalid cache level '%s' (must be one of %s)", s, strings.Join(Levels(), ", "))
}

// ResolveLevel parses configured and then applies EVECTL_CACHE. Disk
// caching can be turned off from the environment, which downgrades full to
// memory; it never raises the level.
func ResolveLevel(configured string) (Level, error) {
	level, err := ParseLevel(configured)
	if err != nil {
		return level, err
	}
	if level == LevelFull && !Enabled() {
		log.Debug("disk cache disabled by EVECTL_CACHE")
		return LevelMemory, nil
	}
	return level, nil
}

// Dir resolves the base cache directory.
// Precedence:
//  1. override, normally the cache.dir config key, if non-empty
//  2. EVECTL_CACHE_DIR, if set and non-empty
//  3. os.UserCacheDir()/evectl
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir(override string) (string, bool) {
	if override != "" {
		return override, true
	}
	if c, ok := os.LookupEnv("EVECTL_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "evectl"), true
	}
	return "", false
}

// Enabled returns true unless EVECTL_CACHE explicitly disables it ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("EVECTL_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// EnsureBaseDir creates the base cache directory if disk caching is enabled
// and a base path can be resolved. Returns the path, whether it is usable,
// and an error if creation failed.
func EnsureBaseDir(override string) (string, bool, error) {
	if !Enabled() {
		return "", false, nil
	}
	base, ok := Dir(override)
	if !ok {
		return "", false, nil
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}

// Purge removes files beneath base older than the provided number of hours
// and returns how many were removed. If hours <= 0 it is a no-op.
func Purge(base string, hours int) (int, error) {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return 0, nil
	}

	maxAge := time.Duration(hours) * time.Hour
	removed := 0
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == base && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err == nil {
				log.Debugf("removed cache file %s", path)
				removed++
			} else {
				log.WithError(err).Warnf("failed to remove cache file %s", path)
			}
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("failed to purge cache: %w", err)
	}
	return removed, nil
}
