// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cacheutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"", LevelFull, false},
		{"full", LevelFull, false},
		{"FULL", LevelFull, false},
		{"memory", LevelMemory, false},
		{" Memory ", LevelMemory, false},
		{"disabled", LevelDisabled, false},
		{"off", LevelDisabled, false},
		{"disk", LevelDisabled, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveLevel_EnvDowngradesFull(t *testing.T) {
	t.Setenv("EVECTL_CACHE", "0")

	got, err := ResolveLevel("full")
	require.NoError(t, err)
	assert.Equal(t, LevelMemory, got)

	got, err = ResolveLevel("disabled")
	require.NoError(t, err)
	assert.Equal(t, LevelDisabled, got)
}

func TestEnabled(t *testing.T) {
	for value, want := range map[string]bool{"": true, "1": true, "true": true, "0": false, "false": false} {
		t.Setenv("EVECTL_CACHE", value)
		assert.Equal(t, want, Enabled(), "EVECTL_CACHE=%q", value)
	}
}

func TestDir_Precedence(t *testing.T) {
	t.Setenv("EVECTL_CACHE_DIR", "/from/env")

	dir, ok := Dir("/from/config")
	assert.True(t, ok)
	assert.Equal(t, "/from/config", dir)

	dir, ok = Dir("")
	assert.True(t, ok)
	assert.Equal(t, "/from/env", dir)
}

func TestEnsureBaseDir(t *testing.T) {
	t.Setenv("EVECTL_CACHE", "")
	base := filepath.Join(t.TempDir(), "nested", "evectl")

	got, ok, err := EnsureBaseDir(base)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, base, got)
	assert.DirExists(t, base)

	t.Setenv("EVECTL_CACHE", "false")
	_, ok, err = EnsureBaseDir(base)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPurge(t *testing.T) {
	base := t.TempDir()
	old := filepath.Join(base, "systems_cache.json")
	fresh := filepath.Join(base, "types_cache.json")
	require.NoError(t, os.WriteFile(old, []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(fresh, []byte("{}"), 0o600))

	past := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	removed, err := Purge(base, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
}

func TestPurge_NoopCases(t *testing.T) {
	removed, err := Purge(t.TempDir(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	removed, err = Purge(filepath.Join(t.TempDir(), "missing"), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
