// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useConfig points EVECTL_CFG at testdata/file and clears Config around the
// test.
func useConfig(t *testing.T, file string) {
	t.Helper()

	path, err := filepath.Abs(filepath.Join("testdata", file))
	require.NoError(t, err)

	t.Setenv("EVECTL_CFG", path)
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })
}

func TestLoad(t *testing.T) {
	t.Run("nested maps", func(t *testing.T) {
		useConfig(t, "nested.yaml")
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, cfg, Config)
		c := cfg.Data["cache"].(map[string]interface{})
		assert.Equal(t, "full", c["level"])
		assert.Equal(t, "4h", c["ttl"].(map[string]interface{})["stations"])
	})

	t.Run("scalar types survive decoding", func(t *testing.T) {
		useConfig(t, "mixed-types.yaml")
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "evectl-test", cfg.Data["name"])
		assert.Equal(t, 1, cfg.Data["version"])
		assert.Equal(t, true, cfg.Data["color"])
		assert.InDelta(t, 30.5, cfg.Data["timeout"], 0)
		assert.Equal(t, []interface{}{"jita", "amarr"}, cfg.Data["tags"])
	})

	t.Run("empty file", func(t *testing.T) {
		useConfig(t, "empty.yaml")
		cfg, err := Load()
		require.NoError(t, err)
		assert.NotEmpty(t, cfg.Source)
		assert.Empty(t, cfg.Data)
	})

	t.Run("keeps namespace", func(t *testing.T) {
		useConfig(t, "simple.yaml")
		Config.Namespace = "orders"
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "orders", cfg.Namespace)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		useConfig(t, "bad.yaml")
		_, err := Load()
		assert.ErrorContains(t, err, "failed to parse config file")
	})
}

func TestLoad_ConfigPath(t *testing.T) {
	t.Run("missing EVECTL_CFG", func(t *testing.T) {
		t.Setenv("EVECTL_CFG", filepath.Join(t.TempDir(), FileName))
		_, err := Load()
		assert.ErrorContains(t, err, "config file not found")
	})

	t.Run("EVECTL_CFG is a directory", func(t *testing.T) {
		t.Setenv("EVECTL_CFG", t.TempDir())
		_, err := Load()
		assert.ErrorContains(t, err, "points to a directory")
	})

	t.Run("XDG_CONFIG_HOME before HOME", func(t *testing.T) {
		xdg, home := t.TempDir(), t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(xdg, FileName), []byte("output: yaml\n"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(home, FileName), []byte("output: text\n"), 0o600))

		t.Setenv("EVECTL_CFG", "")
		t.Setenv("XDG_CONFIG_HOME", xdg)
		t.Setenv("APPDATA", "")
		t.Setenv("HOME", home)
		t.Cleanup(func() { Config = Type{} })

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(xdg, FileName), cfg.Source)
		assert.Equal(t, "yaml", cfg.Data["output"])
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Setenv("EVECTL_CFG", "")
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("APPDATA", "")
		t.Setenv("HOME", t.TempDir())

		_, err := Load()
		assert.ErrorContains(t, err, "no config file found")
	})
}

func TestGetters(t *testing.T) {
	useConfig(t, "nested.yaml")

	s, err := GetString("cache.level")
	require.NoError(t, err)
	assert.Equal(t, "full", s)

	s, err = GetString("cache.missing", "memory")
	require.NoError(t, err)
	assert.Equal(t, "memory", s)

	_, err = GetString("cache.missing")
	assert.Error(t, err)

	_, err = GetString("cache.clean")
	assert.ErrorContains(t, err, "value at 'cache.clean' is not a string")

	n, err := GetInt("cache.clean")
	require.NoError(t, err)
	assert.Equal(t, 24, n)

	n, err = GetInt("cache.missing", 48)
	require.NoError(t, err)
	assert.Equal(t, 48, n)

	_, err = GetInt("cache.level")
	assert.Error(t, err)

	b, err := GetBool("cache.missing", true)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = GetBool("cache.level")
	assert.Error(t, err)
}

func TestGetInt_TruncatesFloats(t *testing.T) {
	useConfig(t, "mixed-types.yaml")

	n, err := GetInt("timeout")
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	b, err := GetBool("color")
	require.NoError(t, err)
	assert.True(t, b)
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		key     string
		def     []time.Duration
		want    time.Duration
		wantErr bool
	}{
		{key: "cache.ttl.stations", want: 4 * time.Hour},
		{key: "cache.ttl.market_orders", want: 90 * time.Second},
		{key: "esi.timeout", want: 45 * time.Second},
		{key: "cache.ttl.types", def: []time.Duration{2 * time.Hour}, want: 2 * time.Hour},
		{key: "esi.url", wantErr: true},
		{key: "cache.ttl.types", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			useConfig(t, "nested.yaml")

			got, err := GetDuration(tt.key, tt.def...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNamespace(t *testing.T) {
	useConfig(t, "namespace.yaml")
	_, err := Load()
	require.NoError(t, err)

	tests := []struct {
		ns, key, want string
	}{
		{"orders", "output", "json"},
		{"orders", "sort", "-price"},
		{"prices", "output", "yaml"},
		{"prices", "sort", "name"},
		{"", "output", "text"},
	}
	for _, tt := range tests {
		Config.Namespace = tt.ns
		got, err := GetString(tt.key)
		require.NoError(t, err, "%s.%s", tt.ns, tt.key)
		assert.Equal(t, tt.want, got, "%s.%s", tt.ns, tt.key)
	}

	Config.Namespace = "orders"
	_, err = GetString("nonexistent")
	assert.ErrorContains(t, err, "orders.nonexistent")
}

func TestDeepPath(t *testing.T) {
	useConfig(t, "deep-nested.yaml")

	// No explicit Load; the first lookup reads the file.
	val, err := GetString("level1.level2.level3.value")
	require.NoError(t, err)
	assert.Equal(t, "deep-value", val)
	assert.NotEmpty(t, Config.Source)

	_, err = GetString("level1.level2.value")
	assert.Error(t, err)
}
