// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the standard locations.
const FileName = "evectl.yaml"

// Type is a loaded config file. Namespace, normally the subcommand name,
// prefixes every lookup before the bare key is tried.
type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

var Config Type

func init() {
	_, _ = Load()
}

// Load reads the config file into Config. EVECTL_CFG, when set, names the
// file and must exist; otherwise the standard locations are searched.
func Load() (Type, error) {
	path, err := getConfigPath()
	if err != nil {
		return Type{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Type{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Type{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	Config = Type{Source: path, Namespace: Config.Namespace, Data: data}
	return Config, nil
}

// get resolves a dotted key, namespaced first.
func (cfg *Type) get(key string) (any, error) {
	keys := []string{key}
	if cfg.Namespace != "" {
		keys = []string{cfg.Namespace + "." + key, key}
	}

	for _, k := range keys {
		if v, ok := walk(cfg.Data, strings.Split(k, ".")); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("no valid path found among: %v", keys)
}

func walk(node any, path []string) (any, bool) {
	for _, p := range path {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if node, ok = m[p]; !ok {
			return nil, false
		}
	}
	return node, true
}

// lookup resolves key against Config and converts it with as. A missing key
// yields the default when exactly one is given.
func lookup[T any](key string, defaults []T, as func(any) (T, error)) (T, error) {
	var zero T

	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	val, err := Config.get(key)
	if err != nil {
		if len(defaults) == 1 {
			return defaults[0], nil
		}
		return zero, err
	}

	v, err := as(val)
	if err != nil {
		return zero, fmt.Errorf("value at '%s' %w", key, err)
	}
	return v, nil
}

func GetString(key string, defaultValue ...string) (string, error) {
	return lookup(key, defaultValue, func(v any) (string, error) {
		if s, ok := v.(string); ok {
			return s, nil
		}
		return "", errors.New("is not a string")
	})
}

func GetInt(key string, defaultValue ...int) (int, error) {
	return lookup(key, defaultValue, func(v any) (int, error) {
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			return int(n), nil
		}
		return 0, errors.New("is not an int")
	})
}

func GetBool(key string, defaultValue ...bool) (bool, error) {
	return lookup(key, defaultValue, func(v any) (bool, error) {
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return false, errors.New("is not a bool")
	})
}

// GetDuration accepts a Go duration string ("20m", "1h30m") or a bare
// number of seconds.
func GetDuration(key string, defaultValue ...time.Duration) (time.Duration, error) {
	return lookup(key, defaultValue, func(v any) (time.Duration, error) {
		switch d := v.(type) {
		case string:
			parsed, err := time.ParseDuration(d)
			if err != nil {
				return 0, fmt.Errorf("is not a duration: %w", err)
			}
			return parsed, nil
		case int:
			return time.Duration(d) * time.Second, nil
		case float64:
			return time.Duration(d * float64(time.Second)), nil
		}
		return 0, errors.New("is not a duration")
	})
}

func getConfigPath() (string, error) {
	if p := os.Getenv("EVECTL_CFG"); p != "" {
		info, err := os.Stat(p)
		switch {
		case errors.Is(err, os.ErrNotExist):
			return "", fmt.Errorf("config file not found: %s", p)
		case err != nil:
			return "", fmt.Errorf("failed to stat config file: %w", err)
		case info.IsDir():
			return "", fmt.Errorf("EVECTL_CFG points to a directory: %s", p)
		}
		log.Debugf("using config file: %s", p)
		return p, nil
	}

	for _, dir := range []string{os.Getenv("XDG_CONFIG_HOME"), os.Getenv("APPDATA"), os.Getenv("HOME")} {
		if dir == "" {
			continue
		}
		file := filepath.Join(dir, FileName)
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			log.Debugf("using config file: %s", file)
			return file, nil
		}
	}
	return "", errors.New("no config file found in standard locations")
}
