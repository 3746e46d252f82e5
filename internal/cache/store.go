// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// TimeFormat is the layout of registered_time. It carries no zone; the
// timestamp is written and read in local time.
const TimeFormat = "2006-01-02 15:04:05"

const snapshotSuffix = "_cache.json"

// Name identifies a cached dataset. It doubles as the snapshot file stem.
type Name string

const (
	Alliances         Name = "alliances"
	Constellations    Name = "constellations"
	Corporations      Name = "corporations"
	IndustrialSystems Name = "industrial_systems"
	MarketOrders      Name = "market_orders"
	MarketPrices      Name = "market_prices"
	RegionIDs         Name = "regions_ids"
	Regions           Name = "regions"
	Search            Name = "search"
	Stations          Name = "stations"
	Structures        Name = "structures"
	Systems           Name = "systems"
	Types             Name = "types"
)

// Names returns every known dataset name, sorted.
func Names() []Name {
	return []Name{
		Alliances,
		Constellations,
		Corporations,
		IndustrialSystems,
		MarketOrders,
		MarketPrices,
		RegionIDs,
		Regions,
		Search,
		Stations,
		Structures,
		Systems,
		Types,
	}
}

// FileName returns the snapshot file name for n.
func (n Name) FileName() string {
	return string(n) + snapshotSuffix
}

func (n Name) String() string { return string(n) }

// envelope is the on-disk layout of a snapshot.
type envelope struct {
	RegisteredTime string          `json:"registered_time"`
	CachedData     json.RawMessage `json:"cached_data"`
}

// Store reads and writes dataset snapshots beneath a single directory.
type Store struct {
	dir    string
	logger log.Interface
	now    func() time.Time
}

// NewStore returns a store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string, logger log.Interface) *Store {
	if logger == nil {
		logger = log.Log
	}
	logger.Debugf("cache directory: %s", dir)
	return &Store{dir: dir, logger: logger, now: time.Now}
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string { return s.dir }

// Path returns the snapshot path for name.
func (s *Store) Path(name Name) string {
	return filepath.Join(s.dir, name.FileName())
}

// Load returns the snapshot of name if one exists and is younger than ttl.
// A missing file, an expired snapshot and a snapshot of a null dataset are
// all misses, not errors. A file that exists but cannot be decoded, or whose
// timestamp cannot be parsed, is an error matching ErrSnapshotCorrupt.
func Load[T any](s *Store, name Name, ttl time.Duration) (T, bool, error) {
	var zero T
	path := s.Path(name)

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debugf("no snapshot for %s", name)
		return zero, false, nil
	}
	if err != nil {
		return zero, false, &ReadError{Path: path, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return zero, false, &DecodeError{Path: path, Err: err}
	}

	registered, err := time.ParseInLocation(TimeFormat, env.RegisteredTime, time.Local)
	if err != nil {
		return zero, false, &DateError{Path: path, Date: env.RegisteredTime, Err: err}
	}

	if age := s.now().Sub(registered); age >= ttl {
		s.logger.Debugf("snapshot for %s expired (age %s, ttl %s)", name, age.Round(time.Second), ttl)
		return zero, false, nil
	}

	raw := bytes.TrimSpace(env.CachedData)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		s.logger.Debugf("snapshot for %s holds no data", name)
		return zero, false, nil
	}

	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		return zero, false, &DecodeError{Path: path, Err: err}
	}

	s.logger.Debugf("snapshot loaded: %s", name)
	return data, true, nil
}

// Save overwrites the snapshot of name with data stamped with the current
// local time. A nil data is written as null. The write is not atomic.
func (s *Store) Save(name Name, data any) error {
	path := s.Path(name)

	content, err := json.Marshal(struct {
		RegisteredTime string `json:"registered_time"`
		CachedData     any    `json:"cached_data"`
	}{
		RegisteredTime: s.now().Format(TimeFormat),
		CachedData:     data,
	})
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil { //nolint:mnd
		return &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, content, 0o600); err != nil { //nolint:mnd
		return &WriteError{Path: path, Err: err}
	}

	s.logger.Debugf("snapshot saved: %s", name)
	return nil
}

// LoadFull returns the raw content of a file beneath the store directory.
// It is meant for reference data that has no TTL.
func (s *Store) LoadFull(path string) (string, error) {
	p := filepath.Join(s.dir, path)
	b, err := os.ReadFile(p)
	if err != nil {
		return "", &ReadError{Path: p, Err: err}
	}
	return string(b), nil
}

// SnapshotInfo describes one snapshot file found on disk.
type SnapshotInfo struct {
	Name       Name
	Path       string
	Size       int64
	Registered time.Time
	// Err is set when the file's timestamp could not be read.
	Err error
}

// List returns every snapshot in the store directory, sorted by name. A
// missing directory yields an empty list.
func (s *Store) List() ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &ReadError{Path: s.dir, Err: err}
	}

	var infos []SnapshotInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotSuffix) {
			continue
		}

		info := SnapshotInfo{
			Name: Name(strings.TrimSuffix(e.Name(), snapshotSuffix)),
			Path: filepath.Join(s.dir, e.Name()),
		}
		if fi, err := e.Info(); err == nil {
			info.Size = fi.Size()
		}

		// Only the timestamp is needed, so don't decode the whole dataset.
		b, err := os.ReadFile(info.Path)
		if err != nil {
			info.Err = err
			infos = append(infos, info)
			continue
		}
		rt := gjson.GetBytes(b, "registered_time")
		if !rt.Exists() {
			info.Err = ErrSnapshotCorrupt
		} else if t, err := time.ParseInLocation(TimeFormat, rt.String(), time.Local); err != nil {
			info.Err = &DateError{Path: info.Path, Date: rt.String(), Err: err}
		} else {
			info.Registered = t
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// Remove deletes the snapshots of the given datasets, or of every dataset
// when none are given. Missing files are skipped. It returns how many files
// were removed.
func (s *Store) Remove(names ...Name) (int, error) {
	if len(names) == 0 {
		infos, err := s.List()
		if err != nil {
			return 0, err
		}
		for _, info := range infos {
			names = append(names, info.Name)
		}
	}

	removed := 0
	for _, n := range names {
		err := os.Remove(s.Path(n))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return removed, err
		}
		s.logger.Debugf("snapshot removed: %s", n)
		removed++
	}
	return removed, nil
}
