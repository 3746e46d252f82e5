// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/evectl/internal/cache"
	"github.com/staranto/evectl/internal/cacheutil"
	"github.com/staranto/evectl/internal/config"
	"github.com/staranto/evectl/internal/evecache"
	"github.com/staranto/evectl/internal/meta"
)

// snapshotRow is one line of "cache ls".
type snapshotRow struct {
	Name       string `json:"name"`
	Size       string `json:"size"`
	Bytes      int64  `json:"bytes"`
	Registered string `json:"registered,omitempty"`
	Age        string `json:"age,omitempty"`
	TTL        string `json:"ttl"`
	State      string `json:"state"`
}

// cacheStore returns the snapshot store for cmd without creating anything.
func cacheStore(cmd *cli.Command) (*cache.Store, error) {
	dir, ok := cacheutil.Dir(cmd.String("cache-dir"))
	if !ok {
		return nil, errors.New("no cache directory could be resolved")
	}
	return cache.NewStore(dir, log.Log), nil
}

// snapshotRows describes infos against the TTLs in force, as of now.
func snapshotRows(infos []cache.SnapshotInfo, ttls map[cache.Name]time.Duration, now time.Time) []snapshotRow {
	rows := make([]snapshotRow, 0, len(infos))
	for _, info := range infos {
		row := snapshotRow{
			Name:  info.Name.String(),
			Size:  humanize.Bytes(uint64(info.Size)),
			Bytes: info.Size,
		}

		ttl, known := ttls[info.Name]
		if known {
			row.TTL = ttl.String()
		}

		switch {
		case info.Err != nil:
			row.State = "corrupt"
		case !known:
			row.State = "unknown"
		case now.Sub(info.Registered) > ttl:
			row.State = "expired"
		default:
			row.State = "fresh"
		}

		if info.Err == nil {
			row.Registered = info.Registered.Format(cache.TimeFormat)
			row.Age = humanize.RelTime(info.Registered, now, "ago", "from now")
		}
		rows = append(rows, row)
	}
	return rows
}

// CacheLsCommandAction lists the snapshots on disk.
func CacheLsCommandAction(ctx context.Context, cmd *cli.Command) error {
	store, err := cacheStore(cmd)
	if err != nil {
		return err
	}
	infos, err := store.List()
	if err != nil {
		return err
	}

	ttls, err := configuredTTLs()
	if err != nil {
		return err
	}
	for name, d := range evecache.DefaultTTLs {
		if _, ok := ttls[name]; !ok {
			ttls[name] = d
		}
	}

	attrs := BuildAttrs(cmd, "name", "size", "age", "ttl", "state")
	return Emit(snapshotRows(infos, ttls, time.Now()), attrs, cmd)
}

// CachePurgeCommandAction removes snapshots: the named datasets, every
// snapshot, or with --hours only files older than that.
func CachePurgeCommandAction(ctx context.Context, cmd *cli.Command) error {
	store, err := cacheStore(cmd)
	if err != nil {
		return err
	}

	var removed int
	if h := cmd.String("hours"); h != "" {
		hours, err := strconv.Atoi(h)
		if err != nil || hours <= 0 {
			return fmt.Errorf("invalid --hours '%s'", h)
		}
		removed, err = cacheutil.Purge(store.Dir(), hours)
		if err != nil {
			return err
		}
	} else {
		names := make([]cache.Name, 0, cmd.Args().Len())
		for _, a := range cmd.Args().Slice() {
			n := cache.Name(a)
			if !slices.Contains(cache.Names(), n) {
				return fmt.Errorf("unknown dataset '%s'", a)
			}
			names = append(names, n)
		}
		removed, err = store.Remove(names...)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(Writer(cmd), "removed %d files from %s\n", removed, store.Dir())
	return nil
}

// CachePathCommandAction prints the cache directory.
func CachePathCommandAction(ctx context.Context, cmd *cli.Command) error {
	store, err := cacheStore(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(Writer(cmd), store.Dir())
	return nil
}

// CacheCommandBuilder constructs the "cache" command and its ls, purge and
// path subcommands.
func CacheCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	dirFlag := func() cli.Flag {
		return NameSpacedValueChainFlagFromConfigFile("cache", meta.Config.Source, &cli.StringFlag{
			Name:  "cache-dir",
			Usage: "directory holding the cache snapshots",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("EVECTL_CACHE_DIR"),
			),
		}, "cache.dir")
	}

	return &cli.Command{
		Name:      "cache",
		Usage:     "cache housekeeping",
		UsageText: `evectl cache ls|purge|path [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			config.Config.Namespace = "cache"
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "list cache snapshots",
				UsageText: `evectl cache ls [options]`,
				Flags:     append([]cli.Flag{dirFlag()}, NewGlobalFlags("cache")...),
				Action:    CacheLsCommandAction,
			},
			{
				Name:      "purge",
				Usage:     "remove cache snapshots",
				UsageText: `evectl cache purge [dataset...] [--hours n] [options]`,
				Flags: []cli.Flag{
					dirFlag(),
					&cli.StringFlag{
						Name:  "hours",
						Usage: "only remove files older than this many hours",
					},
				},
				Action: CachePurgeCommandAction,
			},
			{
				Name:      "path",
				Usage:     "print the cache directory",
				UsageText: `evectl cache path [options]`,
				Flags:     []cli.Flag{dirFlag()},
				Action:    CachePathCommandAction,
			},
		},
	}
}
