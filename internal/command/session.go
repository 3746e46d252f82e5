// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/evectl/internal/cache"
	"github.com/staranto/evectl/internal/cacheutil"
	"github.com/staranto/evectl/internal/config"
	"github.com/staranto/evectl/internal/esi"
	"github.com/staranto/evectl/internal/evecache"
	mylog "github.com/staranto/evectl/internal/log"
	"github.com/staranto/evectl/internal/meta"
)

// OpenSession builds the ESI client, the snapshot store and the caches for
// cmd and stores them in its meta. At the full level the cache directory is
// created and, when cache.clean is set, cleaned of old files first.
func OpenSession(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	if m.Session == nil {
		return fmt.Errorf("%s: command has no session", cmd.Name)
	}

	if cmd.IsSet("log-level") {
		if err := mylog.SetLevel(cmd.String("log-level")); err != nil {
			return err
		}
	}

	level, err := cacheutil.ResolveLevel(cmd.String("cache-level"))
	if err != nil {
		return err
	}

	var store *cache.Store
	if level == cacheutil.LevelFull {
		store, err = OpenStore(cmd)
		if err != nil {
			return err
		}
		if store == nil {
			log.Warn("no usable cache directory, caching in memory only")
			level = cacheutil.LevelMemory
		}
	}

	timeout, err := time.ParseDuration(cmd.String("timeout"))
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	client := esi.NewClient(
		esi.WithBaseURL(cmd.String("esi-url")),
		esi.WithUserAgent(cmd.String("user-agent")),
		esi.WithToken(cmd.String("token")),
		esi.WithTimeout(timeout),
		esi.WithLogger(log.Log),
	)
	log.Debugf("esi: %s", client.BaseURL())

	ttls, err := configuredTTLs()
	if err != nil {
		return err
	}

	ec, err := evecache.New(client, evecache.Options{
		Level:  level,
		Store:  store,
		TTLs:   ttls,
		Logger: log.Log,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	*m.Session = meta.Session{
		Level:  level,
		Client: client,
		Store:  store,
		Cache:  ec,
	}
	return nil
}

// OpenStore resolves the cache directory for cmd, creates it and purges
// files older than cache.clean hours. It returns nil when disk caching is
// turned off or no directory can be resolved.
func OpenStore(cmd *cli.Command) (*cache.Store, error) {
	dir, ok, err := cacheutil.EnsureBaseDir(cmd.String("cache-dir"))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	hours, err := config.GetInt("cache.clean", 0)
	if err != nil {
		return nil, err
	}
	if n, err := cacheutil.Purge(dir, hours); err != nil {
		log.WithError(err).Warn("cache clean failed")
	} else if n > 0 {
		log.Debugf("cache clean removed %d files", n)
	}

	return cache.NewStore(dir, log.Log), nil
}

// CloseSession persists the caches of a session opened by OpenSession.
func CloseSession(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	if m.Session == nil || m.Cache == nil {
		return nil
	}
	if err := m.Cache.Persist(); err != nil {
		return fmt.Errorf("failed to persist cache: %w", err)
	}
	log.Debugf("cache stats: %v", m.Cache.Stats())
	return nil
}

// configuredTTLs reads the cache.ttl.<dataset> overrides.
func configuredTTLs() (map[cache.Name]time.Duration, error) {
	ttls := make(map[cache.Name]time.Duration)
	for _, name := range cache.Names() {
		d, err := config.GetDuration("cache.ttl."+name.String(), -1)
		if err != nil {
			return nil, err
		}
		if d >= 0 {
			ttls[name] = d
		}
	}
	return ttls, nil
}
