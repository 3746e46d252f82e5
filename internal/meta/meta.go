// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/staranto/evectl/internal/cache"
	"github.com/staranto/evectl/internal/cacheutil"
	"github.com/staranto/evectl/internal/config"
	"github.com/staranto/evectl/internal/esi"
	"github.com/staranto/evectl/internal/evecache"
)

// Session is what a query command works against. It is built once the
// command's flags are parsed, so it is shared by pointer.
type Session struct {
	Level  cacheutil.Level
	Client *esi.Client
	Store  *cache.Store
	Cache  *evecache.EveCache
}

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	*Session
}
