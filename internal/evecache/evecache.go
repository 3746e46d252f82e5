// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package evecache

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/apex/log"

	"github.com/staranto/evectl/internal/cache"
	"github.com/staranto/evectl/internal/cacheutil"
	"github.com/staranto/evectl/internal/esi"
)

// Requester is the part of the ESI client the caches sit in front of.
// *esi.Client implements it.
type Requester interface {
	Station(ctx context.Context, id int32) (esi.Station, error)
	Structure(ctx context.Context, id int64) (esi.Structure, error)
	System(ctx context.Context, id int32) (esi.System, error)
	Constellation(ctx context.Context, id int32) (esi.Constellation, error)
	Region(ctx context.Context, id int32) (esi.Region, error)
	Type(ctx context.Context, id int32) (esi.Type, error)
	Corporation(ctx context.Context, id int32) (esi.Corporation, error)
	Alliance(ctx context.Context, id int32) (esi.Alliance, error)
	Search(ctx context.Context, key esi.SearchKey) (esi.SearchResult, error)
	MarketOrders(ctx context.Context, key esi.MarketOrderKey) ([]esi.MarketOrder, error)
	MarketPrices(ctx context.Context) ([]esi.PriceItem, error)
	IndustrialSystems(ctx context.Context) ([]esi.IndustrialSystem, error)
	RegionIDs(ctx context.Context) ([]int32, error)
}

// DefaultTTLs is how long each snapshot stays valid on disk.
var DefaultTTLs = map[cache.Name]time.Duration{
	cache.Alliances:         20 * time.Minute,
	cache.Constellations:    2 * time.Hour,
	cache.Corporations:      20 * time.Minute,
	cache.IndustrialSystems: 20 * time.Minute,
	cache.MarketOrders:      time.Hour,
	cache.MarketPrices:      20 * time.Minute,
	cache.RegionIDs:         2 * time.Hour,
	cache.Regions:           2 * time.Hour,
	cache.Search:            20 * time.Minute,
	cache.Stations:          2 * time.Hour,
	cache.Structures:        20 * time.Minute,
	cache.Systems:           2 * time.Hour,
	cache.Types:             2 * time.Hour,
}

// Options configures New.
type Options struct {
	Level cacheutil.Level
	// Store is required at LevelFull and ignored otherwise.
	Store *cache.Store
	// TTLs overrides entries of DefaultTTLs.
	TTLs   map[cache.Name]time.Duration
	Logger log.Interface
}

// EveCache holds one cache per dataset. At LevelDisabled every cache is nil
// and lookups go straight to the Requester.
type EveCache struct {
	level  cacheutil.Level
	client Requester
	store  *cache.Store
	ttls   map[cache.Name]time.Duration
	logger log.Interface

	stations       *cache.Keyed[int32, esi.Station]
	structures     *cache.Keyed[int64, esi.Structure]
	systems        *cache.Keyed[int32, esi.System]
	constellations *cache.Keyed[int32, esi.Constellation]
	regions        *cache.Keyed[int32, esi.Region]
	types          *cache.Keyed[int32, esi.Type]
	corporations   *cache.Keyed[int32, esi.Corporation]
	alliances      *cache.Keyed[int32, esi.Alliance]
	search         *cache.Keyed[esi.SearchKey, esi.SearchResult]
	marketOrders   *cache.Keyed[esi.MarketOrderKey, []esi.MarketOrder]

	marketPrices      *cache.Single[[]esi.PriceItem]
	industrialSystems *cache.Single[[]esi.IndustrialSystem]
	regionIDs         *cache.Single[[]int32]
}

// New builds the caches for opts.Level. At LevelFull every dataset is seeded
// from its snapshot when one is present and fresh; a snapshot that exists
// but cannot be read fails New.
func New(client Requester, opts Options) (*EveCache, error) {
	if opts.Logger == nil {
		opts.Logger = log.Log
	}
	if opts.Level == cacheutil.LevelFull && opts.Store == nil {
		return nil, errors.New("full cache level needs a snapshot store")
	}

	e := &EveCache{
		level:  opts.Level,
		client: client,
		ttls:   maps.Clone(DefaultTTLs),
		logger: opts.Logger,
	}
	maps.Copy(e.ttls, opts.TTLs)
	if opts.Level == cacheutil.LevelFull {
		e.store = opts.Store
	}

	e.logger.Debugf("cache level: %s", e.level)
	if e.level == cacheutil.LevelDisabled {
		return e, nil
	}

	var err error
	if e.stations, err = newKeyed[int32, esi.Station](e, cache.Stations); err != nil {
		return nil, err
	}
	if e.structures, err = newKeyed[int64, esi.Structure](e, cache.Structures); err != nil {
		return nil, err
	}
	if e.systems, err = newKeyed[int32, esi.System](e, cache.Systems); err != nil {
		return nil, err
	}
	if e.constellations, err = newKeyed[int32, esi.Constellation](e, cache.Constellations); err != nil {
		return nil, err
	}
	if e.regions, err = newKeyed[int32, esi.Region](e, cache.Regions); err != nil {
		return nil, err
	}
	if e.types, err = newKeyed[int32, esi.Type](e, cache.Types); err != nil {
		return nil, err
	}
	if e.corporations, err = newKeyed[int32, esi.Corporation](e, cache.Corporations); err != nil {
		return nil, err
	}
	if e.alliances, err = newKeyed[int32, esi.Alliance](e, cache.Alliances); err != nil {
		return nil, err
	}
	if e.search, err = newKeyed[esi.SearchKey, esi.SearchResult](e, cache.Search); err != nil {
		return nil, err
	}
	if e.marketOrders, err = newKeyed[esi.MarketOrderKey, []esi.MarketOrder](e, cache.MarketOrders); err != nil {
		return nil, err
	}
	e.marketOrders.WithClone(cloneSlice[esi.MarketOrder])

	if e.marketPrices, err = newSingle[[]esi.PriceItem](e, cache.MarketPrices); err != nil {
		return nil, err
	}
	e.marketPrices.WithClone(cloneSlice[esi.PriceItem])
	if e.industrialSystems, err = newSingle[[]esi.IndustrialSystem](e, cache.IndustrialSystems); err != nil {
		return nil, err
	}
	e.industrialSystems.WithClone(cloneSlice[esi.IndustrialSystem])
	if e.regionIDs, err = newSingle[[]int32](e, cache.RegionIDs); err != nil {
		return nil, err
	}
	e.regionIDs.WithClone(cloneSlice[int32])

	return e, nil
}

// Level returns the level the caches were built for.
func (e *EveCache) Level() cacheutil.Level { return e.level }

// TTL returns the snapshot lifetime used for name.
func (e *EveCache) TTL(name cache.Name) time.Duration { return e.ttls[name] }

func newKeyed[K comparable, V any](e *EveCache, name cache.Name) (*cache.Keyed[K, V], error) {
	if e.store == nil {
		return cache.NewKeyed[K, V](name, e.logger), nil
	}
	seed, _, err := cache.Load[map[K]V](e.store, name, e.ttls[name])
	if err != nil {
		return nil, fmt.Errorf("failed to load %s snapshot: %w", name, err)
	}
	return cache.NewKeyedFrom(name, e.logger, seed), nil
}

func newSingle[V any](e *EveCache, name cache.Name) (*cache.Single[V], error) {
	if e.store == nil {
		return cache.NewSingle[V](name, e.logger), nil
	}
	seed, ok, err := cache.Load[V](e.store, name, e.ttls[name])
	if err != nil {
		return nil, fmt.Errorf("failed to load %s snapshot: %w", name, err)
	}
	if !ok {
		return cache.NewSingle[V](name, e.logger), nil
	}
	return cache.NewSingleFrom(name, e.logger, seed), nil
}

func keyedFor[K comparable, V any](
	e *EveCache,
	name cache.Name,
	fetch func(context.Context, K) (V, error),
) keyedLoader[K, V] {
	return keyedLoader[K, V]{name: name, fetch: fetch, store: e.store}
}

// queryKeyed reads key through c, or straight from l when caching is
// disabled. Uncached fetches are not retried.
func queryKeyed[K comparable, V any](
	ctx context.Context,
	e *EveCache,
	c *cache.Keyed[K, V],
	key K,
	l keyedLoader[K, V],
) (V, error) {
	if c == nil {
		v, err := l.Fetch(ctx, key)
		if err != nil {
			return v, &cache.Error{Kind: cache.ErrDataLoading, Dataset: l.name, Key: fmt.Sprint(key), Err: err}
		}
		return v, nil
	}

	e.logger.Debugf("retrieving %s (id %v)", l.name, key)
	return c.GetOrInsert(ctx, key, l)
}

func querySingle[V any](
	ctx context.Context,
	e *EveCache,
	c *cache.Single[V],
	name cache.Name,
	fetch func(context.Context) (V, error),
) (V, error) {
	l := singleLoader[V](fetch)
	if c == nil {
		v, err := l.Fetch(ctx)
		if err != nil {
			return v, &cache.Error{Kind: cache.ErrDataLoading, Dataset: name, Err: err}
		}
		return v, nil
	}

	e.logger.Debugf("retrieving %s", name)
	return c.GetOrInsert(ctx, l)
}

func (e *EveCache) Station(ctx context.Context, id int32) (esi.Station, error) {
	return queryKeyed(ctx, e, e.stations, id, keyedFor(e, cache.Stations, e.client.Station))
}

func (e *EveCache) Structure(ctx context.Context, id int64) (esi.Structure, error) {
	return queryKeyed(ctx, e, e.structures, id, keyedFor(e, cache.Structures, e.client.Structure))
}

func (e *EveCache) System(ctx context.Context, id int32) (esi.System, error) {
	return queryKeyed(ctx, e, e.systems, id, keyedFor(e, cache.Systems, e.client.System))
}

func (e *EveCache) Constellation(ctx context.Context, id int32) (esi.Constellation, error) {
	return queryKeyed(ctx, e, e.constellations, id, keyedFor(e, cache.Constellations, e.client.Constellation))
}

func (e *EveCache) Region(ctx context.Context, id int32) (esi.Region, error) {
	return queryKeyed(ctx, e, e.regions, id, keyedFor(e, cache.Regions, e.client.Region))
}

func (e *EveCache) Type(ctx context.Context, id int32) (esi.Type, error) {
	return queryKeyed(ctx, e, e.types, id, keyedFor(e, cache.Types, e.client.Type))
}

func (e *EveCache) Corporation(ctx context.Context, id int32) (esi.Corporation, error) {
	return queryKeyed(ctx, e, e.corporations, id, keyedFor(e, cache.Corporations, e.client.Corporation))
}

func (e *EveCache) Alliance(ctx context.Context, id int32) (esi.Alliance, error) {
	return queryKeyed(ctx, e, e.alliances, id, keyedFor(e, cache.Alliances, e.client.Alliance))
}

// Search rejects a key that could not be written to the snapshot before it
// reaches ESI or the cache.
func (e *EveCache) Search(ctx context.Context, key esi.SearchKey) (esi.SearchResult, error) {
	if err := key.Validate(); err != nil {
		return esi.SearchResult{}, err
	}
	return queryKeyed(ctx, e, e.search, key, keyedFor(e, cache.Search, e.client.Search))
}

// MarketOrders returns every order of one side of a region's market.
func (e *EveCache) MarketOrders(ctx context.Context, key esi.MarketOrderKey) ([]esi.MarketOrder, error) {
	return queryKeyed(ctx, e, e.marketOrders, key, keyedFor(e, cache.MarketOrders, e.client.MarketOrders))
}

func (e *EveCache) MarketPrices(ctx context.Context) ([]esi.PriceItem, error) {
	return querySingle(ctx, e, e.marketPrices, cache.MarketPrices, e.client.MarketPrices)
}

func (e *EveCache) IndustrialSystems(ctx context.Context) ([]esi.IndustrialSystem, error) {
	return querySingle(ctx, e, e.industrialSystems, cache.IndustrialSystems, e.client.IndustrialSystems)
}

func (e *EveCache) RegionIDs(ctx context.Context) ([]int32, error) {
	return querySingle(ctx, e, e.regionIDs, cache.RegionIDs, e.client.RegionIDs)
}

// Persist writes every dataset to its snapshot. Singletons that were never
// loaded are written as null. It is a no-op below LevelFull. A failed
// dataset does not stop the others; all failures are returned joined.
func (e *EveCache) Persist() error {
	if e.store == nil {
		return nil
	}

	saves := []struct {
		name cache.Name
		data func() any
	}{
		{cache.Stations, func() any { return e.stations.Snapshot() }},
		{cache.Structures, func() any { return e.structures.Snapshot() }},
		{cache.Systems, func() any { return e.systems.Snapshot() }},
		{cache.Constellations, func() any { return e.constellations.Snapshot() }},
		{cache.Regions, func() any { return e.regions.Snapshot() }},
		{cache.Types, func() any { return e.types.Snapshot() }},
		{cache.Corporations, func() any { return e.corporations.Snapshot() }},
		{cache.Alliances, func() any { return e.alliances.Snapshot() }},
		{cache.Search, func() any { return e.search.Snapshot() }},
		{cache.MarketOrders, func() any { return e.marketOrders.Snapshot() }},
		{cache.MarketPrices, func() any { return singleSnapshot(e.marketPrices) }},
		{cache.IndustrialSystems, func() any { return singleSnapshot(e.industrialSystems) }},
		{cache.RegionIDs, func() any { return singleSnapshot(e.regionIDs) }},
	}

	var errs []error
	for _, s := range saves {
		if err := e.store.Save(s.name, s.data()); err != nil {
			errs = append(errs, &cache.Error{Kind: cache.ErrPersist, Dataset: s.name, Err: err})
		}
	}
	if len(errs) == 0 {
		e.logger.Debugf("persisted %d datasets to %s", len(saves), e.store.Dir())
	}
	return errors.Join(errs...)
}

// singleSnapshot returns the loaded value, or nil so the snapshot records
// null.
func singleSnapshot[V any](c *cache.Single[V]) any {
	v, ok := c.Snapshot()
	if !ok {
		return nil
	}
	return v
}

// Stats reports the number of cached entries per keyed dataset and whether
// each singleton is loaded (1) or not (0). It is empty at LevelDisabled.
func (e *EveCache) Stats() map[cache.Name]int {
	stats := make(map[cache.Name]int)
	if e.level == cacheutil.LevelDisabled {
		return stats
	}

	stats[cache.Stations] = e.stations.Len()
	stats[cache.Structures] = e.structures.Len()
	stats[cache.Systems] = e.systems.Len()
	stats[cache.Constellations] = e.constellations.Len()
	stats[cache.Regions] = e.regions.Len()
	stats[cache.Types] = e.types.Len()
	stats[cache.Corporations] = e.corporations.Len()
	stats[cache.Alliances] = e.alliances.Len()
	stats[cache.Search] = e.search.Len()
	stats[cache.MarketOrders] = e.marketOrders.Len()
	stats[cache.MarketPrices] = singleLen(e.marketPrices)
	stats[cache.IndustrialSystems] = singleLen(e.industrialSystems)
	stats[cache.RegionIDs] = singleLen(e.regionIDs)
	return stats
}

func singleLen[V any](c *cache.Single[V]) int {
	if _, ok := c.Snapshot(); ok {
		return 1
	}
	return 0
}

func cloneSlice[E any](s []E) []E { return slices.Clone(s) }
