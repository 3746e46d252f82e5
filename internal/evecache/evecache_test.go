// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package evecache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/evectl/internal/cache"
	"github.com/staranto/evectl/internal/cacheutil"
	"github.com/staranto/evectl/internal/esi"
)

// fakeESI answers every request with a value derived from its key and
// counts the calls.
type fakeESI struct {
	calls atomic.Int32
	err   error
}

func (f *fakeESI) hit() error {
	f.calls.Add(1)
	return f.err
}

func (f *fakeESI) Station(_ context.Context, id int32) (esi.Station, error) {
	return esi.Station{StationID: id, Name: fmt.Sprintf("station %d", id)}, f.hit()
}

func (f *fakeESI) Structure(_ context.Context, id int64) (esi.Structure, error) {
	return esi.Structure{Name: fmt.Sprintf("structure %d", id)}, f.hit()
}

func (f *fakeESI) System(_ context.Context, id int32) (esi.System, error) {
	return esi.System{SystemID: id, Name: fmt.Sprintf("system %d", id)}, f.hit()
}

func (f *fakeESI) Constellation(_ context.Context, id int32) (esi.Constellation, error) {
	return esi.Constellation{ConstellationID: id}, f.hit()
}

func (f *fakeESI) Region(_ context.Context, id int32) (esi.Region, error) {
	return esi.Region{RegionID: id}, f.hit()
}

func (f *fakeESI) Type(_ context.Context, id int32) (esi.Type, error) {
	return esi.Type{TypeID: id}, f.hit()
}

func (f *fakeESI) Corporation(_ context.Context, id int32) (esi.Corporation, error) {
	return esi.Corporation{Name: fmt.Sprintf("corp %d", id)}, f.hit()
}

func (f *fakeESI) Alliance(_ context.Context, id int32) (esi.Alliance, error) {
	return esi.Alliance{Name: fmt.Sprintf("alliance %d", id)}, f.hit()
}

func (f *fakeESI) Search(_ context.Context, key esi.SearchKey) (esi.SearchResult, error) {
	return esi.SearchResult{Station: []int32{key.CharacterID}}, f.hit()
}

func (f *fakeESI) MarketOrders(_ context.Context, key esi.MarketOrderKey) ([]esi.MarketOrder, error) {
	return []esi.MarketOrder{{OrderID: 1, IsBuyOrder: key.OrderType == esi.Buy}}, f.hit()
}

func (f *fakeESI) MarketPrices(context.Context) ([]esi.PriceItem, error) {
	return []esi.PriceItem{{TypeID: 34, AveragePrice: 5.5}}, f.hit()
}

func (f *fakeESI) IndustrialSystems(context.Context) ([]esi.IndustrialSystem, error) {
	return []esi.IndustrialSystem{{SolarSystemID: 30000142}}, f.hit()
}

func (f *fakeESI) RegionIDs(context.Context) ([]int32, error) {
	return []int32{10000002, 10000043}, f.hit()
}

func testLogger() log.Interface {
	return &log.Logger{Handler: discard.Default, Level: log.DebugLevel}
}

func newStore(t *testing.T) *cache.Store {
	t.Helper()
	return cache.NewStore(t.TempDir(), testLogger())
}

func TestNew_FullNeedsStore(t *testing.T) {
	_, err := New(&fakeESI{}, Options{Level: cacheutil.LevelFull, Logger: testLogger()})
	assert.Error(t, err)
}

func TestDisabled_AlwaysFetches(t *testing.T) {
	api := &fakeESI{}
	e, err := New(api, Options{Level: cacheutil.LevelDisabled, Logger: testLogger()})
	require.NoError(t, err)

	for range 3 {
		st, err := e.Station(t.Context(), 60003760)
		require.NoError(t, err)
		assert.Equal(t, "station 60003760", st.Name)
	}
	_, err = e.MarketPrices(t.Context())
	require.NoError(t, err)

	assert.Equal(t, int32(4), api.calls.Load())
	assert.Empty(t, e.Stats())
	assert.NoError(t, e.Persist())
}

func TestDisabled_ErrorIsDataLoading(t *testing.T) {
	api := &fakeESI{err: errors.New("boom")}
	e, err := New(api, Options{Level: cacheutil.LevelDisabled, Logger: testLogger()})
	require.NoError(t, err)

	_, err = e.System(t.Context(), 30000142)
	require.ErrorIs(t, err, cache.ErrDataLoading)

	var cerr *cache.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, cache.Systems, cerr.Dataset)
	assert.Equal(t, "30000142", cerr.Key)
	assert.Equal(t, int32(1), api.calls.Load())

	_, err = e.RegionIDs(t.Context())
	assert.ErrorIs(t, err, cache.ErrDataLoading)
}

func TestMemory_CachesWithoutWritingSnapshots(t *testing.T) {
	api := &fakeESI{}
	store := newStore(t)
	e, err := New(api, Options{Level: cacheutil.LevelMemory, Store: store, Logger: testLogger()})
	require.NoError(t, err)

	for range 3 {
		_, err := e.Type(t.Context(), 34)
		require.NoError(t, err)
		_, err = e.RegionIDs(t.Context())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), api.calls.Load())

	require.NoError(t, e.Persist())
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFull_PersistThenReseed(t *testing.T) {
	store := newStore(t)
	api := &fakeESI{}
	e, err := New(api, Options{Level: cacheutil.LevelFull, Store: store, Logger: testLogger()})
	require.NoError(t, err)

	ctx := t.Context()
	_, err = e.Station(ctx, 60003760)
	require.NoError(t, err)
	_, err = e.Search(ctx, esi.SearchKey{CharacterID: 42, Categories: "station", Search: "Jita", Strict: esi.StrictOn})
	require.NoError(t, err)
	_, err = e.MarketOrders(ctx, esi.MarketOrderKey{RegionID: 10000002, OrderType: esi.Sell})
	require.NoError(t, err)
	_, err = e.MarketPrices(ctx)
	require.NoError(t, err)

	require.NoError(t, e.Persist())
	for _, name := range cache.Names() {
		assert.FileExists(t, store.Path(name))
	}

	api2 := &fakeESI{}
	e2, err := New(api2, Options{Level: cacheutil.LevelFull, Store: store, Logger: testLogger()})
	require.NoError(t, err)

	st, err := e2.Station(ctx, 60003760)
	require.NoError(t, err)
	assert.Equal(t, "station 60003760", st.Name)
	_, err = e2.Search(ctx, esi.SearchKey{CharacterID: 42, Categories: "station", Search: "Jita", Strict: esi.StrictOn})
	require.NoError(t, err)
	orders, err := e2.MarketOrders(ctx, esi.MarketOrderKey{RegionID: 10000002, OrderType: esi.Sell})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	_, err = e2.MarketPrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(0), api2.calls.Load())

	// Never loaded, so persisted as null and fetched again.
	_, err = e2.RegionIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), api2.calls.Load())
}

func TestSearch_UnencodableKeyNeverCached(t *testing.T) {
	store := newStore(t)
	api := &fakeESI{}
	e, err := New(api, Options{Level: cacheutil.LevelFull, Store: store, Logger: testLogger()})
	require.NoError(t, err)

	ctx := t.Context()
	for _, text := range []string{"jita/", "/x", "a///b"} {
		_, err = e.Search(ctx, esi.SearchKey{CharacterID: 1, Categories: "station", Search: text, Strict: esi.StrictOn})
		assert.ErrorIs(t, err, esi.ErrInvalidKey, text)
	}
	assert.Equal(t, int32(0), api.calls.Load())

	ok := esi.SearchKey{CharacterID: 1, Categories: "station", Search: "jita/4", Strict: esi.StrictOn}
	_, err = e.Search(ctx, ok)
	require.NoError(t, err)
	require.NoError(t, e.Persist())

	api2 := &fakeESI{}
	e2, err := New(api2, Options{Level: cacheutil.LevelFull, Store: store, Logger: testLogger()})
	require.NoError(t, err)
	_, err = e2.Search(ctx, ok)
	require.NoError(t, err)
	assert.Equal(t, int32(0), api2.calls.Load())
}

func TestFull_ExpiredSnapshotIsIgnored(t *testing.T) {
	store := newStore(t)
	e, err := New(&fakeESI{}, Options{Level: cacheutil.LevelFull, Store: store, Logger: testLogger()})
	require.NoError(t, err)
	_, err = e.Station(t.Context(), 1)
	require.NoError(t, err)
	require.NoError(t, e.Persist())

	api := &fakeESI{}
	e2, err := New(api, Options{
		Level:  cacheutil.LevelFull,
		Store:  store,
		TTLs:   map[cache.Name]time.Duration{cache.Stations: 0},
		Logger: testLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), e2.TTL(cache.Stations))
	assert.Equal(t, 2*time.Hour, e2.TTL(cache.Systems))

	_, err = e2.Station(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestFull_CorruptSnapshotFailsNew(t *testing.T) {
	store := newStore(t)
	require.NoError(t, os.WriteFile(store.Path(cache.Systems), []byte("{not json"), 0o600))

	_, err := New(&fakeESI{}, Options{Level: cacheutil.LevelFull, Store: store, Logger: testLogger()})
	assert.ErrorIs(t, err, cache.ErrSnapshotCorrupt)
}

func TestFull_FlushesAfterThresholdInserts(t *testing.T) {
	store := newStore(t)
	e, err := New(&fakeESI{}, Options{Level: cacheutil.LevelFull, Store: store, Logger: testLogger()})
	require.NoError(t, err)

	for id := range int32(cache.FlushThreshold - 1) {
		_, err := e.Station(t.Context(), id)
		require.NoError(t, err)
	}
	assert.NoFileExists(t, store.Path(cache.Stations))

	_, err = e.Station(t.Context(), cache.FlushThreshold)
	require.NoError(t, err)
	assert.FileExists(t, store.Path(cache.Stations))

	seeded, ok, err := cache.Load[map[int32]esi.Station](store, cache.Stations, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, seeded, cache.FlushThreshold)
}

func TestPersist_ReportsEveryFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blocked")
	store := cache.NewStore(dir, testLogger())

	e, err := New(&fakeESI{}, Options{Level: cacheutil.LevelFull, Store: store, Logger: testLogger()})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dir, []byte("a file, not a directory"), 0o600))

	err = e.Persist()
	require.ErrorIs(t, err, cache.ErrPersist)

	var cerr *cache.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, cache.Stations, cerr.Dataset)
	assert.Len(t, err.(interface{ Unwrap() []error }).Unwrap(), len(cache.Names()))
}

func TestMarketOrders_CallersGetCopies(t *testing.T) {
	e, err := New(&fakeESI{}, Options{Level: cacheutil.LevelMemory, Logger: testLogger()})
	require.NoError(t, err)
	key := esi.MarketOrderKey{RegionID: 10000002, OrderType: esi.Buy}

	first, err := e.MarketOrders(t.Context(), key)
	require.NoError(t, err)
	first[0].OrderID = 999

	second, err := e.MarketOrders(t.Context(), key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), second[0].OrderID)
	assert.True(t, second[0].IsBuyOrder)
}

func TestStats(t *testing.T) {
	e, err := New(&fakeESI{}, Options{Level: cacheutil.LevelMemory, Logger: testLogger()})
	require.NoError(t, err)

	_, err = e.Alliance(t.Context(), 99000001)
	require.NoError(t, err)
	_, err = e.Alliance(t.Context(), 99000002)
	require.NoError(t, err)
	_, err = e.IndustrialSystems(t.Context())
	require.NoError(t, err)

	stats := e.Stats()
	assert.Equal(t, 2, stats[cache.Alliances])
	assert.Equal(t, 1, stats[cache.IndustrialSystems])
	assert.Equal(t, 0, stats[cache.MarketPrices])
	assert.Len(t, stats, len(cache.Names()))
}

func TestWithESIClient_RetriesGatewayErrors(t *testing.T) {
	orig := cache.FetchDelay
	cache.FetchDelay = time.Millisecond
	t.Cleanup(func() { cache.FetchDelay = orig })

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"constellation_id":20000020,"name":"Kimotoro","region_id":10000002,"systems":[30000142]}`)
	}))
	t.Cleanup(srv.Close)

	client := esi.NewClient(esi.WithBaseURL(srv.URL), esi.WithLogger(testLogger()))
	e, err := New(client, Options{Level: cacheutil.LevelMemory, Logger: testLogger()})
	require.NoError(t, err)

	c, err := e.Constellation(t.Context(), 20000020)
	require.NoError(t, err)
	assert.Equal(t, "Kimotoro", c.Name)
	assert.Equal(t, int32(3), calls.Load())

	_, err = e.Constellation(t.Context(), 20000020)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}
