package modules

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memCache is an in-memory Cache
type memCache struct {
	mu      sync.Mutex
	data    map[string]string
	gets    int
	sets    int
	lastTTL time.Duration
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]string)}
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return "", c.getErr
	}
	return c.data[key], nil
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.lastTTL = expiration
	c.data[key] = value.(string)
	return nil
}

var testPlaces = []Place{
	{ID: "cafe", Name: "Corner Cafe", Kind: "cafe", Position: state.Position{Lat: 48.8566, Lon: 2.3522}},
	{ID: "park", Name: "River Park", Kind: "park", Position: state.Position{Lat: 48.8600, Lon: 2.3522}},
	{ID: "station", Name: "North Station", Kind: "station", Position: state.Position{Lat: 48.8800, Lon: 2.3522}},
	{ID: "museum", Name: "City Museum", Kind: "museum", Position: state.Position{Lat: 48.8700, Lon: 2.3522}},
	{ID: "market", Name: "Old Market", Kind: "market", Position: state.Position{Lat: 48.9000, Lon: 2.3522}},
}

func testWorld() *state.WorldState {
	ws := state.NewWorldState()
	ws.Player.Name = "Ada"
	ws.Player.Money = 2
	ws.Player.Physiology = map[string]float64{state.NeedHunger: 30, state.NeedThirst: 80}
	ws.Player.Position = testPlaces[0].Position
	ws.Player.LocationID = "cafe"
	ws.Locations["cafe"] = state.Location{
		ID: "cafe", Name: "Corner Cafe", Kind: "cafe", Position: testPlaces[0].Position,
		Services: []state.Service{
			{ID: "coffee", Name: "Coffee", Price: 3.5, GrantsItem: &state.InventoryItem{
				ID: "coffee", Name: "Coffee", Consumable: true,
				Effects: state.Effects{Physiology: map[string]float64{state.NeedThirst: 10}},
			}},
			{ID: "bun", Name: "Bun", Price: 1.5, GrantsItem: &state.InventoryItem{
				ID: "bun", Name: "Bun", Consumable: true,
				Effects: state.Effects{Physiology: map[string]float64{state.NeedHunger: 15}},
			}},
			{ID: "wifi", Name: "Wi-Fi", Price: 1},
		},
	}
	return ws
}

func testContext(text string, amb state.Ambient) enrichment.EnrichedContext {
	return enrichment.NewContext(testWorld(), action.Action{Kind: action.KindExploration, Text: text}, amb)
}

func newManager(opts Options) *enrichment.ChainManager {
	cm := enrichment.NewChainManager(testLogger())
	opts.Logger = testLogger()
	Register(cm, opts)
	return cm
}

func TestRegister_Graph(t *testing.T) {
	cm := newManager(Options{})
	assert.Equal(t, []string{LocalContextID, LocationID, ReferenceID, SustenanceID, WeatherID}, cm.ModuleIDs())

	tests := []struct {
		root string
		want []string
	}{
		{WeatherID, []string{WeatherID}},
		{LocalContextID, []string{LocationID, WeatherID, LocalContextID}},
		{SustenanceID, []string{LocationID, SustenanceID}},
		{ReferenceID, []string{ReferenceID}},
	}
	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			got, err := cm.ResolveOrder(tt.root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeatherData(t *testing.T) {
	tests := []struct {
		name string
		amb  state.Ambient
		want WeatherData
	}{
		{
			name: "defaults",
			amb:  state.Ambient{TemperatureC: 15},
			want: WeatherData{Weather: state.WeatherClear, TimeOfDay: state.TimeDay, TemperatureC: 15, Feel: "mild"},
		},
		{
			name: "rainy night",
			amb:  state.Ambient{Weather: state.WeatherRain, TimeOfDay: state.TimeNight, TemperatureC: 4},
			want: WeatherData{
				Weather: state.WeatherRain, TimeOfDay: state.TimeNight, TemperatureC: 4,
				Feel: "cold and wet", Dark: true, CheckPenalty: -10,
				Reasons: []string{"rain (-5)", "night (-5)"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, weatherData(tt.amb))
		})
	}
}

func TestLocationModule_Nearby(t *testing.T) {
	res, err := NewLocationModule(testPlaces).Enrich(context.Background(), testContext("look around", state.Ambient{}))
	require.NoError(t, err)

	d, ok := res.Data.(LocationData)
	require.True(t, ok)
	assert.Equal(t, "Corner Cafe", d.Name)
	assert.Equal(t, []string{"Coffee", "Bun", "Wi-Fi"}, d.Services)
	require.Len(t, d.Nearby, maxNearby)
	assert.Equal(t, "River Park", d.Nearby[0].Name)
	assert.Equal(t, "City Museum", d.Nearby[1].Name)
	assert.Equal(t, "North Station", d.Nearby[2].Name)
	assert.InDelta(t, 0.38, d.Nearby[0].DistanceKm, 0.01)
}

func TestLocationModule_OpenStreet(t *testing.T) {
	ec := enrichment.NewContext(state.NewWorldState(), action.Action{Text: "wander"}, state.Ambient{})
	res, err := NewLocationModule(nil).Enrich(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, "open street", res.Data.(LocationData).Name)
}

func TestLocalContext_Cascade(t *testing.T) {
	cm := newManager(Options{Places: testPlaces})
	amb := state.Ambient{Weather: state.WeatherRain, TimeOfDay: state.TimeDusk, TemperatureC: 5}

	res, err := cm.EnrichWithCascade(context.Background(), testContext("look around", amb), LocalContextID)
	require.NoError(t, err)

	lc, ok := res.Results[LocalContextID].Data.(LocalContext)
	require.True(t, ok)
	assert.Equal(t, "Corner Cafe", lc.Place)
	assert.Equal(t, "cold and wet, dusk", lc.Conditions)
	assert.Equal(t, "busy", lc.Crowd)
	assert.Equal(t, "Ada at Corner Cafe (cold and wet, dusk); busy", lc.Summary)
	assert.Contains(t, lc.Highlights, "offers Coffee")
	assert.Equal(t, []string{LocationID, WeatherID}, res.Results[LocalContextID].DependenciesUsed)
}

func TestLocalContext_WithoutWeather(t *testing.T) {
	cm := enrichment.NewChainManager(testLogger())
	cm.RegisterModule(NewLocationModule(nil))
	cm.RegisterModule(NewLocalContextModule())
	// weather is optional but still has to be registered
	_, err := cm.EnrichWithCascade(context.Background(), testContext("look around", state.Ambient{}), LocalContextID)
	assert.ErrorIs(t, err, enrichment.ErrModuleNotFound)

	cm.RegisterModule(enrichment.NewFuncModule(WeatherID, nil, func(context.Context, enrichment.EnrichedContext) (any, error) {
		return nil, nil
	}))
	res, err := cm.EnrichWithCascade(context.Background(), testContext("look around", state.Ambient{TimeOfDay: state.TimeNight}), LocalContextID)
	require.NoError(t, err)
	lc := res.Results[LocalContextID].Data.(LocalContext)
	assert.Equal(t, "nearly deserted", lc.Crowd)
}

func TestSustenance(t *testing.T) {
	cm := newManager(Options{})
	res, err := cm.EnrichWithCascade(context.Background(), testContext("grab a bite", state.Ambient{}), SustenanceID)
	require.NoError(t, err)

	d, ok := res.Results[SustenanceID].Data.(SustenanceData)
	require.True(t, ok)
	assert.Equal(t, 30.0, d.Hunger)
	assert.Equal(t, 80.0, d.Thirst)
	assert.Equal(t, "low", d.Status)
	assert.Equal(t, []FoodOption{
		{Name: "Coffee", Price: 3.5, Affordable: false, Restores: []string{state.NeedThirst}},
		{Name: "Bun", Price: 1.5, Affordable: true, Restores: []string{state.NeedHunger}},
	}, d.Options)
}

func TestNeedStatus(t *testing.T) {
	tests := map[float64]string{0: "critical", 15: "critical", 15.5: "low", 40: "low", 41: "fine", 100: "fine"}
	for v, want := range tests {
		if got := needStatus(v); got != want {
			t.Errorf("needStatus(%v) = %q, want %q", v, got, want)
		}
	}
}

func TestReferenceModule(t *testing.T) {
	m := NewReferenceModule([]ReferenceEntry{
		{Topic: "Old Bridge", Text: "Built in 1607."},
		{Topic: "Metro", Keywords: []string{"subway", "underground"}, Text: "Runs until 1am."},
		{Topic: "Opera", Text: "Closed on Mondays."},
	})

	tests := []struct {
		text string
		want []string
	}{
		{"look up the OLD BRIDGE", []string{"Old Bridge"}},
		{"research the Underground and the old bridge", []string{"Old Bridge", "Metro"}},
		{"what is that smell", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res, err := m.Enrich(context.Background(), testContext(tt.text, state.Ambient{}))
			require.NoError(t, err)
			d := res.Data.(ReferenceData)
			var topics []string
			for _, e := range d.Matches {
				topics = append(topics, e.Topic)
			}
			assert.Equal(t, tt.want, topics)
			assert.Equal(t, tt.text, d.Query)
		})
	}
}

// countingModule records how often it ran
type countingModule struct {
	enrichment.Module
	mu    sync.Mutex
	calls int
}

func (c *countingModule) Enrich(ctx context.Context, ec enrichment.EnrichedContext) (enrichment.ModuleEnrichmentResult, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Module.Enrich(ctx, ec)
}

func TestCachedModule_HitSkipsInner(t *testing.T) {
	cache := newMemCache()
	inner := &countingModule{Module: NewLocationModule(testPlaces)}
	m := NewCachedModule(inner, cache, 0, testLogger())

	ec := testContext("look around", state.Ambient{})
	first, err := m.Enrich(context.Background(), ec)
	require.NoError(t, err)
	ec.Subject.Turn++
	second, err := m.Enrich(context.Background(), ec)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, DefaultCacheTTL, cache.lastTTL)
	assert.Equal(t, LocationID, second.ModuleID)

	want := first.Data.(LocationData)
	got, err := decodeData[LocationData](second.Data)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	ec.Ambient.Weather = state.WeatherFog
	_, err = m.Enrich(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "different ambient is a different key")
}

func TestCachedModule_CacheErrorFallsThrough(t *testing.T) {
	cache := newMemCache()
	cache.getErr = errors.New("connection refused")
	inner := &countingModule{Module: NewReferenceModule(nil)}
	m := NewCachedModule(inner, cache, time.Minute, testLogger())

	_, err := m.Enrich(context.Background(), testContext("look up x", state.Ambient{}))
	require.NoError(t, err)
	_, err = m.Enrich(context.Background(), testContext("look up x", state.Ambient{}))
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

// Dependents read cached payloads that come back as generic JSON
func TestCachedModule_DependentsDecodeCachedData(t *testing.T) {
	cache := newMemCache()
	cm := newManager(Options{Places: testPlaces, Cache: cache, CacheTTL: time.Minute})
	amb := state.Ambient{Weather: state.WeatherClear, TimeOfDay: state.TimeDay, TemperatureC: 22}

	first, err := cm.EnrichWithCascade(context.Background(), testContext("look around", amb), LocalContextID)
	require.NoError(t, err)
	second, err := cm.EnrichWithCascade(context.Background(), testContext("look around", amb), LocalContextID)
	require.NoError(t, err)

	assert.Equal(t, first.Results[LocalContextID].Data, second.Results[LocalContextID].Data)
	assert.IsType(t, map[string]any{}, second.Results[LocationID].Data)
	assert.Equal(t, "Ada at Corner Cafe (warm, day); busy", second.Results[LocalContextID].Data.(LocalContext).Summary)
}

func TestDecodeData(t *testing.T) {
	d, err := decodeData[WeatherData](WeatherData{Weather: "fog"})
	require.NoError(t, err)
	assert.Equal(t, "fog", d.Weather)

	d, err = decodeData[WeatherData](&WeatherData{Weather: "snow"})
	require.NoError(t, err)
	assert.Equal(t, "snow", d.Weather)

	d, err = decodeData[WeatherData](map[string]any{"weather": "rain", "dark": true})
	require.NoError(t, err)
	assert.Equal(t, WeatherData{Weather: "rain", Dark: true}, d)

	_, err = decodeData[WeatherData]("not an object")
	assert.Error(t, err)
}
