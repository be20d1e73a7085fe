package turn

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jwebster45206/turn-engine/internal/services"
	svcevents "github.com/jwebster45206/turn-engine/internal/services/events"
	svcqueue "github.com/jwebster45206/turn-engine/internal/services/queue"
	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/cascade"
	"github.com/jwebster45206/turn-engine/pkg/chat"
	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"github.com/jwebster45206/turn-engine/pkg/enrichment/modules"
	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/jwebster45206/turn-engine/pkg/narrative"
	"github.com/jwebster45206/turn-engine/pkg/queue"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var cafePos = state.Position{Lat: 48.8566, Lon: 2.3522}

func testWorld() *state.WorldState {
	ws := state.NewWorldState()
	ws.Player.Name = "Ada"
	ws.Player.Money = 10
	ws.Player.Position = cafePos
	ws.Player.LocationID = "cafe"
	ws.Locations["cafe"] = state.Location{
		ID: "cafe", Name: "Corner Cafe", Kind: "cafe", Position: cafePos,
		Services: []state.Service{
			{ID: "coffee", Name: "Coffee", Price: 3.5, GrantsItem: &state.InventoryItem{
				ID: "coffee", Name: "Coffee", Consumable: true,
				Effects: state.Effects{Physiology: map[string]float64{state.NeedThirst: 10}},
			}},
		},
	}
	return ws
}

func buyCoffee(ws *state.WorldState) *queue.TurnRequest {
	act := action.Action{
		Kind:            action.KindService,
		Text:            "buy a coffee",
		TimeCostMinutes: 5,
		Service:         &action.ServiceRequest{LocationID: "cafe", ServiceID: "coffee"},
	}
	return queue.NewTurnRequest(ws, act, state.Ambient{Weather: state.WeatherRain, TimeOfDay: state.TimeDay}, 42)
}

func newTrigger(cache modules.Cache) *cascade.Trigger {
	cm := enrichment.NewChainManager(testLogger())
	modules.Register(cm, modules.Options{
		Places: []modules.Place{{ID: "cafe", Name: "Corner Cafe", Kind: "cafe", Position: cafePos}},
		Cache:  cache,
		Logger: testLogger(),
	})
	return cascade.New(cm, testLogger(), cascade.WithTimeout(time.Second))
}

func setupRedis(t *testing.T) (*svcqueue.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := svcqueue.NewClient(context.Background(), "redis://"+mr.Addr(), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestProcess_ServiceTurn(t *testing.T) {
	narrator := services.NewMockNarrator()

	p := NewProcessor(newTrigger(nil), testLogger(),
		WithNarrator(narrator),
		WithNarratorName("Mara"))

	ws := testWorld()
	req := buyCoffee(ws)
	res, err := p.Process(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, req.RequestID, res.RequestID)
	assert.Equal(t, ws.GameID, res.GameID)
	assert.False(t, res.CompletedAt.IsZero())

	evs, err := res.DecodeEvents()
	require.NoError(t, err)
	require.NotEmpty(t, evs)
	assert.Equal(t, events.KindJournalEntry, evs[0].Kind())
	assert.Equal(t, 1, events.Count(evs, events.KindMoneyChanged))
	assert.Equal(t, 1, events.Count(evs, events.KindItemAdded))

	// The reduced snapshot is returned; the request snapshot is untouched
	require.NotNil(t, res.State)
	assert.Equal(t, 1, res.State.Turn)
	assert.Equal(t, 6.5, res.State.Player.Money)
	_, ok := res.State.Player.Item("coffee")
	assert.True(t, ok)
	assert.Equal(t, 10.0, ws.Player.Money)
	assert.Equal(t, 0, ws.Turn)

	require.True(t, res.EnrichmentAvailable)
	require.NotNil(t, res.Enrichment)
	assert.Equal(t, []string{modules.LocationID, modules.SustenanceID}, res.Enrichment.ExecutionChain)

	require.NotNil(t, res.Narration)
	assert.NotEmpty(t, res.Narration.Narrative)
	require.Equal(t, 1, narrator.CallCount())
	msgs := narrator.NarrateCalls[0]
	require.NotEmpty(t, msgs)
	assert.Equal(t, chat.ChatRoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Mara")
}

func TestProcess_Deterministic(t *testing.T) {
	p := NewProcessor(newTrigger(nil), testLogger())
	ws := testWorld()
	ws.Player.Skills = map[string]int{"persuasion": 3}
	req := buyCoffee(ws)
	req.Action.SkillCheck = &action.SkillCheckDescriptor{Skill: "persuasion", Stat: "charisma", Difficulty: 14, BaseXP: 10}

	a, err := p.Process(context.Background(), req)
	require.NoError(t, err)
	b, err := p.Process(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, string(a.Events), string(b.Events))
}

func TestProcess_NoNarrator(t *testing.T) {
	p := NewProcessor(newTrigger(nil), testLogger())

	res, err := p.Process(context.Background(), buyCoffee(testWorld()))
	require.NoError(t, err)
	assert.Nil(t, res.Narration)
	assert.True(t, res.EnrichmentAvailable)
}

func TestProcess_NarratorFailuresDegrade(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"quota exceeded", services.ErrQuotaExceeded},
		{"provider error", errors.New("upstream 529")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			narrator := services.NewMockNarrator()
			narrator.NarrateFunc = func(ctx context.Context, messages []chat.ChatMessage) (*narrative.Narration, error) {
				return nil, tt.err
			}
			p := NewProcessor(newTrigger(nil), testLogger(), WithNarrator(narrator))

			res, err := p.Process(context.Background(), buyCoffee(testWorld()))
			require.NoError(t, err)
			assert.Nil(t, res.Narration)
			assert.NotEmpty(t, res.Events)
		})
	}
}

func TestProcess_QuotaNarrator(t *testing.T) {
	inner := services.NewMockNarrator()
	quota := services.NewQuotaNarrator(inner, services.NewMemoryQuota(1, time.Hour, nil), "narrator", testLogger())
	p := NewProcessor(newTrigger(nil), testLogger(), WithNarrator(quota))

	first, err := p.Process(context.Background(), buyCoffee(testWorld()))
	require.NoError(t, err)
	assert.NotNil(t, first.Narration)

	second, err := p.Process(context.Background(), buyCoffee(testWorld()))
	require.NoError(t, err)
	assert.Nil(t, second.Narration)
	assert.Equal(t, 1, inner.CallCount())
}

func TestProcess_EnrichmentUnavailable(t *testing.T) {
	client, _ := setupRedis(t)
	rdb := client.GetRedisClient()
	b := svcevents.NewBroadcaster(rdb, testLogger())

	// Empty registry: every root is missing
	empty := cascade.New(enrichment.NewChainManager(testLogger()), testLogger())
	p := NewProcessor(empty, testLogger(), WithBroadcaster(b))

	ws := testWorld()
	ctx := context.Background()
	sub := rdb.Subscribe(ctx, svcevents.Channel(ws.GameID))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	res, err := p.Process(ctx, buyCoffee(ws))
	require.NoError(t, err)
	assert.False(t, res.EnrichmentAvailable)
	assert.Nil(t, res.Enrichment)
	assert.NotEmpty(t, res.Events, "resolution does not depend on enrichment")

	select {
	case msg := <-sub.Channel():
		var ev svcevents.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, svcevents.EventTypeEnrichmentUnavailable, ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for enrichment.unavailable")
	}
}

func TestProcess_CachedEnrichment(t *testing.T) {
	cache := services.NewMockCache()
	p := NewProcessor(newTrigger(cache), testLogger())
	req := buyCoffee(testWorld())

	first, err := p.Process(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Process(context.Background(), req)
	require.NoError(t, err)

	// Only the location module is cached; the second turn reads it back
	assert.Len(t, cache.SetCalls, 1)
	assert.Len(t, cache.GetCalls, 2)
	assert.Equal(t, first.Enrichment.ExecutionChain, second.Enrichment.ExecutionChain)

	d1, _ := first.Enrichment.Data(modules.SustenanceID)
	d2, _ := second.Enrichment.Data(modules.SustenanceID)
	j1, _ := json.Marshal(d1)
	j2, _ := json.Marshal(d2)
	assert.JSONEq(t, string(j1), string(j2))
}

func TestProcess_InvalidRequest(t *testing.T) {
	p := NewProcessor(newTrigger(nil), testLogger())

	req := buyCoffee(testWorld())
	req.State = nil
	_, err := p.Process(context.Background(), req)
	assert.Error(t, err)
}
