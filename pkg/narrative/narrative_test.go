package narrative

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/chat"
	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorld() *state.WorldState {
	ws := state.NewWorldState()
	ws.Turn = 4
	ws.ClockMinutes = 19 * 60
	ws.Player.Name = "Ada"
	ws.Player.Money = 7.5
	ws.Player.LocationID = "kiosk"
	ws.Player.Inventory = []state.InventoryItem{
		{ID: "map", Name: "City Map", Quantity: 1},
		{ID: "apple", Name: "Apple", Quantity: 3},
	}
	ws.Locations["kiosk"] = state.Location{ID: "kiosk", Name: "Station Kiosk"}
	return ws
}

var buyMap = action.Action{Kind: action.KindService, Text: "buy a city map"}

func TestPrepare(t *testing.T) {
	evs := []events.Event{
		events.JournalEntry{Text: "buy a city map"},
		events.MoneyChanged{Delta: -4.25, Reason: "City Map"},
		events.TextNotice{Code: events.NoticeCrafted, Text: "Nice."},
	}
	cascade := &enrichment.CascadeResult{
		Results: map[string]enrichment.ModuleEnrichmentResult{
			"weather": {ModuleID: "weather", Data: "drizzle"},
		},
		ExecutionChain: []string{"weather"},
	}

	c := Prepare(testWorld(), buyMap, evs, cascade)

	assert.Equal(t, 4, c.Turn)
	assert.Equal(t, state.TimeDusk, c.TimeOfDay)
	assert.Equal(t, "buy a city map", c.Action)
	assert.Equal(t, action.KindService, c.ActionKind)
	assert.Equal(t, "Station Kiosk", c.Location)
	assert.Equal(t, "Ada", c.Player.Name)
	assert.Equal(t, []string{"City Map", "Apple x3"}, c.Player.Inventory)
	assert.Equal(t, []string{"Action: buy a city map", "Money -4.25 (City Map)", "Nice."}, c.Events)
	assert.Equal(t, []string{"Nice."}, c.Notices)
	assert.True(t, c.EnrichmentAvailable)
	assert.Equal(t, map[string]any{"weather": "drizzle"}, c.Enrichment)
	assert.Equal(t, []string{"weather"}, c.ExecutionChain)
	assert.Empty(t, c.Opponent)
}

func TestPrepare_NoEnrichment(t *testing.T) {
	c := Prepare(testWorld(), buyMap, nil, nil)
	assert.False(t, c.EnrichmentAvailable)
	assert.Nil(t, c.Enrichment)
	assert.Empty(t, c.Events)

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"enrichment_available":false`)
}

func TestPrepare_NilWorldAndCombat(t *testing.T) {
	c := Prepare(nil, action.Action{Text: "wait"}, nil, nil)
	assert.Equal(t, "unknown", c.Location)

	ws := testWorld()
	ws.Encounter = &state.Encounter{Opponent: actor.Opponent{Name: "Stray Dog", HP: 3, MaxHP: 8}}
	c = Prepare(ws, action.Action{Kind: action.KindCombat, Text: "attack"}, nil, nil)
	assert.Equal(t, "Stray Dog (3/8 HP)", c.Opponent)
}

func TestNew(t *testing.T) {
	b := New()
	if b.historyLimit != DefaultHistoryLimit {
		t.Errorf("Expected default history limit of %d, got %d", DefaultHistoryLimit, b.historyLimit)
	}
	if b.messages == nil {
		t.Error("Expected messages slice to be initialized")
	}
}

func TestBuilder_RequiresContext(t *testing.T) {
	_, err := New().Build()
	if err == nil || err.Error() != "turn context is required" {
		t.Errorf("Expected 'turn context is required' error, got: %v", err)
	}
}

func TestBuilder_Build(t *testing.T) {
	history := []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "one"},
		{Role: chat.ChatRoleAgent, Content: "two"},
		{Role: chat.ChatRoleUser, Content: "three"},
	}
	c := Prepare(testWorld(), buyMap, []events.Event{events.JournalEntry{Text: buyMap.Text}}, nil)

	msgs, err := New().
		WithContext(c).
		WithNarratorName("Marlowe").
		WithHistory(history).
		WithHistoryLimit(2).
		Build()
	require.NoError(t, err)
	require.Len(t, msgs, 6)

	assert.Equal(t, chat.ChatRoleSystem, msgs[0].Role)
	assert.True(t, strings.HasPrefix(msgs[0].Content, "You are Marlowe,"))
	assert.Equal(t, "two", msgs[1].Content)
	assert.Equal(t, "three", msgs[2].Content)
	assert.Equal(t, chat.ChatMessage{Role: chat.ChatRoleUser, Content: "buy a city map"}, msgs[3])
	assert.Equal(t, chat.ChatRoleSystem, msgs[4].Role)
	assert.Contains(t, msgs[4].Content, `"location": "Station Kiosk"`)
	assert.Equal(t, OutputPrompt, msgs[5].Content)
}

func TestBuildMessages_Combat(t *testing.T) {
	ws := testWorld()
	ws.Encounter = &state.Encounter{Opponent: actor.Opponent{Name: "Stray Dog", HP: 3, MaxHP: 8}}
	c := Prepare(ws, action.Action{Kind: action.KindCombat, Text: "attack"}, nil, nil)

	msgs, err := BuildMessages(c, nil, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.True(t, strings.HasPrefix(msgs[3].Content, CombatPrompt))
	assert.True(t, strings.HasPrefix(msgs[0].Content, "You are the narrator,"))
}

func TestParseNarration(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Narration
	}{
		{
			name: "plain json",
			in:   `{"narrative": "You pay and pocket the map.", "suggested_actions": ["unfold the map", " ", "head to the platform"]}`,
			want: Narration{Narrative: "You pay and pocket the map.", SuggestedActions: []string{"unfold the map", "head to the platform"}},
		},
		{
			name: "fenced json",
			in:   "```json\n{\"narrative\": \"  Rain drums on the kiosk roof. \"}\n```",
			want: Narration{Narrative: "Rain drums on the kiosk roof."},
		},
		{
			name: "raw text",
			in:   "  The clerk nods.  ",
			want: Narration{Narrative: "The clerk nods."},
		},
		{
			name: "json without narrative",
			in:   `{"suggested_actions": ["wait"]}`,
			want: Narration{Narrative: `{"suggested_actions": ["wait"]}`},
		},
		{
			name: "broken json",
			in:   `{"narrative": "half`,
			want: Narration{Narrative: `{"narrative": "half`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNarration(tt.in))
		})
	}
}
