package events

import (
	"strings"
	"testing"

	"github.com/jwebster45206/turn-engine/pkg/skillcheck"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTurn() []Event {
	return []Event{
		JournalEntry{Text: "take a taxi to the museum"},
		MoneyChanged{Delta: -12.5, Reason: "taxi fare"},
		TravelExecuted{
			From:       state.Place{Name: "Hotel"},
			To:         state.Place{Name: "Museum"},
			Mode:       "taxi",
			DistanceKm: 5,
			Minutes:    15,
			Cost:       12.5,
			Energy:     3,
		},
		StatChanged{Stat: state.StatEnergy, Delta: -3},
		SkillCheckResolved{Skill: "haggling", Result: skillcheck.PerformCheck(10, 1, 0, 50, 60)},
		MomentumUpdated{Momentum: skillcheck.Momentum{}.Apply(true)},
		ItemAdded{Item: state.InventoryItem{ID: "ticket", Name: "Museum Ticket", Quantity: 1}},
		TimeProgressed{Minutes: 15},
	}
}

func TestMarshalList_PreservesVariantsAndOrder(t *testing.T) {
	in := sampleTurn()

	data, err := MarshalList(in)
	require.NoError(t, err)

	out, err := UnmarshalList(data)
	require.NoError(t, err)
	require.Len(t, out, len(in))

	for i := range in {
		assert.Equal(t, in[i].Kind(), out[i].Kind(), "event %d kind", i)
		assert.Equal(t, in[i], out[i], "event %d payload", i)
	}
}

func TestMarshal_Envelope(t *testing.T) {
	data, err := Marshal(TextNotice{Code: NoticeInsufficientFunds, Text: "Not enough money."})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"notice","payload":{"code":"insufficient_funds","text":"Not enough money."}}`, string(data))

	ev, err := Unmarshal(data)
	require.NoError(t, err)
	notice, ok := ev.(TextNotice)
	require.True(t, ok, "expected TextNotice, got %T", ev)
	assert.Equal(t, NoticeInsufficientFunds, notice.Code)
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{`},
		{"unknown kind", `{"kind":"weather.changed","payload":{}}`},
		{"bad payload", `{"kind":"time.progressed","payload":{"minutes":"ten"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.data)); err == nil {
				t.Errorf("expected error for %s", tt.data)
			}
		})
	}
}

func TestMarshal_Nil(t *testing.T) {
	if _, err := Marshal(nil); err == nil {
		t.Error("expected error for nil event")
	}
	if _, err := MarshalList([]Event{JournalEntry{}, nil}); err == nil {
		t.Error("expected error for nil event in list")
	}
}

func TestEveryKindHasDecoder(t *testing.T) {
	for _, ev := range []Event{
		JournalEntry{}, StatChanged{}, PhysiologyChanged{}, MoneyChanged{},
		ItemAdded{}, ItemRemoved{}, ItemUsed{}, DynamicItemCreated{},
		SkillCheckResolved{}, MomentumUpdated{}, SkillXPAwarded{}, PlayerXPGained{},
		ItemXPGained{}, TravelExecuted{}, CombatAction{}, CombatEnded{},
		TextNotice{}, TimeProgressed{},
	} {
		if _, ok := decoders[ev.Kind()]; !ok {
			t.Errorf("no decoder for %s", ev.Kind())
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{StatChanged{Stat: "energy", Delta: -3}, "Energy -3.00"},
		{PhysiologyChanged{Need: "thirst", Delta: -1.5}, "Thirst -1.50"},
		{MoneyChanged{Delta: -1.9, Reason: "metro fare"}, "Money -1.90 (metro fare)"},
		{SkillXPAwarded{Skill: "street_smarts", Amount: 4}, "Street Smarts XP +4"},
		{TimeProgressed{Minutes: 30}, "30 minutes pass"},
		{CombatEnded{Outcome: OutcomeFled}, "Combat ended: fled"},
	}
	for _, tt := range tests {
		if got := Describe(tt.ev); got != tt.want {
			t.Errorf("Describe(%T) = %q, want %q", tt.ev, got, tt.want)
		}
	}

	got := Describe(SkillCheckResolved{Skill: "lockpicking", Result: skillcheck.PerformCheck(0, 0, 0, 50, 97)})
	if !strings.HasPrefix(got, "Lockpicking check: Critical Success") {
		t.Errorf("unexpected skill check description %q", got)
	}
}

func TestCountAndOfType(t *testing.T) {
	evs := sampleTurn()
	assert.Equal(t, 1, Count(evs, KindMoneyChanged))
	assert.Equal(t, 0, Count(evs, KindCombatEnded))

	stats := OfType[StatChanged](evs)
	require.Len(t, stats, 1)
	assert.Equal(t, state.StatEnergy, stats[0].Stat)
	assert.Len(t, Summaries(evs), len(evs))
}
