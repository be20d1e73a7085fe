package main

import (
	"testing"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/jwebster45206/turn-engine/pkg/narrative"
	"github.com/jwebster45206/turn-engine/pkg/queue"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	ws := state.NewWorldState()
	req := queue.NewTurnRequest(ws, action.Action{Kind: action.KindObservation, Text: "look around"}, state.Ambient{}, 1)

	res := &queue.TurnResult{RequestID: req.RequestID, GameID: ws.GameID, State: ws}
	require.NoError(t, res.SetEvents([]events.Event{
		events.JournalEntry{Text: "look around"},
		events.TextNotice{Code: "dark", Text: "It is too dark to see much."},
	}))

	t.Run("without enrichment", func(t *testing.T) {
		out, err := render(req, res, 60)
		require.NoError(t, err)
		assert.Contains(t, out, "look around")
		assert.Contains(t, out, "too dark")
		assert.Contains(t, out, "none available")
	})

	t.Run("with enrichment and narration", func(t *testing.T) {
		withData := *res
		withData.Enrichment = &enrichment.CascadeResult{
			Results: map[string]enrichment.ModuleEnrichmentResult{
				"weather": {ModuleID: "weather", Data: map[string]string{"weather": "fog"}},
			},
			ExecutionChain: []string{"weather"},
		}
		withData.Narration = &narrative.Narration{Narrative: "Fog swallows the street.", SuggestedActions: []string{"wait"}}

		out, err := render(req, &withData, 60)
		require.NoError(t, err)
		assert.Contains(t, out, `weather: {"weather":"fog"}`)
		assert.Contains(t, out, "Fog swallows the street.")
		assert.Contains(t, out, "wait")
	})
}
