// Package resolver turns a player action into an ordered list of game events.
//
// Resolution is deterministic: it performs no I/O, never mutates the world
// state it is given and draws every random number from the injected Roller.
package resolver

import (
	"log/slog"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/jwebster45206/turn-engine/pkg/skillcheck"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

// Resolver derives the mechanical consequences of actions
type Resolver struct {
	roller skillcheck.Roller
	logger *slog.Logger
}

// New creates a resolver. A nil logger uses slog.Default().
func New(roller skillcheck.Roller, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if roller == nil {
		roller = skillcheck.NewFixedRoller()
	}
	return &Resolver{roller: roller, logger: logger}
}

// branchResult is what one payload branch contributes to the turn
type branchResult struct {
	events  []events.Event
	failed  bool // a user-facing notice ends the turn
	minutes int  // extra minutes spent, e.g. travelling
	energy  int  // extra energy spent, e.g. travelling
}

func notice(code, text string) branchResult {
	return branchResult{
		events: []events.Event{events.TextNotice{Code: code, Text: text}},
		failed: true,
	}
}

// Resolve returns the ordered events for act against ws under amb.
// The first event is always the journal entry for the action text.
func (r *Resolver) Resolve(ws *state.WorldState, act action.Action, amb state.Ambient) []events.Event {
	evs := []events.Event{events.JournalEntry{Text: act.Text}}
	if ws == nil {
		ws = &state.WorldState{}
	}

	if ws.InCombat() {
		evs = append(evs, r.resolveCombat(ws, act)...)
		r.logger.Debug("Resolved combat turn",
			"game_id", ws.GameID.String(),
			"opponent", ws.Encounter.Opponent.ID,
			"event_count", len(evs))
		return evs
	}

	var br branchResult
	switch {
	case act.Travel != nil:
		br = r.resolveTravel(ws, act.Travel)
	case act.Service != nil:
		br = r.resolveService(ws, act.Service)
	case act.ItemUse != nil:
		br = r.resolveItemUse(ws, act.ItemUse)
	case act.Craft != nil:
		br = r.resolveCraft(ws, act.Craft)
	}

	evs = append(evs, br.events...)
	if br.failed {
		r.logger.Debug("Action produced no mechanical change",
			"game_id", ws.GameID.String(),
			"kind", act.Kind,
			"event_count", len(evs))
		return evs
	}

	evs = append(evs, genericEffects(act, br.minutes, br.energy)...)

	if act.SkillCheck != nil {
		evs = append(evs, r.resolveSkillCheck(ws, act.SkillCheck, amb)...)
	}

	r.logger.Debug("Resolved action",
		"game_id", ws.GameID.String(),
		"kind", act.Kind,
		"event_count", len(evs))
	return evs
}
