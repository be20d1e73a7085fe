// Package narrative turns a resolved turn into the payload a narrator renders.
package narrative

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

// PlayerSummary is the player as the narrator sees them after the turn
type PlayerSummary struct {
	Name       string             `json:"name,omitempty"`
	Money      float64            `json:"money"`
	Stats      map[string]float64 `json:"stats,omitempty"`
	Physiology map[string]float64 `json:"physiology,omitempty"`
	Inventory  []string           `json:"inventory,omitempty"`
	XP         int                `json:"xp"`
}

// Context is the flattened turn handed to the narrator
type Context struct {
	Turn                int            `json:"turn"`
	TimeOfDay           string         `json:"time_of_day"`
	Action              string         `json:"action"`
	ActionKind          action.Kind    `json:"action_kind,omitempty"`
	Location            string         `json:"location"`
	Player              PlayerSummary  `json:"player"`
	Opponent            string         `json:"opponent,omitempty"`
	Events              []string       `json:"events"`
	Notices             []string       `json:"notices,omitempty"`
	Enrichment          map[string]any `json:"enrichment,omitempty"`
	ExecutionChain      []string       `json:"execution_chain,omitempty"`
	EnrichmentAvailable bool           `json:"enrichment_available"`
}

// Prepare flattens the post-turn state, the turn's events and the optional
// cascade into a narrator context. A nil cascade means no enrichment.
func Prepare(ws *state.WorldState, act action.Action, evs []events.Event, cascade *enrichment.CascadeResult) Context {
	c := Context{
		Action:     act.Text,
		ActionKind: act.Kind,
		Location:   "unknown",
		Events:     events.Summaries(evs),
	}
	for _, n := range events.OfType[events.TextNotice](evs) {
		c.Notices = append(c.Notices, n.Text)
	}

	if ws != nil {
		c.Turn = ws.Turn
		c.TimeOfDay = state.TimeOfDayAt(ws.ClockMinutes)
		if loc, ok := ws.CurrentLocation(); ok {
			c.Location = loc.Name
		} else if ws.Player.LocationID != "" {
			c.Location = ws.Player.LocationID
		}
		c.Player = summarise(ws.Player)
		if ws.Encounter != nil {
			o := ws.Encounter.Opponent
			c.Opponent = fmt.Sprintf("%s (%d/%d HP)", o.Name, o.HP, o.MaxHP)
		}
	}

	if cascade != nil {
		c.EnrichmentAvailable = true
		c.Enrichment = make(map[string]any, len(cascade.Results))
		for id, r := range cascade.Results {
			c.Enrichment[id] = r.Data
		}
		c.ExecutionChain = slices.Clone(cascade.ExecutionChain)
	}
	return c
}

func summarise(p state.Player) PlayerSummary {
	s := PlayerSummary{
		Name:       p.Name,
		Money:      p.Money,
		Stats:      maps.Clone(p.Stats),
		Physiology: maps.Clone(p.Physiology),
		XP:         p.XP,
	}
	for _, it := range p.Inventory {
		if it.Quantity > 1 {
			s.Inventory = append(s.Inventory, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
			continue
		}
		s.Inventory = append(s.Inventory, it.Name)
	}
	return s
}
