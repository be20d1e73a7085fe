// Package reducer folds resolved game events into a world state snapshot.
package reducer

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

// Reducer applies event streams to world state
type Reducer struct {
	logger *slog.Logger
}

// New creates a reducer. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Reducer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reducer{logger: logger}
}

// Apply folds evs, in order, into a copy of ws and returns the copy.
// ws itself is never modified.
func (r *Reducer) Apply(ws *state.WorldState, evs []events.Event) (*state.WorldState, error) {
	if ws == nil {
		return nil, fmt.Errorf("cannot apply events to nil world state")
	}
	next := ws.Clone()
	for i, ev := range evs {
		if err := r.apply(next, ev); err != nil {
			return nil, fmt.Errorf("failed to apply event %d: %w", i, err)
		}
	}
	return next, nil
}

func (r *Reducer) apply(ws *state.WorldState, ev events.Event) error {
	switch e := ev.(type) {
	case events.JournalEntry:
		if e.Text != "" {
			ws.Journal = append(ws.Journal, e.Text)
		}
	case events.StatChanged:
		ws.Player.Stats = adjustGauge(ws.Player.Stats, e.Stat, e.Delta)
	case events.PhysiologyChanged:
		ws.Player.Physiology = adjustGauge(ws.Player.Physiology, e.Need, e.Delta)
	case events.MoneyChanged:
		ws.Player.Money = math.Round((ws.Player.Money+e.Delta)*100) / 100
	case events.ItemAdded:
		r.handleAddItem(ws, e.Item)
	case events.DynamicItemCreated:
		r.handleAddItem(ws, e.Item)
	case events.ItemRemoved:
		r.handleRemoveItem(ws, e)
	case events.ItemUsed:
		// the accompanying ItemRemoved carries any consumption
	case events.SkillCheckResolved:
		// outcome is carried by the momentum and XP events that follow
	case events.MomentumUpdated:
		ws.Player.Momentum = e.Momentum
	case events.SkillXPAwarded:
		if ws.Player.SkillXP == nil {
			ws.Player.SkillXP = make(map[string]int)
		}
		ws.Player.SkillXP[e.Skill] += e.Amount
	case events.PlayerXPGained:
		ws.Player.XP += e.Amount
	case events.ItemXPGained:
		r.handleItemXP(ws, e)
	case events.TravelExecuted:
		ws.Player.Position = e.To.Position
		ws.Player.LocationID = e.To.ID
	case events.CombatAction:
		r.handleCombatAction(ws, e)
	case events.CombatEnded:
		if ws.Encounter != nil {
			r.logger.Info("Encounter ended",
				"opponent", ws.Encounter.Opponent.ID,
				"outcome", e.Outcome,
				"rounds", ws.Encounter.Round)
		}
		ws.Encounter = nil
	case events.TextNotice:
		// informational only
	case events.TimeProgressed:
		ws.ClockMinutes += max(0, e.Minutes)
	default:
		return fmt.Errorf("unsupported event %T", ev)
	}
	return nil
}

// adjustGauge adds delta to m[key], clamped to 0..MaxGauge
func adjustGauge(m map[string]float64, key string, delta float64) map[string]float64 {
	if m == nil {
		m = make(map[string]float64)
	}
	v := m[key] + delta
	m[key] = math.Max(0, math.Min(state.MaxGauge, v))
	return m
}

// handleAddItem stacks onto an existing item with the same id
func (r *Reducer) handleAddItem(ws *state.WorldState, item state.InventoryItem) {
	qty := max(1, item.Quantity)
	for i := range ws.Player.Inventory {
		if ws.Player.Inventory[i].ID == item.ID {
			ws.Player.Inventory[i].Quantity += qty
			return
		}
	}
	item = item.Clone()
	item.Quantity = qty
	ws.Player.Inventory = append(ws.Player.Inventory, item)
}

// handleRemoveItem takes units from a stack, dropping it when empty
func (r *Reducer) handleRemoveItem(ws *state.WorldState, e events.ItemRemoved) {
	for i := range ws.Player.Inventory {
		if ws.Player.Inventory[i].ID != e.ItemID {
			continue
		}
		ws.Player.Inventory[i].Quantity -= max(1, e.Quantity)
		if ws.Player.Inventory[i].Quantity <= 0 {
			ws.Player.Inventory = append(ws.Player.Inventory[:i], ws.Player.Inventory[i+1:]...)
		}
		return
	}
	r.logger.Warn("Item not found for removal",
		"game_id", ws.GameID.String(),
		"item_id", e.ItemID)
}

func (r *Reducer) handleItemXP(ws *state.WorldState, e events.ItemXPGained) {
	for i := range ws.Player.Inventory {
		if ws.Player.Inventory[i].ID == e.ItemID {
			ws.Player.Inventory[i].XP += e.Amount
			return
		}
	}
}

// handleCombatAction applies the player's hits to the opponent. Damage to
// the player arrives as a separate StatChanged.
func (r *Reducer) handleCombatAction(ws *state.WorldState, e events.CombatAction) {
	if ws.Encounter == nil || e.Actor != events.PlayerActor {
		return
	}
	ws.Encounter.Round++
	if !e.Hit {
		return
	}
	opp := &ws.Encounter.Opponent
	opp.TakeDamage(e.Damage)
	if opp.IsDefeated() {
		r.logger.Debug("Opponent defeated",
			"game_id", ws.GameID.String(),
			"opponent_id", opp.ID,
			"round", ws.Encounter.Round)
	}
}
