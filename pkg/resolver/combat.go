package resolver

import (
	"math"
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/jwebster45206/turn-engine/pkg/skillcheck"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

const (
	// attack and armor values are on the d20 scale; rolls are percentile
	percentilePerPoint = 5
	armorScale         = 4

	meleeSkill    = "melee"
	fleeTarget    = 50
	baseDamage    = 4
	defaultOppDmg = 2
)

// buildCombatants returns d20-backed combatants for the player and the
// opponent. A player without a health stat is at full health.
func (r *Resolver) buildCombatants(ws *state.WorldState) (player, opp *actor.Combatant, err error) {
	p := ws.Player
	health, ok := p.Stats[state.StatHealth]
	if !ok {
		health = state.MaxGauge
	}
	playerAC := p.ArmorClass
	if playerAC <= 0 {
		playerAC = actor.DefaultPlayerAC
	}
	strength := p.Attribute("strength")

	player, err = actor.NewCombatant(actor.CombatantSpec{
		ID:         events.PlayerActor,
		HP:         int(math.Round(health)),
		MaxHP:      int(state.MaxGauge),
		AC:         playerAC,
		Attributes: map[string]int{"strength": strength, "dexterity": p.Attribute("dexterity")},
		CombatMods: map[string]int{"strength": skillcheck.StatModifier(strength)},
	})
	if err != nil {
		return nil, nil, err
	}

	spec := ws.Encounter.Opponent.Spec()
	if spec.ID == "" {
		spec.ID = "opponent"
	}
	opp, err = actor.NewCombatant(spec)
	if err != nil {
		return nil, nil, err
	}
	return player, opp, nil
}

// hits applies the raw-roll overrides used by skill checks to an attack
func hits(roll, total, target int) bool {
	switch {
	case roll >= skillcheck.CriticalSuccessRoll:
		return true
	case roll <= skillcheck.CriticalFailureRoll:
		return false
	}
	return total >= target
}

func (r *Resolver) resolveCombat(ws *state.WorldState, act action.Action) []events.Event {
	opponent := ws.Encounter.Opponent
	// an opponent that is already down ends the fight before anyone acts
	if opponent.IsDefeated() {
		return victory(opponent)
	}

	move := action.MoveWait
	if act.Combat != nil && act.Combat.Move != "" {
		move = strings.ToLower(strings.TrimSpace(act.Combat.Move))
	}
	switch move {
	case action.MoveAttack, action.MoveDefend, action.MoveFlee, action.MoveWait:
	default:
		move = action.MoveWait
	}

	player, opp, err := r.buildCombatants(ws)
	if err != nil {
		r.logger.Error("Failed to build combatants", "opponent", opponent.ID, "error", err)
		return []events.Event{events.TextNotice{Text: "The fight is too confused to follow."}}
	}
	if player.IsDown() {
		return []events.Event{events.CombatEnded{OpponentID: opponent.ID, Outcome: events.OutcomeDefeat}}
	}

	var evs []events.Event
	switch move {
	case action.MoveAttack:
		roll := r.roller.Roll()
		total := roll + percentilePerPoint*player.AttackBonus() + ws.Player.Skills[meleeSkill]
		hit := hits(roll, total, opp.AC()*armorScale)
		dmg := 0
		if hit {
			dmg = baseDamage + max(0, skillcheck.StatModifier(player.Attribute("strength")))
			if roll >= skillcheck.CriticalSuccessRoll {
				dmg *= 2
			}
			opp.TakeDamage(dmg)
		}
		evs = append(evs, events.CombatAction{
			Actor:    player.Name(),
			Move:     move,
			Target:   opp.Name(),
			Roll:     roll,
			Hit:      hit,
			Damage:   dmg,
			TargetHP: opp.HP(),
		})
		if opp.IsDown() {
			return append(evs, victory(opponent)...)
		}

	case action.MoveFlee:
		roll := r.roller.Roll()
		total := roll + percentilePerPoint*skillcheck.StatModifier(player.Attribute("dexterity"))
		escaped := hits(roll, total, fleeTarget)
		evs = append(evs, events.CombatAction{
			Actor:    player.Name(),
			Move:     move,
			Target:   opp.Name(),
			Roll:     roll,
			Hit:      escaped,
			TargetHP: opp.HP(),
		})
		if escaped {
			return append(evs, events.CombatEnded{OpponentID: opponent.ID, Outcome: events.OutcomeFled})
		}

	default:
		evs = append(evs, events.CombatAction{
			Actor:    player.Name(),
			Move:     move,
			Target:   opp.Name(),
			TargetHP: opp.HP(),
		})
	}

	// Opponent's reply
	roll := r.roller.Roll()
	total := roll + percentilePerPoint*opp.AttackBonus()
	hit := hits(roll, total, player.AC()*armorScale)
	dmg := 0
	if hit {
		dmg = opponent.Damage
		if dmg <= 0 {
			dmg = defaultOppDmg
		}
		if move == action.MoveDefend {
			dmg /= 2
		}
	}
	lost := player.TakeDamage(dmg)
	evs = append(evs, events.CombatAction{
		Actor:    opp.Name(),
		Move:     action.MoveAttack,
		Target:   player.Name(),
		Roll:     roll,
		Hit:      hit,
		Damage:   dmg,
		TargetHP: player.HP(),
	})
	if lost > 0 {
		evs = append(evs, events.StatChanged{Stat: state.StatHealth, Delta: -float64(lost), Reason: opp.Name()})
	}
	if player.IsDown() {
		evs = append(evs, events.CombatEnded{OpponentID: opponent.ID, Outcome: events.OutcomeDefeat})
	}
	return evs
}

// victory drops the opponent's loot and closes the encounter
func victory(o actor.Opponent) []events.Event {
	evs := make([]events.Event, 0, len(o.Loot)+1)
	for _, name := range o.Loot {
		evs = append(evs, events.ItemAdded{Item: state.InventoryItem{
			ID:       lootItemID(name),
			Name:     name,
			Quantity: 1,
		}})
	}
	return append(evs, events.CombatEnded{OpponentID: o.ID, Outcome: events.OutcomeVictory})
}

// lootItemID turns "Rusty Knife" into "rusty_knife"
func lootItemID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}
