package resolver

import (
	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

// Physiological decay per minute and per point of energy spent
const (
	hungerPerMinute = 0.1
	hungerPerEnergy = 0.5
	thirstPerMinute = 0.15
	thirstPerEnergy = 0.75
)

// Decay returns how much hunger and thirst drop for the given effort
func Decay(minutes, energy int) (hunger, thirst float64) {
	hunger = round2(hungerPerMinute*float64(minutes) + hungerPerEnergy*float64(energy))
	thirst = round2(thirstPerMinute*float64(minutes) + thirstPerEnergy*float64(energy))
	return hunger, thirst
}

// genericEffects are applied after every successful branch
func genericEffects(act action.Action, extraMinutes, extraEnergy int) []events.Event {
	minutes := max(0, act.TimeCostMinutes) + extraMinutes
	energy := max(0, act.EnergyCost) + extraEnergy

	evs := []events.Event{events.TimeProgressed{Minutes: minutes}}
	if act.EnergyCost > 0 {
		evs = append(evs, events.StatChanged{
			Stat:   state.StatEnergy,
			Delta:  -float64(act.EnergyCost),
			Reason: "exertion",
		})
	}

	hunger, thirst := Decay(minutes, energy)
	evs = append(evs,
		events.PhysiologyChanged{Need: state.NeedHunger, Delta: negate(hunger), Reason: "time"},
		events.PhysiologyChanged{Need: state.NeedThirst, Delta: negate(thirst), Reason: "time"},
	)
	return evs
}

// negate avoids emitting -0
func negate(v float64) float64 {
	if v == 0 {
		return 0
	}
	return -v
}
