package resolver

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/jwebster45206/turn-engine/pkg/skillcheck"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

// DefaultBaseXP is used when a skill check declares no base XP
const DefaultBaseXP = 10

var weatherModifiers = map[string]int{
	state.WeatherClear: 0,
	state.WeatherRain:  -5,
	state.WeatherFog:   -5,
	state.WeatherHeat:  -5,
	state.WeatherSnow:  -10,
	state.WeatherStorm: -15,
}

var timeOfDayModifiers = map[string]int{
	state.TimeDusk:  -2,
	state.TimeNight: -5,
}

// AmbientModifier returns the situational modifier imposed by weather and
// time of day, plus the human-readable reasons for it
func AmbientModifier(amb state.Ambient) (int, []string) {
	var (
		mod     int
		reasons []string
	)
	if m := weatherModifiers[strings.ToLower(amb.Weather)]; m != 0 {
		mod += m
		reasons = append(reasons, fmt.Sprintf("%s (%+d)", strings.ToLower(amb.Weather), m))
	}
	if m := timeOfDayModifiers[strings.ToLower(amb.TimeOfDay)]; m != 0 {
		mod += m
		reasons = append(reasons, fmt.Sprintf("%s (%+d)", strings.ToLower(amb.TimeOfDay), m))
	}
	return mod, reasons
}

// SkillXP returns the skill XP earned for a result with the given base
func SkillXP(base int, res skillcheck.Result) int {
	switch {
	case res.Degree == skillcheck.DegreeCriticalSuccess:
		return 3 * base
	case res.Success:
		return 2 * base
	}
	return max(1, base/2)
}

func (r *Resolver) resolveSkillCheck(ws *state.WorldState, desc *action.SkillCheckDescriptor, amb state.Ambient) []events.Event {
	var evs []events.Event
	p := ws.Player

	ambientMod, reasons := AmbientModifier(amb)
	if ambientMod != 0 {
		evs = append(evs, events.TextNotice{
			Code: events.NoticeAmbientModifier,
			Text: fmt.Sprintf("Conditions affect your %s attempt: %s.", desc.Skill, strings.Join(reasons, ", ")),
		})
	}

	situational := ambientMod + desc.Modifier + p.Momentum.Bonus()
	statMod := 0
	if desc.Stat != "" {
		statMod = skillcheck.StatModifier(p.Attribute(desc.Stat))
	}

	res := skillcheck.PerformCheck(p.Skills[desc.Skill], statMod, situational, desc.Difficulty, r.roller.Roll())
	momentum := p.Momentum.Apply(res.Success)

	base := desc.BaseXP
	if base <= 0 {
		base = DefaultBaseXP
	}

	evs = append(evs,
		events.SkillCheckResolved{Skill: desc.Skill, Result: res},
		events.MomentumUpdated{Momentum: momentum},
		events.SkillXPAwarded{Skill: desc.Skill, Amount: SkillXP(base, res)},
	)
	if !res.Success {
		return evs
	}

	evs = append(evs, events.PlayerXPGained{Amount: base})
	for _, id := range desc.ContributingItems {
		if _, ok := p.Item(id); !ok {
			continue
		}
		if amt := base / 2; amt > 0 {
			evs = append(evs, events.ItemXPGained{ItemID: id, Amount: amt})
		}
	}
	return evs
}
