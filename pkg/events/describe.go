package events

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// A Caser is stateful, so each call gets its own.
func title(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

func signed(v float64) string {
	return fmt.Sprintf("%+.2f", v)
}

// Describe renders an event as a short human-readable line for narrators and logs
func Describe(ev Event) string {
	switch e := ev.(type) {
	case JournalEntry:
		return fmt.Sprintf("Action: %s", e.Text)
	case StatChanged:
		return fmt.Sprintf("%s %s", title(e.Stat), signed(e.Delta))
	case PhysiologyChanged:
		return fmt.Sprintf("%s %s", title(e.Need), signed(e.Delta))
	case MoneyChanged:
		if e.Reason != "" {
			return fmt.Sprintf("Money %s (%s)", signed(e.Delta), e.Reason)
		}
		return fmt.Sprintf("Money %s", signed(e.Delta))
	case ItemAdded:
		return fmt.Sprintf("Gained %d x %s", e.Item.Quantity, e.Item.Name)
	case ItemRemoved:
		return fmt.Sprintf("Lost %d x %s", e.Quantity, e.Name)
	case ItemUsed:
		return fmt.Sprintf("Used %s", e.Name)
	case DynamicItemCreated:
		return fmt.Sprintf("Created %s", e.Item.Name)
	case SkillCheckResolved:
		return fmt.Sprintf("%s check: %s (rolled %d, total %d vs %d)",
			title(e.Skill), title(string(e.Result.Degree)), e.Result.Roll, e.Result.TotalAchieved, e.Result.DifficultyTarget)
	case MomentumUpdated:
		return fmt.Sprintf("Momentum +%d, desperation +%d", e.Momentum.MomentumBonus, e.Momentum.DesperationBonus)
	case SkillXPAwarded:
		return fmt.Sprintf("%s XP +%d", title(e.Skill), e.Amount)
	case PlayerXPGained:
		return fmt.Sprintf("XP +%d", e.Amount)
	case ItemXPGained:
		return fmt.Sprintf("Item %s XP +%d", e.ItemID, e.Amount)
	case TravelExecuted:
		return fmt.Sprintf("Travelled by %s from %s to %s (%.1f km, %d min)", e.Mode, e.From.Name, e.To.Name, e.DistanceKm, e.Minutes)
	case CombatAction:
		if e.Hit {
			return fmt.Sprintf("%s %s %s for %d damage", e.Actor, e.Move, e.Target, e.Damage)
		}
		return fmt.Sprintf("%s %s %s and misses", e.Actor, e.Move, e.Target)
	case CombatEnded:
		return fmt.Sprintf("Combat ended: %s", e.Outcome)
	case TextNotice:
		return e.Text
	case TimeProgressed:
		return fmt.Sprintf("%d minutes pass", e.Minutes)
	default:
		return fmt.Sprintf("unknown event %T", ev)
	}
}

// Summaries describes every event in order
func Summaries(evs []Event) []string {
	out := make([]string, 0, len(evs))
	for _, ev := range evs {
		out = append(out, Describe(ev))
	}
	return out
}
