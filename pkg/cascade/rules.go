package cascade

import (
	"slices"
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/enrichment/modules"
	"golang.org/x/text/cases"
)

// Rule selects a root module when the action has one of Kinds or its text
// contains one of Keywords
type Rule struct {
	Module   string        `json:"module"`
	Kinds    []action.Kind `json:"kinds,omitempty"`
	Keywords []string      `json:"keywords,omitempty"`
}

// Matches reports whether the rule selects its module for act
func (r Rule) Matches(act action.Action) bool {
	if slices.Contains(r.Kinds, act.Kind) {
		return true
	}
	if len(r.Keywords) == 0 || act.Text == "" {
		return false
	}
	fold := cases.Fold()
	text := fold.String(act.Text)
	for _, kw := range r.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" && strings.Contains(text, fold.String(kw)) {
			return true
		}
	}
	return false
}

// DefaultRules maps actions onto the stock modules
func DefaultRules() []Rule {
	return []Rule{
		{
			Module: modules.ReferenceID,
			Keywords: []string{
				"look up", "lookup", "research", "reference",
				"what is", "who is", "search for", "read about",
			},
		},
		{
			Module: modules.SustenanceID,
			Kinds:  []action.Kind{action.KindFood, action.KindService},
		},
		{
			Module: modules.LocalContextID,
			Kinds:  []action.Kind{action.KindExploration, action.KindObservation, action.KindSocial},
			Keywords: []string{
				"investigate", "examine", "inspect", "explore",
				"look around", "search", "observe",
			},
		},
	}
}

// relevantModules applies rules to act and returns the sorted, de-duplicated roots
func relevantModules(rules []Rule, act action.Action) []string {
	var roots []string
	for _, r := range rules {
		if r.Module != "" && r.Matches(act) {
			roots = append(roots, r.Module)
		}
	}
	slices.Sort(roots)
	return slices.Compact(roots)
}
