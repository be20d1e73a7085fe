package resolver

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"golang.org/x/text/cases"
)

// craftNamespace seeds deterministic ids for crafted items
var craftNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("turn-engine/crafting"))

// containsFold reports whether s contains substr under Unicode case folding
func containsFold(s, substr string) bool {
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(substr))
}

// reserveIngredients picks one inventory stack per ingredient. A stack that
// satisfied one slot cannot satisfy another. It returns the chosen stack
// indexes and the names of ingredients nothing matched.
func reserveIngredients(inv []state.InventoryItem, ings []action.Ingredient) (picked []int, missing []string) {
	reserved := make([]bool, len(inv))
	for _, ing := range ings {
		found := -1
		if strings.TrimSpace(ing.Name) != "" {
			for i, it := range inv {
				if reserved[i] || it.Quantity < ing.Needed() || it.Quantity <= 0 {
					continue
				}
				if containsFold(it.Name, ing.Name) {
					found = i
					break
				}
			}
		}
		if found < 0 {
			missing = append(missing, ing.Name)
			continue
		}
		reserved[found] = true
		picked = append(picked, found)
	}
	return picked, missing
}

func (r *Resolver) resolveCraft(ws *state.WorldState, req *action.CraftRequest) branchResult {
	inv := ws.Player.Inventory
	picked, missing := reserveIngredients(inv, req.Ingredients)
	if len(missing) > 0 {
		return notice(events.NoticeMissingIngredient,
			fmt.Sprintf("You are missing: %s.", strings.Join(missing, ", ")))
	}

	var evs []events.Event
	for n, i := range picked {
		evs = append(evs, events.ItemRemoved{
			ItemID:   inv[i].ID,
			Name:     inv[i].Name,
			Quantity: req.Ingredients[n].Needed(),
		})
	}

	item := req.Result.Clone()
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.ID == "" {
		seed := ws.GameID.String() + "/" + req.RecipeID + "/" + strconv.Itoa(ws.Turn)
		item.ID = uuid.NewSHA1(craftNamespace, []byte(seed)).String()
	}
	evs = append(evs, events.DynamicItemCreated{RecipeID: req.RecipeID, Item: item})

	for _, skill := range slices.Sorted(maps.Keys(req.SkillXP)) {
		if amt := req.SkillXP[skill]; amt > 0 {
			evs = append(evs, events.SkillXPAwarded{Skill: skill, Amount: amt})
		}
	}

	evs = append(evs, events.TextNotice{
		Code: events.NoticeCrafted,
		Text: fmt.Sprintf("You crafted %s.", item.Name),
	})
	return branchResult{events: evs}
}
