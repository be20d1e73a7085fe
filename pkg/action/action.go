// Package action describes what the player chose to do this turn.
package action

import "github.com/jwebster45206/turn-engine/pkg/state"

// Kind classifies an action for enrichment and bookkeeping
type Kind string

const (
	KindExploration Kind = "exploration"
	KindObservation Kind = "observation"
	KindSocial      Kind = "social"
	KindTravel      Kind = "travel"
	KindService     Kind = "service"
	KindFood        Kind = "food"
	KindItem        Kind = "item"
	KindCrafting    Kind = "crafting"
	KindCombat      Kind = "combat"
	KindRest        Kind = "rest"
	KindOther       Kind = "other"
)

// Travel modes
const (
	ModeWalk  = "walk"
	ModeMetro = "metro"
	ModeTaxi  = "taxi"
)

// Combat moves
const (
	MoveAttack = "attack"
	MoveDefend = "defend"
	MoveFlee   = "flee"
	MoveWait   = "wait"
)

// Action is a structured player choice.
// At most one of Travel, Service, ItemUse and Craft is honoured, in that order.
type Action struct {
	Kind            Kind   `json:"kind"`
	Text            string `json:"text"`
	TimeCostMinutes int    `json:"time_cost_minutes,omitempty"`
	EnergyCost      int    `json:"energy_cost,omitempty"`

	Travel     *TravelRequest        `json:"travel,omitempty"`
	Service    *ServiceRequest       `json:"service,omitempty"`
	ItemUse    *ItemUseRequest       `json:"item_use,omitempty"`
	Craft      *CraftRequest         `json:"craft,omitempty"`
	Combat     *CombatRequest        `json:"combat,omitempty"`
	SkillCheck *SkillCheckDescriptor `json:"skill_check,omitempty"`
}

// TravelRequest moves the player between two places
type TravelRequest struct {
	Origin      state.Place `json:"origin"`
	Destination state.Place `json:"destination"`
	Mode        string      `json:"mode"`
}

// ServiceRequest buys a service at a point of interest
type ServiceRequest struct {
	LocationID string `json:"location_id"`
	ServiceID  string `json:"service_id"`
}

// ItemUseRequest uses an inventory item
type ItemUseRequest struct {
	ItemID string `json:"item_id"`
}

// Ingredient is one slot of a recipe
type Ingredient struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity,omitempty"` // defaults to 1
}

// Needed returns the quantity the slot consumes
func (i Ingredient) Needed() int {
	if i.Quantity <= 0 {
		return 1
	}
	return i.Quantity
}

// CraftRequest combines ingredients into a new item
type CraftRequest struct {
	RecipeID    string              `json:"recipe_id"`
	Ingredients []Ingredient        `json:"ingredients"`
	Result      state.InventoryItem `json:"result"`
	SkillXP     map[string]int      `json:"skill_xp,omitempty"`
}

// CombatRequest is the player's move in an active encounter
type CombatRequest struct {
	Move string `json:"move"`
}

// SkillCheckDescriptor asks the resolver to roll against a skill
type SkillCheckDescriptor struct {
	Skill             string   `json:"skill"`
	Stat              string   `json:"stat,omitempty"` // attribute feeding the stat modifier
	Difficulty        int      `json:"difficulty"`
	Modifier          int      `json:"modifier,omitempty"`
	BaseXP            int      `json:"base_xp,omitempty"`
	ContributingItems []string `json:"contributing_items,omitempty"` // inventory item ids
}

// HasPayload reports whether the action carries a branch payload
func (a Action) HasPayload() bool {
	return a.Travel != nil || a.Service != nil || a.ItemUse != nil || a.Craft != nil
}

// Payload returns the branch payload the resolver will honour, or nil
func (a Action) Payload() any {
	switch {
	case a.Travel != nil:
		return a.Travel
	case a.Service != nil:
		return a.Service
	case a.ItemUse != nil:
		return a.ItemUse
	case a.Craft != nil:
		return a.Craft
	case a.Combat != nil:
		return a.Combat
	}
	return nil
}
