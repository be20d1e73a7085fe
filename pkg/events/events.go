// Package events defines the closed set of game events produced by action
// resolution. An ordered []Event is the only input a state reducer needs.
package events

import (
	"github.com/jwebster45206/turn-engine/pkg/skillcheck"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

// Kind identifies an event variant on the wire
type Kind string

const (
	KindJournalEntry       Kind = "journal.entry"
	KindStatChanged        Kind = "stat.changed"
	KindPhysiologyChanged  Kind = "physiology.changed"
	KindMoneyChanged       Kind = "money.changed"
	KindItemAdded          Kind = "item.added"
	KindItemRemoved        Kind = "item.removed"
	KindItemUsed           Kind = "item.used"
	KindDynamicItemCreated Kind = "item.created"
	KindSkillCheckResolved Kind = "skillcheck.resolved"
	KindMomentumUpdated    Kind = "momentum.updated"
	KindSkillXPAwarded     Kind = "xp.skill"
	KindPlayerXPGained     Kind = "xp.player"
	KindItemXPGained       Kind = "xp.item"
	KindTravelExecuted     Kind = "travel.executed"
	KindCombatAction       Kind = "combat.action"
	KindCombatEnded        Kind = "combat.ended"
	KindTextNotice         Kind = "notice"
	KindTimeProgressed     Kind = "time.progressed"
)

// Event is one immutable mechanical consequence of an action.
// The set of implementations is closed to this package.
type Event interface {
	Kind() Kind
	isEvent()
}

// Notice codes carried by TextNotice
const (
	NoticeInsufficientFunds  = "insufficient_funds"
	NoticeInsufficientEnergy = "insufficient_energy"
	NoticeUnknownLocation    = "unknown_location"
	NoticeUnknownService     = "unknown_service"
	NoticeItemNotFound       = "item_not_found"
	NoticeMissingIngredient  = "missing_ingredient"
	NoticeCrafted            = "crafted"
	NoticeAmbientModifier    = "ambient_modifier"
	NoticeUnknownTravelMode  = "unknown_travel_mode"
)

// PlayerActor names the player in CombatAction events
const PlayerActor = "player"

// Combat outcomes carried by CombatEnded
const (
	OutcomeVictory = "victory"
	OutcomeFled    = "fled"
	OutcomeDefeat  = "defeat"
)

// JournalEntry records the raw action text
type JournalEntry struct {
	Text string `json:"text"`
}

// StatChanged adjusts a player stat such as energy or health
type StatChanged struct {
	Stat   string  `json:"stat"`
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason,omitempty"`
}

// PhysiologyChanged adjusts a physiological need such as hunger or thirst
type PhysiologyChanged struct {
	Need   string  `json:"need"`
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason,omitempty"`
}

// MoneyChanged adjusts the player's funds
type MoneyChanged struct {
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason,omitempty"`
}

// ItemAdded puts an item stack into the inventory
type ItemAdded struct {
	Item state.InventoryItem `json:"item"`
}

// ItemRemoved takes Quantity units out of an inventory stack
type ItemRemoved struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ItemUsed records that an item was used
type ItemUsed struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
}

// DynamicItemCreated adds an item that did not exist before the action
type DynamicItemCreated struct {
	RecipeID string              `json:"recipe_id,omitempty"`
	Item     state.InventoryItem `json:"item"`
}

// SkillCheckResolved carries the outcome of a skill attempt
type SkillCheckResolved struct {
	Skill  string            `json:"skill"`
	Result skillcheck.Result `json:"result"`
}

// MomentumUpdated replaces the player's momentum
type MomentumUpdated struct {
	Momentum skillcheck.Momentum `json:"momentum"`
}

// SkillXPAwarded grants experience to a skill
type SkillXPAwarded struct {
	Skill  string `json:"skill"`
	Amount int    `json:"amount"`
}

// PlayerXPGained grants experience to the player
type PlayerXPGained struct {
	Amount int `json:"amount"`
}

// ItemXPGained grants experience to an inventory item
type ItemXPGained struct {
	ItemID string `json:"item_id"`
	Amount int    `json:"amount"`
}

// TravelExecuted moves the player between two places
type TravelExecuted struct {
	From       state.Place `json:"from"`
	To         state.Place `json:"to"`
	Mode       string      `json:"mode"`
	DistanceKm float64     `json:"distance_km"`
	Minutes    int         `json:"minutes"`
	Cost       float64     `json:"cost"`
	Energy     int         `json:"energy"`
}

// CombatAction is one swing, block or escape attempt in an encounter
type CombatAction struct {
	Actor    string `json:"actor"`
	Move     string `json:"move"`
	Target   string `json:"target,omitempty"`
	Roll     int    `json:"roll"`
	Hit      bool   `json:"hit"`
	Damage   int    `json:"damage,omitempty"`
	TargetHP int    `json:"target_hp"`
}

// CombatEnded closes the active encounter
type CombatEnded struct {
	OpponentID string `json:"opponent_id"`
	Outcome    string `json:"outcome"`
}

// TextNotice explains something to the player without changing state
type TextNotice struct {
	Code string `json:"code,omitempty"`
	Text string `json:"text"`
}

// TimeProgressed advances the world clock
type TimeProgressed struct {
	Minutes int `json:"minutes"`
}

func (JournalEntry) Kind() Kind       { return KindJournalEntry }
func (StatChanged) Kind() Kind        { return KindStatChanged }
func (PhysiologyChanged) Kind() Kind  { return KindPhysiologyChanged }
func (MoneyChanged) Kind() Kind       { return KindMoneyChanged }
func (ItemAdded) Kind() Kind          { return KindItemAdded }
func (ItemRemoved) Kind() Kind        { return KindItemRemoved }
func (ItemUsed) Kind() Kind           { return KindItemUsed }
func (DynamicItemCreated) Kind() Kind { return KindDynamicItemCreated }
func (SkillCheckResolved) Kind() Kind { return KindSkillCheckResolved }
func (MomentumUpdated) Kind() Kind    { return KindMomentumUpdated }
func (SkillXPAwarded) Kind() Kind     { return KindSkillXPAwarded }
func (PlayerXPGained) Kind() Kind     { return KindPlayerXPGained }
func (ItemXPGained) Kind() Kind       { return KindItemXPGained }
func (TravelExecuted) Kind() Kind     { return KindTravelExecuted }
func (CombatAction) Kind() Kind       { return KindCombatAction }
func (CombatEnded) Kind() Kind        { return KindCombatEnded }
func (TextNotice) Kind() Kind         { return KindTextNotice }
func (TimeProgressed) Kind() Kind     { return KindTimeProgressed }

func (JournalEntry) isEvent()       {}
func (StatChanged) isEvent()        {}
func (PhysiologyChanged) isEvent()  {}
func (MoneyChanged) isEvent()       {}
func (ItemAdded) isEvent()          {}
func (ItemRemoved) isEvent()        {}
func (ItemUsed) isEvent()           {}
func (DynamicItemCreated) isEvent() {}
func (SkillCheckResolved) isEvent() {}
func (MomentumUpdated) isEvent()    {}
func (SkillXPAwarded) isEvent()     {}
func (PlayerXPGained) isEvent()     {}
func (ItemXPGained) isEvent()       {}
func (TravelExecuted) isEvent()     {}
func (CombatAction) isEvent()       {}
func (CombatEnded) isEvent()        {}
func (TextNotice) isEvent()         {}
func (TimeProgressed) isEvent()     {}

// Count returns how many events in evs have the given kind
func Count(evs []Event, k Kind) int {
	n := 0
	for _, ev := range evs {
		if ev.Kind() == k {
			n++
		}
	}
	return n
}

// OfType returns every event in evs of type T, in order
func OfType[T Event](evs []Event) []T {
	var out []T
	for _, ev := range evs {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
