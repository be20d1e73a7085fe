package state

import (
	"maps"

	"github.com/google/uuid"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/skillcheck"
)

// Well-known stat and physiology keys
const (
	StatEnergy = "energy"
	StatHealth = "health"

	NeedHunger = "hunger"
	NeedThirst = "thirst"

	// MaxGauge is the upper bound for stats and physiological needs
	MaxGauge = 100.0
)

// Position is a point on the globe in decimal degrees
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Place is a named position used as a travel endpoint
type Place struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
}

// Effects are stat and physiology deltas applied when a consumable is used
type Effects struct {
	Stats      map[string]float64 `json:"stats,omitempty"`
	Physiology map[string]float64 `json:"physiology,omitempty"`
}

// IsEmpty reports whether the effects change nothing
func (e Effects) IsEmpty() bool {
	return len(e.Stats) == 0 && len(e.Physiology) == 0
}

func (e Effects) clone() Effects {
	return Effects{Stats: maps.Clone(e.Stats), Physiology: maps.Clone(e.Physiology)}
}

// InventoryItem is one stack of items the player carries
type InventoryItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Consumable bool    `json:"consumable,omitempty"`
	Effects    Effects `json:"effects,omitzero"`
	XP         int     `json:"xp,omitempty"`
}

// Service is something a location sells
type Service struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Price      float64        `json:"price"`
	GrantsItem *InventoryItem `json:"grants_item,omitempty"`
}

// Location is a point of interest the player can visit and use
type Location struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Kind     string    `json:"kind,omitempty"` // e.g. "cafe", "market", "library"
	Position Position  `json:"position"`
	Services []Service `json:"services,omitempty"`
}

// Service returns the service with the given id
func (l Location) Service(id string) (Service, bool) {
	for _, s := range l.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// Player is the actor whose choices drive the simulation
type Player struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Money      float64             `json:"money"`
	Stats      map[string]float64  `json:"stats,omitempty"`      // energy, health, ...
	Physiology map[string]float64  `json:"physiology,omitempty"` // hunger, thirst: 100 is sated
	Attributes map[string]int      `json:"attributes,omitempty"` // strength, dexterity, ...
	Skills     map[string]int      `json:"skills,omitempty"`
	SkillXP    map[string]int      `json:"skill_xp,omitempty"`
	ArmorClass int                 `json:"armor_class,omitempty"`
	Momentum   skillcheck.Momentum `json:"momentum"`
	XP         int                 `json:"xp"`
	Position   Position            `json:"position"`
	LocationID string              `json:"location_id,omitempty"`
	Inventory  []InventoryItem     `json:"inventory,omitempty"`
}

// Stat returns the value of a stat, 0 when unset
func (p Player) Stat(key string) float64 {
	return p.Stats[key]
}

// Attribute returns an attribute score, 10 (no modifier) when unset
func (p Player) Attribute(key string) int {
	if v, ok := p.Attributes[key]; ok {
		return v
	}
	return 10
}

// Item returns the inventory stack with the given id
func (p Player) Item(id string) (InventoryItem, bool) {
	for _, it := range p.Inventory {
		if it.ID == id {
			return it, true
		}
	}
	return InventoryItem{}, false
}

// Encounter is an active fight
type Encounter struct {
	Opponent actor.Opponent `json:"opponent"`
	Round    int            `json:"round"`
}

// WorldState is a snapshot of everything the resolver may read
type WorldState struct {
	GameID       uuid.UUID           `json:"game_id"`
	Turn         int                 `json:"turn"`
	ClockMinutes int                 `json:"clock_minutes"` // minutes since the start of the game
	Player       Player              `json:"player"`
	Locations    map[string]Location `json:"locations,omitempty"`
	Encounter    *Encounter          `json:"encounter,omitempty"`
	Journal      []string            `json:"journal,omitempty"`
}

// NewWorldState returns an empty world with a fresh game id
func NewWorldState() *WorldState {
	return &WorldState{
		GameID: uuid.New(),
		Player: Player{
			Stats:      map[string]float64{StatEnergy: MaxGauge, StatHealth: MaxGauge},
			Physiology: map[string]float64{NeedHunger: MaxGauge, NeedThirst: MaxGauge},
		},
		Locations: make(map[string]Location),
	}
}

// CurrentLocation returns the location the player is at, if known
func (ws *WorldState) CurrentLocation() (Location, bool) {
	if ws == nil || ws.Player.LocationID == "" {
		return Location{}, false
	}
	loc, ok := ws.Locations[ws.Player.LocationID]
	return loc, ok
}

// InCombat reports whether an encounter is active
func (ws *WorldState) InCombat() bool {
	return ws != nil && ws.Encounter != nil
}

// Clone returns a deep copy of the world state
func (ws *WorldState) Clone() *WorldState {
	if ws == nil {
		return nil
	}
	c := *ws
	c.Player = ws.Player.clone()
	if ws.Locations != nil {
		c.Locations = make(map[string]Location, len(ws.Locations))
		for k, loc := range ws.Locations {
			c.Locations[k] = loc.clone()
		}
	}
	if ws.Encounter != nil {
		enc := *ws.Encounter
		enc.Opponent = ws.Encounter.Opponent.Clone()
		c.Encounter = &enc
	}
	c.Journal = append([]string(nil), ws.Journal...)
	return &c
}

func (p Player) clone() Player {
	c := p
	c.Stats = maps.Clone(p.Stats)
	c.Physiology = maps.Clone(p.Physiology)
	c.Attributes = maps.Clone(p.Attributes)
	c.Skills = maps.Clone(p.Skills)
	c.SkillXP = maps.Clone(p.SkillXP)
	if p.Inventory != nil {
		c.Inventory = make([]InventoryItem, len(p.Inventory))
		for i, it := range p.Inventory {
			c.Inventory[i] = it.Clone()
		}
	}
	return c
}

// Clone returns a deep copy of the item
func (it InventoryItem) Clone() InventoryItem {
	c := it
	c.Effects = it.Effects.clone()
	return c
}

func (l Location) clone() Location {
	c := l
	if l.Services != nil {
		c.Services = make([]Service, len(l.Services))
		for i, s := range l.Services {
			if s.GrantsItem != nil {
				g := s.GrantsItem.Clone()
				s.GrantsItem = &g
			}
			c.Services[i] = s
		}
	}
	return c
}
