package actor

import "maps"

// Opponent is the creature or character the player is fighting in an
// active encounter.
type Opponent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	AC     int `json:"ac"`
	HP     int `json:"hp"`
	MaxHP  int `json:"max_hp"`
	Damage int `json:"damage"` // damage dealt on a hit

	Attributes map[string]int `json:"attributes,omitempty"`       // e.g. "strength": 14
	CombatMods map[string]int `json:"combat_modifiers,omitempty"` // e.g. "rusty knife": 2
	Loot       []string       `json:"loot,omitempty"`             // item names dropped on defeat
}

// TakeDamage reduces HP by n. HP cannot go below 0.
func (o *Opponent) TakeDamage(n int) {
	if n <= 0 {
		return
	}
	o.HP -= n
	if o.HP < 0 {
		o.HP = 0
	}
}

// IsDefeated returns true if HP is 0 or less
func (o *Opponent) IsDefeated() bool {
	return o.HP <= 0
}

// Clone returns a copy that shares no maps or slices with o
func (o Opponent) Clone() Opponent {
	c := o
	c.Attributes = maps.Clone(o.Attributes)
	c.CombatMods = maps.Clone(o.CombatMods)
	if o.Loot != nil {
		c.Loot = append([]string(nil), o.Loot...)
	}
	return c
}
