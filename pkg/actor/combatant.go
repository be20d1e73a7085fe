package actor

import (
	"fmt"

	"github.com/jwebster45206/d20"
)

// DefaultPlayerAC is used when the player has no armor class of their own
const DefaultPlayerAC = 10

// CombatantSpec describes one side of a fight in d20 terms
type CombatantSpec struct {
	ID         string
	Name       string
	HP         int
	MaxHP      int
	AC         int
	Attributes map[string]int
	CombatMods map[string]int // summed into every attack roll
}

// Combatant is one side of a fight for the length of a single turn. Hit
// points and attack modifiers live on the underlying d20.Actor.
type Combatant struct {
	name  string
	actor *d20.Actor
}

// NewCombatant builds a d20.Actor from spec. HP above MaxHP raises the
// maximum; negative HP counts as down.
func NewCombatant(spec CombatantSpec) (*Combatant, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("combatant id cannot be empty")
	}
	hp := max(spec.HP, 0)
	maxHP := max(spec.MaxHP, hp, 1)
	attrs := spec.Attributes
	if attrs == nil {
		attrs = map[string]int{}
	}

	a, err := d20.NewActor(spec.ID).
		WithHP(maxHP).
		WithAC(spec.AC).
		WithAttributes(attrs).
		WithCombatModifiers(spec.CombatMods).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build combatant %s: %w", spec.ID, err)
	}
	if err := a.SetHP(hp); err != nil {
		return nil, fmt.Errorf("failed to set HP for %s: %w", spec.ID, err)
	}

	name := spec.Name
	if name == "" {
		name = spec.ID
	}
	return &Combatant{name: name, actor: a}, nil
}

func (c *Combatant) Name() string { return c.name }
func (c *Combatant) AC() int      { return c.actor.AC() }
func (c *Combatant) HP() int      { return c.actor.HP() }
func (c *Combatant) IsDown() bool { return c.actor.IsKnockedOut() }

// Attribute returns an ability score, 10 when the actor has none
func (c *Combatant) Attribute(key string) int {
	if v, ok := c.actor.Attribute(key); ok {
		return v
	}
	return 10
}

// AttackBonus sums the actor's combat modifiers
func (c *Combatant) AttackBonus() int {
	total := 0
	for _, m := range c.actor.GetCombatModifiers() {
		total += m.Value
	}
	return total
}

// TakeDamage removes up to n hit points and returns how many were lost
func (c *Combatant) TakeDamage(n int) int {
	if n <= 0 {
		return 0
	}
	before := c.actor.HP()
	c.actor.SubHP(n)
	return before - c.actor.HP()
}

// Spec returns the d20 description of the opponent
func (o *Opponent) Spec() CombatantSpec {
	return CombatantSpec{
		ID:         o.ID,
		Name:       o.Name,
		HP:         o.HP,
		MaxHP:      o.MaxHP,
		AC:         o.AC,
		Attributes: o.Attributes,
		CombatMods: o.CombatMods,
	}
}
