package actor

import "testing"

func TestNewCombatant(t *testing.T) {
	t.Run("builds actor with attributes", func(t *testing.T) {
		c, err := NewCombatant(CombatantSpec{
			ID:         "player",
			HP:         60,
			MaxHP:      100,
			AC:         12,
			Attributes: map[string]int{"strength": 16},
		})
		if err != nil {
			t.Fatalf("NewCombatant() error = %v", err)
		}
		if c.AC() != 12 {
			t.Errorf("AC() = %d, want 12", c.AC())
		}
		if c.HP() != 60 {
			t.Errorf("HP() = %d, want 60", c.HP())
		}
		if c.Name() != "player" {
			t.Errorf("Name() = %q, want the id", c.Name())
		}
		if got := c.Attribute("strength"); got != 16 {
			t.Errorf("strength = %d, want 16", got)
		}
		if got := c.Attribute("dexterity"); got != 10 {
			t.Errorf("missing dexterity should fall back to 10, got %d", got)
		}
	})

	t.Run("zero HP is down", func(t *testing.T) {
		c, err := NewCombatant(CombatantSpec{ID: "rat", HP: 0, MaxHP: 3})
		if err != nil {
			t.Fatalf("NewCombatant() error = %v", err)
		}
		if !c.IsDown() {
			t.Error("expected a combatant at 0 HP to be down")
		}
	})

	t.Run("negative HP clamps to zero", func(t *testing.T) {
		c, err := NewCombatant(CombatantSpec{ID: "rat", HP: -4, MaxHP: 3})
		if err != nil {
			t.Fatalf("NewCombatant() error = %v", err)
		}
		if c.HP() != 0 {
			t.Errorf("HP() = %d, want 0", c.HP())
		}
	})

	t.Run("HP above max raises max", func(t *testing.T) {
		c, err := NewCombatant(CombatantSpec{ID: "ogre", HP: 40, MaxHP: 30})
		if err != nil {
			t.Fatalf("NewCombatant() error = %v", err)
		}
		if c.HP() != 40 {
			t.Errorf("HP() = %d, want 40", c.HP())
		}
	})

	t.Run("rejects empty id", func(t *testing.T) {
		if _, err := NewCombatant(CombatantSpec{MaxHP: 5}); err == nil {
			t.Error("expected error for empty id")
		}
	})
}

func TestCombatant_AttackBonus(t *testing.T) {
	c, err := NewCombatant(CombatantSpec{
		ID:         "thug_1",
		HP:         9,
		CombatMods: map[string]int{"knife": 2, "frenzy": 1, "wounded": -1},
	})
	if err != nil {
		t.Fatalf("NewCombatant() error = %v", err)
	}
	if got := c.AttackBonus(); got != 2 {
		t.Errorf("AttackBonus() = %d, want 2", got)
	}

	none, _ := NewCombatant(CombatantSpec{ID: "rat", HP: 3})
	if got := none.AttackBonus(); got != 0 {
		t.Errorf("AttackBonus() without modifiers = %d, want 0", got)
	}
}

func TestCombatant_TakeDamage(t *testing.T) {
	tests := []struct {
		name     string
		hp       int
		damage   int
		wantLost int
		wantHP   int
	}{
		{"partial", 10, 4, 4, 6},
		{"overkill loses only what was left", 3, 10, 3, 0},
		{"no damage", 10, 0, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCombatant(CombatantSpec{ID: "player", HP: tt.hp, MaxHP: 10})
			if err != nil {
				t.Fatalf("NewCombatant() error = %v", err)
			}
			if lost := c.TakeDamage(tt.damage); lost != tt.wantLost {
				t.Errorf("TakeDamage(%d) = %d, want %d", tt.damage, lost, tt.wantLost)
			}
			if c.HP() != tt.wantHP {
				t.Errorf("HP() = %d, want %d", c.HP(), tt.wantHP)
			}
		})
	}
}
