package skillcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMomentum_SuccessStreakCaps(t *testing.T) {
	var m Momentum
	for range 6 {
		m = m.Apply(true)
	}
	assert.Equal(t, 6, m.ConsecutiveSuccesses)
	assert.Equal(t, MaxMomentumBonus, m.MomentumBonus)
	assert.Zero(t, m.ConsecutiveFailures)
	assert.Zero(t, m.DesperationBonus)
}

func TestMomentum_FailureStreakCaps(t *testing.T) {
	var m Momentum
	bonuses := []int{}
	for range 6 {
		m = m.Apply(false)
		bonuses = append(bonuses, m.DesperationBonus)
	}
	assert.Equal(t, []int{2, 4, 6, 8, 10, 10}, bonuses)
	assert.Equal(t, 6, m.ConsecutiveFailures)
	assert.Zero(t, m.MomentumBonus)
}

func TestMomentum_FailureResetsSuccessStreak(t *testing.T) {
	m := Momentum{}.Apply(true).Apply(true).Apply(true)
	assert.Equal(t, 3, m.MomentumBonus)

	m = m.Apply(false)
	assert.Zero(t, m.MomentumBonus)
	assert.Zero(t, m.ConsecutiveSuccesses)
	assert.Equal(t, 1, m.ConsecutiveFailures)
	assert.Equal(t, 2, m.DesperationBonus)

	m = m.Apply(true)
	assert.Zero(t, m.DesperationBonus, "success clears desperation")
	assert.Equal(t, 1, m.MomentumBonus)
}

func TestMomentum_ApplyDoesNotMutateReceiver(t *testing.T) {
	m := Momentum{ConsecutiveSuccesses: 2, MomentumBonus: 2}
	_ = m.Apply(false)
	assert.Equal(t, 2, m.ConsecutiveSuccesses)
}

func TestRollers(t *testing.T) {
	t.Run("seeded rollers replay", func(t *testing.T) {
		a, b := NewSeededRoller(42), NewSeededRoller(42)
		for range 20 {
			ra, rb := a.Roll(), b.Roll()
			assert.Equal(t, ra, rb)
			assert.GreaterOrEqual(t, ra, MinRoll)
			assert.LessOrEqual(t, ra, MaxRoll)
		}
	})

	t.Run("fixed roller repeats last roll", func(t *testing.T) {
		r := NewFixedRoller(10, 99)
		assert.Equal(t, 10, r.Roll())
		assert.Equal(t, 99, r.Roll())
		assert.Equal(t, 99, r.Roll())
	})

	t.Run("empty fixed roller is neutral", func(t *testing.T) {
		assert.Equal(t, 50, NewFixedRoller().Roll())
	})
}
