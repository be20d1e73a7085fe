package skillcheck

const (
	// MaxMomentumBonus caps the bonus earned from a success streak
	MaxMomentumBonus = 5
	// MaxDesperationBonus caps the bonus earned from a failure streak
	MaxDesperationBonus = 10
)

// Momentum is the streak state carried between skill checks.
// Success and failure streaks are mutually exclusive.
type Momentum struct {
	ConsecutiveSuccesses int `json:"consecutive_successes"`
	ConsecutiveFailures  int `json:"consecutive_failures"`
	MomentumBonus        int `json:"momentum_bonus"`
	DesperationBonus     int `json:"desperation_bonus"`
}

// Apply returns the momentum after a check with the given outcome.
// The receiver is not modified.
func (m Momentum) Apply(success bool) Momentum {
	if success {
		streak := m.ConsecutiveSuccesses + 1
		return Momentum{
			ConsecutiveSuccesses: streak,
			MomentumBonus:        min(streak, MaxMomentumBonus),
		}
	}
	streak := m.ConsecutiveFailures + 1
	return Momentum{
		ConsecutiveFailures: streak,
		DesperationBonus:    min(2*streak, MaxDesperationBonus),
	}
}

// Bonus is the total modifier the current streak grants to the next check
func (m Momentum) Bonus() int {
	return m.MomentumBonus + m.DesperationBonus
}
