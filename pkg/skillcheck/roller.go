package skillcheck

import (
	"math/rand"
	"sync"
)

// Roller produces percentile die rolls in 1..100
type Roller interface {
	Roll() int
}

// SeededRoller rolls from a math/rand source. Two rollers created with the
// same seed produce the same sequence, which keeps turn resolution replayable.
type SeededRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededRoller creates a roller seeded with seed
func NewSeededRoller(seed int64) *SeededRoller {
	return &SeededRoller{rng: rand.New(rand.NewSource(seed))}
}

func (r *SeededRoller) Roll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(MaxRoll) + MinRoll
}

// FixedRoller returns a scripted sequence of rolls, then repeats the last one.
// An empty roller always returns 50.
type FixedRoller struct {
	mu    sync.Mutex
	rolls []int
	next  int
}

// NewFixedRoller creates a roller that replays rolls in order
func NewFixedRoller(rolls ...int) *FixedRoller {
	return &FixedRoller{rolls: rolls}
}

func (r *FixedRoller) Roll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.rolls) == 0 {
		return 50
	}
	if r.next >= len(r.rolls) {
		return clampRoll(r.rolls[len(r.rolls)-1])
	}
	roll := r.rolls[r.next]
	r.next++
	return clampRoll(roll)
}
