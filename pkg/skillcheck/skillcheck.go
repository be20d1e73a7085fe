package skillcheck

// Degree classifies the outcome of a skill check
type Degree string

const (
	DegreeCriticalFailure Degree = "critical_failure"
	DegreeFailure         Degree = "failure"
	DegreeSuccess         Degree = "success"
	DegreeCriticalSuccess Degree = "critical_success"
)

const (
	// MinRoll and MaxRoll bound the percentile die
	MinRoll = 1
	MaxRoll = 100

	// CriticalSuccessRoll and above always succeed critically
	CriticalSuccessRoll = 95
	// CriticalFailureRoll and below always fail critically
	CriticalFailureRoll = 5
)

// Result is the full breakdown of a single skill check
type Result struct {
	Success             bool   `json:"success"`
	Degree              Degree `json:"degree_of_success"`
	Roll                int    `json:"roll"`
	SkillValue          int    `json:"skill_value"`
	StatModifier        int    `json:"stat_modifier"`
	SituationalModifier int    `json:"situational_modifier"`
	TotalAchieved       int    `json:"total_achieved"`
	DifficultyTarget    int    `json:"difficulty_target"`
	Margin              int    `json:"margin"`
}

// IsCritical reports whether the raw roll short-circuited the modifier math
func (r Result) IsCritical() bool {
	return r.Degree == DegreeCriticalSuccess || r.Degree == DegreeCriticalFailure
}

// PerformCheck resolves a skill attempt against a difficulty target.
//
// The total is roll + skillValue + statModifier + situationalModifier and the
// attempt succeeds when the total meets the difficulty. Raw rolls at either
// extreme override the comparison: a roll of 95 or more is always a critical
// success and a roll of 5 or less is always a critical failure.
//
// The caller supplies the roll, so the function is deterministic. Rolls outside
// 1..100 are clamped into range.
func PerformCheck(skillValue, statModifier, situationalModifier, difficultyTarget, roll int) Result {
	roll = clampRoll(roll)
	total := roll + skillValue + statModifier + situationalModifier

	res := Result{
		Roll:                roll,
		SkillValue:          skillValue,
		StatModifier:        statModifier,
		SituationalModifier: situationalModifier,
		TotalAchieved:       total,
		DifficultyTarget:    difficultyTarget,
		Margin:              total - difficultyTarget,
	}

	switch {
	case roll >= CriticalSuccessRoll:
		res.Success = true
		res.Degree = DegreeCriticalSuccess
	case roll <= CriticalFailureRoll:
		res.Success = false
		res.Degree = DegreeCriticalFailure
	case total >= difficultyTarget:
		res.Success = true
		res.Degree = DegreeSuccess
	default:
		res.Success = false
		res.Degree = DegreeFailure
	}
	return res
}

// StatModifier converts a d20-style ability score into a check modifier.
// 10 and 11 give +0, 8 gives -1, 16 gives +3.
func StatModifier(score int) int {
	diff := score - 10
	if diff < 0 {
		// floor toward negative infinity
		return (diff - 1) / 2
	}
	return diff / 2
}

func clampRoll(roll int) int {
	if roll < MinRoll {
		return MinRoll
	}
	if roll > MaxRoll {
		return MaxRoll
	}
	return roll
}
