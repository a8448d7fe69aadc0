package progression

import (
	"math"
	"math/big"
)

const (
	// BaseExperience is the threshold for leaving level 1.
	BaseExperience = 100

	// ExperiencePerMinute is the study reward rate.
	ExperiencePerMinute = 10
)

// thresholds[i] is the experience needed to go from level i+1 to i+2.
// The table stops at the first value that saturates math.MaxInt.
var thresholds = buildThresholds()

// buildThresholds evaluates floor(100 * 1.5^(n-1)) exactly as
// floor(100 * 3^k / 2^k) so no floating point rounding leaks in.
func buildThresholds() []int {
	var (
		out   []int
		three = big.NewInt(3)
		pow   = big.NewInt(1)
		limit = big.NewInt(math.MaxInt)
	)
	for k := uint(0); ; k++ {
		v := new(big.Int).Mul(pow, big.NewInt(BaseExperience))
		v.Rsh(v, k)
		if v.Cmp(limit) >= 0 {
			out = append(out, math.MaxInt)
			return out
		}
		out = append(out, int(v.Int64()))
		pow.Mul(pow, three)
	}
}

func required(level int) int {
	if level-1 < len(thresholds) {
		return thresholds[level-1]
	}
	return math.MaxInt
}

// ExperienceRequiredForLevel returns the experience needed to advance from
// level to level+1: floor(100 * 1.5^(level-1)). Values past math.MaxInt
// saturate.
func ExperienceRequiredForLevel(level int) (int, error) {
	if level < 1 {
		return 0, invalidf("level %d is below 1", level)
	}
	return required(level), nil
}

// ApplyExperience adds gained experience to a copy of c and rolls over as
// many levels as the total allows. The input is not modified.
func ApplyExperience(c Character, gained int) (Character, error) {
	if gained < 0 {
		return Character{}, invalidf("experience gain %d is negative", gained)
	}
	if err := c.Validate(); err != nil {
		return Character{}, err
	}

	out := c.Clone()
	exp := out.Experience
	if gained > math.MaxInt-exp {
		exp = math.MaxInt
	} else {
		exp += gained
	}

	next := required(out.Level)
	for exp >= next {
		exp -= next
		out.Level++
		next = required(out.Level)
	}
	out.Experience = exp
	out.ExperienceToNextLevel = next
	return out, nil
}

// StudyExperience converts study minutes into experience.
func StudyExperience(minutes int) (int, error) {
	if minutes < 0 {
		return 0, invalidf("study minutes %d is negative", minutes)
	}
	if minutes > math.MaxInt/ExperiencePerMinute {
		return 0, invalidf("study minutes %d is too large", minutes)
	}
	return minutes * ExperiencePerMinute, nil
}

// TotalExperience returns all experience ever earned by a character at the
// given level and in-level experience, summing the real per-level
// thresholds. The result saturates at math.MaxInt.
func TotalExperience(level, experience int) int {
	total := max(experience, 0)
	for l := 1; l < level; l++ {
		t := required(l)
		if t > math.MaxInt-total {
			return math.MaxInt
		}
		total += t
	}
	return total
}

// LevelForTotalExperience is the inverse of TotalExperience: it returns
// the level and in-level experience reached by accumulating total from a
// fresh character.
func LevelForTotalExperience(total int) (level, experience int, err error) {
	if total < 0 {
		return 0, 0, invalidf("total experience %d is negative", total)
	}
	level = 1
	for total >= required(level) {
		total -= required(level)
		level++
	}
	return level, total, nil
}
