package quiz

import (
	"fmt"
	"strings"

	"github.com/codepet/codepet/internal/store"
	"github.com/codepet/codepet/internal/tracker"
)

// Difficulty grades a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// AllDifficulties returns the difficulties from easiest to hardest.
func AllDifficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// ParseDifficulty accepts any letter case. An empty string parses to "".
func ParseDifficulty(s string) (Difficulty, error) {
	if s == "" {
		return "", nil
	}
	d := Difficulty(strings.ToUpper(strings.TrimSpace(s)))
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q (want EASY, MEDIUM or HARD)", s)
}

// DisplayName returns a human-readable label for the difficulty.
func (d Difficulty) DisplayName() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	default:
		return string(d)
	}
}

// DefaultReward is the experience a question of this difficulty awards
// when no explicit reward is given.
func (d Difficulty) DefaultReward() int {
	switch d {
	case DifficultyMedium:
		return 20
	case DifficultyHard:
		return 30
	default:
		return 10
	}
}

// SolvedFilter narrows a listing by the caller's solved state.
type SolvedFilter string

const (
	SolvedAny      SolvedFilter = "NONE"
	SolvedOnly     SolvedFilter = "SOLVED"
	SolvedExcluded SolvedFilter = "UNSOLVED"
)

// ParseSolvedFilter accepts SOLVED, UNSOLVED, NONE or "" in any case.
func ParseSolvedFilter(s string) (SolvedFilter, error) {
	switch f := SolvedFilter(strings.ToUpper(strings.TrimSpace(s))); f {
	case "", SolvedAny:
		return SolvedAny, nil
	case SolvedOnly, SolvedExcluded:
		return f, nil
	}
	return "", fmt.Errorf("unknown solved filter %q (want SOLVED, UNSOLVED or NONE)", s)
}

// Filter narrows List.
type Filter struct {
	Difficulty Difficulty
	Solved     SolvedFilter
}

// Summary is a question row in a listing.
type Summary struct {
	ID         int64
	Title      string
	Difficulty Difficulty
	RewardExp  int
	Solved     bool
}

// Listing is the result of List. Total and SolvedCount cover the whole
// stack, independent of the filter.
type Listing struct {
	Questions   []Summary
	Total       int
	SolvedCount int
}

// Result is the outcome of one submitted answer.
type Result struct {
	Question   *store.Question
	Answer     int
	Correct    bool
	FirstSolve bool

	// Progress is set when a correct answer was credited.
	Progress *tracker.Progress
}

// OptionCount is the number of choices every question has.
const OptionCount = 4
