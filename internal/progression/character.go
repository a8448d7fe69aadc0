package progression

import (
	"slices"
	"time"
)

// Character is the leveling entity bound to one (user, tech stack) pair.
//
// ExperienceToNextLevel is derived from Level and is never trusted from
// storage; call Normalize after loading a persisted copy.
type Character struct {
	ID                    string
	UserID                int64
	TechStackID           string
	Animal                string
	Level                 int
	Experience            int
	ExperienceToNextLevel int
	LastStudyDate         *time.Time
	TotalStudyMinutes     int
	Streak                int
	LongestStreak         int
	EarnedBadges          []string
	SolvedProblems        []int64
	CreatedAt             time.Time
}

// NewCharacter returns a level 1 character with no progress.
func NewCharacter(id string, userID int64, techStackID, animal string, now time.Time) Character {
	return Character{
		ID:                    id,
		UserID:                userID,
		TechStackID:           techStackID,
		Animal:                animal,
		Level:                 1,
		ExperienceToNextLevel: BaseExperience,
		CreatedAt:             now,
	}
}

// Emotion classifies the character's mood at now.
func (c Character) Emotion(now time.Time) EmotionState {
	return ClassifyEmotion(c.LastStudyDate, now)
}

// HasBadge reports whether the badge id has already been earned.
func (c Character) HasBadge(id string) bool {
	return slices.Contains(c.EarnedBadges, id)
}

// HasSolved reports whether the problem id is in the solved set.
func (c Character) HasSolved(id int64) bool {
	return slices.Contains(c.SolvedProblems, id)
}

// TotalExperience returns the geometric accumulated experience.
func (c Character) TotalExperience() int {
	return TotalExperience(c.Level, c.Experience)
}

// Clone returns a deep copy so callers never share slices or the
// last-study pointer with the original.
func (c Character) Clone() Character {
	out := c
	out.EarnedBadges = slices.Clone(c.EarnedBadges)
	out.SolvedProblems = slices.Clone(c.SolvedProblems)
	if c.LastStudyDate != nil {
		t := *c.LastStudyDate
		out.LastStudyDate = &t
	}
	return out
}

// Validate checks the numeric invariants that do not depend on the
// derived threshold.
func (c Character) Validate() error {
	switch {
	case c.Level < 1:
		return invalidf("level %d is below 1", c.Level)
	case c.Experience < 0:
		return invalidf("experience %d is negative", c.Experience)
	case c.TotalStudyMinutes < 0:
		return invalidf("total study minutes %d is negative", c.TotalStudyMinutes)
	case c.Streak < 0:
		return invalidf("streak %d is negative", c.Streak)
	}
	return nil
}

// Normalize recomputes ExperienceToNextLevel from Level and rolls over any
// excess experience a persisted copy may carry.
func (c Character) Normalize() (Character, error) {
	return ApplyExperience(c, 0)
}
