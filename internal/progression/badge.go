package progression

import "slices"

// BadgeType selects which character statistic a badge requirement is
// compared against.
type BadgeType string

const (
	BadgeLevel     BadgeType = "level"
	BadgeStudyTime BadgeType = "study_time"
	BadgeStreak    BadgeType = "streak"
	BadgeProblems  BadgeType = "problems"
)

// AllBadgeTypes returns the known badge types in display order.
func AllBadgeTypes() []BadgeType {
	return []BadgeType{BadgeLevel, BadgeStudyTime, BadgeStreak, BadgeProblems}
}

// Known reports whether t is one of the recognized badge types.
func (t BadgeType) Known() bool {
	return slices.Contains(AllBadgeTypes(), t)
}

// DisplayName returns a human-readable label for the badge type.
func (t BadgeType) DisplayName() string {
	switch t {
	case BadgeLevel:
		return "Level"
	case BadgeStudyTime:
		return "Study Time"
	case BadgeStreak:
		return "Streak"
	case BadgeProblems:
		return "Problems"
	default:
		return string(t)
	}
}

// Tier is the ordered rarity of a badge.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

// AllTiers returns all tiers from lowest to highest.
func AllTiers() []Tier {
	return []Tier{TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond}
}

// Rank returns the ordinal of the tier, or -1 for an unknown tier.
func (t Tier) Rank() int {
	return slices.Index(AllTiers(), t)
}

// Less reports whether t ranks below other.
func (t Tier) Less(other Tier) bool {
	return t.Rank() < other.Rank()
}

// DisplayName returns a human-readable label for the tier.
func (t Tier) DisplayName() string {
	switch t {
	case TierBronze:
		return "Bronze"
	case TierSilver:
		return "Silver"
	case TierGold:
		return "Gold"
	case TierPlatinum:
		return "Platinum"
	case TierDiamond:
		return "Diamond"
	default:
		return string(t)
	}
}

// Badge is one achievement definition from the catalog.
type Badge struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description" json:"description"`
	Icon        string    `yaml:"icon" json:"icon"`
	Tier        Tier      `yaml:"tier" json:"tier"`
	Type        BadgeType `yaml:"type" json:"type"`
	Requirement int       `yaml:"requirement" json:"requirement"`
}

// Satisfied reports whether c meets the badge requirement. Unknown types
// never match.
func (b Badge) Satisfied(c Character) bool {
	switch b.Type {
	case BadgeLevel:
		return c.Level >= b.Requirement
	case BadgeStudyTime:
		return c.TotalStudyMinutes >= b.Requirement
	case BadgeStreak:
		return c.Streak >= b.Requirement
	case BadgeProblems:
		return len(c.SolvedProblems) >= b.Requirement
	default:
		return false
	}
}

// EvaluateNewBadges returns the ids of catalog badges that c satisfies and
// has not yet earned, in catalog order. It has no side effects.
func EvaluateNewBadges(c Character, catalog []Badge) []string {
	var out []string
	for _, b := range catalog {
		if c.HasBadge(b.ID) || slices.Contains(out, b.ID) {
			continue
		}
		if b.Satisfied(c) {
			out = append(out, b.ID)
		}
	}
	return out
}

// AwardBadges evaluates the catalog against c and returns a copy with the
// new badge ids appended, along with those ids.
func AwardBadges(c Character, catalog []Badge) (Character, []string) {
	out := c.Clone()
	earned := EvaluateNewBadges(out, catalog)
	out.EarnedBadges = append(out.EarnedBadges, earned...)
	return out, earned
}
