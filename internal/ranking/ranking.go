// Package ranking builds the leaderboard and per-user statistics from
// characters.
package ranking

import (
	"cmp"
	"math"
	"slices"

	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/store"
)

// Entry is one leaderboard row.
type Entry struct {
	Rank         int    `json:"rank"`
	UserID       int64  `json:"userId"`
	Name         string `json:"name"`
	Skills       int    `json:"skillCount"`
	TotalMinutes int    `json:"totalStudyTime"`

	// Score is the summed lifetime experience of every character.
	Score int `json:"totalExperience"`

	// Level is the level a single character with Score experience reaches.
	Level int `json:"level"`
}

// Build ranks every user, including users without characters. Entries are
// ordered by score, then minutes, then name.
func Build(users []store.User, characters []progression.Character) []Entry {
	byUser := make(map[int64]*Entry, len(users))
	board := make([]Entry, 0, len(users))
	for _, u := range users {
		board = append(board, Entry{UserID: u.ID, Name: u.Name})
	}
	for i := range board {
		byUser[board[i].UserID] = &board[i]
	}
	for _, c := range characters {
		e, ok := byUser[c.UserID]
		if !ok {
			continue
		}
		e.Skills++
		e.TotalMinutes = satAdd(e.TotalMinutes, c.TotalStudyMinutes)
		e.Score = satAdd(e.Score, c.TotalExperience())
	}

	for i := range board {
		board[i].Level, _, _ = progression.LevelForTotalExperience(board[i].Score)
	}
	slices.SortStableFunc(board, func(a, b Entry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.TotalMinutes, a.TotalMinutes); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	for i := range board {
		board[i].Rank = i + 1
	}
	return board
}

// Position returns the caller's row.
func Position(board []Entry, userID int64) (Entry, bool) {
	i := slices.IndexFunc(board, func(e Entry) bool { return e.UserID == userID })
	if i < 0 {
		return Entry{}, false
	}
	return board[i], true
}

// Stats summarises one user.
type Stats struct {
	UserID          int64  `json:"userId"`
	Name            string `json:"name"`
	Skills          int    `json:"skillCount"`
	TotalMinutes    int    `json:"totalStudyTime"`
	TotalExperience int    `json:"totalExperience"`
	Level           int    `json:"level"`
	Experience      int    `json:"experience"`
	SolvedProblems  int    `json:"solvedProblems"`
	Badges          int    `json:"badgeCount"`
	BestStreak      int    `json:"currentStreak"`
	LongestStreak   int    `json:"longestStreak"`
	HighestLevel    int    `json:"highestLevel"`
}

// UserStats aggregates the user's characters. solved is the number of
// distinct questions the user has solved.
func UserStats(u store.User, characters []progression.Character, solved int) Stats {
	s := Stats{UserID: u.ID, Name: u.Name, SolvedProblems: solved}
	for _, c := range characters {
		if c.UserID != u.ID {
			continue
		}
		s.Skills++
		s.TotalMinutes = satAdd(s.TotalMinutes, c.TotalStudyMinutes)
		s.TotalExperience = satAdd(s.TotalExperience, c.TotalExperience())
		s.Badges += len(c.EarnedBadges)
		s.BestStreak = max(s.BestStreak, c.Streak)
		s.LongestStreak = max(s.LongestStreak, c.LongestStreak)
		s.HighestLevel = max(s.HighestLevel, c.Level)
	}
	s.Level, s.Experience, _ = progression.LevelForTotalExperience(s.TotalExperience)
	return s
}

// Profile is the user page: stats, trainer title and leaderboard place.
type Profile struct {
	Stats
	Trainer progression.TrainerRank `json:"trainer"`
	Rank    int                     `json:"rank"`
}

// BuildProfile combines UserStats, the trainer rank for the combined level
// and the user's leaderboard rank (0 when absent).
func BuildProfile(u store.User, characters []progression.Character, solved int, board []Entry) Profile {
	p := Profile{Stats: UserStats(u, characters, solved)}
	p.Trainer = progression.RankForLevel(p.Level)
	if e, ok := Position(board, u.ID); ok {
		p.Rank = e.Rank
	}
	return p
}

func satAdd(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
