package tracker

import (
	"slices"
	"time"

	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/store"
)

// streaks recomputes a character's current and longest streak after a
// study at `at`, from every calendar day with a session. Sessions may
// arrive out of order, so the streak is the run of consecutive days that
// ends on the latest study day, or 0 when that day is before yesterday.
//
// The stored streak counts as studied days too: characters saved before
// sessions were recorded keep the run they already had.
func streaks(c progression.Character, sessions []store.StudySession, at, now time.Time, loc *time.Location) (current, longest int) {
	seen := map[int]bool{dayNumber(at, loc): true}
	for _, s := range sessions {
		seen[dayNumber(s.StudiedAt, loc)] = true
	}
	if c.LastStudyDate != nil {
		last := dayNumber(*c.LastStudyDate, loc)
		for i := range max(c.Streak, 1) {
			seen[last-i] = true
		}
	}

	days := make([]int, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	slices.Sort(days)

	run := 0
	longest = c.LongestStreak
	for i, d := range days {
		if i > 0 && d == days[i-1]+1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	if dayNumber(now, loc)-days[len(days)-1] > 1 {
		return 0, longest
	}
	return run, longest
}

// dayGap returns the number of calendar days from a to b in loc.
func dayGap(a, b time.Time, loc *time.Location) int {
	return dayNumber(b, loc) - dayNumber(a, loc)
}

func dayNumber(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
