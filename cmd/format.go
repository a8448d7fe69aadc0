package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/codepet/codepet/internal/api"
)

const rule = "─"

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// findCharacter matches ref against a character id or its tech stack id.
func findCharacter(chars []api.Character, ref string) (api.Character, error) {
	for _, c := range chars {
		if c.ID == ref || strings.EqualFold(c.SkillID, ref) {
			return c, nil
		}
	}
	return api.Character{}, fmt.Errorf("no character for %q; see 'codepet character list'", ref)
}

func printCharacter(w io.Writer, c api.Character) {
	fmt.Fprintf(w, "%s  %s (%s)\n", c.Emoji, c.SkillName, c.Animal)
	fmt.Fprintf(w, "ID:          %s\n", c.ID)
	fmt.Fprintf(w, "Stage:       %s\n", c.Stage)
	fmt.Fprintf(w, "Level:       %d\n", c.Level)
	fmt.Fprintf(w, "Experience:  %d / %d (lifetime %d)\n", c.Experience, c.ExperienceToNextLevel, c.TotalExperience)
	fmt.Fprintf(w, "Study time:  %d min\n", c.TotalStudyTime)
	fmt.Fprintf(w, "Streak:      %d day(s), longest %d\n", c.Streak, c.LongestStreak)
	if c.LastStudyDate != nil {
		fmt.Fprintf(w, "Last study:  %s\n", c.LastStudyDate.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "Mood:        %s %s\n", c.EmotionEmoji, c.Emotion)
	fmt.Fprintf(w, "Solved:      %d question(s)\n", len(c.SolvedProblems))
	if len(c.Badges) > 0 {
		fmt.Fprintf(w, "Badges:      %s\n", strings.Join(c.Badges, ", "))
	}
	fmt.Fprintf(w, "\n%s\n", c.Message)
}

func printProgress(w io.Writer, p api.ProgressResult) {
	c := p.Character
	fmt.Fprintf(w, "+%d EXP for %s\n", p.ExperienceGained, c.SkillName)
	if p.LevelsGained > 0 {
		fmt.Fprintf(w, "LEVEL UP! Lv %d → Lv %d\n", p.LevelBefore, c.Level)
	}
	fmt.Fprintf(w, "%s  Lv %d  %d/%d EXP  streak %d\n", c.Emoji, c.Level, c.Experience, c.ExperienceToNextLevel, c.Streak)
	for _, b := range p.NewBadges {
		fmt.Fprintf(w, "New badge: %s %s (%s)\n", b.Icon, b.Name, b.Tier)
	}
}
