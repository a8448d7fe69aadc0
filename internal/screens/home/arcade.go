package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/codepet/codepet/internal/api"
	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/screens/welcome"
	"github.com/codepet/codepet/internal/ui/components"
	"github.com/codepet/codepet/internal/ui/theme"
)

func renderTitle(cw int, compact bool) string {
	w := cw
	if compact {
		w = 0
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(welcome.RenderArcadeBanner(w))
}

// renderPetCard shows one character: face, name line, exp bar, streak.
// pos and total drive the "< 1/3 >" pager when there is more than one.
func renderPetCard(c api.Character, pos, total, cw int, compact bool) string {
	emotion := progression.EmotionState(c.Emotion)

	name := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).
		Render(fmt.Sprintf("%s %s", c.Emoji, c.SkillName))
	level := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true).
		Render(fmt.Sprintf("Lv %d %s", c.Level, c.Stage))
	streak := lipgloss.NewStyle().Foreground(theme.Accent).
		Render(fmt.Sprintf("🔥 %d day", c.Streak))
	minutes := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("⏱ %d min", c.TotalStudyTime))
	mood := lipgloss.NewStyle().Foreground(theme.EmotionColor(emotion)).
		Render(c.EmotionEmoji + " " + c.Message)

	lines := []string{name + "   " + level}
	if !compact {
		lines = append([]string{RenderFace(emotion), ""}, lines...)
	}
	lines = append(lines,
		components.ExpBar(c.Experience, c.ExperienceToNextLevel, cw-8),
		streak+"   "+minutes,
		mood,
	)
	if total > 1 {
		lines = append(lines, theme.Hint.Render(fmt.Sprintf("◀ %d/%d ▶", pos+1, total)))
	}

	return components.AccentCard(strings.Join(lines, "\n"), cw, theme.EmotionColor(emotion))
}

func renderNoPets(cw int) string {
	return components.ArcadeCard(
		RenderFace(progression.EmotionNeutral)+"\n\n"+
			theme.Body.Render("No pets yet. Pick NEW PET to adopt one."),
		cw)
}

func renderUpdateNote(latestVersion string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render(fmt.Sprintf("New version %s available, run codepet update", latestVersion))
}
