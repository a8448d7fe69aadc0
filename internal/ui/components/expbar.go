package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/codepet/codepet/internal/ui/theme"
)

// ExpBar draws "EXP ████░░░░ 50/150" in width cells. The bar is filled
// in eighths so slow progress still shows movement.
func ExpBar(experience, toNext, width int) string {
	label := fmt.Sprintf("%d/%d", experience, toNext)
	cells := max(width-lipgloss.Width(label)-len("EXP  ")-1, 4)

	eighths := 0
	if toNext > 0 {
		eighths = min(max(experience*cells*8/toNext, 0), cells*8)
	}
	full, part := eighths/8, eighths%8

	var b strings.Builder
	b.WriteString(strings.Repeat("█", full))
	if part > 0 {
		b.WriteRune([]rune(" ▏▎▍▌▋▊▉")[part])
	}
	filled := lipgloss.NewStyle().Foreground(theme.Secondary).Render(b.String())
	rest := cells - full
	if part > 0 {
		rest--
	}
	empty := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", rest))

	return lipgloss.NewStyle().Foreground(theme.Text).Render("EXP") + "  " +
		filled + empty + " " +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(label)
}
