package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/codepet/codepet/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	// CompactWidth is the width below which screens drop to one column.
	CompactWidth = 100
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactWidth(width int) bool { return width < CompactWidth }

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// Chrome is the bar above and below every screen.
type Chrome struct {
	Title string
	// User is empty before sign-in.
	User string
	// Streak is the best current streak across the user's pets.
	Streak int
	Hints  []KeyHint
}

// Render draws the chrome at width x height and fills the space between
// header and footer with body, which receives the height left for it.
func (c Chrome) Render(width, height int, body func(width, height int) string) string {
	if IsTooSmall(width, height) {
		return tooSmall(width, height)
	}
	header := c.header(width)
	footer := c.footer(width)
	h := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := lipgloss.NewStyle().Width(width).Height(h).Render(body(width, h))
	return header + "\n" + content + "\n" + footer
}

func tooSmall(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf("Terminal too small!\n\nPlease resize to at\nleast %d x %d\n\nCurrent: %d x %d",
			MinWidth, MinHeight, width, height))
}

func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// header centers the title between the brand and the user's status.
func (c Chrome) header(width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  codepet")
	title := lipgloss.NewStyle().Foreground(theme.Text).Render(c.Title)
	status := lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("🔥 %d day", c.Streak))
	if c.User != "" {
		status = lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Render(c.User) + "   " + status
	}

	inner := max(width-4, 0)
	bw, tw, sw := lipgloss.Width(brand), lipgloss.Width(title), lipgloss.Width(status)
	left := max((inner-tw)/2-bw, 1)
	right := max(inner-bw-left-tw-sw, 1)

	return bar(brand+strings.Repeat(" ", left)+title+strings.Repeat(" ", right)+status, width)
}

// footer drops trailing hints that would overflow the bar.
func (c Chrome) footer(width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	line := " "
	for _, h := range c.Hints {
		part := "  " + key.Render(h.Key) + " " + desc.Render(h.Description)
		if lipgloss.Width(line+part) > width-4 {
			break
		}
		line += part
	}
	return bar(line, width)
}
