package components

import (
	"fmt"
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/codepet/codepet/internal/ui/theme"
)

const (
	maxContentWidth = 60
	minContentWidth = 20

	// ButtonWidth is the inner width of a bordered arcade button.
	ButtonWidth = 22
)

// ContentWidth is the width every card inside the cabinet is drawn at,
// so stacked sections line up. The frame takes 2 columns of border and
// 4 of padding.
func ContentWidth(frameWidth int) int {
	return max(minContentWidth, min(frameWidth-6, maxContentWidth))
}

// CabinetFrame centers content inside the double-bordered outer frame.
func CabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// ArcadeCard is a neutral rounded card.
func ArcadeCard(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(1, 2).
		Render(content)
}

// AccentCard is a tighter double-bordered card tinted with accent, for
// borders that carry meaning such as a pet's mood.
func AccentCard(content string, cw int, accent color.Color) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(accent).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(content)
}

// ButtonState is how a button in a ButtonGrid is drawn.
type ButtonState int

const (
	ButtonIdle ButtonState = iota
	ButtonFocused
	ButtonDisabled
)

// ArcadeButton renders one bordered button.
func ArcadeButton(label string, state ButtonState) string {
	st := lipgloss.NewStyle().
		Width(ButtonWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Foreground(theme.Text).
		Padding(0, 1)
	switch state {
	case ButtonFocused:
		return st.Bold(true).
			Foreground(theme.BgDark).
			Background(theme.ArcadeYellow).
			BorderForeground(theme.ArcadeYellow).
			Render("▸ " + label)
	case ButtonDisabled:
		return st.Foreground(theme.TextDim).Render(label)
	}
	return st.Render(label)
}

// compactButton is the borderless form used when the terminal is short.
func compactButton(label string, state ButtonState) string {
	label = fmt.Sprintf("%-10s", label)
	switch state {
	case ButtonFocused:
		return lipgloss.NewStyle().
			Foreground(theme.BgDark).
			Background(theme.ArcadeYellow).
			Bold(true).
			Render(" ▸ " + label + " ")
	case ButtonDisabled:
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("   " + label)
	}
	return lipgloss.NewStyle().Foreground(theme.Text).Render("   " + label)
}

// ButtonGrid lays the items of m out two per row, centered in cw. With
// compact set the buttons lose their borders.
func ButtonGrid(m Menu, cw int, compact bool) string {
	render, gap := ArcadeButton, " "
	if compact {
		render, gap = compactButton, "  "
	}

	var rows []string
	var row []string
	for i, item := range m.Items {
		state := ButtonIdle
		switch {
		case item.Disabled:
			state = ButtonDisabled
		case i == m.Selected:
			state = ButtonFocused
		}
		if len(row) > 0 {
			row = append(row, gap)
		}
		row = append(row, render(item.Label, state))
		if len(row) == 3 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
