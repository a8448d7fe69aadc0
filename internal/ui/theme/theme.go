package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/codepet/codepet/internal/progression"
)

// Palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // purple
	Secondary = lipgloss.Color("#14B8A6") // teal
	Accent    = lipgloss.Color("#F97316") // orange
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgDark    = lipgloss.Color("#0F172A")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")

	ArcadeYellow = lipgloss.Color("#FACC15")
	ArcadeCyan   = lipgloss.Color("#22D3EE")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// TierColor is the badge colour for a tier.
func TierColor(t progression.Tier) color.Color {
	switch t {
	case progression.TierBronze:
		return lipgloss.Color("#CD7F32")
	case progression.TierSilver:
		return lipgloss.Color("#C0C0C0")
	case progression.TierGold:
		return lipgloss.Color("#FFD700")
	case progression.TierPlatinum:
		return lipgloss.Color("#A5F3FC")
	case progression.TierDiamond:
		return ArcadeCyan
	}
	return TextDim
}

// EmotionColor tints a character card by mood.
func EmotionColor(e progression.EmotionState) color.Color {
	switch e {
	case progression.EmotionExcited:
		return ArcadeYellow
	case progression.EmotionHappy:
		return Success
	case progression.EmotionSad:
		return Accent
	case progression.EmotionSleeping:
		return TextDim
	}
	return Text
}
