package home

import (
	"charm.land/lipgloss/v2"

	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/ui/theme"
)

const faceExcited = `┌─────┐
│ ★ ★ │
│  ▿  │ !
└─╥═╥─┘
  ╚═╝`

const faceHappy = `┌─────┐
│ ^ ^ │
│  ▽  │
└─────┘`

const faceNeutral = `┌─────┐
│ ◉ ◉ │
│  ─  │
└─────┘`

const faceSad = `┌─────┐
│ ; ; │
│  ︵ │
└─────┘`

const faceSleeping = `┌─────┐  z
│ - - │ z
│  o  │
└─────┘`

// RenderFace draws the pet's face for its mood, tinted to match.
func RenderFace(e progression.EmotionState) string {
	art := faceNeutral
	switch e {
	case progression.EmotionExcited:
		art = faceExcited
	case progression.EmotionHappy:
		art = faceHappy
	case progression.EmotionSad:
		art = faceSad
	case progression.EmotionSleeping:
		art = faceSleeping
	}
	return lipgloss.NewStyle().
		Foreground(theme.EmotionColor(e)).
		Render(art)
}
