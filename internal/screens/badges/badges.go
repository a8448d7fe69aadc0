// Package badges lists every badge in the catalog by tier and marks the
// ones any of the user's pets has earned.
package badges

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/codepet/codepet/internal/backend"
	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/screen"
	"github.com/codepet/codepet/internal/ui/components"
	"github.com/codepet/codepet/internal/ui/theme"
)

type loadedMsg struct {
	all    []progression.Badge
	earned map[string]bool
	err    error
}

type BadgesScreen struct {
	backend backend.Backend
	all     []progression.Badge
	earned  map[string]bool
	loaded  bool
	err     error
}

var _ screen.Screen = (*BadgesScreen)(nil)

func New(b backend.Backend) *BadgesScreen {
	return &BadgesScreen{backend: b}
}

func (s *BadgesScreen) Title() string {
	return "Badges"
}

func (s *BadgesScreen) Init() tea.Cmd {
	b := s.backend
	return func() tea.Msg {
		ctx := context.Background()
		all, err := b.Badges(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		chars, err := b.Characters(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		earned := make(map[string]bool)
		for _, c := range chars {
			for _, id := range c.Badges {
				earned[id] = true
			}
		}
		return loadedMsg{all: all, earned: earned}
	}
}

func (s *BadgesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(loadedMsg); ok {
		s.loaded = true
		s.all, s.earned, s.err = msg.all, msg.earned, msg.err
	}
	return s, nil
}

func (s *BadgesScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var body string
	switch {
	case !s.loaded:
		body = theme.Hint.Render("loading...")
	case s.err != nil:
		body = theme.ErrorText.Render(s.err.Error())
	default:
		body = renderBadges(s.all, s.earned)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		components.ArcadeCard(body, cw))
}

// renderBadges groups by tier. Earned badges are coloured, the rest dim.
func renderBadges(all []progression.Badge, earned map[string]bool) string {
	count := 0
	byTier := make(map[progression.Tier][]string)
	for _, b := range all {
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		icon := "·"
		if earned[b.ID] {
			count++
			style = lipgloss.NewStyle().Foreground(theme.TierColor(b.Tier)).Bold(true)
			icon = b.Icon
		}
		byTier[b.Tier] = append(byTier[b.Tier], style.Render(fmt.Sprintf("%s %s", icon, b.Name)))
	}

	lines := []string{
		lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).
			Render(fmt.Sprintf("%d / %d earned", count, len(all))),
	}
	for _, tier := range progression.AllTiers() {
		if len(byTier[tier]) == 0 {
			continue
		}
		lines = append(lines, "",
			lipgloss.NewStyle().Foreground(theme.TierColor(tier)).Render(strings.ToUpper(tier.DisplayName())),
			strings.Join(byTier[tier], "   "))
	}
	return strings.Join(lines, "\n")
}
