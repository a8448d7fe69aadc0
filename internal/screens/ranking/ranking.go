// Package ranking shows the leaderboard with the user's own row marked.
package ranking

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/codepet/codepet/internal/api"
	"github.com/codepet/codepet/internal/backend"
	"github.com/codepet/codepet/internal/ranking"
	"github.com/codepet/codepet/internal/screen"
	"github.com/codepet/codepet/internal/ui/components"
	"github.com/codepet/codepet/internal/ui/theme"
)

// maxRows caps how many entries are drawn above the user's own row.
const maxRows = 10

type loadedMsg struct {
	board api.RankingResult
	err   error
}

type RankingScreen struct {
	backend backend.Backend
	board   api.RankingResult
	loaded  bool
	err     error
}

var _ screen.Screen = (*RankingScreen)(nil)

func New(b backend.Backend) *RankingScreen {
	return &RankingScreen{backend: b}
}

func (s *RankingScreen) Title() string {
	return "Ranking"
}

func (s *RankingScreen) Init() tea.Cmd {
	b := s.backend
	return func() tea.Msg {
		board, err := b.Ranking(context.Background())
		return loadedMsg{board: board, err: err}
	}
}

func (s *RankingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(loadedMsg); ok {
		s.loaded = true
		s.board, s.err = msg.board, msg.err
	}
	return s, nil
}

func (s *RankingScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var body string
	switch {
	case !s.loaded:
		body = theme.Hint.Render("loading...")
	case s.err != nil:
		body = theme.ErrorText.Render(s.err.Error())
	case len(s.board.Entries) == 0:
		body = theme.Body.Render("Nobody has studied yet. Be the first!")
	default:
		body = renderBoard(s.board)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		components.ArcadeCard(body, cw))
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return fmt.Sprintf("%2d", rank)
}

func renderBoard(r api.RankingResult) string {
	head := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("%-3s %-14s %5s %7s %6s", "#", "NAME", "LV", "EXP", "MIN"))
	lines := []string{head}

	row := func(e ranking.Entry, mine bool) string {
		line := fmt.Sprintf("%-3s %-14s %5d %7d %6d", medal(e.Rank), truncate(e.Name, 14), e.Level, e.Score, e.TotalMinutes)
		if mine {
			return lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).Render(line)
		}
		return theme.Body.Render(line)
	}

	meShown := false
	for i, e := range r.Entries {
		if i >= maxRows {
			break
		}
		mine := r.Me != nil && e.UserID == r.Me.UserID
		meShown = meShown || mine
		lines = append(lines, row(e, mine))
	}
	if r.Me != nil && !meShown {
		lines = append(lines, theme.Hint.Render("  ⋮"), row(*r.Me, true))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
