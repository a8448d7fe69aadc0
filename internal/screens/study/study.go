// Package study logs a study session for one pet.
package study

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/codepet/codepet/internal/api"
	"github.com/codepet/codepet/internal/backend"
	"github.com/codepet/codepet/internal/router"
	"github.com/codepet/codepet/internal/screen"
	"github.com/codepet/codepet/internal/ui/components"
	"github.com/codepet/codepet/internal/ui/layout"
	"github.com/codepet/codepet/internal/ui/theme"
)

type loggedMsg struct {
	res api.ProgressResult
	err error
}

// StudyScreen asks for minutes and notes, then shows what the session
// earned.
type StudyScreen struct {
	backend backend.Backend
	pet     api.Character

	minutes components.TextInput
	notes   components.TextInput
	onNotes bool

	busy   bool
	err    string
	result *api.ProgressResult
}

var (
	_ screen.Screen          = (*StudyScreen)(nil)
	_ screen.KeyHintProvider = (*StudyScreen)(nil)
)

// New studies chars[current].
func New(b backend.Backend, chars []api.Character, current int) *StudyScreen {
	s := &StudyScreen{
		backend: b,
		minutes: components.NewTextInput("Minutes studied", "30", true, 5),
		notes:   components.NewTextInput("Notes (optional)", "what did you learn?", false, 200),
	}
	if current >= 0 && current < len(chars) {
		s.pet = chars[current]
	}
	return s
}

func (s *StudyScreen) Title() string {
	return "Study"
}

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	if s.result != nil {
		return []layout.KeyHint{{Key: "Enter", Description: "Back home"}}
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Switch field"},
		{Key: "Enter", Description: "Log session"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *StudyScreen) Init() tea.Cmd {
	return s.minutes.Focus()
}

func (s *StudyScreen) toggle() tea.Cmd {
	s.onNotes = !s.onNotes
	if s.onNotes {
		s.minutes.Blur()
		return s.notes.Focus()
	}
	s.notes.Blur()
	return s.minutes.Focus()
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loggedMsg:
		s.busy = false
		if msg.err != nil {
			s.err = msg.err.Error()
			return s, nil
		}
		s.result = &msg.res
		return s, nil

	case tea.KeyPressMsg:
		if s.result != nil {
			if msg.String() == "enter" {
				return s, router.PopCmd
			}
			return s, nil
		}
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			return s, s.toggle()
		case "enter":
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	if s.onNotes {
		s.notes, cmd = s.notes.Update(msg)
	} else {
		s.minutes, cmd = s.minutes.Update(msg)
	}
	return s, cmd
}

func (s *StudyScreen) submit() tea.Cmd {
	minutes, err := s.minutes.NumericValue()
	if err != nil || minutes <= 0 {
		s.err = "enter the number of minutes you studied"
		return nil
	}
	s.err = ""
	s.busy = true
	b, id, notes := s.backend, s.pet.ID, strings.TrimSpace(s.notes.Value())
	return func() tea.Msg {
		res, err := b.LogStudy(context.Background(), id, minutes, notes)
		return loggedMsg{res: res, err: err}
	}
}

func (s *StudyScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var body string
	if s.result != nil {
		body = renderResult(*s.result, cw)
	} else {
		parts := []string{
			theme.Title.Render(fmt.Sprintf("%s %s  Lv %d", s.pet.Emoji, s.pet.SkillName, s.pet.Level)),
			"",
			s.minutes.View(),
			"",
			s.notes.View(),
			"",
			theme.Hint.Render("Every minute is worth 10 EXP."),
		}
		switch {
		case s.busy:
			parts = append(parts, theme.Hint.Render("saving..."))
		case s.err != "":
			parts = append(parts, theme.ErrorText.Render(s.err))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		components.ArcadeCard(body, cw))
}

// renderResult summarises a session: EXP gained, level ups and badges.
func renderResult(r api.ProgressResult, cw int) string {
	c := r.Character
	gain := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).
		Render(fmt.Sprintf("+%d EXP", r.ExperienceGained))

	lines := []string{gain, ""}
	if r.LevelsGained > 0 {
		lines = append(lines, theme.Correct.Render(
			fmt.Sprintf("LEVEL UP! Lv %d → Lv %d", r.LevelBefore, c.Level)))
	}
	lines = append(lines,
		fmt.Sprintf("%s %s  Lv %d %s", c.Emoji, c.SkillName, c.Level, c.Stage),
		components.ExpBar(c.Experience, c.ExperienceToNextLevel, cw-8),
		lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("🔥 %d day streak", c.Streak)),
	)
	for _, b := range r.NewBadges {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.TierColor(b.Tier)).Bold(true).
			Render(fmt.Sprintf("%s New badge: %s", b.Icon, b.Name)))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}
