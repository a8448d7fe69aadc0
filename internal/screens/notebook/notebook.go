// Package notebook reviews the questions a pet's owner got wrong.
package notebook

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/codepet/codepet/internal/api"
	"github.com/codepet/codepet/internal/backend"
	"github.com/codepet/codepet/internal/screen"
	"github.com/codepet/codepet/internal/ui/components"
	"github.com/codepet/codepet/internal/ui/layout"
	"github.com/codepet/codepet/internal/ui/theme"
)

type loadedMsg struct {
	entries []api.WrongAnswer
	err     error
}

type changedMsg struct{ err error }

type NotebookScreen struct {
	backend backend.Backend
	pet     api.Character

	entries  []api.WrongAnswer
	selected int
	confirm  bool
	busy     bool
	err      error
}

var (
	_ screen.Screen          = (*NotebookScreen)(nil)
	_ screen.KeyHintProvider = (*NotebookScreen)(nil)
)

func New(b backend.Backend, chars []api.Character, current int) *NotebookScreen {
	s := &NotebookScreen{backend: b}
	if current >= 0 && current < len(chars) {
		s.pet = chars[current]
	}
	return s
}

func (s *NotebookScreen) Title() string {
	return "Notebook · " + s.pet.SkillName
}

func (s *NotebookScreen) KeyHints() []layout.KeyHint {
	if s.confirm {
		return []layout.KeyHint{
			{Key: "y", Description: "Clear all"},
			{Key: "any", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Browse"},
		{Key: "d", Description: "Remove"},
		{Key: "c", Description: "Clear all"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *NotebookScreen) Init() tea.Cmd {
	return s.load()
}

func (s *NotebookScreen) load() tea.Cmd {
	s.busy = true
	b, stack := s.backend, s.pet.SkillID
	return func() tea.Msg {
		entries, err := b.WrongAnswers(context.Background(), stack)
		return loadedMsg{entries: entries, err: err}
	}
}

func (s *NotebookScreen) change(fn func(context.Context) error) tea.Cmd {
	s.busy = true
	return func() tea.Msg {
		return changedMsg{err: fn(context.Background())}
	}
}

func (s *NotebookScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.busy = false
		s.err = msg.err
		s.entries = msg.entries
		if s.selected >= len(s.entries) {
			s.selected = max(len(s.entries)-1, 0)
		}
		return s, nil

	case changedMsg:
		s.busy = false
		if msg.err != nil {
			s.err = msg.err
			return s, nil
		}
		return s, s.load()

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		if s.confirm {
			s.confirm = false
			if msg.String() == "y" {
				b, stack := s.backend, s.pet.SkillID
				return s, s.change(func(ctx context.Context) error {
					_, err := b.ClearWrongAnswers(ctx, stack)
					return err
				})
			}
			return s, nil
		}
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.entries)-1 {
				s.selected++
			}
		case "d":
			if len(s.entries) > 0 {
				b, id := s.backend, s.entries[s.selected].QuestionID
				return s, s.change(func(ctx context.Context) error {
					return b.RemoveWrongAnswer(ctx, id)
				})
			}
		case "c":
			s.confirm = len(s.entries) > 0
		}
	}
	return s, nil
}

func (s *NotebookScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var parts []string
	switch {
	case s.err != nil:
		parts = append(parts, theme.ErrorText.Render(s.err.Error()))
	case len(s.entries) == 0 && !s.busy:
		parts = append(parts, theme.Body.Render("Nothing to review. Nice work!"))
	}

	for i, e := range s.entries {
		line := fmt.Sprintf("%-6s %s", e.Difficulty, e.Title)
		if i == s.selected {
			parts = append(parts, theme.Selected.Render("▸ "+line))
		} else {
			parts = append(parts, theme.Unselected.Render("  "+line))
		}
	}

	if len(s.entries) > 0 {
		parts = append(parts, "", renderEntry(s.entries[s.selected]))
	}
	if s.confirm {
		parts = append(parts, "", theme.ErrorText.Render(
			fmt.Sprintf("Clear all %d entries? (y/n)", len(s.entries))))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		components.ArcadeCard(lipgloss.JoinVertical(lipgloss.Left, parts...), cw))
}

// renderEntry shows the question with the user's pick and the right one.
func renderEntry(e api.WrongAnswer) string {
	var b strings.Builder
	b.WriteString(theme.Body.Bold(true).Render(e.Content))
	b.WriteString("\n\n")
	for i, opt := range e.Options {
		line := fmt.Sprintf("%d) %s", i+1, opt)
		switch i + 1 {
		case e.CorrectAnswer:
			line = theme.Correct.Render(line + "  ✓")
		case e.MyAnswer:
			line = theme.Incorrect.Render(line + "  ✗")
		default:
			line = lipgloss.NewStyle().Foreground(theme.TextDim).Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
