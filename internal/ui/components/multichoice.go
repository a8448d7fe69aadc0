package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/codepet/codepet/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. The correct option is not
// known until Reveal is called with the graded result.
type MultiChoice struct {
	Question     string
	Options      []string
	Selected     int
	Submitted    bool
	ChosenIndex  int
	CorrectIndex int
}

// NewMultiChoice creates a new multiple-choice component.
func NewMultiChoice(question string, options []string) MultiChoice {
	return MultiChoice{
		Question:     question,
		Options:      options,
		ChosenIndex:  -1,
		CorrectIndex: -1,
	}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation and selection. Number keys pick an
// option directly.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.Submitted = true
		m.ChosenIndex = m.Selected
	default:
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'0') <= len(m.Options) {
			m.Selected = int(key[0] - '1')
		}
	}

	return m, nil
}

// Answer is the chosen option, 1-based, or 0 before submission.
func (m MultiChoice) Answer() int {
	return m.ChosenIndex + 1
}

// Reveal marks the correct option, 1-based.
func (m *MultiChoice) Reveal(correct int) {
	m.CorrectIndex = correct - 1
}

// Revealed reports whether grading has come back.
func (m MultiChoice) Revealed() bool {
	return m.CorrectIndex >= 0
}

// IsCorrect returns true if the user chose the correct answer.
func (m MultiChoice) IsCorrect() bool {
	return m.Submitted && m.Revealed() && m.ChosenIndex == m.CorrectIndex
}

// View renders the multiple-choice component.
func (m MultiChoice) View() string {
	questionStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	s := questionStyle.Render(m.Question) + "\n\n"

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)

		var style lipgloss.Style
		switch {
		case m.Revealed() && i == m.CorrectIndex:
			style = theme.Correct
		case m.Revealed() && i == m.ChosenIndex:
			style = theme.Incorrect
		case m.Submitted && i == m.ChosenIndex:
			style = theme.Selected
		case m.Submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		s += style.Render(line) + "\n"
	}

	return s
}
