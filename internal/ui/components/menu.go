package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/codepet/codepet/internal/ui/theme"
)

// MenuItem is one selectable row. Hint is drawn dimmed after the label.
type MenuItem struct {
	Label    string
	Hint     string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list navigated with the arrow keys. When Height is
// positive only that many rows are drawn and the window follows the
// selection.
type Menu struct {
	Items    []MenuItem
	Selected int
	Height   int

	offset int
}

// NewMenu selects the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items}
	m.Selected = m.next(-1, 1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

func (m Menu) Init() tea.Cmd {
	return nil
}

// next walks from i in direction dir and returns the first enabled
// index, or -1 when there is none. Navigation stops at the ends.
func (m Menu) next(i, dir int) int {
	for i += dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			return i
		}
	}
	return -1
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	target := -1
	switch kmsg.String() {
	case "up", "k":
		target = m.next(m.Selected, -1)
	case "down", "j":
		target = m.next(m.Selected, 1)
	case "home", "g":
		target = m.next(-1, 1)
	case "end", "G":
		target = m.next(len(m.Items), -1)
	case "pgup":
		target = m.jump(-m.page())
	case "pgdown":
		target = m.jump(m.page())
	case "enter":
		if m.Selected < len(m.Items) {
			if item := m.Items[m.Selected]; item.Action != nil && !item.Disabled {
				return m, item.Action()
			}
		}
	}
	if target >= 0 {
		m.Selected = target
		m.scroll()
	}
	return m, nil
}

func (m Menu) page() int {
	if m.Height > 1 {
		return m.Height - 1
	}
	return 5
}

// jump moves by n rows, landing on the nearest enabled item.
func (m Menu) jump(n int) int {
	i := min(max(m.Selected+n, 0), len(m.Items)-1)
	if i >= 0 && !m.Items[i].Disabled {
		return i
	}
	dir := 1
	if n < 0 {
		dir = -1
	}
	if t := m.next(i, dir); t >= 0 {
		return t
	}
	return m.next(i, -dir)
}

// scroll keeps the selection inside the visible window.
func (m *Menu) scroll() {
	if m.Height <= 0 {
		return
	}
	if m.Selected < m.offset {
		m.offset = m.Selected
	}
	if m.Selected >= m.offset+m.Height {
		m.offset = m.Selected - m.Height + 1
	}
}

func (m Menu) View() string {
	var (
		selected = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		normal   = lipgloss.NewStyle().Foreground(theme.Text)
		dim      = lipgloss.NewStyle().Foreground(theme.TextDim)
	)

	from, to := 0, len(m.Items)
	if m.Height > 0 && m.Height < len(m.Items) {
		from = min(m.offset, len(m.Items)-m.Height)
		to = from + m.Height
	}

	var b strings.Builder
	if from > 0 {
		b.WriteString(dim.Render("    ↑ more") + "\n")
	}
	for i := from; i < to; i++ {
		item := m.Items[i]
		var line string
		switch {
		case i == m.Selected:
			line = selected.Render("  ▸ " + item.Label)
		case item.Disabled:
			line = dim.Render("    " + item.Label)
		default:
			line = normal.Render("    " + item.Label)
		}
		if item.Hint != "" {
			line += "  " + dim.Render(item.Hint)
		}
		b.WriteString(line + "\n")
	}
	if to < len(m.Items) {
		b.WriteString(dim.Render("    ↓ more") + "\n")
	}
	return b.String()
}
