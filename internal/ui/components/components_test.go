package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code, Text: string(code)}
}

func TestMultiChoiceSelectAndReveal(t *testing.T) {
	m := NewMultiChoice("pick", []string{"a", "b", "c", "d"})
	if m.Revealed() || m.Answer() != 0 {
		t.Fatal("fresh component should have no answer")
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !m.Submitted || m.Answer() != 3 {
		t.Fatalf("answer = %d, want 3", m.Answer())
	}

	// Further keys are ignored once submitted.
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Answer() != 3 {
		t.Error("answer changed after submit")
	}

	if m.IsCorrect() {
		t.Error("IsCorrect before reveal")
	}
	m.Reveal(3)
	if !m.IsCorrect() {
		t.Error("expected correct after reveal")
	}
}

func TestMultiChoiceNumberKeys(t *testing.T) {
	m := NewMultiChoice("pick", []string{"a", "b", "c"})
	m, _ = m.Update(key('2'))
	if m.Selected != 1 {
		t.Errorf("selected = %d, want 1", m.Selected)
	}
	m, _ = m.Update(key('9'))
	if m.Selected != 1 {
		t.Error("out of range number key should be ignored")
	}
}

func TestMenuSkipsDisabled(t *testing.T) {
	var fired string
	m := NewMenu([]MenuItem{
		{Label: "off", Disabled: true},
		{Label: "study", Action: func() tea.Cmd { fired = "study"; return nil }},
		{Label: "quiz"},
	})
	if m.Selected != 1 {
		t.Fatalf("selected = %d, want first enabled item", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 1 {
		t.Error("up should not land on disabled item")
	}
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if fired != "study" {
		t.Error("enter should run the selected action")
	}
	if !strings.Contains(m.View(), "▸ study") {
		t.Error("selected item should carry the arrow")
	}
}

func TestMenuScrollsWithSelection(t *testing.T) {
	var items []MenuItem
	for _, l := range []string{"a", "b", "c", "d", "e"} {
		items = append(items, MenuItem{Label: "item " + l, Hint: "+10"})
	}
	m := NewMenu(items)
	m.Height = 2

	v := m.View()
	if !strings.Contains(v, "item b") || strings.Contains(v, "item c") {
		t.Fatalf("window should show the first two rows:\n%s", v)
	}
	if !strings.Contains(v, "↓ more") || strings.Contains(v, "↑ more") {
		t.Errorf("only the lower overflow marker expected:\n%s", v)
	}

	for range 3 {
		m, _ = m.Update(key('j'))
	}
	v = m.View()
	if m.Selected != 3 || !strings.Contains(v, "▸ item d") || strings.Contains(v, "item b") {
		t.Errorf("window should follow selection to d:\n%s", v)
	}

	m, _ = m.Update(key('G'))
	if m.Selected != 4 {
		t.Errorf("end: selected = %d, want 4", m.Selected)
	}
	m, _ = m.Update(key('g'))
	if m.Selected != 0 || !strings.Contains(m.View(), "▸ item a") {
		t.Errorf("home: selected = %d, want 0", m.Selected)
	}
}

func TestExpBarLabel(t *testing.T) {
	if !strings.Contains(ExpBar(50, 150, 40), "50/150") {
		t.Error("exp bar should show experience over requirement")
	}
	// Zero requirement must not divide by zero.
	_ = ExpBar(0, 0, 40)

	full := ExpBar(150, 150, 40)
	if strings.Contains(full, "░") || !strings.Contains(full, "█") {
		t.Error("a full bar should have no empty cells")
	}
	if strings.Contains(ExpBar(0, 150, 40), "█") {
		t.Error("an empty bar should have no filled cells")
	}
}

func TestNumericInputDropsLetters(t *testing.T) {
	in := NewTextInput("Minutes", "30", true, 4)
	in.Focus()
	for _, r := range "4x5" {
		in, _ = in.Update(key(r))
	}
	if in.Value() != "45" {
		t.Errorf("value = %q, want 45", in.Value())
	}
	n, err := in.NumericValue()
	if err != nil || n != 45 {
		t.Errorf("NumericValue = %d, %v", n, err)
	}
}
