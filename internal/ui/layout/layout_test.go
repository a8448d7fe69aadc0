package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestSizeThresholds(t *testing.T) {
	if !IsTooSmall(79, 30) || !IsTooSmall(100, 23) {
		t.Error("expected terminals under 80x24 to be too small")
	}
	if IsTooSmall(80, 24) {
		t.Error("80x24 should fit")
	}
	if !IsCompactWidth(99) || IsCompactWidth(100) {
		t.Error("compact width threshold should be 100")
	}
}

func TestChromeHeader(t *testing.T) {
	body := func(int, int) string { return "body" }
	out := Chrome{Title: "Home", User: "ana", Streak: 3}.Render(100, 30, body)
	for _, want := range []string{"codepet", "Home", "ana", "3 day", "body"} {
		if !strings.Contains(out, want) {
			t.Errorf("frame missing %q", want)
		}
	}
	if anon := (Chrome{Title: "Sign in"}).Render(100, 30, body); strings.Contains(anon, "ana") {
		t.Error("anonymous header should not show a user")
	}
}

func TestChromeGivesBodyTheRemainingHeight(t *testing.T) {
	var gotH int
	c := Chrome{Title: "Home", Hints: []KeyHint{{Key: "q", Description: "quit"}}}
	frame := c.Render(80, 24, func(_, h int) string { gotH = h; return "body" })
	if got := lipgloss.Height(frame); got != 24 {
		t.Errorf("frame height = %d, want 24", got)
	}
	if gotH != 24-6 {
		t.Errorf("body height = %d, want 18", gotH)
	}
}

func TestChromeTooSmall(t *testing.T) {
	called := false
	out := Chrome{}.Render(60, 20, func(int, int) string { called = true; return "" })
	if called || !strings.Contains(out, "Terminal too small") {
		t.Error("small terminals should get the resize message only")
	}
}

func TestFooterDropsOverflowingHints(t *testing.T) {
	hints := []KeyHint{{Key: "Enter", Description: "Select"}}
	for range 20 {
		hints = append(hints, KeyHint{Key: "Ctrl+X", Description: "Something long"})
	}
	hints = append(hints, KeyHint{Key: "Z", Description: "last"})
	f := Chrome{Hints: hints}.footer(80)
	if !strings.Contains(f, "Select") || strings.Contains(f, "last") {
		t.Error("footer should keep leading hints and cut the overflow")
	}
}
