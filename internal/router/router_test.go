package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/codepet/codepet/internal/screen"
)

type stubScreen struct {
	title   string
	initRan bool
	got     []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}

func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

func TestPushAndPop(t *testing.T) {
	home := &stubScreen{title: "home"}
	r := New(home)

	study := &stubScreen{title: "study"}
	r.Update(PushScreenMsg{Screen: study})
	if r.Depth() != 2 || r.Active() != study {
		t.Fatalf("expected study on top, depth %d", r.Depth())
	}
	if !study.initRan {
		t.Error("expected Init() to run on pushed screen")
	}

	cmd := r.Update(PopScreenMsg{})
	if r.Active() != home {
		t.Fatalf("expected home after pop, got %q", r.Active().Title())
	}
	if cmd == nil {
		t.Fatal("expected a refresh command after pop")
	}
	if _, ok := cmd().(RefreshMsg); !ok {
		t.Error("expected pop to produce RefreshMsg")
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	if cmd := r.Pop(); cmd != nil {
		t.Error("expected no command when popping the last screen")
	}
	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
}

func TestReplaceKeepsDepth(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	r.Push(&stubScreen{title: "signin"})

	next := &stubScreen{title: "study"}
	r.Update(ReplaceScreenMsg{Screen: next})

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "study" {
		t.Errorf("expected active 'study', got %q", r.Active().Title())
	}
	if !next.initRan {
		t.Error("expected Init() to run on replaced screen")
	}
}

func TestForwardsToActive(t *testing.T) {
	home := &stubScreen{title: "home"}
	r := New(home)
	r.Update(RefreshMsg{})
	if len(home.got) != 1 {
		t.Fatalf("expected 1 forwarded message, got %d", len(home.got))
	}
	if r.View(80, 24) != "home" {
		t.Errorf("unexpected view %q", r.View(80, 24))
	}
}

func TestCommandHelpers(t *testing.T) {
	s := &stubScreen{title: "x"}
	if msg, ok := PushCmd(s)().(PushScreenMsg); !ok || msg.Screen != s {
		t.Error("PushCmd should wrap the screen")
	}
	if _, ok := PopCmd().(PopScreenMsg); !ok {
		t.Error("PopCmd should produce PopScreenMsg")
	}
	if msg, ok := ReplaceCmd(s)().(ReplaceScreenMsg); !ok || msg.Screen != s {
		t.Error("ReplaceCmd should wrap the screen")
	}
}
