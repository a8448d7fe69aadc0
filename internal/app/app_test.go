package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/codepet/codepet/internal/backend/backendtest"
	"github.com/codepet/codepet/internal/screens/home"
	"github.com/codepet/codepet/internal/screens/signin"
	"github.com/codepet/codepet/internal/screens/welcome"
)

func TestStartScreen(t *testing.T) {
	b := backendtest.NewLocal(t)

	m := newAppModel(b, false, Options{})
	if _, ok := m.router.Active().(*welcome.WelcomeScreen); !ok {
		t.Errorf("expected the splash first, got %T", m.router.Active())
	}

	m = newAppModel(b, false, Options{SkipSplash: true})
	if _, ok := m.router.Active().(*signin.SignInScreen); !ok {
		t.Errorf("signed-out start should be sign-in, got %T", m.router.Active())
	}

	m = newAppModel(b, true, Options{SkipSplash: true})
	if _, ok := m.router.Active().(*home.HomeScreen); !ok {
		t.Errorf("signed-in start should be home, got %T", m.router.Active())
	}
}

func TestHeaderFollowsHome(t *testing.T) {
	b, _ := backendtest.WithPet(t)
	m := newAppModel(b, true, Options{SkipSplash: true})

	model, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 45})
	m = model.(AppModel)
	model, _ = m.Update(m.Init()())
	m = model.(AppModel)

	if m.user != "ana" {
		t.Errorf("header user = %q, want ana", m.user)
	}
	if !strings.Contains(m.frame(), "codepet") {
		t.Error("frame should carry the header")
	}
}

func TestKeys(t *testing.T) {
	m := newAppModel(backendtest.NewLocal(t), false, Options{SkipSplash: true})

	if _, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape}); cmd != nil {
		t.Error("esc on the bottom screen should do nothing")
	}
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should produce QuitMsg")
	}
}

func TestTooSmall(t *testing.T) {
	m := newAppModel(backendtest.NewLocal(t), false, Options{SkipSplash: true})
	model, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(model.(AppModel).frame(), "Terminal too small") {
		t.Error("expected the resize message")
	}
}
