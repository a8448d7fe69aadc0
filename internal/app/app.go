// Package app is the root Bubble Tea model of the terminal UI.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/codepet/codepet/internal/backend"
	"github.com/codepet/codepet/internal/logger"
	"github.com/codepet/codepet/internal/router"
	"github.com/codepet/codepet/internal/screen"
	"github.com/codepet/codepet/internal/screens/home"
	"github.com/codepet/codepet/internal/screens/signin"
	"github.com/codepet/codepet/internal/screens/welcome"
	"github.com/codepet/codepet/internal/ui/layout"
)

// Options configure Run.
type Options struct {
	// Version is shown in update notes; empty disables the update check.
	Version string
	Checker home.UpdateChecker

	// SkipSplash starts directly on home or sign-in.
	SkipSplash bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int

	user   string
	streak int
}

// newAppModel starts on the splash, which hands over to home when someone
// is signed in and to the sign-in form otherwise.
func newAppModel(b backend.Backend, signedIn bool, opts Options) AppModel {
	homeOpts := home.Options{Version: opts.Version, Checker: opts.Checker}
	toHome := func() screen.Screen { return home.New(b, homeOpts) }
	first := toHome
	if !signedIn {
		first = func() screen.Screen { return signin.New(b, toHome) }
	}

	var initial screen.Screen = welcome.New(first)
	if opts.SkipSplash {
		initial = first()
	}
	return AppModel{router: router.New(initial)}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, router.PopCmd
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	if sp, ok := m.router.Active().(screen.StatusProvider); ok {
		m.user, m.streak = sp.Status()
	}
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.frame())
	return v
}

// frame renders the chrome and the active screen for the current size.
func (m AppModel) frame() string {
	active := m.router.Active()
	chrome := layout.Chrome{Title: active.Title(), User: m.user, Streak: m.streak}
	switch {
	case isHintProvider(active):
		chrome.Hints = active.(screen.KeyHintProvider).KeyHints()
	case m.router.Depth() > 1:
		chrome.Hints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	default:
		chrome.Hints = []layout.KeyHint{
			{Key: "Any key", Description: "Continue"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return chrome.Render(m.width, m.height, m.router.View)
}

func isHintProvider(s screen.Screen) bool {
	_, ok := s.(screen.KeyHintProvider)
	return ok
}

// Run starts the terminal UI on b and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, b backend.Backend, opts Options) error {
	_, err := b.Me(ctx)
	signedIn := err == nil

	log := logger.Component("tui")
	log.Info().Bool("signed_in", signedIn).Msg("starting")

	p := tea.NewProgram(newAppModel(b, signedIn, opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("program exited")
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
