// Package home is the main menu: the signed-in user's pets and the way
// into every other screen.
package home

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/codepet/codepet/internal/account"
	"github.com/codepet/codepet/internal/api"
	"github.com/codepet/codepet/internal/backend"
	"github.com/codepet/codepet/internal/router"
	"github.com/codepet/codepet/internal/screen"
	"github.com/codepet/codepet/internal/screens/adopt"
	"github.com/codepet/codepet/internal/screens/badges"
	"github.com/codepet/codepet/internal/screens/notebook"
	quizscreen "github.com/codepet/codepet/internal/screens/quiz"
	rankingscreen "github.com/codepet/codepet/internal/screens/ranking"
	"github.com/codepet/codepet/internal/screens/signin"
	"github.com/codepet/codepet/internal/screens/study"
	"github.com/codepet/codepet/internal/selfupdate"
	"github.com/codepet/codepet/internal/ui/components"
	"github.com/codepet/codepet/internal/ui/layout"
	"github.com/codepet/codepet/internal/ui/theme"
)

// UpdateChecker is satisfied by *selfupdate.Checker.
type UpdateChecker interface {
	Check(ctx context.Context, input *selfupdate.CheckInput) (*selfupdate.CheckResult, error)
}

// Options are the optional parts of the home screen.
type Options struct {
	Version string
	Checker UpdateChecker
}

const (
	itemStudy = iota
	itemQuiz
	itemNotebook
	itemAdopt
	itemRanking
	itemBadges
	itemSignOut
	itemExit
)

const fullLayoutHeight = 40

var menuLabels = []string{"STUDY", "QUIZ", "NOTEBOOK", "NEW PET", "RANKING", "BADGES", "SIGN OUT", "EXIT"}

type loadedMsg struct {
	me    api.User
	chars []api.Character
	err   error
}

type signedOutMsg struct{ err error }

type updateMsg struct{ latest string }

// HomeScreen lists the user's pets and the main menu.
type HomeScreen struct {
	backend backend.Backend
	opts    Options

	me      api.User
	chars   []api.Character
	current int
	loaded  bool
	err     error
	latest  string

	menu components.Menu
}

var (
	_ screen.Screen          = (*HomeScreen)(nil)
	_ screen.KeyHintProvider = (*HomeScreen)(nil)
	_ screen.StatusProvider  = (*HomeScreen)(nil)
)

func New(b backend.Backend, opts Options) *HomeScreen {
	h := &HomeScreen{backend: b, opts: opts}
	h.buildMenu()
	return h
}

func (h *HomeScreen) buildMenu() {
	noPets := len(h.chars) == 0
	items := make([]components.MenuItem, len(menuLabels))
	for i, label := range menuLabels {
		items[i] = components.MenuItem{Label: label, Action: h.action(i)}
	}
	items[itemStudy].Disabled = noPets
	items[itemQuiz].Disabled = noPets
	items[itemNotebook].Disabled = noPets

	selected := h.menu.Selected
	h.menu = components.NewMenu(items)
	if selected < len(items) && !items[selected].Disabled {
		h.menu.Selected = selected
	}
}

func (h *HomeScreen) action(item int) func() tea.Cmd {
	b := h.backend
	return func() tea.Cmd {
		switch item {
		case itemStudy:
			return router.PushCmd(study.New(b, h.chars, h.current))
		case itemQuiz:
			return router.PushCmd(quizscreen.New(b, h.chars, h.current))
		case itemNotebook:
			return router.PushCmd(notebook.New(b, h.chars, h.current))
		case itemAdopt:
			return router.PushCmd(adopt.New(b, h.chars))
		case itemRanking:
			return router.PushCmd(rankingscreen.New(b))
		case itemBadges:
			return router.PushCmd(badges.New(b))
		case itemSignOut:
			return func() tea.Msg {
				return signedOutMsg{err: b.Logout(context.Background())}
			}
		}
		return tea.Quit
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	if up := h.checkUpdate(); up != nil {
		return tea.Batch(h.load(), up)
	}
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	b := h.backend
	return func() tea.Msg {
		ctx := context.Background()
		me, err := b.Me(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		chars, err := b.Characters(ctx)
		return loadedMsg{me: me, chars: chars, err: err}
	}
}

func (h *HomeScreen) checkUpdate() tea.Cmd {
	if h.opts.Checker == nil || h.opts.Version == "" || h.opts.Version == selfupdate.DevVersion {
		return nil
	}
	checker, version := h.opts.Checker, h.opts.Version
	return func() tea.Msg {
		res, err := checker.Check(context.Background(), &selfupdate.CheckInput{Version: version})
		if err != nil || !res.UpdateAvailable {
			return nil
		}
		return updateMsg{latest: res.LatestVersion}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if !h.loaded {
			h.menu.Selected = 0
		}
		h.loaded = true
		if errors.Is(msg.err, account.ErrNotSignedIn) {
			return h, h.toSignIn()
		}
		h.err = msg.err
		if msg.err == nil {
			h.me = msg.me
			h.chars = msg.chars
			if h.current >= len(h.chars) {
				h.current = 0
			}
		}
		h.buildMenu()
		return h, nil

	case router.RefreshMsg:
		return h, h.load()

	case updateMsg:
		h.latest = msg.latest
		return h, nil

	case signedOutMsg:
		if msg.err != nil {
			h.err = msg.err
			return h, nil
		}
		return h, h.toSignIn()

	case tea.KeyPressMsg:
		switch msg.String() {
		case "left", "h":
			if len(h.chars) > 0 {
				h.current = (h.current - 1 + len(h.chars)) % len(h.chars)
			}
			return h, nil
		case "right", "l":
			if len(h.chars) > 0 {
				h.current = (h.current + 1) % len(h.chars)
			}
			return h, nil
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) toSignIn() tea.Cmd {
	b, opts := h.backend, h.opts
	return router.ReplaceCmd(signin.New(b, func() screen.Screen { return New(b, opts) }))
}

func (h *HomeScreen) View(width, height int) string {
	// The full layout needs room for the banner, the face and a button grid.
	compact := height < fullLayoutHeight || layout.IsCompactWidth(width)
	cw := components.ContentWidth(width)

	sections := []string{renderTitle(cw, compact)}

	switch {
	case !h.loaded:
		sections = append(sections, theme.Hint.Render("loading..."))
	case h.err != nil:
		sections = append(sections, theme.ErrorText.Render(h.err.Error()))
	case len(h.chars) == 0:
		sections = append(sections, renderNoPets(cw))
	default:
		sections = append(sections, renderPetCard(h.chars[h.current], h.current, len(h.chars), cw, compact))
	}

	sections = append(sections, components.ButtonGrid(h.menu, cw, compact))

	if h.latest != "" {
		sections = append(sections, renderUpdateNote(h.latest, cw))
	}

	sep := "\n\n"
	if compact {
		sep = "\n"
	}
	return components.CabinetFrame(strings.Join(sections, sep), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
	}
	if len(h.chars) > 1 {
		hints = append(hints, layout.KeyHint{Key: "←→", Description: "Switch pet"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// Status reports the user's name and best current streak.
func (h *HomeScreen) Status() (string, int) {
	best := 0
	for _, c := range h.chars {
		if c.Streak > best {
			best = c.Streak
		}
	}
	return h.me.Name, best
}
