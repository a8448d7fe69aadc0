// Package signin is the sign-up / log-in form shown when no account is
// active.
package signin

import (
	"context"
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

type mode int

const (
	modeLogin mode = iota
	modeSignup
)

const (
	fieldName = iota
	fieldEmail
	fieldPassword
)

type authDoneMsg struct {
	res api.AuthResult
	err error
}

// SignInScreen collects credentials and replaces itself with next once
// the backend accepts them.
type SignInScreen struct {
	backend backend.Backend
	next    func() screen.Screen
	mode    mode
	fields  []components.TextInput
	focus   int
	err     string
	busy    bool
}

var (
	_ screen.Screen          = (*SignInScreen)(nil)
	_ screen.KeyHintProvider = (*SignInScreen)(nil)
	_ screen.StatusProvider  = (*SignInScreen)(nil)
)

func New(b backend.Backend, next func() screen.Screen) *SignInScreen {
	s := &SignInScreen{
		backend: b,
		next:    next,
		fields: []components.TextInput{
			components.NewTextInput("Name", "your name", false, 64),
			components.NewTextInput("Email", "you@example.com", false, 254),
			components.NewTextInput("Password", "at least 8 characters", false, 72).Masked(),
		},
	}
	s.focus = s.visible()[0]
	return s
}

func (s *SignInScreen) Title() string {
	if s.mode == modeSignup {
		return "Sign up"
	}
	return "Log in"
}

func (s *SignInScreen) KeyHints() []layout.KeyHint {
	other := "Sign up instead"
	if s.mode == modeSignup {
		other = "Log in instead"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+T", Description: other},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *SignInScreen) visible() []int {
	if s.mode == modeSignup {
		return []int{fieldName, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

func (s *SignInScreen) Init() tea.Cmd {
	return s.focusField(s.focus)
}

func (s *SignInScreen) focusField(i int) tea.Cmd {
	for j := range s.fields {
		s.fields[j].Blur()
	}
	s.focus = i
	return s.fields[i].Focus()
}

// move shifts focus by delta among the visible fields.
func (s *SignInScreen) move(delta int) tea.Cmd {
	vis := s.visible()
	pos := 0
	for i, f := range vis {
		if f == s.focus {
			pos = i
		}
	}
	pos = (pos + delta + len(vis)) % len(vis)
	return s.focusField(vis[pos])
}

func (s *SignInScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		s.busy = false
		if msg.err != nil {
			s.err = msg.err.Error()
			return s, nil
		}
		return s, router.ReplaceCmd(s.next())

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "ctrl+t":
			if s.mode == modeLogin {
				s.mode = modeSignup
			} else {
				s.mode = modeLogin
			}
			s.err = ""
			return s, s.focusField(s.visible()[0])
		case "tab", "down":
			return s, s.move(1)
		case "shift+tab", "up":
			return s, s.move(-1)
		case "enter":
			vis := s.visible()
			if s.focus != vis[len(vis)-1] {
				return s, s.move(1)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *SignInScreen) submit() tea.Cmd {
	name := strings.TrimSpace(s.fields[fieldName].Value())
	email := strings.TrimSpace(s.fields[fieldEmail].Value())
	password := s.fields[fieldPassword].Value()
	if email == "" || password == "" || (s.mode == modeSignup && name == "") {
		s.err = "please fill in every field"
		return nil
	}
	s.err = ""
	s.busy = true
	b, m := s.backend, s.mode
	return func() tea.Msg {
		ctx := context.Background()
		var res api.AuthResult
		var err error
		if m == modeSignup {
			res, err = b.Signup(ctx, name, email, password)
		} else {
			res, err = b.Login(ctx, email, password)
		}
		return authDoneMsg{res: res, err: err}
	}
}

func (s *SignInScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var parts []string
	heading := "Welcome back! Log in to see your pets."
	if s.mode == modeSignup {
		heading = "Create an account to adopt your first pet."
	}
	parts = append(parts, theme.Subtitle.Width(cw).Render(heading), "")
	for _, i := range s.visible() {
		parts = append(parts, s.fields[i].View(), "")
	}
	switch {
	case s.busy:
		parts = append(parts, theme.Hint.Render("checking..."))
	case s.err != "":
		parts = append(parts, theme.ErrorText.Render(s.err))
	}

	card := components.ArcadeCard(lipgloss.JoinVertical(lipgloss.Left, parts...), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

// Status clears the header while nobody is signed in.
func (s *SignInScreen) Status() (string, int) {
	return "", 0
}
