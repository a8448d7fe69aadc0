// Package adopt attaches a new pet to a tech stack.
package adopt

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/codepet/codepet/internal/api"
	"github.com/codepet/codepet/internal/backend"
	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/router"
	"github.com/codepet/codepet/internal/screen"
	"github.com/codepet/codepet/internal/ui/components"
	"github.com/codepet/codepet/internal/ui/layout"
	"github.com/codepet/codepet/internal/ui/theme"
)

type step int

const (
	stepStack step = iota
	stepAnimal
	stepDone
)

type optionsMsg struct {
	stacks  []catalog.TechStack
	animals []api.Animal
	err     error
}

type adoptedMsg struct {
	pet api.Character
	err error
}

type pickedMsg struct{ index int }

type AdoptScreen struct {
	backend backend.Backend
	owned   map[string]bool

	step    step
	stacks  []catalog.TechStack
	animals []api.Animal
	stack   catalog.TechStack
	menu    components.Menu
	pet     api.Character

	busy bool
	err  error
}

var (
	_ screen.Screen          = (*AdoptScreen)(nil)
	_ screen.KeyHintProvider = (*AdoptScreen)(nil)
)

// New offers every stack the user has no pet for yet.
func New(b backend.Backend, chars []api.Character) *AdoptScreen {
	owned := make(map[string]bool, len(chars))
	for _, c := range chars {
		owned[c.SkillID] = true
	}
	return &AdoptScreen{backend: b, owned: owned}
}

func (s *AdoptScreen) Title() string {
	return "New pet"
}

func (s *AdoptScreen) KeyHints() []layout.KeyHint {
	if s.step == stepDone {
		return []layout.KeyHint{{Key: "Enter", Description: "Back home"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Choose"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *AdoptScreen) Init() tea.Cmd {
	s.busy = true
	b := s.backend
	return func() tea.Msg {
		ctx := context.Background()
		stacks, err := b.TechStacks(ctx)
		if err != nil {
			return optionsMsg{err: err}
		}
		animals, err := b.Animals(ctx)
		return optionsMsg{stacks: stacks, animals: animals, err: err}
	}
}

func pick(i int) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return pickedMsg{index: i} }
	}
}

func (s *AdoptScreen) stackMenu() components.Menu {
	var items []components.MenuItem
	for i, st := range s.stacks {
		label := fmt.Sprintf("%s %s", st.Icon, st.Name)
		if s.owned[st.ID] {
			label += " (adopted)"
		}
		items = append(items, components.MenuItem{Label: label, Action: pick(i), Disabled: s.owned[st.ID]})
	}
	return components.NewMenu(items)
}

func (s *AdoptScreen) animalMenu() components.Menu {
	var items []components.MenuItem
	for i, a := range s.animals {
		items = append(items, components.MenuItem{Label: fmt.Sprintf("%s %s", a.Emoji, a.Name), Action: pick(i)})
	}
	return components.NewMenu(items)
}

func (s *AdoptScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case optionsMsg:
		s.busy = false
		s.err = msg.err
		s.stacks, s.animals = msg.stacks, msg.animals
		s.menu = s.stackMenu()
		return s, nil

	case pickedMsg:
		switch s.step {
		case stepStack:
			s.stack = s.stacks[msg.index]
			s.step = stepAnimal
			s.menu = s.animalMenu()
		case stepAnimal:
			s.busy = true
			b, stack, animal := s.backend, s.stack.ID, s.animals[msg.index].ID
			return s, func() tea.Msg {
				pet, err := b.AttachCharacter(context.Background(), stack, animal)
				return adoptedMsg{pet: pet, err: err}
			}
		}
		return s, nil

	case adoptedMsg:
		s.busy = false
		s.err = msg.err
		if msg.err == nil {
			s.pet = msg.pet
			s.step = stepDone
		}
		return s, nil

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		if s.step == stepDone {
			if msg.String() == "enter" {
				return s, router.PopCmd
			}
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *AdoptScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var body string
	switch s.step {
	case stepStack:
		body = theme.Title.Render("Which stack are you learning?") + "\n\n" + s.menu.View()
	case stepAnimal:
		body = theme.Title.Render(fmt.Sprintf("Who will learn %s with you?", s.stack.Name)) + "\n\n" + s.menu.View()
	case stepDone:
		body = lipgloss.JoinVertical(lipgloss.Center,
			theme.Correct.Render("Say hello!"),
			"",
			fmt.Sprintf("%s  %s · Lv %d", s.pet.Emoji, s.pet.SkillName, s.pet.Level),
			theme.Hint.Render(s.pet.Message),
		)
	}
	switch {
	case s.busy:
		body += "\n" + theme.Hint.Render("loading...")
	case s.err != nil:
		body += "\n" + theme.ErrorText.Render(s.err.Error())
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		components.ArcadeCard(body, cw))
}
