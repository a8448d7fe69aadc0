// Package quiz lists a stack's questions and runs one at a time.
package quiz

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/codepet/codepet/internal/api"
	"github.com/codepet/codepet/internal/backend"
	"github.com/codepet/codepet/internal/screen"
	"github.com/codepet/codepet/internal/ui/components"
	"github.com/codepet/codepet/internal/ui/layout"
	"github.com/codepet/codepet/internal/ui/theme"
)

var (
	difficulties = []string{"", "EASY", "MEDIUM", "HARD"}
	solvedModes  = []string{"", "UNSOLVED", "SOLVED"}
)

// listRows is how many questions the list shows before scrolling.
const listRows = 8

type phase int

const (
	phaseList phase = iota
	phaseAnswer
	phaseResult
)

type listMsg struct {
	list api.QuestionList
	err  error
}

type questionMsg struct {
	q   api.Question
	err error
}

type resultMsg struct {
	res api.SubmitResult
	err error
}

// QuizScreen walks through list, answer and result for one pet's stack.
type QuizScreen struct {
	backend backend.Backend
	pet     api.Character

	phase      phase
	difficulty int
	solved     int

	list     api.QuestionList
	menu     components.Menu
	question api.Question
	choice   components.MultiChoice
	result   *api.SubmitResult

	busy bool
	err  error
}

var (
	_ screen.Screen          = (*QuizScreen)(nil)
	_ screen.KeyHintProvider = (*QuizScreen)(nil)
)

// New quizzes on the stack of chars[current].
func New(b backend.Backend, chars []api.Character, current int) *QuizScreen {
	s := &QuizScreen{backend: b}
	if current >= 0 && current < len(chars) {
		s.pet = chars[current]
	}
	return s
}

func (s *QuizScreen) Title() string {
	return "Quiz · " + s.pet.SkillName
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseAnswer:
		return []layout.KeyHint{
			{Key: "↑↓/1-9", Description: "Choose"},
			{Key: "Enter", Description: "Answer"},
			{Key: "Esc", Description: "Leave quiz"},
		}
	case phaseResult:
		return []layout.KeyHint{{Key: "Enter", Description: "Back to list"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "f", Description: "Difficulty"},
		{Key: "s", Description: "Solved filter"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return s.load()
}

func (s *QuizScreen) load() tea.Cmd {
	s.busy = true
	b, stack := s.backend, s.pet.SkillID
	f := backend.QuestionFilter{Difficulty: difficulties[s.difficulty], Solved: solvedModes[s.solved]}
	return func() tea.Msg {
		list, err := b.Questions(context.Background(), stack, f)
		return listMsg{list: list, err: err}
	}
}

func (s *QuizScreen) open(id int64) tea.Cmd {
	s.busy = true
	b := s.backend
	return func() tea.Msg {
		q, err := b.Question(context.Background(), id)
		return questionMsg{q: q, err: err}
	}
}

func (s *QuizScreen) submit(id int64, answer int) tea.Cmd {
	s.busy = true
	b := s.backend
	return func() tea.Msg {
		res, err := b.Submit(context.Background(), id, answer)
		return resultMsg{res: res, err: err}
	}
}

func (s *QuizScreen) buildMenu() {
	items := make([]components.MenuItem, 0, len(s.list.Questions))
	for _, q := range s.list.Questions {
		mark := "  "
		if q.Solved {
			mark = "✓ "
		}
		id := q.ID
		items = append(items, components.MenuItem{
			Label:  fmt.Sprintf("%s%-6s %s", mark, q.Difficulty, q.Title),
			Hint:   fmt.Sprintf("+%d", q.RewardExp),
			Action: func() tea.Cmd { return s.open(id) },
		})
	}
	s.menu = components.NewMenu(items)
	s.menu.Height = listRows
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case listMsg:
		s.busy = false
		s.err = msg.err
		if msg.err == nil {
			s.list = msg.list
			s.buildMenu()
		}
		return s, nil

	case questionMsg:
		s.busy = false
		s.err = msg.err
		if msg.err == nil {
			s.question = msg.q
			s.choice = components.NewMultiChoice(msg.q.Content, msg.q.Options)
			s.phase = phaseAnswer
		}
		return s, nil

	case resultMsg:
		s.busy = false
		s.err = msg.err
		if msg.err == nil {
			s.result = &msg.res
			s.choice.Reveal(msg.res.CorrectAnswer)
			s.phase = phaseResult
		}
		return s, nil

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch s.phase {
	case phaseList:
		switch msg.String() {
		case "f":
			s.difficulty = (s.difficulty + 1) % len(difficulties)
			return s, s.load()
		case "s":
			s.solved = (s.solved + 1) % len(solvedModes)
			return s, s.load()
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd

	case phaseAnswer:
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		if s.choice.Submitted {
			return s, s.submit(s.question.ID, s.choice.Answer())
		}
		return s, cmd

	case phaseResult:
		if msg.String() == "enter" {
			s.phase = phaseList
			s.result = nil
			return s, s.load()
		}
	}
	return s, nil
}

func (s *QuizScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	if layout.IsCompactWidth(width) {
		cw = width - 6
	}

	var body string
	switch s.phase {
	case phaseList:
		body = s.viewList()
	default:
		body = s.choice.View()
		if s.phase == phaseResult && s.result != nil {
			body += "\n" + renderResult(*s.result)
		}
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

func (s *QuizScreen) viewList() string {
	diff, solved := difficulties[s.difficulty], solvedModes[s.solved]
	if diff == "" {
		diff = "ALL"
	}
	if solved == "" {
		solved = "ALL"
	}
	header := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true).
		Render(fmt.Sprintf("%d/%d solved", s.list.Solved, s.list.Total))
	filter := theme.Hint.Render(fmt.Sprintf("difficulty %s · %s", diff, solved))

	if len(s.list.Questions) == 0 {
		return header + "\n" + filter + "\n\n" + theme.Body.Render("No questions match.")
	}
	return header + "\n" + filter + "\n\n" + s.menu.View()
}

func renderResult(r api.SubmitResult) string {
	var lines []string
	if r.Correct {
		lines = append(lines, theme.Correct.Render("Correct!"))
	} else {
		lines = append(lines, theme.Incorrect.Render(
			fmt.Sprintf("Not quite. The answer is %d. Saved to your notebook.", r.CorrectAnswer)))
	}
	if r.Explanation != "" {
		lines = append(lines, theme.Body.Render(r.Explanation))
	}
	if r.Progress != nil {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).
			Render(fmt.Sprintf("+%d EXP", r.Progress.ExperienceGained)))
		if r.Progress.LevelsGained > 0 {
			lines = append(lines, theme.Correct.Render(fmt.Sprintf("LEVEL UP! Lv %d", r.Progress.Character.Level)))
		}
	} else if r.Correct && !r.FirstSolve {
		lines = append(lines, theme.Hint.Render("Already solved, no EXP this time."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
