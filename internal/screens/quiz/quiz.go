// Package quiz runs a quiz one question at a time and submits the answers
// together.
package quiz

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mlmathr/internal/achievements"
	"github.com/abhisek/mlmathr/internal/curriculum"
	"github.com/abhisek/mlmathr/internal/router"
	"github.com/abhisek/mlmathr/internal/screen"
	"github.com/abhisek/mlmathr/internal/screens/summary"
	"github.com/abhisek/mlmathr/internal/ui/components"
	"github.com/abhisek/mlmathr/internal/ui/layout"
	"github.com/abhisek/mlmathr/internal/ui/theme"
)

// QuizScreen walks through a quiz's questions. Nothing is recorded until
// the learner submits; leaving with Esc discards the answers.
type QuizScreen struct {
	deps      screen.Deps
	item      curriculum.Item
	questions []components.MultiChoice
	current   int
	errMsg    string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a QuizScreen for the quiz id.
func New(deps screen.Deps, id string) *QuizScreen {
	it, _ := deps.Machine.Graph().Item(id)
	qs := make([]components.MultiChoice, len(it.Questions))
	for i, q := range it.Questions {
		qs[i] = components.NewMultiChoice(q.Prompt, q.Choices)
	}
	return &QuizScreen{deps: deps, item: it, questions: qs}
}

func (s *QuizScreen) Init() tea.Cmd {
	return nil
}

func (s *QuizScreen) Title() string {
	return s.item.Title
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "1-4", Description: "Answer"},
		{Key: "←→", Description: "Question"},
		{Key: "s", Description: "Submit"},
		{Key: "Esc", Description: "Abandon"},
	}
}

// Answers returns the chosen option per question, -1 where unanswered.
func (s *QuizScreen) Answers() []int {
	answers := make([]int, len(s.questions))
	for i, q := range s.questions {
		answers[i] = q.Chosen
	}
	return answers
}

func (s *QuizScreen) unanswered() int {
	n := 0
	for _, q := range s.questions {
		if !q.Answered() {
			n++
		}
	}
	return n
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(s.questions) == 0 {
		return s, nil
	}

	switch kmsg.String() {
	case "left", "h":
		if s.current > 0 {
			s.current--
		}
		return s, nil
	case "right", "l", "tab":
		if s.current < len(s.questions)-1 {
			s.current++
		}
		return s, nil
	case "s":
		return s, s.submit()
	}

	before := s.questions[s.current].Chosen
	var cmd tea.Cmd
	s.questions[s.current], cmd = s.questions[s.current].Update(msg)
	if chosen := s.questions[s.current].Chosen; chosen != before && chosen != components.NoChoice {
		s.errMsg = ""
		if s.current < len(s.questions)-1 {
			s.current++
		}
	}
	return s, cmd
}

func (s *QuizScreen) submit() tea.Cmd {
	if n := s.unanswered(); n > 0 {
		s.errMsg = fmt.Sprintf("Answer every question first (%d left).", n)
		return nil
	}

	before := s.deps.Badges()
	res, err := s.deps.Machine.SubmitQuiz(s.item.ID, s.Answers())
	if err != nil {
		s.errMsg = "Could not submit: " + err.Error()
		return nil
	}
	s.deps.Log().Info("quiz submitted", "item", s.item.ID, "score", res.Score, "passed", res.Passed)

	result := summary.New(s.item, res, achievements.Newly(before, s.deps.Badges()))
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: result}
	}
}

func (s *QuizScreen) View(width, height int) string {
	if len(s.questions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\nThis quiz has no questions.")
	}

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + s.item.Listing)

	answered := len(s.questions) - s.unanswered()
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d  %s %d answered",
			s.current+1, len(s.questions),
			lipgloss.NewStyle().Foreground(theme.Success).Render("●"),
			answered,
		))

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	question := lipgloss.NewStyle().
		PaddingLeft(4).
		Render(s.questions[s.current].View())
	b.WriteString(question)
	b.WriteString("\n")

	hint := "Press s to submit"
	if n := s.unanswered(); n > 0 {
		hint = fmt.Sprintf("%d unanswered", n)
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Italic(true).
		Render(hint))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(s.errMsg))
	}

	return b.String()
}
