package roadmap

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mlmathr/internal/achievements"
	"github.com/abhisek/mlmathr/internal/curriculum"
	"github.com/abhisek/mlmathr/internal/progress"
	"github.com/abhisek/mlmathr/internal/router"
	"github.com/abhisek/mlmathr/internal/screen"
	"github.com/abhisek/mlmathr/internal/screens/quiz"
	"github.com/abhisek/mlmathr/internal/ui/layout"
	"github.com/abhisek/mlmathr/internal/ui/theme"
)

// DetailScreen shows a single lesson or quiz and the actions available on it.
type DetailScreen struct {
	deps      screen.Deps
	item      curriculum.Item
	notice    string
	isError   bool
	newBadges []achievements.Badge
}

var _ screen.Screen = (*DetailScreen)(nil)
var _ screen.KeyHintProvider = (*DetailScreen)(nil)
var _ screen.Resumer = (*DetailScreen)(nil)

// NewDetail creates the detail screen for id. An unknown id yields a
// screen with an empty item.
func NewDetail(deps screen.Deps, id string) *DetailScreen {
	it, _ := deps.Machine.Graph().Item(id)
	return &DetailScreen{deps: deps, item: it}
}

func (d *DetailScreen) Init() tea.Cmd {
	id := d.item.ID
	return func() tea.Msg {
		d.deps.Visit(id)
		return nil
	}
}

func (d *DetailScreen) Title() string { return d.item.Title }

// Resume drops the notice from the previous visit, such as a quiz result
// shown on the screen that was just popped.
func (d *DetailScreen) Resume() tea.Cmd {
	d.notice = ""
	d.isError = false
	d.newBadges = nil
	return nil
}

func (d *DetailScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{}
	switch d.deps.Machine.ItemState(d.item.ID) {
	case curriculum.StateAvailable:
		if d.item.IsQuiz() {
			hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Start quiz"})
		} else {
			hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Mark as read"})
		}
	case curriculum.StateAttempted:
		hints = append(hints, layout.KeyHint{Key: "r", Description: "Retry quiz"})
	}
	hints = append(hints,
		layout.KeyHint{Key: "n", Description: "Next"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
	return hints
}

func (d *DetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}
	switch kmsg.String() {
	case "enter":
		if d.item.IsQuiz() {
			return d, d.startQuiz()
		}
		d.completeLesson()
	case "r":
		if d.item.IsQuiz() {
			return d, d.retryQuiz()
		}
	case "n":
		next, ok := d.deps.Machine.NextUp(d.item.ID)
		if !ok {
			return d, nil
		}
		return d, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: NewDetail(d.deps, next.ID)}
		}
	}
	return d, nil
}

func (d *DetailScreen) completeLesson() {
	before := d.deps.Badges()
	xp, err := d.deps.Machine.CompleteLesson(d.item.ID)
	if err != nil {
		d.fail(err)
		return
	}
	d.isError = false
	if xp == 0 {
		d.notice = "Already completed."
		return
	}
	d.notice = fmt.Sprintf("+%d XP", xp)
	d.newBadges = achievements.Newly(before, d.deps.Badges())
}

func (d *DetailScreen) startQuiz() tea.Cmd {
	m := d.deps.Machine
	switch m.ItemState(d.item.ID) {
	case curriculum.StateCompleted:
		d.notice, d.isError = "Quiz already passed.", false
		return nil
	case curriculum.StateAttempted:
		d.notice, d.isError = "Press r to clear your last attempt and retry.", false
		return nil
	case curriculum.StateLocked:
		d.fail(&progress.LockedError{ItemID: d.item.ID, Missing: m.MissingPrerequisites(d.item.ID)})
		return nil
	}
	q := quiz.New(d.deps, d.item.ID)
	return func() tea.Msg { return router.PushScreenMsg{Screen: q} }
}

func (d *DetailScreen) retryQuiz() tea.Cmd {
	if err := d.deps.Machine.RetryQuiz(d.item.ID); err != nil {
		d.fail(err)
		return nil
	}
	return d.startQuiz()
}

func (d *DetailScreen) fail(err error) {
	d.isError = true
	switch {
	case errors.Is(err, progress.ErrLocked):
		d.notice = err.Error()
	case errors.Is(err, progress.ErrAlreadyCompleted):
		d.isError, d.notice = false, "Already completed."
	default:
		d.notice = "Could not update progress: " + err.Error()
	}
}

func (d *DetailScreen) View(width, height int) string {
	it := d.item
	m := d.deps.Machine
	state := m.ItemState(it.ID)

	contentWidth := width - 8
	if contentWidth > 70 {
		contentWidth = 70
	}

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render(fmt.Sprintf("  %s  %s", state.Icon(), it.Title)))
	b.WriteString("\n")
	b.WriteString("  " + theme.StateLabel(state) + lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf(" · %s · %d XP", it.Module, it.XP)))
	b.WriteString("\n\n")

	if it.Summary != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(contentWidth).
			Foreground(theme.Text).
			PaddingLeft(2).
			Render(it.Summary))
		b.WriteString("\n\n")
	}

	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	sectionStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	if it.IsQuiz() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d questions. A perfect score earns the XP.", it.TotalQuestions())))
		b.WriteString("\n\n")
		if rec, ok := m.QuizRecord(it.ID); ok {
			b.WriteString(sectionStyle.Render(fmt.Sprintf("  Last attempt: %d/%d", rec.Score, it.TotalQuestions())))
			b.WriteString("\n")
			b.WriteString(renderAttempt(it, rec))
			b.WriteString("\n")
		}
	}

	// Prerequisites.
	prereqs, _ := m.Graph().PrerequisitesOf(it.ID)
	if len(prereqs) > 0 {
		b.WriteString(sectionStyle.Render("  Prerequisites"))
		b.WriteString("\n")
		for _, id := range prereqs {
			p, _ := m.Graph().Item(id)
			icon := "○"
			style := dimStyle
			if m.HasCompleted(id) {
				icon = "●"
				style = lipgloss.NewStyle().Foreground(theme.Success)
			}
			b.WriteString(style.Render(fmt.Sprintf("  %s %s", icon, p.Listing)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Dependents (what this item unlocks).
	deps := m.Graph().Dependents(it.ID)
	if len(deps) > 0 {
		b.WriteString(sectionStyle.Render("  Unlocks"))
		b.WriteString("\n")
		for _, dep := range deps {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  → %s", dep.Listing)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if d.notice != "" {
		color := theme.Success
		if d.isError {
			color = theme.Error
		}
		b.WriteString(lipgloss.NewStyle().Foreground(color).Bold(true).Render("  " + d.notice))
		b.WriteString("\n")
	}
	for _, badge := range d.newBadges {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Render("  New badge: " + badge.String()))
		b.WriteString("\n")
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top,
		"\n"+b.String())
}

// renderAttempt lists each question with the learner's answer and whether
// it was right. Correct choices for wrong answers are not revealed.
func renderAttempt(it curriculum.Item, rec progress.QuizRecord) string {
	var b strings.Builder
	for i, q := range it.Questions {
		answer := progress.Unanswered
		if i < len(rec.Answers) {
			answer = rec.Answers[i]
		}
		mark, style := "✗", theme.Incorrect
		if answer >= 0 && answer == q.CorrectIndex {
			mark, style = "✓", theme.Correct
		}
		chosen := "no answer"
		if answer >= 0 && answer < len(q.Choices) {
			chosen = q.Choices[answer]
		}
		b.WriteString(style.Render(fmt.Sprintf("  %s %d. %s  (%s)", mark, i+1, q.Prompt, chosen)))
		b.WriteString("\n")
	}
	return b.String()
}
