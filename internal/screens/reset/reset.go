package reset

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mlmathr/internal/progress"
	"github.com/abhisek/mlmathr/internal/router"
	"github.com/abhisek/mlmathr/internal/screen"
	"github.com/abhisek/mlmathr/internal/ui/components"
	"github.com/abhisek/mlmathr/internal/ui/layout"
	"github.com/abhisek/mlmathr/internal/ui/theme"
)

const (
	buttonCancel = iota
	buttonReset
)

// ResetScreen asks for confirmation before erasing all progress.
type ResetScreen struct {
	deps    screen.Deps
	buttons []components.Button
	focus   int
	errMsg  string
}

var _ screen.Screen = (*ResetScreen)(nil)
var _ screen.KeyHintProvider = (*ResetScreen)(nil)

// New creates a ResetScreen with Cancel focused.
func New(deps screen.Deps) *ResetScreen {
	return &ResetScreen{
		deps: deps,
		buttons: []components.Button{
			{Label: "Cancel", Active: true},
			{Label: "Reset", Danger: true},
		},
	}
}

func (s *ResetScreen) Init() tea.Cmd {
	return nil
}

func (s *ResetScreen) Title() string {
	return "Reset Progress"
}

func (s *ResetScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Choose"},
		{Key: "y", Description: "Reset"},
		{Key: "Esc", Description: "Cancel"},
	}
}

func (s *ResetScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "esc", "n":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "left", "right", "tab", "h", "l":
		s.setFocus(1 - s.focus)
	case "y":
		return s, s.reset()
	case "enter":
		if s.focus == buttonReset {
			return s, s.reset()
		}
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *ResetScreen) setFocus(i int) {
	s.focus = i
	components.Focus(s.buttons, i)
}

// reset erases progress and returns to the home screen. It stays put with
// a message when progress has not been loaded yet.
func (s *ResetScreen) reset() tea.Cmd {
	if err := s.deps.Machine.Reset(); err != nil {
		if errors.Is(err, progress.ErrPrematureReset) {
			s.errMsg = "Progress is still loading. Try again in a moment."
		} else {
			s.errMsg = err.Error()
		}
		return nil
	}
	s.deps.Log().Info("progress reset", "identity", s.deps.Status().Identity.String())
	return func() tea.Msg { return router.PopToRootMsg{} }
}

func (s *ResetScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Bold(true).
		Render("Erase all progress?"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).
		Render(fmt.Sprintf("This clears %d XP and every quiz score for %s.",
			s.deps.Machine.XP(), s.deps.Status().Identity)))
	b.WriteString("\n\n")

	b.WriteString(components.ButtonRow(s.buttons))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}

	return lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).
		Render(b.String())
}
