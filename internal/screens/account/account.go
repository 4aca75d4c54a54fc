package account

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mlmathr/internal/router"
	"github.com/abhisek/mlmathr/internal/screen"
	"github.com/abhisek/mlmathr/internal/ui/components"
	"github.com/abhisek/mlmathr/internal/ui/layout"
	"github.com/abhisek/mlmathr/internal/ui/theme"
)

const maxUserIDLen = 64

// switchedMsg reports the outcome of a login or logout.
type switchedMsg struct {
	err error
}

// AccountScreen signs a learner in, or out when already signed in.
type AccountScreen struct {
	deps    screen.Deps
	input   components.TextInput
	buttons []components.Button
	focus   int
	busy    bool
	errMsg  string
}

var _ screen.Screen = (*AccountScreen)(nil)
var _ screen.KeyHintProvider = (*AccountScreen)(nil)

// New creates an AccountScreen for the session's current identity.
func New(deps screen.Deps) *AccountScreen {
	input := components.NewTextInput("user id", maxUserIDLen)
	input.Allowed = allowedRune
	return &AccountScreen{
		deps:  deps,
		input: input,
		buttons: []components.Button{
			{Label: "Log out", Active: true, Danger: true},
			{Label: "Cancel"},
		},
	}
}

// allowedRune limits user IDs to letters, digits and -_.@ characters.
func allowedRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("-_.@", r)
}

func (s *AccountScreen) signedIn() bool {
	return !s.deps.Session.Current().IsAnonymous()
}

func (s *AccountScreen) Init() tea.Cmd {
	if s.signedIn() {
		return nil
	}
	return s.input.Init()
}

func (s *AccountScreen) Title() string {
	if s.signedIn() {
		return "Log Out"
	}
	return "Log In"
}

func (s *AccountScreen) KeyHints() []layout.KeyHint {
	if s.signedIn() {
		return []layout.KeyHint{
			{Key: "←→", Description: "Choose"},
			{Key: "Enter", Description: "Confirm"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Log in"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *AccountScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case switchedMsg:
		s.busy = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		return s, func() tea.Msg { return router.PopScreenMsg{} }

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		if msg.String() == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		if s.signedIn() {
			return s.updateLogout(msg)
		}
		return s.updateLogin(msg)
	}

	if !s.signedIn() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *AccountScreen) updateLogin(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if msg.String() == "enter" {
		userID := s.input.Value()
		if userID == "" {
			s.input.Submit(false)
			s.errMsg = "Enter a user ID."
			return s, nil
		}
		s.input.Submit(true)
		return s, s.switchTo(func(ctx context.Context) error {
			return s.deps.Session.Login(ctx, userID)
		})
	}

	s.errMsg = ""
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *AccountScreen) updateLogout(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "left", "right", "tab", "h", "l":
		s.focus = 1 - s.focus
		components.Focus(s.buttons, s.focus)
	case "enter":
		if s.focus == 1 {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, s.switchTo(s.deps.Session.Logout)
	}
	return s, nil
}

// switchTo saves pending progress for the outgoing identity, then applies
// the transition. A failed save keeps the current identity so no progress
// is dropped.
func (s *AccountScreen) switchTo(transition func(ctx context.Context) error) tea.Cmd {
	s.busy = true
	s.errMsg = ""
	deps := s.deps
	return func() tea.Msg {
		if err := deps.Flush(); err != nil {
			deps.Log().Warn("save before identity change failed", "error", err)
			return switchedMsg{err: fmt.Errorf("could not save progress: %w", err)}
		}
		ctx, cancel := context.WithTimeout(context.Background(), screen.FlushTimeout)
		defer cancel()
		return switchedMsg{err: transition(ctx)}
	}
}

func (s *AccountScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	text := lipgloss.NewStyle().Foreground(theme.Text)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	if s.signedIn() {
		b.WriteString(text.Render(fmt.Sprintf("Signed in as %s.", s.deps.Session.Current())))
		b.WriteString("\n")
		b.WriteString(dim.Render("Progress stays saved to your account after you log out."))
		b.WriteString("\n\n")
		b.WriteString(components.ButtonRow(s.buttons))
	} else {
		b.WriteString(text.Render("Log in to keep your progress across devices."))
		b.WriteString("\n")
		b.WriteString(dim.Render("Progress made on this device is merged into your account."))
		b.WriteString("\n\n")
		b.WriteString(s.input.View())
	}

	if s.busy {
		b.WriteString("\n\n")
		b.WriteString(dim.Render("Saving..."))
	}
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}

	return lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).
		Render(b.String())
}
