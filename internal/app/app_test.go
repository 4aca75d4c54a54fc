package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mlmathr/internal/progress"
	"github.com/abhisek/mlmathr/internal/router"
	"github.com/abhisek/mlmathr/internal/screen/screentest"
)

// step applies msg and feeds back any navigation message the command
// produces, which is how the program loop would deliver it.
func step(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(AppModel)
	if cmd == nil {
		return m
	}
	switch out := cmd().(type) {
	case router.PushScreenMsg, router.PopScreenMsg, router.ReplaceScreenMsg, router.PopToRootMsg:
		next, _ = m.Update(out)
		m = next.(AppModel)
	}
	return m
}

func TestApp_SplashToHome(t *testing.T) {
	deps, _ := screentest.Deps(t, progress.Empty())
	m := newAppModel(deps)
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	if got := m.router.Active().Title(); got != "" {
		t.Fatalf("initial screen title = %q, want splash", got)
	}

	m = step(t, m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	if got := m.router.Active().Title(); got != "Home" {
		t.Fatalf("after key press title = %q, want Home", got)
	}
	if m.router.Depth() != 1 {
		t.Errorf("depth = %d, want splash replaced", m.router.Depth())
	}
}

func TestApp_EscPopsToHome(t *testing.T) {
	deps, _ := screentest.Deps(t, progress.Empty())
	m := newAppModel(deps)
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	// Home menu: down to ROADMAP and open it.
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyDown})
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if got := m.router.Active().Title(); got != "Roadmap" {
		t.Fatalf("title = %q, want Roadmap", got)
	}

	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if got := m.router.Active().Title(); got != "Home" {
		t.Errorf("after esc title = %q, want Home", got)
	}

	// Esc on the root screen stays put.
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.router.Depth() != 1 {
		t.Errorf("depth = %d, want 1", m.router.Depth())
	}
}

func TestApp_HeaderShowsXP(t *testing.T) {
	snap := progress.Empty()
	snap.XP = 25
	snap.Completed["vectors"] = true
	deps, _ := screentest.Deps(t, snap)

	m := step(t, newAppModel(deps), tea.WindowSizeMsg{Width: 120, Height: 40})
	if !strings.Contains(m.render(), "25 XP") {
		t.Error("header should show the learner's XP")
	}
}

func TestApp_TooSmall(t *testing.T) {
	deps, _ := screentest.Deps(t, progress.Empty())
	m := step(t, newAppModel(deps), tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(m.render(), "Terminal too small!") {
		t.Error("expected minimum size message")
	}
}

func TestApp_CtrlCQuits(t *testing.T) {
	deps, _ := screentest.Deps(t, progress.Empty())
	_, cmd := newAppModel(deps).Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestGreeting(t *testing.T) {
	deps, _ := screentest.Unloaded(t)
	if got := greeting(deps); got != "Loading your progress..." {
		t.Errorf("greeting before load = %q", got)
	}

	deps, _ = screentest.Deps(t, progress.Empty())
	if got := greeting(deps); got != "Playing as anonymous. Your first lesson is waiting." {
		t.Errorf("greeting for new learner = %q", got)
	}

	snap := progress.Empty()
	snap.XP = 40
	deps, _ = screentest.Deps(t, snap)
	if got := greeting(deps); got != "Welcome back, anonymous. 40 of 310 XP earned." {
		t.Errorf("greeting for returning learner = %q", got)
	}
}
