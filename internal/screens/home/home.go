package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mlmathr/internal/curriculum"
	"github.com/abhisek/mlmathr/internal/router"
	"github.com/abhisek/mlmathr/internal/screen"
	"github.com/abhisek/mlmathr/internal/screens/account"
	"github.com/abhisek/mlmathr/internal/screens/dashboard"
	"github.com/abhisek/mlmathr/internal/screens/reset"
	"github.com/abhisek/mlmathr/internal/screens/roadmap"
	"github.com/abhisek/mlmathr/internal/screens/vault"
	"github.com/abhisek/mlmathr/internal/syncer"
	"github.com/abhisek/mlmathr/internal/ui/components"
	"github.com/abhisek/mlmathr/internal/ui/layout"
)

// Menu positions.
const (
	itemContinue = iota
	itemRoadmap
	itemAchievements
	itemProgress
	itemAccount
	itemReset
	itemExit
)

const loadingNotice = "Progress is still loading..."

// HomeScreen is the main menu.
type HomeScreen struct {
	deps   screen.Deps
	menu   components.Menu
	notice string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps screen.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}

	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
		}
	}

	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "CONTINUE", Action: h.continueLearning},
		{Label: "ROADMAP", Action: push(func() screen.Screen { return roadmap.New(deps, "") })},
		{Label: "ACHIEVEMENTS", Action: push(func() screen.Screen { return vault.New(deps) })},
		{Label: "PROGRESS", Action: push(func() screen.Screen { return dashboard.New(deps) })},
		{Label: "LOG IN", Action: push(func() screen.Screen { return account.New(deps) })},
		{Label: "RESET", Action: push(func() screen.Screen { return reset.New(deps) })},
		{Label: "EXIT", Action: func() tea.Cmd { return tea.Quit }},
	})
	h.refresh()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

// Resume refreshes the menu after a pushed screen returns.
func (h *HomeScreen) Resume() tea.Cmd {
	h.notice = ""
	h.refresh()
	return nil
}

// refresh updates labels and enabled items from the live session.
func (h *HomeScreen) refresh() {
	if h.deps.Session.Current().IsAnonymous() {
		h.menu.Items[itemAccount].Label = "LOG IN"
	} else {
		h.menu.Items[itemAccount].Label = "LOG OUT"
	}
	h.menu.SetDisabled(itemReset, !h.deps.Machine.HasLoaded())
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	h.refresh()
	if _, ok := msg.(tea.KeyMsg); ok {
		h.notice = ""
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// continueLearning opens the last visited item when it is still open, or
// the next open item otherwise.
func (h *HomeScreen) continueLearning() tea.Cmd {
	m := h.deps.Machine
	if !m.HasLoaded() {
		h.notice = loadingNotice
		return nil
	}

	last := ""
	if h.deps.Local != nil {
		var err error
		if last, err = h.deps.Local.LastVisited(context.Background()); err != nil {
			h.deps.Log().Warn("read last visited", "error", err)
		}
	}

	id, ok := continueTarget(m.Graph(), last, m.ItemState, m.NextUp)
	if !ok {
		deps := h.deps
		return func() tea.Msg { return router.PushScreenMsg{Screen: roadmap.New(deps, "")} }
	}
	detail := roadmap.NewDetail(h.deps, id)
	return func() tea.Msg { return router.PushScreenMsg{Screen: detail} }
}

// continueTarget picks the item to resume: last when it is still open,
// else the item after it when open, else the first open item.
func continueTarget(g *curriculum.Graph, last string,
	state func(string) curriculum.State,
	nextUp func(string) (curriculum.Item, bool),
) (string, bool) {
	open := func(id string) bool {
		s := state(id)
		return s == curriculum.StateAvailable || s == curriculum.StateAttempted
	}
	if last != "" && g.Has(last) {
		if open(last) {
			return last, true
		}
		if next, ok := nextUp(last); ok && open(next.ID) {
			return next.ID, true
		}
	}
	if next, ok := nextUp(""); ok {
		return next.ID, true
	}
	return "", false
}

// mascotFor picks the mascot mood from progress and sync state.
func mascotFor(percent int, st syncer.Status) MascotVariant {
	switch {
	case st.LastLoadErr != nil || st.LastSaveErr != nil:
		return MascotAlert
	case percent >= 100:
		return MascotCelebrating
	default:
		return MascotIdle
	}
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height+layout.HeaderHeight+layout.FooterHeight+2) ||
		layout.IsCompactWidth(width)
	cw := components.ContentWidth(width)

	m := h.deps.Machine
	st := h.deps.Status()

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		sections = append(sections, renderMascotBox(mascotFor(m.Percent(), st), cw))
	}
	sections = append(sections, renderStatsBar(
		m.XP(), m.Graph().TotalXP(), len(h.deps.Badges()), st, cw, compact))

	if compact {
		sections = append(sections, renderArcadeMenuCompact(
			h.menu.Labels(), h.menu.Selected, cw, h.menu.DisabledSet()))
	} else {
		sections = append(sections, renderArcadeMenu(
			h.menu.Labels(), h.menu.Selected, cw, h.menu.DisabledSet()))
	}
	if h.notice != "" {
		sections = append(sections, renderNotice(h.notice, cw))
	}

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

// KeyHints returns the footer hints for the menu.
func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
