package app

import (
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mlmathr/internal/router"
	"github.com/abhisek/mlmathr/internal/screen"
	"github.com/abhisek/mlmathr/internal/screens/home"
	"github.com/abhisek/mlmathr/internal/screens/welcome"
	"github.com/abhisek/mlmathr/internal/ui/layout"
)

// statusInterval is how often the UI re-reads sync status and progress
// that background loads may have changed.
const statusInterval = 750 * time.Millisecond

// Deps are the services the TUI runs on.
type Deps = screen.Deps

type statusTickMsg time.Time

func statusTick() tea.Cmd {
	return tea.Tick(statusInterval, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	deps   Deps
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel starting on the welcome splash.
func newAppModel(deps Deps) AppModel {
	splash := welcome.New(func() string { return greeting(deps) },
		func() screen.Screen { return home.New(deps) })
	return AppModel{
		deps:   deps,
		router: router.New(splash),
	}
}

// greeting is the splash line for the current learner.
func greeting(deps Deps) string {
	m := deps.Machine
	player := deps.Status().Identity.String()
	switch {
	case !m.HasLoaded():
		return "Loading your progress..."
	case m.XP() == 0:
		return fmt.Sprintf("Playing as %s. Your first lesson is waiting.", player)
	default:
		return fmt.Sprintf("Welcome back, %s. %d of %d XP earned.", player, m.XP(), m.Graph().TotalXP())
	}
}

func (m AppModel) Init() tea.Cmd {
	var initial tea.Cmd
	if active := m.router.Active(); active != nil {
		initial = active.Init()
	}
	return tea.Batch(initial, statusTick())
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusTickMsg:
		// Forwarded so the active screen can refresh derived state.
		return m, tea.Batch(m.router.Update(msg), statusTick())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render lays out header, active screen and footer for the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(m.headerInfo(title), m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) headerInfo(title string) layout.HeaderInfo {
	st := m.deps.Status()
	info := layout.HeaderInfo{
		Title:  title,
		XP:     m.deps.Machine.XP(),
		Badges: len(m.deps.Badges()),
		Player: st.Identity.String(),
	}
	switch {
	case st.LastLoadErr != nil:
		info.SyncNote = "load failed"
	case st.LastSaveErr != nil:
		info.SyncNote = "save failed"
	}
	return info
}

// footerHints prefers the active screen's own hints.
func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Any key", Description: "Start"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(deps Deps) error {
	deps.Log().Info("tui started", "identity", deps.Status().Identity.String())
	p := tea.NewProgram(newAppModel(deps))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
