package dashboard

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mlmathr/internal/curriculum"
	"github.com/abhisek/mlmathr/internal/router"
	"github.com/abhisek/mlmathr/internal/screen"
	"github.com/abhisek/mlmathr/internal/syncer"
	"github.com/abhisek/mlmathr/internal/ui/components"
	"github.com/abhisek/mlmathr/internal/ui/layout"
	"github.com/abhisek/mlmathr/internal/ui/theme"
)

// DashboardScreen shows per-module progress and the sync status.
type DashboardScreen struct {
	deps     screen.Deps
	selected int
	expanded map[int]bool
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyHintProvider = (*DashboardScreen)(nil)

// New creates a new DashboardScreen.
func New(deps screen.Deps) *DashboardScreen {
	return &DashboardScreen{deps: deps, expanded: make(map[int]bool)}
}

func (s *DashboardScreen) Init() tea.Cmd {
	return nil
}

func (s *DashboardScreen) Title() string {
	return "Progress"
}

func (s *DashboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.deps.Machine.Graph().Modules())-1 {
				s.selected++
			}
		case "enter", "space":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

// Expanded reports whether module i shows its items.
func (s *DashboardScreen) Expanded(i int) bool {
	return s.expanded[i]
}

func (s *DashboardScreen) View(width, height int) string {
	m := s.deps.Machine
	if !m.HasLoaded() {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading progress...")
	}

	g := m.Graph()
	barWidth := min(width-8, 60)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderStatus()))
	b.WriteString("\n\n")

	total := components.NewProgressBar("Total XP", m.XP(), g.TotalXP(), true, barWidth)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, total.View()))
	b.WriteString("\n\n")

	for i, mod := range g.Modules() {
		done := 0
		for _, it := range mod.Items {
			if m.HasCompleted(it.ID) {
				done++
			}
		}

		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		label := style.Render(fmt.Sprintf("%s%-24s", prefix, mod.Title))
		bar := components.NewProgressBar(label, done, len(mod.Items), true, barWidth)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, it := range mod.Items {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderItem(it, barWidth)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func (s *DashboardScreen) renderStatus() string {
	st := s.deps.Status()

	syncStyle := lipgloss.NewStyle().Foreground(theme.Success)
	syncText := st.State.String()
	switch {
	case st.LastLoadErr != nil:
		syncStyle = syncStyle.Foreground(theme.Error)
		syncText = "load failed"
	case st.LastSaveErr != nil:
		syncStyle = syncStyle.Foreground(theme.Error)
		syncText = "save failed"
	case st.State == syncer.StateLoaded && st.Dirty:
		syncStyle = syncStyle.Foreground(theme.ArcadeYellow)
		syncText = "unsaved changes"
	}

	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	text := lipgloss.NewStyle().Foreground(theme.Text)
	return dim.Render("Playing as ") + text.Render(st.Identity.String()) +
		dim.Render("   Sync ") + syncStyle.Render(syncText) +
		dim.Render("   Device ") + text.Render(shortDevice(s.deps.DeviceID))
}

func (s *DashboardScreen) renderItem(it curriculum.Item, width int) string {
	m := s.deps.Machine
	state := m.ItemState(it.ID)

	detail := fmt.Sprintf("%d XP", it.XP)
	if rec, ok := m.QuizRecord(it.ID); ok {
		detail = fmt.Sprintf("%d/%d", rec.Score, it.TotalQuestions())
	}

	style := lipgloss.NewStyle().Foreground(theme.StateColor(state))
	line := fmt.Sprintf("    %s %-30s %8s", state.Icon(), it.Listing, detail)
	return lipgloss.NewStyle().Width(width).Render(style.Render(line))
}

// shortDevice trims a device ID to its first group.
func shortDevice(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	if id == "" {
		return "unknown"
	}
	return id
}
