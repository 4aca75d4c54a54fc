package vault

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mlmathr/internal/achievements"
	"github.com/abhisek/mlmathr/internal/curriculum"
	"github.com/abhisek/mlmathr/internal/progress"
	"github.com/abhisek/mlmathr/internal/router"
	"github.com/abhisek/mlmathr/internal/screen"
	"github.com/abhisek/mlmathr/internal/ui/layout"
	"github.com/abhisek/mlmathr/internal/ui/theme"
)

// entry is one line in the vault: an earned badge or one still to earn.
type entry struct {
	label  string
	detail string
	earned bool
}

// VaultScreen displays earned and outstanding achievements by kind.
type VaultScreen struct {
	deps         screen.Deps
	selectedKind int // index into achievements.AllKinds
	scrollOffset int
}

var _ screen.Screen = (*VaultScreen)(nil)
var _ screen.KeyHintProvider = (*VaultScreen)(nil)

// New creates a new VaultScreen.
func New(deps screen.Deps) *VaultScreen {
	return &VaultScreen{deps: deps}
}

func (s *VaultScreen) Init() tea.Cmd {
	return nil
}

func (s *VaultScreen) Title() string {
	return "Achievements"
}

func (s *VaultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Switch kind"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *VaultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		kinds := achievements.AllKinds()
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "tab", "right", "l":
			s.selectedKind = (s.selectedKind + 1) % len(kinds)
			s.scrollOffset = 0
		case "shift+tab", "left", "h":
			s.selectedKind = (s.selectedKind - 1 + len(kinds)) % len(kinds)
			s.scrollOffset = 0
		case "up", "k":
			if s.scrollOffset > 0 {
				s.scrollOffset--
			}
		case "down", "j":
			if s.scrollOffset < len(s.entries())-1 {
				s.scrollOffset++
			}
		}
	}
	return s, nil
}

// SelectedKind returns the kind whose tab is active.
func (s *VaultScreen) SelectedKind() achievements.Kind {
	return achievements.AllKinds()[s.selectedKind]
}

func (s *VaultScreen) View(width, height int) string {
	badges := s.deps.Badges()

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Text).
		Render(fmt.Sprintf("\nTotal: %d badges\n", len(badges))))
	b.WriteString("\n")

	// Kind tabs.
	var tabs []string
	for i, k := range achievements.AllKinds() {
		label := fmt.Sprintf("%s %s (%d)", k.Icon(), k.DisplayName(), countByKind(badges, k))
		if i == s.selectedKind {
			tabs = append(tabs, lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(label))
		} else {
			tabs = append(tabs, lipgloss.NewStyle().Foreground(theme.TextDim).Render(label))
		}
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(tabs, "   ")))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	entries := s.entries()
	maxVisible := height - 10
	if maxVisible < 3 {
		maxVisible = 3
	}
	start := min(s.scrollOffset, max(len(entries)-1, 0))
	end := min(start+maxVisible, len(entries))

	for _, e := range entries[start:end] {
		icon := "○"
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if e.earned {
			icon = s.SelectedKind().Icon()
			style = lipgloss.NewStyle().Foreground(theme.ArcadeYellow)
		}
		line := fmt.Sprintf("  %s %-34s %s", icon, e.label, e.detail)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	if end < len(entries) {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render(fmt.Sprintf("... %d more", len(entries)-end)))
	}

	return b.String()
}

// entries lists what the selected kind can award, earned or not.
func (s *VaultScreen) entries() []entry {
	snap := s.deps.Machine.Snapshot()
	g := s.deps.Machine.Graph()

	switch s.SelectedKind() {
	case achievements.KindPerfectScore:
		var out []entry
		for _, q := range g.Quizzes() {
			e := entry{label: q.Listing, detail: "not attempted"}
			if rec, ok := snap.QuizRecords[q.ID]; ok {
				e.detail = fmt.Sprintf("%d/%d", rec.Score, q.TotalQuestions())
				e.earned = rec.Score == q.TotalQuestions()
			}
			out = append(out, e)
		}
		return out
	case achievements.KindAllLessons:
		done := countCompleted(g.Lessons(), snap)
		return []entry{{
			label:  "All Lessons Completed",
			detail: fmt.Sprintf("%d/%d lessons", done, len(g.Lessons())),
			earned: len(g.Lessons()) > 0 && done == len(g.Lessons()),
		}}
	case achievements.KindAllQuizzes:
		done := countCompleted(g.Quizzes(), snap)
		return []entry{{
			label:  "All Quizzes Completed",
			detail: fmt.Sprintf("%d/%d quizzes", done, len(g.Quizzes())),
			earned: len(g.Quizzes()) > 0 && done == len(g.Quizzes()),
		}}
	case achievements.KindXPMilestone:
		return []entry{{
			label:  fmt.Sprintf("%d XP Earned", achievements.XPMilestone),
			detail: fmt.Sprintf("%d/%d XP", min(snap.XP, achievements.XPMilestone), achievements.XPMilestone),
			earned: snap.XP >= achievements.XPMilestone,
		}}
	}
	return nil
}

func countByKind(badges []achievements.Badge, k achievements.Kind) int {
	count := 0
	for _, b := range badges {
		if b.Kind == k {
			count++
		}
	}
	return count
}

func countCompleted(items []curriculum.Item, snap progress.Snapshot) int {
	n := 0
	for _, it := range items {
		if snap.Completed[it.ID] {
			n++
		}
	}
	return n
}
