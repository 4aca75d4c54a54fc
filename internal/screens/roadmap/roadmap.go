package roadmap

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mlmathr/internal/curriculum"
	"github.com/abhisek/mlmathr/internal/router"
	"github.com/abhisek/mlmathr/internal/screen"
	"github.com/abhisek/mlmathr/internal/ui/layout"
	"github.com/abhisek/mlmathr/internal/ui/theme"
)

type rowKind int

const (
	rowModuleHeader rowKind = iota
	rowItem
)

type row struct {
	kind   rowKind
	module string
	item   curriculum.Item
}

// RoadmapScreen lists every lesson and quiz grouped by module.
type RoadmapScreen struct {
	deps         screen.Deps
	rows         []row
	cursor       int
	scrollOffset int
}

var _ screen.Screen = (*RoadmapScreen)(nil)
var _ screen.KeyHintProvider = (*RoadmapScreen)(nil)

// New creates a RoadmapScreen with the cursor on focus, or on the first
// item when focus is empty or unknown.
func New(deps screen.Deps, focus string) *RoadmapScreen {
	var rows []row
	for _, mod := range deps.Machine.Graph().Modules() {
		rows = append(rows, row{kind: rowModuleHeader, module: mod.Title})
		for _, it := range mod.Items {
			rows = append(rows, row{kind: rowItem, module: mod.Title, item: it})
		}
	}

	s := &RoadmapScreen{deps: deps, rows: rows, cursor: -1}
	for i, r := range s.rows {
		if r.kind != rowItem {
			continue
		}
		if s.cursor < 0 {
			s.cursor = i
		}
		if r.item.ID == focus {
			s.cursor = i
			break
		}
	}
	if s.cursor < 0 {
		s.cursor = 0
	}

	return s
}

func (s *RoadmapScreen) Init() tea.Cmd {
	return nil
}

func (s *RoadmapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "tab":
			s.nextModule()
		case "shift+tab":
			s.prevModule()
		case "n":
			s.jumpToNext()
		case "enter":
			return s, s.selectItem()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *RoadmapScreen) View(width, height int) string {
	if len(s.rows) == 0 {
		return ""
	}

	// Ensure cursor is visible within the scroll window
	s.adjustScroll(height)

	var lines []string
	visible := 0
	for i, r := range s.rows {
		if i < s.scrollOffset {
			continue
		}
		if visible >= height {
			break
		}

		switch r.kind {
		case rowModuleHeader:
			lines = append(lines, s.renderModuleHeader(r.module, width))
		case rowItem:
			lines = append(lines, s.renderItemRow(r, i == s.cursor, width))
		}
		visible++
	}

	return strings.Join(lines, "\n")
}

func (s *RoadmapScreen) Title() string {
	return "Roadmap"
}

// KeyHints returns the key binding hints for the footer.
func (s *RoadmapScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Module"},
		{Key: "n", Description: "Next up"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Back"},
	}
}

// Selected returns the item under the cursor.
func (s *RoadmapScreen) Selected() (curriculum.Item, bool) {
	if s.cursor < 0 || s.cursor >= len(s.rows) || s.rows[s.cursor].kind != rowItem {
		return curriculum.Item{}, false
	}
	return s.rows[s.cursor].item, true
}

// moveCursor moves the cursor by delta, skipping module headers.
func (s *RoadmapScreen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowItem {
			s.cursor = next
			return
		}
		next += delta
	}
}

// nextModule jumps the cursor to the first item in the next module.
func (s *RoadmapScreen) nextModule() {
	current := s.rows[s.cursor].module
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].kind == rowItem && s.rows[i].module != current {
			s.cursor = i
			return
		}
	}
}

// prevModule jumps the cursor to the first item in the previous module.
func (s *RoadmapScreen) prevModule() {
	current := s.rows[s.cursor].module

	prevStart := -1
	var prev string
	for i := s.cursor - 1; i >= 0; i-- {
		if s.rows[i].kind == rowItem && s.rows[i].module != current {
			prev = s.rows[i].module
			prevStart = i
			break
		}
	}
	if prevStart < 0 {
		return
	}

	for i := prevStart; i >= 0; i-- {
		if s.rows[i].kind != rowItem || s.rows[i].module != prev {
			s.cursor = i + 1
			return
		}
	}
	s.cursor = 0
	if s.rows[0].kind != rowItem {
		s.moveCursor(1)
	}
}

// jumpToNext moves the cursor to the first unlocked, incomplete item.
func (s *RoadmapScreen) jumpToNext() {
	next, ok := s.deps.Machine.NextUp("")
	if !ok {
		return
	}
	for i, r := range s.rows {
		if r.kind == rowItem && r.item.ID == next.ID {
			s.cursor = i
			return
		}
	}
}

// adjustScroll ensures the cursor is visible within the viewport.
func (s *RoadmapScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	// Also show the module header above the cursor if possible
	headerRow := s.cursor
	for headerRow > 0 && s.rows[headerRow-1].kind == rowModuleHeader {
		headerRow--
	}

	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

// selectItem opens the detail screen for the item under the cursor.
func (s *RoadmapScreen) selectItem() tea.Cmd {
	it, ok := s.Selected()
	if !ok {
		return nil
	}
	detail := NewDetail(s.deps, it.ID)
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: detail}
	}
}

func (s *RoadmapScreen) renderModuleHeader(title string, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		Padding(1, 0, 0, 2).
		Render(strings.ToUpper(title))
}

// renderItemRow renders a single lesson or quiz row.
func (s *RoadmapScreen) renderItemRow(r row, selected bool, width int) string {
	m := s.deps.Machine
	state := m.ItemState(r.item.ID)
	icon := state.Icon()
	label := state.Label()

	detail := fmt.Sprintf("%2d XP", r.item.XP)
	if rec, ok := m.QuizRecord(r.item.ID); ok {
		detail = fmt.Sprintf("%d/%d", rec.Score, r.item.TotalQuestions())
	}

	// Calculate column widths
	padding := 4 // left indent
	iconWidth := 3
	detailWidth := 6
	labelWidth := 10
	spacing := 4
	nameWidth := width - padding - iconWidth - detailWidth - labelWidth - spacing
	if nameWidth < 10 {
		nameWidth = 10
	}

	name := r.item.Listing
	if r.item.IsQuiz() {
		name = "  " + name
	}
	if len(name) > nameWidth {
		name = name[:nameWidth-1] + "…"
	}

	accent := lipgloss.NewStyle().Foreground(theme.StateColor(state))
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var nameStyle, detailStyle, labelStyle lipgloss.Style
	switch {
	case selected:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		detailStyle = lipgloss.NewStyle().Foreground(theme.Primary)
		labelStyle = detailStyle
	case state == curriculum.StateCompleted:
		nameStyle, detailStyle, labelStyle = accent, dim, accent
	case state == curriculum.StateAttempted:
		nameStyle, detailStyle, labelStyle = lipgloss.NewStyle().Foreground(theme.Text), accent, accent
	case state == curriculum.StateAvailable:
		nameStyle, detailStyle, labelStyle = lipgloss.NewStyle().Foreground(theme.Text), dim, accent
	default:
		nameStyle, detailStyle, labelStyle = dim, dim, dim
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	namePadded := fmt.Sprintf("%-*s", nameWidth, name)
	return fmt.Sprintf("  %s%s %s  %s  %s",
		cursor,
		icon,
		nameStyle.Render(namePadded),
		detailStyle.Render(fmt.Sprintf("%5s", detail)),
		labelStyle.Render(fmt.Sprintf("%9s", label)),
	)
}
