package summary

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

// SummaryScreen displays the result of a quiz submission.
type SummaryScreen struct {
	item   curriculum.Item
	result progress.QuizResult
	badges []achievements.Badge
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. badges are the ones the submission earned.
func New(item curriculum.Item, result progress.QuizResult, badges []achievements.Badge) *SummaryScreen {
	return &SummaryScreen{item: item, result: result, badges: badges}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quiz Result"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	res := s.result
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder

	headline, color := "Not quite!", theme.Accent
	if res.Passed {
		headline, color = "Perfect score!", theme.Success
	}
	b.WriteString(center.Foreground(color).Bold(true).Render(headline))
	b.WriteString("\n\n")

	b.WriteString(center.Foreground(theme.TextDim).Render(s.item.Listing))
	b.WriteString("\n\n")

	b.WriteString(center.Foreground(theme.Text).Render(
		fmt.Sprintf("Correct: %d/%d        XP earned: %d", res.Score, res.Total, res.XPAwarded)))
	b.WriteString("\n\n")

	if !res.Passed {
		b.WriteString(center.Foreground(theme.TextDim).Italic(true).Render(
			"A perfect score is needed to pass. Press r on the quiz to retry."))
		b.WriteString("\n\n")
	}

	if len(s.badges) > 0 {
		divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
			strings.Repeat("─", min(width-8, 60)))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("New badges")))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n\n")

		for _, badge := range s.badges {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Render(badge.String())))
			b.WriteString("\n")
		}
	}

	return b.String()
}
