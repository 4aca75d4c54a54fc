package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mlmathr/internal/ui/theme"
)

// ProgressBar displays value out of total as a horizontal bar.
type ProgressBar struct {
	Label      string
	Value      int
	Total      int
	ShowCounts bool
	Width      int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, value, total int, showCounts bool, width int) ProgressBar {
	return ProgressBar{
		Label:      label,
		Value:      value,
		Total:      total,
		ShowCounts: showCounts,
		Width:      width,
	}
}

// Fraction returns Value/Total clamped to [0, 1].
func (p ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Value) / float64(p.Total)
	return max(0, min(f, 1))
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	counts := ""
	if p.ShowCounts {
		counts = fmt.Sprintf("  %d/%d", p.Value, p.Total)
	}

	barWidth := p.Width - lipgloss.Width(result) - len(counts)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Fraction())
	empty := barWidth - filled

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", empty))

	if p.ShowCounts {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(counts)
	}

	return result
}
