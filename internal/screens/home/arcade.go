package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mlmathr/internal/syncer"
	"github.com/abhisek/mlmathr/internal/ui/components"
	"github.com/abhisek/mlmathr/internal/ui/theme"
)

// renderTitle returns the block-letter title or its compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.ArcadeYellow).
		Bold(true)

	width := cw
	if compact {
		width = 0
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(components.Banner(width, style))
}

// syncLabel summarizes the sync status in a few characters.
func syncLabel(st syncer.Status) (string, bool) {
	switch {
	case st.LastLoadErr != nil || st.LastSaveErr != nil:
		return "OFFLINE", true
	case st.State == syncer.StateLoading || st.State == syncer.StateUninitialized:
		return "LOADING", false
	case st.State == syncer.StateSaving || st.Dirty:
		return "SAVING", false
	default:
		return "SYNCED", false
	}
}

// renderStatsBar renders XP, badge count and sync state in a bordered box
// matching content width.
func renderStatsBar(xp, totalXP, badges int, st syncer.Status, cw int, compact bool) string {
	xpStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	badgeStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	syncStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)

	label, failed := syncLabel(st)
	if failed {
		syncStyle = syncStyle.Foreground(theme.Error)
	}

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s",
			xpStyle.Render(fmt.Sprintf("✦%d", xp)),
			badgeStyle.Render(fmt.Sprintf("◆%d", badges)),
			syncStyle.Render("● "+label),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s",
			xpStyle.Render(fmt.Sprintf("✦ %d/%d XP", xp, totalXP)),
			badgeStyle.Render(fmt.Sprintf("◆ %d BADGES", badges)),
			syncStyle.Render("● "+label),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// renderArcadeMenu renders each menu item as a fixed-width button.
func renderArcadeMenu(items []string, selected int, cw int, disabled map[int]bool) string {
	var buttons []string
	for i, label := range items {
		buttons = append(buttons, components.ArcadeButton(label, i == selected, disabled[i], components.ArcadeButtonWidth))
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderArcadeMenuCompact renders menu items as simple text lines (no borders)
// for small terminals where bordered buttons would overflow.
func renderArcadeMenuCompact(items []string, selected int, cw int, disabled map[int]bool) string {
	var lines []string
	for i, label := range items {
		var line string
		switch {
		case disabled[i]:
			line = lipgloss.NewStyle().
				Foreground(theme.TextDim).
				Render("   " + label)
		case i == selected:
			line = lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.ArcadeYellow).
				Bold(true).
				Render(" ▸ " + label + " ")
		default:
			line = lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("   " + label)
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderNotice renders a one-line message under the menu.
func renderNotice(text string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render(text)
}

// renderMascotBox renders the mascot centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}
