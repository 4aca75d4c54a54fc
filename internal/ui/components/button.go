package components

import (
	"strings"

	"github.com/abhisek/mlmathr/internal/ui/theme"
)

// Button is one choice in a confirmation dialog. Danger buttons render in
// the error color when focused.
type Button struct {
	Label  string
	Active bool
	Danger bool
}

// View renders the button.
func (b Button) View() string {
	if !b.Active {
		return theme.ButtonInactive.Render("  " + b.Label + " ")
	}
	label := "▸ " + b.Label + " "
	if b.Danger {
		return theme.ButtonDanger.Render(label)
	}
	return theme.ButtonActive.Render(label)
}

// Focus marks only the button at i as active.
func Focus(buttons []Button, i int) {
	for j := range buttons {
		buttons[j].Active = j == i
	}
}

// ButtonRow lays buttons out on one line.
func ButtonRow(buttons []Button) string {
	row := make([]string, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, b.View())
	}
	return strings.Join(row, "   ")
}
