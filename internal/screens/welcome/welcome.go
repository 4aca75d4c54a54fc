package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mlmathr/internal/router"
	"github.com/abhisek/mlmathr/internal/screen"
	"github.com/abhisek/mlmathr/internal/ui/components"
	"github.com/abhisek/mlmathr/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	sparkleAt    = 500 * time.Millisecond
	bannerAt     = 1500 * time.Millisecond
	totalDur     = 4500 * time.Millisecond
)

const mascotArt = `  ╭───────────╮
  │  ┌─────┐  │
  │  │ ◉ ◉ │  │
  │  │  ▽  │  │
  │  ├─────┤  │
  │  │ Σ∂∇ │  │
  │  └─────┘  │
  ╰───────────╯`

// Axis arrows drawn around the mascot, one frame per tick.
var arrowFrames = []string{"→", "↗", "↑", "↖", "←", "↙", "↓", "↘"}

type tickMsg time.Time

// WelcomeScreen plays a short splash, then hands over to the home screen
// on the first key press.
type WelcomeScreen struct {
	greeting     func() string
	homeFactory  func() screen.Screen
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen. greeting is re-read on every frame so it
// can reflect progress that finishes loading during the splash; it may be
// nil.
func New(greeting func() string, homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		greeting:    greeting,
		homeFactory: homeFactory,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		w.elapsed = min(w.elapsed+tickInterval, totalDur)
		w.tickCount++
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}
	return w, nil
}

// transition builds the home screen once; later key presses are ignored.
func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	home := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: home}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	sections := []string{w.renderMascot()}

	if w.elapsed >= bannerAt {
		tagline := lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("The math behind machine learning, one step at a time.")
		sections = append(sections, "", components.Banner(width, components.BannerStyle()), "", tagline)

		if w.greeting != nil {
			if g := w.greeting(); g != "" {
				sections = append(sections, "", lipgloss.NewStyle().Foreground(theme.Secondary).Render(g))
			}
		}

		hint := lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("press any key to continue")
		sections = append(sections, "", hint)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}

// renderMascot draws the mascot, circled by rotating arrows once the
// sparkle phase starts.
func (w *WelcomeScreen) renderMascot() string {
	rendered := lipgloss.NewStyle().Foreground(theme.Primary).Render(mascotArt)
	if w.elapsed < sparkleAt {
		return rendered
	}

	a := lipgloss.NewStyle().Foreground(theme.Accent).
		Render(arrowFrames[w.tickCount%len(arrowFrames)])
	b := lipgloss.NewStyle().Foreground(theme.Secondary).
		Render(arrowFrames[(w.tickCount+4)%len(arrowFrames)])

	lines := strings.Split(rendered, "\n")
	for i, l := range lines {
		switch i {
		case 0, 6:
			lines[i] = a + "  " + l + "  " + b
		case 3:
			lines[i] = b + "  " + l + "  " + a
		default:
			lines[i] = "   " + l + "   "
		}
	}
	return strings.Join(lines, "\n")
}
