package cmd

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/abhisek/mlmathr/internal/achievements"
	"github.com/abhisek/mlmathr/internal/curriculum"
	"github.com/abhisek/mlmathr/internal/progress"
	"github.com/abhisek/mlmathr/internal/syncer"
)

func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// stateTag is the short roadmap marker for an item state.
func stateTag(s curriculum.State) string {
	switch s {
	case curriculum.StateCompleted:
		return "done"
	case curriculum.StateAttempted:
		return "retry"
	case curriculum.StateAvailable:
		return "open"
	default:
		return "locked"
	}
}

// renderRoadmap prints every module with its items and their states.
func renderRoadmap(w io.Writer, m *progress.Machine) {
	p := newPrinter()
	g := m.Graph()

	for i, mod := range g.Modules() {
		if i > 0 {
			p.Fprintln(w)
		}
		p.Fprintln(w, mod.Title)
		for _, it := range mod.Items {
			line := p.Sprintf("  %-6s  %-26s %-28s %-6s %d XP",
				stateTag(m.ItemState(it.ID)), it.ID, it.Listing, it.Kind, it.XP)
			if rec, ok := m.QuizRecord(it.ID); ok {
				line += p.Sprintf("  score %d/%d", rec.Score, it.TotalQuestions())
			}
			p.Fprintln(w, line)
		}
	}

	p.Fprintln(w)
	renderNextUp(w, m, "")
	p.Fprintf(w, "XP %d / %d (%d%%)\n", m.XP(), g.TotalXP(), m.Percent())
}

// renderNextUp prints the item to continue with after id.
func renderNextUp(w io.Writer, m *progress.Machine, id string) {
	p := newPrinter()
	next, ok := m.NextUp(id)
	if !ok || m.HasCompleted(next.ID) {
		next, ok = m.NextUp("")
	}
	if !ok {
		p.Fprintln(w, "Every item is complete.")
		return
	}
	p.Fprintf(w, "Next up: %s (%s)\n", next.Listing, next.ID)
}

// renderStats prints totals, quiz scores, badges and sync state.
func renderStats(w io.Writer, m *progress.Machine, st syncer.Status) {
	p := newPrinter()
	g := m.Graph()
	snap := m.Snapshot()

	p.Fprintf(w, "Identity:  %s\n", st.Identity)
	p.Fprintf(w, "Sync:      %s\n", st.State)
	p.Fprintf(w, "XP:        %d / %d (%d%%)\n", snap.XP, g.TotalXP(), m.Percent())
	p.Fprintf(w, "Lessons:   %d / %d\n", countCompleted(g.Lessons(), snap), len(g.Lessons()))
	p.Fprintf(w, "Quizzes:   %d / %d\n", countCompleted(g.Quizzes(), snap), len(g.Quizzes()))

	var scored []curriculum.Item
	for _, q := range g.Quizzes() {
		if _, ok := snap.QuizRecords[q.ID]; ok {
			scored = append(scored, q)
		}
	}
	if len(scored) > 0 {
		p.Fprintln(w)
		p.Fprintln(w, "Quiz scores:")
		for _, q := range scored {
			p.Fprintf(w, "  %-28s %d/%d\n", q.Listing, snap.QuizRecords[q.ID].Score, q.TotalQuestions())
		}
	}

	p.Fprintln(w)
	badges := achievements.Evaluate(snap, g)
	if len(badges) == 0 {
		p.Fprintln(w, "Badges:    none yet")
		return
	}
	p.Fprintln(w, "Badges:")
	for _, b := range badges {
		p.Fprintf(w, "  %s\n", b)
	}
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

// renderQuizResult prints the outcome of a submission.
func renderQuizResult(w io.Writer, it curriculum.Item, res progress.QuizResult) {
	p := newPrinter()
	p.Fprintf(w, "%s: %d/%d correct.\n", it.Listing, res.Score, res.Total)
	switch {
	case res.Passed && res.XPAwarded > 0:
		p.Fprintf(w, "Passed! +%d XP\n", res.XPAwarded)
	case res.Passed:
		p.Fprintln(w, "Passed!")
	default:
		p.Fprintf(w, "A perfect score is needed to pass. Run \"mlmathr quiz retry %s\" to try again.\n", it.ID)
	}
}

// renderNewBadges announces badges earned by the last action.
func renderNewBadges(w io.Writer, badges []achievements.Badge) {
	p := newPrinter()
	for _, b := range badges {
		p.Fprintf(w, "New badge: %s\n", b)
	}
}
