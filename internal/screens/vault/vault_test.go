package vault

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mlmathr/internal/achievements"
	"github.com/abhisek/mlmathr/internal/progress"
	"github.com/abhisek/mlmathr/internal/screen/screentest"
)

func midway() progress.Snapshot {
	snap := progress.Empty()
	snap.XP = 65
	snap.Completed["vectors"] = true
	snap.Completed["vectors-quiz"] = true
	snap.Completed["dot-product"] = true
	snap.QuizRecords["vectors-quiz"] = progress.QuizRecord{Score: 2, Answers: []int{0, 2}}
	snap.QuizRecords["dot-product-quiz"] = progress.QuizRecord{Score: 1, Answers: []int{2, 1, 0}}
	return snap
}

func TestVault_PerfectScoreEntries(t *testing.T) {
	deps, _ := screentest.Deps(t, midway())
	s := New(deps)

	entries := s.entries()
	if len(entries) != 7 {
		t.Fatalf("entries = %d, want one per quiz", len(entries))
	}
	if !entries[0].earned || entries[0].detail != "2/2" {
		t.Errorf("vectors-quiz entry = %+v, want earned 2/2", entries[0])
	}
	if entries[1].earned || entries[1].detail != "1/3" {
		t.Errorf("dot-product-quiz entry = %+v, want unearned 1/3", entries[1])
	}
	if entries[2].detail != "not attempted" {
		t.Errorf("gradient-quiz detail = %q", entries[2].detail)
	}

	view := s.View(100, 30)
	if !strings.Contains(view, "Total: 1 badges") {
		t.Error("expected total badge count")
	}
}

func TestVault_TabCyclesKinds(t *testing.T) {
	deps, _ := screentest.Deps(t, midway())
	s := New(deps)

	for _, want := range []achievements.Kind{
		achievements.KindAllLessons,
		achievements.KindAllQuizzes,
		achievements.KindXPMilestone,
		achievements.KindPerfectScore,
	} {
		s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
		if got := s.SelectedKind(); got != want {
			t.Errorf("SelectedKind = %q, want %q", got, want)
		}
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if got := s.SelectedKind(); got != achievements.KindXPMilestone {
		t.Errorf("after shift+tab SelectedKind = %q, want milestone", got)
	}
	e := s.entries()
	if len(e) != 1 || e[0].detail != "65/100 XP" || e[0].earned {
		t.Errorf("milestone entries = %+v", e)
	}
}

func TestVault_EscPops(t *testing.T) {
	deps, _ := screentest.Deps(t, progress.Empty())
	_, cmd := New(deps).Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Error("expected a pop command on Esc")
	}
}
