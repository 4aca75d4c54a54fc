package achievements

import (
	"testing"

	"github.com/abhisek/mlmathr/internal/curriculum"
	"github.com/abhisek/mlmathr/internal/progress"
)

func titles(badges []Badge) []string {
	out := make([]string, len(badges))
	for i, b := range badges {
		out[i] = b.Title
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEvaluate_Empty(t *testing.T) {
	got := Evaluate(progress.Empty(), curriculum.Default())
	if len(got) != 0 {
		t.Errorf("got %v, want no badges", titles(got))
	}
}

func TestEvaluate_PerfectScoreAndMilestone(t *testing.T) {
	snap := progress.Empty()
	snap.XP = 105
	snap.QuizRecords["vectors-quiz"] = progress.QuizRecord{Score: 2}
	snap.QuizRecords["dot-product-quiz"] = progress.QuizRecord{Score: 3}

	got := titles(Evaluate(snap, curriculum.Default()))
	want := []string{
		"Perfect Score: Vectors Quiz",
		"Perfect Score: Dot Product Quiz",
		"100 XP Earned",
	}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestEvaluate_PartialScoreEarnsNothing(t *testing.T) {
	snap := progress.Empty()
	snap.XP = 99
	snap.QuizRecords["dot-product-quiz"] = progress.QuizRecord{Score: 2}

	if got := Evaluate(snap, curriculum.Default()); len(got) != 0 {
		t.Errorf("got %v, want no badges", titles(got))
	}
}

func TestEvaluate_AllLessonsAndQuizzes(t *testing.T) {
	g := curriculum.Default()
	snap := progress.Empty()
	for _, it := range g.Lessons() {
		snap.Completed[it.ID] = true
	}
	got := titles(Evaluate(snap, g))
	if !equal(got, []string{"All Lessons Completed"}) {
		t.Errorf("lessons only: got %v", got)
	}

	for _, it := range g.Quizzes() {
		snap.Completed[it.ID] = true
	}
	got = titles(Evaluate(snap, g))
	if !equal(got, []string{"All Lessons Completed", "All Quizzes Completed"}) {
		t.Errorf("lessons and quizzes: got %v", got)
	}
}

func TestEvaluate_NoLessonsNoLessonBadge(t *testing.T) {
	g, err := curriculum.New([]curriculum.Module{{Title: "Q", Items: []curriculum.Item{
		{ID: "q", Kind: curriculum.KindQuiz, Listing: "Q", XP: 5, Questions: []curriculum.Question{
			{Prompt: "?", Choices: []string{"a", "b"}, CorrectIndex: 0},
		}},
	}}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	snap := progress.Empty()
	snap.Completed["q"] = true

	got := titles(Evaluate(snap, g))
	if !equal(got, []string{"All Quizzes Completed"}) {
		t.Errorf("got %v, want only the quizzes badge", got)
	}
}

func TestEvaluate_UnknownRecordsIgnored(t *testing.T) {
	snap := progress.Empty()
	snap.QuizRecords["retired-quiz"] = progress.QuizRecord{Score: 0}
	if got := Evaluate(snap, curriculum.Default()); len(got) != 0 {
		t.Errorf("got %v, want no badges", titles(got))
	}
}

func TestNewly(t *testing.T) {
	before := []Badge{{Kind: KindPerfectScore, Title: "Perfect Score: Vectors Quiz"}}
	after := []Badge{
		{Kind: KindPerfectScore, Title: "Perfect Score: Vectors Quiz"},
		{Kind: KindXPMilestone, Title: "100 XP Earned"},
	}
	got := titles(Newly(before, after))
	if !equal(got, []string{"100 XP Earned"}) {
		t.Errorf("got %v", got)
	}
	if len(Newly(after, before)) != 0 {
		t.Error("losing a badge must not report anything new")
	}
}

func TestKindIcons(t *testing.T) {
	for _, k := range AllKinds() {
		if k.Icon() == "✦" {
			t.Errorf("kind %q has no icon", k)
		}
		if k.DisplayName() == string(k) {
			t.Errorf("kind %q has no display name", k)
		}
	}
}
