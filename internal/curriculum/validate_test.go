package curriculum

import (
	"strings"
	"testing"
)

func lesson(id string, prereqs ...string) Item {
	return Item{ID: id, Kind: KindLesson, Title: id, Listing: id, XP: 10, Prerequisites: prereqs}
}

func TestValidateModules_DetectsCycle(t *testing.T) {
	err := validateModules([]Module{{Title: "M", Items: []Item{
		lesson("root"),
		lesson("a", "b"),
		lesson("b", "a"),
	}}})
	if err == nil {
		t.Fatal("expected error for cycle, got nil")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("error should mention cycle, got: %v", err)
	}
}

func TestValidateModules_DetectsDanglingPrereq(t *testing.T) {
	err := validateModules([]Module{{Title: "M", Items: []Item{
		lesson("a"),
		lesson("b", "nonexistent"),
	}}})
	if err == nil {
		t.Fatal("expected error for dangling prerequisite, got nil")
	}
	if !strings.Contains(err.Error(), "nonexistent") {
		t.Errorf("error should mention the missing ID, got: %v", err)
	}
}

func TestValidateModules_DetectsRepeatedPrereq(t *testing.T) {
	err := validateModules([]Module{{Title: "M", Items: []Item{
		lesson("a"),
		lesson("b"),
		lesson("c", "b", "a", "a"),
	}}})
	if err == nil {
		t.Fatal("expected error for repeated prerequisite, got nil")
	}
	if !strings.Contains(err.Error(), `item "c" lists prerequisite "a" more than once`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateModules_DetectsDuplicateID(t *testing.T) {
	err := validateModules([]Module{
		{Title: "M1", Items: []Item{lesson("a")}},
		{Title: "M2", Items: []Item{lesson("a")}},
	})
	if err == nil {
		t.Fatal("expected error for duplicate ID, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error should mention duplicate, got: %v", err)
	}
}

func TestValidateModules_RequiresAtLeastOneRoot(t *testing.T) {
	err := validateModules([]Module{{Title: "M", Items: []Item{
		lesson("a", "b"),
		lesson("b", "a"),
	}}})
	if err == nil {
		t.Fatal("expected error for no roots, got nil")
	}
	if !strings.Contains(err.Error(), "root") {
		t.Errorf("error should mention root, got: %v", err)
	}
}

func TestValidateModules_QuizDefinitions(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want string
	}{
		{
			name: "quiz without questions",
			item: Item{ID: "q", Kind: KindQuiz, XP: 5},
			want: "no questions",
		},
		{
			name: "answer out of range",
			item: Item{ID: "q", Kind: KindQuiz, XP: 5, Questions: []Question{
				{Prompt: "?", Choices: []string{"a", "b"}, CorrectIndex: 2},
			}},
			want: "out of range",
		},
		{
			name: "too few choices",
			item: Item{ID: "q", Kind: KindQuiz, XP: 5, Questions: []Question{
				{Prompt: "?", Choices: []string{"a"}, CorrectIndex: 0},
			}},
			want: "at least 2 choices",
		},
		{
			name: "lesson with questions",
			item: Item{ID: "q", Kind: KindLesson, XP: 5, Questions: []Question{
				{Prompt: "?", Choices: []string{"a", "b"}},
			}},
			want: "must not declare questions",
		},
		{
			name: "zero reward",
			item: Item{ID: "q", Kind: KindLesson},
			want: "xp must be > 0",
		},
		{
			name: "unknown kind",
			item: Item{ID: "q", Kind: "video", XP: 5},
			want: "unknown kind",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateModules([]Module{{Title: "M", Items: []Item{tt.item}}})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error should contain %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestValidateModules_Empty(t *testing.T) {
	if err := validateModules(nil); err == nil {
		t.Fatal("expected error for empty curriculum")
	}
}

func TestNew_ReportsAllProblems(t *testing.T) {
	_, err := New([]Module{{Title: "M", Items: []Item{
		lesson("a", "missing"),
		lesson("a"),
	}}})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	msg := err.Error()
	for _, want := range []string{"duplicate", "missing"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error should mention %q, got: %v", want, msg)
		}
	}
}
