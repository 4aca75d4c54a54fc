package progress

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/mlmathr/internal/curriculum"
)

var (
	ErrUnknownItem      = errors.New("unknown curriculum item")
	ErrLocked           = errors.New("item is locked")
	ErrWrongKind        = errors.New("wrong item kind")
	ErrAlreadyCompleted = errors.New("already completed")
	ErrAnswerCount      = errors.New("answer count does not match question count")
	ErrUnanswered       = errors.New("every question must be answered")
)

// LockedError reports an action on an item whose prerequisites are not
// completed.
type LockedError struct {
	ItemID  string
	Missing []curriculum.Item
}

func (e *LockedError) Error() string {
	names := make([]string, len(e.Missing))
	for i, it := range e.Missing {
		names[i] = it.Listing
	}
	return fmt.Sprintf("%s is locked: complete %s first", e.ItemID, strings.Join(names, ", "))
}

func (e *LockedError) Is(target error) bool { return target == ErrLocked }

// QuizResult describes a graded quiz submission.
type QuizResult struct {
	Score     int
	Total     int
	Passed    bool
	XPAwarded int
}

// CompleteLesson awards a lesson's declared XP. It returns the XP awarded,
// which is 0 when the lesson was already completed.
func (m *Machine) CompleteLesson(id string) (int, error) {
	it, err := m.unlockedItem(id, curriculum.KindLesson)
	if err != nil {
		return 0, err
	}
	if !m.AwardXP(it.ID, it.XP) {
		return 0, nil
	}
	return it.XP, nil
}

// SubmitQuiz grades answers, records the submission and awards the quiz's
// XP on a perfect score. A quiz that already awarded XP cannot be
// resubmitted.
func (m *Machine) SubmitQuiz(id string, answers []int) (QuizResult, error) {
	it, err := m.unlockedItem(id, curriculum.KindQuiz)
	if err != nil {
		return QuizResult{}, err
	}
	if m.HasCompleted(id) {
		return QuizResult{}, fmt.Errorf("submit %s: %w", id, ErrAlreadyCompleted)
	}

	total := it.TotalQuestions()
	if len(answers) != total {
		return QuizResult{}, fmt.Errorf("submit %s: %w: got %d, want %d", id, ErrAnswerCount, len(answers), total)
	}
	for _, a := range answers {
		if a < 0 {
			return QuizResult{}, fmt.Errorf("submit %s: %w", id, ErrUnanswered)
		}
	}

	res := QuizResult{Score: it.Grade(answers), Total: total}
	m.RecordQuizSubmission(id, answers, res.Score)
	if res.Score == total {
		res.Passed = true
		if m.AwardXP(id, it.XP) {
			res.XPAwarded = it.XP
		}
	}
	return res, nil
}

// RetryQuiz clears a failed submission so the quiz can be taken again.
// Retrying is refused once the quiz has awarded XP.
func (m *Machine) RetryQuiz(id string) error {
	it, ok := m.graph.Item(id)
	if !ok {
		return fmt.Errorf("retry %s: %w", id, ErrUnknownItem)
	}
	if !it.IsQuiz() {
		return fmt.Errorf("retry %s: %w: %s is a %s", id, ErrWrongKind, id, it.Kind)
	}
	if m.HasCompleted(id) {
		return fmt.Errorf("retry %s: %w", id, ErrAlreadyCompleted)
	}
	m.ClearQuizSubmission(id)
	return nil
}

func (m *Machine) unlockedItem(id string, kind curriculum.Kind) (curriculum.Item, error) {
	it, ok := m.graph.Item(id)
	if !ok {
		return curriculum.Item{}, fmt.Errorf("%s: %w", id, ErrUnknownItem)
	}
	if it.Kind != kind {
		return curriculum.Item{}, fmt.Errorf("%s: %w: want %s, got %s", id, ErrWrongKind, kind, it.Kind)
	}
	if missing := m.MissingPrerequisites(id); len(missing) > 0 {
		return curriculum.Item{}, &LockedError{ItemID: id, Missing: missing}
	}
	return it, nil
}
