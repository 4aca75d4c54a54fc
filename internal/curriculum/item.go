package curriculum

// Kind distinguishes lessons from quizzes.
type Kind string

const (
	KindLesson Kind = "lesson"
	KindQuiz   Kind = "quiz"
)

// Question is a single multiple-choice quiz question.
type Question struct {
	Prompt       string   `yaml:"prompt"`
	Choices      []string `yaml:"choices"`
	CorrectIndex int      `yaml:"answer"`
}

// Item is a single lesson or quiz node in the curriculum graph.
type Item struct {
	ID            string     `yaml:"id"`
	Kind          Kind       `yaml:"kind"`
	Title         string     `yaml:"title"`
	Listing       string     `yaml:"listing"`
	Summary       string     `yaml:"summary"`
	XP            int        `yaml:"xp"`
	Prerequisites []string   `yaml:"prerequisites"`
	Questions     []Question `yaml:"questions"`

	// Module is filled in from the enclosing module when the graph is built.
	Module string `yaml:"-"`
}

// IsQuiz reports whether the item is a quiz.
func (it Item) IsQuiz() bool { return it.Kind == KindQuiz }

// TotalQuestions returns the number of questions in a quiz, or 0 for lessons.
func (it Item) TotalQuestions() int {
	if it.Kind != KindQuiz {
		return 0
	}
	return len(it.Questions)
}

// Grade counts the answers that match the correct choice. Answers beyond
// the question count and negative (unanswered) entries never score.
func (it Item) Grade(answers []int) int {
	correct := 0
	for i, q := range it.Questions {
		if i >= len(answers) {
			break
		}
		if answers[i] >= 0 && answers[i] == q.CorrectIndex {
			correct++
		}
	}
	return correct
}

// Module groups items under a display heading.
type Module struct {
	Title string `yaml:"title"`
	Items []Item `yaml:"items"`
}

// State represents an item's state relative to the learner.
type State int

const (
	StateLocked    State = iota // One or more prerequisites not completed
	StateAvailable              // Unlocked, not yet completed
	StateAttempted              // Quiz submitted without a passing score
	StateCompleted              // XP awarded
)

// Icon returns the display icon for an item state.
func (s State) Icon() string {
	switch s {
	case StateLocked:
		return "🔒"
	case StateAvailable:
		return "🔓"
	case StateAttempted:
		return "📝"
	case StateCompleted:
		return "✅"
	default:
		return "?"
	}
}

// Label returns the display label for an item state.
func (s State) Label() string {
	switch s {
	case StateLocked:
		return "Locked"
	case StateAvailable:
		return "Available"
	case StateAttempted:
		return "Attempted"
	case StateCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}
