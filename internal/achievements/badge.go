package achievements

// Kind identifies the category of achievement.
type Kind string

const (
	KindPerfectScore Kind = "perfect-score"
	KindAllLessons   Kind = "all-lessons"
	KindAllQuizzes   Kind = "all-quizzes"
	KindXPMilestone  Kind = "xp-milestone"
)

// AllKinds returns all achievement kinds in display order.
func AllKinds() []Kind {
	return []Kind{KindPerfectScore, KindAllLessons, KindAllQuizzes, KindXPMilestone}
}

// DisplayName returns a human-readable label for the kind.
func (k Kind) DisplayName() string {
	switch k {
	case KindPerfectScore:
		return "Perfect Score"
	case KindAllLessons:
		return "Lessons"
	case KindAllQuizzes:
		return "Quizzes"
	case KindXPMilestone:
		return "Milestone"
	default:
		return string(k)
	}
}

// Icon returns the display icon for the kind.
func (k Kind) Icon() string {
	switch k {
	case KindPerfectScore:
		return "🎯"
	case KindAllLessons:
		return "📚"
	case KindAllQuizzes:
		return "🧠"
	case KindXPMilestone:
		return "🏆"
	default:
		return "✦"
	}
}

// Badge is a single earned achievement.
type Badge struct {
	Kind   Kind
	Title  string
	ItemID string // quiz ID for perfect-score badges, empty otherwise
}

// Icon returns the icon of the badge's kind.
func (b Badge) Icon() string { return b.Kind.Icon() }

// String renders the badge with its icon.
func (b Badge) String() string { return b.Kind.Icon() + " " + b.Title }
