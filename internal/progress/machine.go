package progress

import (
	"errors"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/abhisek/mlmathr/internal/curriculum"
)

// ErrPrematureReset is returned by Reset before the current identity's
// progress has been loaded.
var ErrPrematureReset = errors.New("progress not loaded yet; reset refused")

// Origin describes what caused a revision bump.
type Origin int

const (
	OriginMutation Origin = iota // Learner action
	OriginReset                  // Explicit reset to empty
	OriginLoad                   // Wholesale replacement from storage
)

func (o Origin) String() string {
	switch o {
	case OriginMutation:
		return "mutation"
	case OriginReset:
		return "reset"
	case OriginLoad:
		return "load"
	default:
		return "unknown"
	}
}

// Change is delivered to subscribers after every revision bump.
type Change struct {
	Revision uint64
	Origin   Origin
}

// Machine owns the live progress snapshot. All methods are safe for
// concurrent use and atomic with respect to each other. Subscribers are
// notified after the internal lock is released, so they may call back
// into the machine.
type Machine struct {
	graph  *curriculum.Graph
	logger *slog.Logger

	mu        sync.Mutex
	snap      Snapshot
	revision  uint64
	loaded    bool
	listeners map[int]func(Change)
	nextID    int
}

// NewMachine creates a machine holding an empty, not-yet-loaded snapshot.
func NewMachine(graph *curriculum.Graph, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		graph:     graph,
		logger:    logger.With("component", "progress"),
		snap:      Empty(),
		listeners: make(map[int]func(Change)),
	}
}

// Graph returns the curriculum the machine evaluates against.
func (m *Machine) Graph() *curriculum.Graph { return m.graph }

// Subscribe registers fn to be called after every revision bump and
// returns a function that removes the registration.
func (m *Machine) Subscribe(fn func(Change)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// bumpLocked increments the revision and returns the listeners to notify.
// Caller must hold m.mu.
func (m *Machine) bumpLocked(origin Origin) (Change, []func(Change)) {
	m.revision++
	fns := make([]func(Change), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	return Change{Revision: m.revision, Origin: origin}, fns
}

func notify(c Change, fns []func(Change)) {
	for _, fn := range fns {
		fn(c)
	}
}

// AwardXP marks id completed and adds amount to the XP total. It is a
// no-op if id is already completed, unknown to the curriculum, or amount
// is not positive. Callers pass the item's own declared reward.
func (m *Machine) AwardXP(id string, amount int) bool {
	if amount <= 0 || !m.graph.Has(id) {
		return false
	}

	m.mu.Lock()
	if m.snap.Completed[id] {
		m.mu.Unlock()
		return false
	}
	m.snap.Completed[id] = true
	m.snap.XP = addCount(m.snap.XP, amount)
	c, fns := m.bumpLocked(OriginMutation)
	m.mu.Unlock()

	notify(c, fns)
	return true
}

// RecordQuizSubmission overwrites the quiz record for id. It never awards
// XP. Unknown IDs, non-quiz items and out-of-range scores are refused.
func (m *Machine) RecordQuizSubmission(id string, answers []int, correct int) bool {
	it, ok := m.graph.Item(id)
	if !ok || !it.IsQuiz() || correct < 0 || correct > it.TotalQuestions() {
		return false
	}

	m.mu.Lock()
	m.snap.QuizRecords[id] = QuizRecord{Score: correct, Answers: slices.Clone(answers)}
	c, fns := m.bumpLocked(OriginMutation)
	m.mu.Unlock()

	notify(c, fns)
	return true
}

// ClearQuizSubmission removes the record for id. XP and completion are
// untouched. Reports whether a record was removed.
func (m *Machine) ClearQuizSubmission(id string) bool {
	m.mu.Lock()
	if _, ok := m.snap.QuizRecords[id]; !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.snap.QuizRecords, id)
	c, fns := m.bumpLocked(OriginMutation)
	m.mu.Unlock()

	notify(c, fns)
	return true
}

// Reset replaces the live snapshot with an empty one. It is refused with
// ErrPrematureReset until the snapshot for the current identity has been
// loaded, so an empty snapshot can never overwrite unread stored progress.
func (m *Machine) Reset() error {
	m.mu.Lock()
	if !m.loaded {
		m.mu.Unlock()
		m.logger.Warn("reset refused before progress loaded")
		return ErrPrematureReset
	}
	m.snap = Empty()
	c, fns := m.bumpLocked(OriginReset)
	m.mu.Unlock()

	notify(c, fns)
	return nil
}

// Load replaces the live snapshot wholesale and opens the load gate.
func (m *Machine) Load(s Snapshot) {
	m.mu.Lock()
	m.snap = s.Clone()
	m.loaded = true
	c, fns := m.bumpLocked(OriginLoad)
	m.mu.Unlock()

	notify(c, fns)
}

// Unload closes the load gate, typically because the identity changed.
// The snapshot itself is kept until the next Load replaces it.
func (m *Machine) Unload() {
	m.mu.Lock()
	m.loaded = false
	m.mu.Unlock()
}

// HasLoaded reports whether the snapshot for the current identity has
// been loaded.
func (m *Machine) HasLoaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Revision returns the current revision counter.
func (m *Machine) Revision() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision
}

// Snapshot returns a deep copy of the live snapshot.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone()
}

// SnapshotAt returns a deep copy of the live snapshot with its revision.
func (m *Machine) SnapshotAt() (Snapshot, uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone(), m.revision
}

// XP returns the current XP total.
func (m *Machine) XP() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.XP
}

// HasCompleted reports whether id is in the completed set.
func (m *Machine) HasCompleted(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Completed[id]
}

// QuizScore returns the last recorded score for a quiz.
func (m *Machine) QuizScore(id string) (int, bool) {
	rec, ok := m.QuizRecord(id)
	return rec.Score, ok
}

// QuizRecord returns a copy of the last submission for a quiz.
func (m *Machine) QuizRecord(id string) (QuizRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.snap.QuizRecords[id]
	if !ok {
		return QuizRecord{}, false
	}
	return rec.clone(), true
}

// IsUnlocked reports whether every prerequisite of id is completed.
// Unknown IDs are locked.
func (m *Machine) IsUnlocked(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.graph.IsUnlocked(id, m.snap.Completed)
}

// MissingPrerequisites returns the uncompleted prerequisites of id in
// declaration order.
func (m *Machine) MissingPrerequisites(id string) []curriculum.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.graph.MissingPrerequisites(id, m.snap.Completed)
}

// CompletedIDs returns the completed items known to the curriculum, in
// declaration order.
func (m *Machine) CompletedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, it := range m.graph.AllItems() {
		if m.snap.Completed[it.ID] {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

// ItemState classifies id for display.
func (m *Machine) ItemState(id string) curriculum.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.snap.Completed[id]:
		return curriculum.StateCompleted
	case !m.graph.IsUnlocked(id, m.snap.Completed):
		return curriculum.StateLocked
	}
	if _, ok := m.snap.QuizRecords[id]; ok {
		return curriculum.StateAttempted
	}
	return curriculum.StateAvailable
}

// Percent returns earned XP as a percentage of the curriculum total,
// rounded to the nearest whole number.
// addCount adds two non-negative counts, saturating at math.MaxInt.
func addCount(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

func (m *Machine) Percent() int {
	total := m.graph.TotalXP()
	if total == 0 {
		return 0
	}
	xp := m.XP()
	if xp >= total {
		return 100
	}
	return (xp*100 + total/2) / total
}

// NextUp returns the item after id in declaration order. With an empty id
// it returns the first unlocked item not yet completed.
func (m *Machine) NextUp(id string) (curriculum.Item, bool) {
	if id != "" {
		return m.graph.Next(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.graph.FirstIncomplete(m.snap.Completed)
}
