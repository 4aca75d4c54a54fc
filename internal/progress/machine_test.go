package progress

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/abhisek/mlmathr/internal/curriculum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoadedMachine(t *testing.T) *Machine {
	t.Helper()
	m := NewMachine(curriculum.Default(), nil)
	m.Load(Empty())
	return m
}

func TestAwardXP_Idempotent(t *testing.T) {
	m := newLoadedMachine(t)

	require.True(t, m.AwardXP("vectors", 25))
	rev := m.Revision()
	assert.Equal(t, 25, m.XP())

	assert.False(t, m.AwardXP("vectors", 25))
	assert.Equal(t, 25, m.XP())
	assert.Equal(t, rev, m.Revision(), "no-op must not bump revision")
	assert.True(t, m.HasCompleted("vectors"))
}

func TestAwardXP_RefusesUnknownAndNonPositive(t *testing.T) {
	m := newLoadedMachine(t)
	rev := m.Revision()

	assert.False(t, m.AwardXP("nonexistent", 10))
	assert.False(t, m.AwardXP("vectors", 0))
	assert.False(t, m.AwardXP("vectors", -5))
	assert.Equal(t, 0, m.XP())
	assert.Equal(t, rev, m.Revision())
	assert.False(t, m.HasCompleted("nonexistent"))
}

func TestUnlockMonotonicity(t *testing.T) {
	m := newLoadedMachine(t)
	g := m.Graph()

	unlocked := make(map[string]bool)
	for _, it := range g.AllItems() {
		unlocked[it.ID] = m.IsUnlocked(it.ID)
	}

	// Award items in declaration order and check nothing ever re-locks.
	for _, it := range g.AllItems() {
		m.AwardXP(it.ID, it.XP)
		for _, other := range g.AllItems() {
			now := m.IsUnlocked(other.ID)
			if unlocked[other.ID] && !now {
				t.Fatalf("%s re-locked after completing %s", other.ID, it.ID)
			}
			unlocked[other.ID] = now
		}
	}
	assert.Equal(t, g.TotalXP(), m.XP())
}

func TestIsUnlocked_ScenarioAB(t *testing.T) {
	g, err := curriculum.New([]curriculum.Module{{Title: "M", Items: []curriculum.Item{
		{ID: "A", Kind: curriculum.KindLesson, Listing: "A", XP: 10},
		{ID: "B", Kind: curriculum.KindLesson, Listing: "B", XP: 20, Prerequisites: []string{"A"}},
	}}})
	require.NoError(t, err)

	m := NewMachine(g, nil)
	m.Load(Empty())

	assert.True(t, m.IsUnlocked("A"))
	assert.False(t, m.IsUnlocked("B"))
	missing := m.MissingPrerequisites("B")
	require.Len(t, missing, 1)
	assert.Equal(t, "A", missing[0].ID)

	require.True(t, m.AwardXP("A", 10))
	assert.True(t, m.IsUnlocked("B"))
	assert.Equal(t, 10, m.XP())

	assert.False(t, m.AwardXP("A", 10))
	assert.Equal(t, 10, m.XP())
}

func TestIsUnlocked_UnknownID(t *testing.T) {
	m := newLoadedMachine(t)
	assert.False(t, m.IsUnlocked("nonexistent"))
	assert.Empty(t, m.MissingPrerequisites("nonexistent"))
}

func TestRecordAndClearQuizSubmission(t *testing.T) {
	m := newLoadedMachine(t)

	_, ok := m.QuizScore("vectors-quiz")
	assert.False(t, ok, "no record before submission")

	require.True(t, m.RecordQuizSubmission("vectors-quiz", []int{0, 1}, 1))
	score, ok := m.QuizScore("vectors-quiz")
	require.True(t, ok)
	assert.Equal(t, 1, score)
	assert.Equal(t, 0, m.XP(), "recording never awards XP")

	require.True(t, m.RecordQuizSubmission("vectors-quiz", []int{0, 2}, 2))
	rec, _ := m.QuizRecord("vectors-quiz")
	assert.Equal(t, []int{0, 2}, rec.Answers)

	rev := m.Revision()
	require.True(t, m.ClearQuizSubmission("vectors-quiz"))
	assert.Greater(t, m.Revision(), rev)
	_, ok = m.QuizScore("vectors-quiz")
	assert.False(t, ok)

	rev = m.Revision()
	assert.False(t, m.ClearQuizSubmission("vectors-quiz"))
	assert.Equal(t, rev, m.Revision())
}

func TestRecordQuizSubmission_Refusals(t *testing.T) {
	m := newLoadedMachine(t)
	assert.False(t, m.RecordQuizSubmission("nonexistent", nil, 0))
	assert.False(t, m.RecordQuizSubmission("vectors", nil, 0))
	assert.False(t, m.RecordQuizSubmission("vectors-quiz", []int{0, 0}, 3))
	assert.False(t, m.RecordQuizSubmission("vectors-quiz", []int{0, 0}, -1))
}

func TestRecordQuizSubmission_CopiesAnswers(t *testing.T) {
	m := newLoadedMachine(t)
	answers := []int{0, 2}
	m.RecordQuizSubmission("vectors-quiz", answers, 2)
	answers[0] = 3
	rec, _ := m.QuizRecord("vectors-quiz")
	assert.Equal(t, 0, rec.Answers[0])
}

func TestClearQuizSubmission_KeepsCompletion(t *testing.T) {
	m := newLoadedMachine(t)
	m.RecordQuizSubmission("vectors-quiz", []int{0, 2}, 2)
	m.AwardXP("vectors-quiz", 15)

	m.ClearQuizSubmission("vectors-quiz")
	assert.True(t, m.HasCompleted("vectors-quiz"))
	assert.Equal(t, 15, m.XP())
}

func TestReset_Gate(t *testing.T) {
	m := NewMachine(curriculum.Default(), nil)
	m.AwardXP("vectors", 25)
	rev := m.Revision()

	err := m.Reset()
	assert.True(t, errors.Is(err, ErrPrematureReset))
	assert.Equal(t, 25, m.XP(), "refused reset leaves snapshot untouched")
	assert.Equal(t, rev, m.Revision())

	m.Load(m.Snapshot())
	require.NoError(t, m.Reset())
	assert.Equal(t, 0, m.XP())
	assert.Empty(t, m.CompletedIDs())
}

func TestUnload_ClosesGate(t *testing.T) {
	m := newLoadedMachine(t)
	assert.True(t, m.HasLoaded())
	m.Unload()
	assert.False(t, m.HasLoaded())
	assert.ErrorIs(t, m.Reset(), ErrPrematureReset)
}

func TestLoad_ReplacesWholesale(t *testing.T) {
	m := newLoadedMachine(t)
	m.AwardXP("vectors", 25)

	next := Empty()
	next.XP = 40
	next.Completed["vectors-quiz"] = true
	m.Load(next)

	assert.Equal(t, 40, m.XP())
	assert.False(t, m.HasCompleted("vectors"))
	assert.True(t, m.HasCompleted("vectors-quiz"))

	next.Completed["dot-product"] = true
	assert.False(t, m.HasCompleted("dot-product"), "Load must copy its input")
}

func TestSubscribe(t *testing.T) {
	m := NewMachine(curriculum.Default(), nil)

	var got []Change
	unsubscribe := m.Subscribe(func(c Change) { got = append(got, c) })

	m.Load(Empty())
	m.AwardXP("vectors", 25)
	m.AwardXP("vectors", 25)
	require.NoError(t, m.Reset())

	require.Len(t, got, 3)
	assert.Equal(t, OriginLoad, got[0].Origin)
	assert.Equal(t, OriginMutation, got[1].Origin)
	assert.Equal(t, OriginReset, got[2].Origin)
	assert.Less(t, got[0].Revision, got[1].Revision)
	assert.Less(t, got[1].Revision, got[2].Revision)

	unsubscribe()
	m.AwardXP("vectors", 25)
	assert.Len(t, got, 3)
}

func TestSubscribe_ListenerMayReadMachine(t *testing.T) {
	m := newLoadedMachine(t)
	var xp int
	m.Subscribe(func(Change) { xp = m.XP() })
	m.AwardXP("vectors", 25)
	assert.Equal(t, 25, xp)
}

func TestConcurrentAwards(t *testing.T) {
	m := newLoadedMachine(t)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.AwardXP("vectors", 25)
		}()
	}
	wg.Wait()
	assert.Equal(t, 25, m.XP())
}

func TestItemState(t *testing.T) {
	m := newLoadedMachine(t)
	assert.Equal(t, curriculum.StateAvailable, m.ItemState("vectors"))
	assert.Equal(t, curriculum.StateLocked, m.ItemState("vectors-quiz"))

	m.AwardXP("vectors", 25)
	assert.Equal(t, curriculum.StateCompleted, m.ItemState("vectors"))
	assert.Equal(t, curriculum.StateAvailable, m.ItemState("vectors-quiz"))

	m.RecordQuizSubmission("vectors-quiz", []int{1, 1}, 0)
	assert.Equal(t, curriculum.StateAttempted, m.ItemState("vectors-quiz"))
}

func TestPercentAndNextUp(t *testing.T) {
	m := newLoadedMachine(t)
	assert.Equal(t, 0, m.Percent())

	next, ok := m.NextUp("")
	require.True(t, ok)
	assert.Equal(t, "vectors", next.ID)

	m.AwardXP("vectors", 25)
	assert.Equal(t, 8, m.Percent()) // 25/310 rounds to 8

	next, ok = m.NextUp("")
	require.True(t, ok)
	assert.Equal(t, "vectors-quiz", next.ID)

	next, ok = m.NextUp("vectors-quiz")
	require.True(t, ok)
	assert.Equal(t, "dot-product", next.ID)
}

func TestAwardXP_SaturatesAtMaxInt(t *testing.T) {
	m := NewMachine(curriculum.Default(), nil)
	snap := Empty()
	snap.XP = math.MaxInt - 10
	m.Load(snap)

	require.True(t, m.AwardXP("vectors", 25))
	assert.Equal(t, math.MaxInt, m.XP())
	assert.Equal(t, 100, m.Percent())
}
