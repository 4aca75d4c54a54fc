// Package progress holds the learner's progress snapshot and the state
// machine that mutates it.
package progress

import (
	"maps"
	"slices"
	"sort"
)

// Unanswered marks a quiz answer slot the learner left empty.
const Unanswered = -1

// QuizRecord is the last submission for a quiz.
type QuizRecord struct {
	Score   int
	Answers []int
}

func (r QuizRecord) clone() QuizRecord {
	return QuizRecord{Score: r.Score, Answers: slices.Clone(r.Answers)}
}

// Snapshot is the unit of persistence and of merge.
type Snapshot struct {
	XP          int
	Completed   map[string]bool
	QuizRecords map[string]QuizRecord
}

// Empty returns a zero-progress snapshot with initialized collections.
func Empty() Snapshot {
	return Snapshot{
		Completed:   make(map[string]bool),
		QuizRecords: make(map[string]QuizRecord),
	}
}

// Clone returns a deep copy. Completed entries set to false are dropped.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		XP:          s.XP,
		Completed:   make(map[string]bool, len(s.Completed)),
		QuizRecords: make(map[string]QuizRecord, len(s.QuizRecords)),
	}
	for id, done := range s.Completed {
		if done {
			out.Completed[id] = true
		}
	}
	for id, rec := range s.QuizRecords {
		out.QuizRecords[id] = rec.clone()
	}
	return out
}

// CompletedIDs returns the completed item IDs sorted lexically.
func (s Snapshot) CompletedIDs() []string {
	ids := make([]string, 0, len(s.Completed))
	for id, done := range s.Completed {
		if done {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// IsEmpty reports whether the snapshot carries no progress at all.
func (s Snapshot) IsEmpty() bool {
	return s.XP == 0 && len(s.CompletedIDs()) == 0 && len(s.QuizRecords) == 0
}

// Equal reports whether two snapshots carry the same progress.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.XP != o.XP {
		return false
	}
	if !slices.Equal(s.CompletedIDs(), o.CompletedIDs()) {
		return false
	}
	return maps.EqualFunc(s.QuizRecords, o.QuizRecords, func(a, b QuizRecord) bool {
		return a.Score == b.Score && slices.Equal(a.Answers, b.Answers)
	})
}

// Merge reconciles a device-local snapshot with a remote one. Each field is
// taken from the remote side when it is non-empty, otherwise from local, so
// a fresh account adopts progress made anonymously on the device while an
// established account's data wins.
func Merge(local, remote Snapshot) Snapshot {
	local, remote = local.Clone(), remote.Clone()
	out := Snapshot{XP: local.XP, Completed: local.Completed, QuizRecords: local.QuizRecords}
	if remote.XP > 0 {
		out.XP = remote.XP
	}
	if len(remote.Completed) > 0 {
		out.Completed = remote.Completed
	}
	if len(remote.QuizRecords) > 0 {
		out.QuizRecords = remote.QuizRecords
	}
	return out
}
