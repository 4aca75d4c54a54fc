package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// SchemaVersion is the version written by Encode.
const SchemaVersion = 1

// ErrCorruptData is returned when a persisted blob is not a JSON object.
var ErrCorruptData = errors.New("corrupt progress data")

type wireRecord struct {
	Score   int    `json:"score"`
	Answers []*int `json:"answers"`
}

type wireSnapshot struct {
	Version        int                   `json:"version"`
	XP             int                   `json:"xp"`
	CompletedItems []string              `json:"completedItems"`
	QuizRecords    map[string]wireRecord `json:"quizRecords"`
}

// Encode serializes a snapshot in the current schema version. Completed IDs
// are sorted so equal snapshots encode identically.
func Encode(s Snapshot) ([]byte, error) {
	w := wireSnapshot{
		Version:        SchemaVersion,
		XP:             s.XP,
		CompletedItems: s.CompletedIDs(),
		QuizRecords:    make(map[string]wireRecord, len(s.QuizRecords)),
	}
	for id, rec := range s.QuizRecords {
		answers := make([]*int, len(rec.Answers))
		for i, a := range rec.Answers {
			if a >= 0 {
				answers[i] = &a
			}
		}
		w.QuizRecords[id] = wireRecord{Score: rec.Score, Answers: answers}
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode progress: %w", err)
	}
	return b, nil
}

// Decode parses a persisted snapshot. Each field is decoded independently:
// a missing or malformed field falls back to its zero value instead of
// failing the whole blob. Only input that is not a JSON object yields
// ErrCorruptData.
func Decode(data []byte) (Snapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return Empty(), fmt.Errorf("%w: not a JSON object", ErrCorruptData)
	}

	s := Empty()
	s.XP = decodeCount(fields["xp"])
	s.Completed = decodeIDSet(fields["completedItems"])
	s.QuizRecords = decodeRecords(fields["quizRecords"])
	return s, nil
}

// decodeCount accepts a JSON number or numeric string; anything else is 0.
// Negative values clamp to 0.
func decodeCount(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0
		}
		v, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return 0
		}
		n = v
	}
	return clampCount(n)
}

// clampCount converts n to a count in [0, math.MaxInt]. Non-finite values
// are malformed and become 0.
func clampCount(n float64) int {
	switch {
	case math.IsNaN(n) || math.IsInf(n, 0) || n <= 0:
		return 0
	case n >= float64(math.MaxInt):
		return math.MaxInt
	default:
		return int(n)
	}
}

// decodeIDSet accepts an array of strings, skipping non-string members.
func decodeIDSet(raw json.RawMessage) map[string]bool {
	set := make(map[string]bool)
	if len(raw) == 0 {
		return set
	}
	var members []json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return set
	}
	for _, m := range members {
		var id string
		if err := json.Unmarshal(m, &id); err != nil || id == "" {
			continue
		}
		set[id] = true
	}
	return set
}

func decodeRecords(raw json.RawMessage) map[string]QuizRecord {
	records := make(map[string]QuizRecord)
	if len(raw) == 0 {
		return records
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return records
	}
	for id, entry := range entries {
		rec, ok := decodeRecord(entry)
		if !ok {
			continue
		}
		records[id] = rec
	}
	return records
}

func decodeRecord(raw json.RawMessage) (QuizRecord, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return QuizRecord{}, false
	}
	if _, ok := fields["score"]; !ok {
		return QuizRecord{}, false
	}
	rec := QuizRecord{Score: decodeCount(fields["score"])}

	var answers []json.RawMessage
	if err := json.Unmarshal(fields["answers"], &answers); err == nil {
		rec.Answers = make([]int, len(answers))
		for i, a := range answers {
			rec.Answers[i] = decodeAnswer(a)
		}
	}
	return rec, true
}

func decodeAnswer(raw json.RawMessage) int {
	var n *int
	if err := json.Unmarshal(raw, &n); err != nil || n == nil || *n < 0 {
		return Unanswered
	}
	return *n
}

// DecodeLegacy reads the older three-key local layout: xp as a number,
// completedLessons as an array of IDs, and quizScores as a map of bare
// scores. Any of the values may be empty.
func DecodeLegacy(xp, completed, quizScores string) Snapshot {
	s := Empty()
	s.XP = decodeCount(json.RawMessage(xp))
	s.Completed = decodeIDSet(json.RawMessage(completed))

	var scores map[string]json.RawMessage
	if err := json.Unmarshal([]byte(quizScores), &scores); err == nil {
		for id, raw := range scores {
			var n float64
			if err := json.Unmarshal(raw, &n); err != nil {
				continue
			}
			s.QuizRecords[id] = QuizRecord{Score: clampCount(n)}
		}
	}
	return s
}
