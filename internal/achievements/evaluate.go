// Package achievements derives earned badges from a progress snapshot.
package achievements

import (
	"github.com/abhisek/mlmathr/internal/curriculum"
	"github.com/abhisek/mlmathr/internal/progress"
)

// XPMilestone is the XP total that earns the milestone badge.
const XPMilestone = 100

// Evaluate returns every badge earned by snap, in display order. It has
// no side effects and is recomputed on demand.
func Evaluate(snap progress.Snapshot, g *curriculum.Graph) []Badge {
	var badges []Badge

	for _, q := range g.Quizzes() {
		rec, ok := snap.QuizRecords[q.ID]
		if ok && rec.Score == q.TotalQuestions() {
			badges = append(badges, Badge{
				Kind:   KindPerfectScore,
				Title:  "Perfect Score: " + q.Listing,
				ItemID: q.ID,
			})
		}
	}

	if allCompleted(g.Lessons(), snap) {
		badges = append(badges, Badge{Kind: KindAllLessons, Title: "All Lessons Completed"})
	}
	if allCompleted(g.Quizzes(), snap) {
		badges = append(badges, Badge{Kind: KindAllQuizzes, Title: "All Quizzes Completed"})
	}
	if snap.XP >= XPMilestone {
		badges = append(badges, Badge{Kind: KindXPMilestone, Title: "100 XP Earned"})
	}
	return badges
}

// allCompleted is false for an empty item list so a curriculum without
// lessons never hands out the lessons badge.
func allCompleted(items []curriculum.Item, snap progress.Snapshot) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if !snap.Completed[it.ID] {
			return false
		}
	}
	return true
}

// Newly returns the badges in after that are not in before, preserving
// display order.
func Newly(before, after []Badge) []Badge {
	seen := make(map[string]bool, len(before))
	for _, b := range before {
		seen[b.Title] = true
	}
	var out []Badge
	for _, b := range after {
		if !seen[b.Title] {
			out = append(out, b)
		}
	}
	return out
}
