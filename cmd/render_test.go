package cmd

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/abhisek/mlmathr/internal/achievements"
	"github.com/abhisek/mlmathr/internal/curriculum"
	"github.com/abhisek/mlmathr/internal/identity"
	"github.com/abhisek/mlmathr/internal/progress"
	"github.com/abhisek/mlmathr/internal/syncer"
)

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// midwayMachine has the first lesson and quiz done, the second lesson done
// and a failed attempt at the second quiz.
func midwayMachine(t *testing.T) *progress.Machine {
	t.Helper()
	m := progress.NewMachine(curriculum.Default(), nil)
	snap := progress.Empty()
	snap.XP = 65
	snap.Completed["vectors"] = true
	snap.Completed["vectors-quiz"] = true
	snap.Completed["dot-product"] = true
	snap.QuizRecords["vectors-quiz"] = progress.QuizRecord{Score: 2, Answers: []int{0, 2}}
	snap.QuizRecords["dot-product-quiz"] = progress.QuizRecord{Score: 1, Answers: []int{2, 1, 0}}
	m.Load(snap)
	return m
}

func TestRenderRoadmap(t *testing.T) {
	var buf bytes.Buffer
	renderRoadmap(&buf, midwayMachine(t))
	newGolden(t).Assert(t, "roadmap_midway", buf.Bytes())
}

func TestRenderRoadmap_Fresh(t *testing.T) {
	m := progress.NewMachine(curriculum.Default(), nil)
	m.Load(progress.Empty())

	var buf bytes.Buffer
	renderRoadmap(&buf, m)
	newGolden(t).Assert(t, "roadmap_fresh", buf.Bytes())
}

func TestRenderStats(t *testing.T) {
	st := syncer.Status{State: syncer.StateLoaded, Identity: identity.Authenticated("alice")}

	var buf bytes.Buffer
	renderStats(&buf, midwayMachine(t), st)
	newGolden(t).Assert(t, "stats_midway", buf.Bytes())
}

func TestRenderStats_NoBadges(t *testing.T) {
	m := progress.NewMachine(curriculum.Default(), nil)
	m.Load(progress.Empty())

	var buf bytes.Buffer
	renderStats(&buf, m, syncer.Status{State: syncer.StateLoaded})
	assert.Contains(t, buf.String(), "Identity:  anonymous\n")
	assert.Contains(t, buf.String(), "XP:        0 / 310 (0%)\n")
	assert.Contains(t, buf.String(), "Badges:    none yet\n")
	assert.NotContains(t, buf.String(), "Quiz scores:")
}

func TestRenderQuizResult(t *testing.T) {
	quiz, _ := curriculum.Default().Item("dot-product-quiz")

	tests := []struct {
		name string
		res  progress.QuizResult
		want string
	}{
		{
			name: "passed with xp",
			res:  progress.QuizResult{Score: 3, Total: 3, Passed: true, XPAwarded: 20},
			want: "Dot Product Quiz: 3/3 correct.\nPassed! +20 XP\n",
		},
		{
			name: "passed without xp",
			res:  progress.QuizResult{Score: 3, Total: 3, Passed: true},
			want: "Dot Product Quiz: 3/3 correct.\nPassed!\n",
		},
		{
			name: "failed",
			res:  progress.QuizResult{Score: 1, Total: 3},
			want: "Dot Product Quiz: 1/3 correct.\n" +
				"A perfect score is needed to pass. Run \"mlmathr quiz retry dot-product-quiz\" to try again.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			renderQuizResult(&buf, quiz, tt.res)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRenderNextUp(t *testing.T) {
	m := midwayMachine(t)

	var buf bytes.Buffer
	renderNextUp(&buf, m, "dot-product")
	assert.Equal(t, "Next up: Dot Product Quiz (dot-product-quiz)\n", buf.String())

	// vectors-quiz is done, so the successor falls back to the first open item.
	buf.Reset()
	renderNextUp(&buf, m, "vectors")
	assert.Equal(t, "Next up: Dot Product Quiz (dot-product-quiz)\n", buf.String())
}

func TestRenderNewBadges(t *testing.T) {
	var buf bytes.Buffer
	renderNewBadges(&buf, []achievements.Badge{
		{Kind: achievements.KindXPMilestone, Title: "100 XP Earned"},
	})
	assert.Equal(t, "New badge: 🏆 100 XP Earned\n", buf.String())
}
