package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mlmathr/internal/achievements"
	"github.com/abhisek/mlmathr/internal/progress"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take and retry quizzes",
}

var quizShowCmd = &cobra.Command{
	Use:   "show <quiz-id>",
	Short: "Print a quiz's questions and choices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLoaded(cmd, func(rt *runtime) error {
			it, ok := rt.machine.Graph().Item(args[0])
			if !ok || !it.IsQuiz() {
				return fmt.Errorf("%s: %w", args[0], progress.ErrUnknownItem)
			}
			if missing := rt.machine.MissingPrerequisites(it.ID); len(missing) > 0 {
				return &progress.LockedError{ItemID: it.ID, Missing: missing}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d XP)\n", it.Title, it.XP)
			for i, q := range it.Questions {
				fmt.Fprintf(out, "\n%d. %s\n", i+1, q.Prompt)
				for j, c := range q.Choices {
					fmt.Fprintf(out, "   %d) %s\n", j+1, c)
				}
			}
			fmt.Fprintf(out, "\nSubmit with: mlmathr quiz submit %s <answer>...\n", it.ID)
			return nil
		})
	},
}

var quizSubmitCmd = &cobra.Command{
	Use:   "submit <quiz-id> <answer>...",
	Short: "Submit answers as 1-based choice numbers",
	Long: `Submit grades a quiz. Answers are choice numbers starting at 1, given as
separate arguments or comma separated. A perfect score earns the quiz's XP.`,
	Example: `  mlmathr quiz submit vectors-quiz 1 3
  mlmathr quiz submit dot-product-quiz 3,1,2`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		answers, err := parseAnswers(args[1:])
		if err != nil {
			return err
		}
		return withLoaded(cmd, func(rt *runtime) error {
			g := rt.machine.Graph()
			before := achievements.Evaluate(rt.machine.Snapshot(), g)

			res, err := rt.machine.SubmitQuiz(id, answers)
			if err != nil {
				return err
			}
			if err := rt.local.SetLastVisited(cmd.Context(), id); err != nil {
				rt.logger.Warn("record last visited", "item", id, "error", err)
			}

			out := cmd.OutOrStdout()
			it, _ := g.Item(id)
			renderQuizResult(out, it, res)
			renderNewBadges(out, achievements.Newly(before, achievements.Evaluate(rt.machine.Snapshot(), g)))
			if res.Passed {
				renderNextUp(out, rt.machine, id)
			}
			return nil
		})
	},
}

var quizRetryCmd = &cobra.Command{
	Use:   "retry <quiz-id>",
	Short: "Clear a failed submission so the quiz can be taken again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLoaded(cmd, func(rt *runtime) error {
			if err := rt.machine.RetryQuiz(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is ready to retake.\n", args[0])
			return nil
		})
	},
}

// parseAnswers turns 1-based choice numbers into answer indexes. "-"
// leaves a question unanswered.
func parseAnswers(args []string) ([]int, error) {
	var answers []int
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			if field == "-" {
				answers = append(answers, progress.Unanswered)
				continue
			}
			n, err := strconv.Atoi(field)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid answer %q: use choice numbers starting at 1", field)
			}
			answers = append(answers, n-1)
		}
	}
	return answers, nil
}

func init() {
	quizCmd.AddCommand(quizShowCmd)
	quizCmd.AddCommand(quizSubmitCmd)
	quizCmd.AddCommand(quizRetryCmd)
}
