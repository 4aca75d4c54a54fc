package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/mlmathr/internal/achievements"
)

var completeCmd = &cobra.Command{
	Use:   "complete <lesson-id>",
	Short: "Mark a lesson as read and collect its XP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		return withLoaded(cmd, func(rt *runtime) error {
			g := rt.machine.Graph()
			before := achievements.Evaluate(rt.machine.Snapshot(), g)

			xp, err := rt.machine.CompleteLesson(id)
			if err != nil {
				return err
			}
			if err := rt.local.SetLastVisited(cmd.Context(), id); err != nil {
				rt.logger.Warn("record last visited", "item", id, "error", err)
			}

			out := cmd.OutOrStdout()
			p := newPrinter()
			it, _ := g.Item(id)
			if xp > 0 {
				p.Fprintf(out, "Completed %s. +%d XP (total %d)\n", it.Listing, xp, rt.machine.XP())
			} else {
				p.Fprintf(out, "%s was already completed.\n", it.Listing)
			}
			renderNewBadges(out, achievements.Newly(before, achievements.Evaluate(rt.machine.Snapshot(), g)))
			renderNextUp(out, rt.machine, id)
			return nil
		})
	},
}
