package cmd

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show XP, completion and badges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLoaded(cmd, func(rt *runtime) error {
			renderStats(cmd.OutOrStdout(), rt.machine, rt.engine.Status())
			return nil
		})
	},
}
