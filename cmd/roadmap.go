package cmd

import (
	"github.com/spf13/cobra"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Show every lesson and quiz with its state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLoaded(cmd, func(rt *runtime) error {
			renderRoadmap(cmd.OutOrStdout(), rt.machine)
			return nil
		})
	},
}
