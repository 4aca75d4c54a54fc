package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var errResetAborted = errors.New("reset aborted")

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all progress for the signed-in learner",
	Long: `Reset clears XP, completed items and quiz submissions. When signed in,
the account's stored progress is cleared as well.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		return withLoaded(cmd, func(rt *runtime) error {
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Erase all progress for %s? [y/N] ", rt.session.Current())
				if !confirm(cmd) {
					return errResetAborted
				}
			}
			if err := rt.machine.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
			return nil
		})
	},
}

// confirm reads one line from stdin and reports whether it starts with y.
func confirm(cmd *cobra.Command) bool {
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
