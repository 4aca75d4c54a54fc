package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mlmathr/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the interactive roadmap",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runTUI runs the terminal UI until the learner quits.
var runTUI = app.Run

// runApp starts the TUI. Logs go to a file next to the database because
// the terminal belongs to the UI.
func runApp(cmd *cobra.Command) error {
	rt, err := openRuntime(cmd, nil)
	if err != nil {
		return err
	}
	defer rt.close()

	// Progress loads in the background so a slow remote shows as loading
	// instead of delaying the first frame.
	stop := rt.engine.Start(cmd.Context(), rt.session)
	defer stop()

	if err := runTUI(app.Deps{
		Machine:  rt.machine,
		Engine:   rt.engine,
		Session:  rt.session,
		Local:    rt.local,
		DeviceID: rt.deviceID,
		Logger:   rt.logger,
	}); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}
