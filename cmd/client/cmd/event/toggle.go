package event

import (
	"github.com/spf13/cobra"

	"eventkeeper/cmd/client/cmd/types"
	"eventkeeper/cmd/client/cmd/ui"
)

var ToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Flip the completed flag of an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		out, err := app.Coordinator().ToggleCompletion(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		state := "Reopened"
		if out.Event.Completed {
			state = "Completed"
		}
		ui.Outcome(cmd.OutOrStdout(), state, out)
		return nil
	},
}
