package event

import (
	"fmt"

	"github.com/spf13/cobra"

	"eventkeeper/cmd/client/cmd/types"
	"eventkeeper/cmd/client/cmd/ui"
	"eventkeeper/internal/app/client"
)

var editForm form

var EditCmd = &cobra.Command{
	Use:     "edit <id>",
	Short:   "Change an event",
	Long:    "Only the given flags are changed. The rest keeps its current value, pending changes included.",
	Example: `  eventkeeper event edit 42 -s "2026-05-04 11:00"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		current, ok := app.Coordinator().Find(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", client.ErrUnknownEvent, args[0])
		}

		draft, err := editForm.apply(cmd.Flags(), current.Event.Clone())
		if err != nil {
			return err
		}

		out, err := app.Coordinator().Save(cmd.Context(), draft, true)
		if err != nil {
			return err
		}
		ui.Outcome(cmd.OutOrStdout(), "Updated", out)
		return nil
	},
}

func init() {
	editForm.register(EditCmd.Flags())
}
