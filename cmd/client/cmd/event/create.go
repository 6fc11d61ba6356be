package event

import (
	"fmt"

	"github.com/spf13/cobra"

	"eventkeeper/cmd/client/cmd/types"
	"eventkeeper/cmd/client/cmd/ui"
	"eventkeeper/internal/domain/event"
)

var createForm form

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an event",
	Example: `  eventkeeper event create -n "Team sync" -s "2026-05-04 10:00" -d 30m -p "ann, bob"
  eventkeeper event create -n "Holiday" -s 2026-08-01 -e 2026-08-14`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		for _, required := range []string{"name", "start"} {
			if !cmd.Flags().Changed(required) {
				return fmt.Errorf("--%s is required", required)
			}
		}

		draft, err := createForm.apply(cmd.Flags(), event.Event{})
		if err != nil {
			return err
		}

		out, err := app.Coordinator().Save(cmd.Context(), draft, false)
		if err != nil {
			return err
		}
		ui.Outcome(cmd.OutOrStdout(), "Created", out)
		return nil
	},
}

func init() {
	createForm.register(CreateCmd.Flags())
}
