package event

import (
	"github.com/spf13/cobra"

	"eventkeeper/cmd/client/cmd/types"
	"eventkeeper/cmd/client/cmd/ui"
)

var listFormat string

var ListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show events, pending changes included",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if err := app.Coordinator().Refresh(cmd.Context()); err != nil {
			ui.Warning(cmd.ErrOrStderr(), err)
		}

		format := listFormat
		if types.JSON(cmd) {
			format = ui.FormatJSON
		}
		if !app.IsOnline() && format == ui.FormatTable {
			ui.Banner(cmd.ErrOrStderr(), false)
		}
		return ui.PrintEvents(cmd.OutOrStdout(), app.Coordinator().Events(), format)
	},
}

var PendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Show changes waiting to be synced",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		return ui.PrintPending(cmd.OutOrStdout(), app.Coordinator().Pending(), types.JSON(cmd))
	},
}

func init() {
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", ui.FormatTable, "output format: table, json or yaml")
}
