package cmd

import (
	"github.com/spf13/cobra"

	"eventkeeper/cmd/client/cmd/types"
	"eventkeeper/cmd/client/cmd/ui"
	"eventkeeper/internal/app/client"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stay running and sync in the background",
	Long: `Probes the server and drains the pending queue periodically until interrupted.
Going back online triggers a sync immediately.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

		ui.Banner(out, app.IsOnline())
		unsubscribe := app.Monitor().OnChange(func(online bool) {
			ui.Banner(out, online)
		})
		defer unsubscribe()

		app.Reconciler().OnReport(func(report *client.DrainReport) {
			if report.Synced() > 0 {
				ui.Report(out, report)
				return
			}
			ui.Warning(errOut, report.Warning())
		})

		return app.Run(cmd.Context())
	},
}
