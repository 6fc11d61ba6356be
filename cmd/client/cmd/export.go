package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"eventkeeper/cmd/client/cmd/types"
	"eventkeeper/internal/app/client/export"
)

var (
	exportOut     string
	exportPending bool
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Write events to an iCalendar file",
	Example: `  eventkeeper export --out calendar.ics`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		var entries []export.Entry
		for _, v := range app.Coordinator().Events() {
			if v.Pending && !exportPending {
				continue
			}
			entries = append(entries, export.Entry{Event: v.Event, Pending: v.Pending})
		}

		if exportOut == "" || exportOut == "-" {
			return export.ICS(cmd.OutOrStdout(), entries, time.Now())
		}

		if err := export.WriteFile(exportOut, entries, time.Now()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d event(s) to %s\n", len(entries), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file, stdout when empty or -")
	exportCmd.Flags().BoolVar(&exportPending, "pending", true, "include changes not yet confirmed by the server")
}
