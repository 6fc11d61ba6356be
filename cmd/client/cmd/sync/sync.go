package sync

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"eventkeeper/cmd/client/cmd/types"
	"eventkeeper/cmd/client/cmd/ui"
	"eventkeeper/internal/app/client"
	"eventkeeper/internal/domain/event"
)

var (
	syncStatus bool
	resetStats bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Deliver queued changes to the server",
	Long: `Drains the pending queue once and refreshes the local cache.

Changes that fail stay queued and are retried on the next sync.
With --status nothing is sent; the connection state and queue are shown instead.
With --reset the stored sync statistics are cleared.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if resetStats {
			if err := app.Reconciler().ResetStats(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sync statistics reset")
			return nil
		}
		if syncStatus {
			return printStatus(cmd.OutOrStdout(), app, types.JSON(cmd))
		}

		if !app.IsOnline() {
			ui.Banner(cmd.ErrOrStderr(), false)
			return fmt.Errorf("%d change(s) stay queued", len(app.Coordinator().Pending()))
		}

		report, err := app.Sync(cmd.Context())
		if err != nil {
			return err
		}
		if types.JSON(cmd) {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		ui.Report(cmd.OutOrStdout(), report)
		return nil
	},
}

type status struct {
	Online        bool              `json:"online"`
	Authenticated bool              `json:"authenticated"`
	Pending       []event.PendingOp `json:"pending"`
	Stats         client.SyncStats  `json:"stats"`
}

func printStatus(w io.Writer, app *client.App, asJSON bool) error {
	st := status{
		Online:        app.IsOnline(),
		Authenticated: app.IsAuthenticated(),
		Pending:       app.Coordinator().Pending(),
		Stats:         app.Reconciler().Stats(),
	}
	if asJSON {
		return writeJSON(w, st)
	}

	ui.Banner(w, st.Online)
	if !st.Authenticated {
		fmt.Fprintln(w, "Not logged in. Run: eventkeeper auth login")
	}
	fmt.Fprintf(w, "Syncs: %d (synced %d, failed %d)\n", st.Stats.TotalDrains, st.Stats.TotalSynced, st.Stats.TotalFailed)
	if !st.Stats.LastSuccessful.IsZero() {
		fmt.Fprintf(w, "Last successful sync: %s\n", st.Stats.LastSuccessful.Local().Format(time.DateTime))
	}
	if !st.Stats.LastFailed.IsZero() {
		fmt.Fprintf(w, "Last failed sync: %s\n", st.Stats.LastFailed.Local().Format(time.DateTime))
	}
	fmt.Fprintf(w, "Queued changes: %d\n", len(st.Pending))
	return ui.PrintPending(w, st.Pending, false)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "show connection state and queued changes")
	SyncCmd.Flags().BoolVar(&resetStats, "reset", false, "reset sync statistics")
}
