package event

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"eventkeeper/cmd/client/cmd/types"
	"eventkeeper/cmd/client/cmd/ui"
	"eventkeeper/internal/app/client"
)

var assumeYes bool

var DeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an event",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		id := args[0]
		view, ok := app.Coordinator().Find(id)
		if !ok {
			return fmt.Errorf("%w: %s", client.ErrUnknownEvent, id)
		}

		confirm := func(string) bool { return true }
		if !assumeYes {
			confirm = prompt(cmd.InOrStdin(), cmd.OutOrStdout(), view.Name)
		}

		out, err := app.Coordinator().Delete(cmd.Context(), id, confirm)
		if errors.Is(err, client.ErrNotConfirmed) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
		if err != nil {
			return err
		}
		ui.Outcome(cmd.OutOrStdout(), "Deleted", out)
		return nil
	},
}

// prompt asks a y/N question. Anything but y or yes declines.
func prompt(in io.Reader, out io.Writer, name string) client.Confirmer {
	return func(id string) bool {
		fmt.Fprintf(out, "Delete %q (%s)? [y/N] ", name, id)
		answer, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && answer == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}

func init() {
	DeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")
}
