package auth

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"eventkeeper/cmd/client/cmd/types"
	"eventkeeper/cmd/client/cmd/ui"
)

var loginName string

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Long:  "Log in and store the session token. Changes queued while logged out are synced right away.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		p := newPrompter(cmd)
		login := loginName
		if login == "" {
			if login, err = p.line("Login: "); err != nil {
				return err
			}
		}
		password, err := p.secret("Password: ")
		if err != nil {
			return err
		}

		if err := app.Login(cmd.Context(), login, password); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", login)

		report, err := app.Sync(cmd.Context())
		if err != nil {
			ui.Warning(cmd.ErrOrStderr(), fmt.Errorf("initial sync: %w", err))
			return nil
		}
		ui.Report(cmd.OutOrStdout(), report)
		return nil
	},
}

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Long:  "Forget the stored session token. The local cache and queued changes are kept.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.ClearToken(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

func init() {
	LoginCmd.Flags().StringVarP(&loginName, "login", "l", "", "account login")
}
