package auth

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"eventkeeper/cmd/client/cmd/types"
)

var registerLogin string

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		p := newPrompter(cmd)
		login := registerLogin
		if login == "" {
			if login, err = p.line("Login: "); err != nil {
				return err
			}
		}
		password, err := p.secret("Password: ")
		if err != nil {
			return err
		}
		confirm, err := p.secret("Repeat password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return errors.New("passwords do not match")
		}

		if err := app.Register(cmd.Context(), login, password); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Registered. Now run: eventkeeper auth login")
		return nil
	},
}

func init() {
	RegisterCmd.Flags().StringVarP(&registerLogin, "login", "l", "", "account login")
}
