// Package types holds what the command packages share with the root command.
package types

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"eventkeeper/internal/app/client"
)

type contextKey string

const ClientAppKey contextKey = "clientApp"

var ErrNoApp = errors.New("application is not initialized")

func WithApp(ctx context.Context, app *client.App) context.Context {
	return context.WithValue(ctx, ClientAppKey, app)
}

// App returns the client application the root command attached to cmd.
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, ErrNoApp
	}
	return app, nil
}

// JSON reports whether the global --json flag is set.
func JSON(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool("json")
	return err == nil && v
}
