package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"

	"eventkeeper/cmd/client/cmd/auth"
	"eventkeeper/cmd/client/cmd/event"
	"eventkeeper/cmd/client/cmd/sync"
	"eventkeeper/cmd/client/cmd/types"
	"eventkeeper/internal/app/client"
	"eventkeeper/internal/app/client/config"
	"eventkeeper/internal/utils/logger"
)

var (
	cfgFile    string
	debug      bool
	jsonOutput bool
	serverURL  string

	app *client.App
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "eventkeeper",
	Short: "EventKeeper - an offline-first event calendar",
	Long: `EventKeeper keeps your events in a local cache and syncs them with the server.

Changes made while the server is unreachable are queued and delivered
automatically once the connection is back.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if app != nil {
		if cerr := app.Shutdown(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	log = logger.NewCLI(debug)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	app, err = client.New(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}
	cmd.SetContext(types.WithApp(cmd.Context(), app))
	return nil
}

func loadConfig() (*config.Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".eventkeeper"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	if serverURL != "" {
		v.Set("SERVER_ADDRESS", serverURL)
	}

	return config.Load(v)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.eventkeeper/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print machine-readable JSON")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server address, host:port")

	auth.AuthCmd.AddCommand(auth.RegisterCmd, auth.LoginCmd, auth.LogoutCmd)
	event.EventCmd.AddCommand(
		event.CreateCmd,
		event.EditCmd,
		event.DeleteCmd,
		event.ToggleCmd,
		event.ListCmd,
		event.PendingCmd,
	)
	rootCmd.AddCommand(auth.AuthCmd, event.EventCmd, sync.SyncCmd, watchCmd, exportCmd)
}
