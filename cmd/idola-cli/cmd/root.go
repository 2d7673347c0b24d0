package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"idola-backend/cmd/idola-cli/globals"
	"idola-backend/internal/app"
	"idola-backend/internal/components/telemetry"
	"idola-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

// offline marks commands that only read local tables and never log in.
const offline = "offline"

// opened is the app of the running command, it is saved and closed by
// Execute even when the command fails.
var opened *app.App

var rootCmd = &cobra.Command{
	Use:           "idola-cli",
	Short:         "idola-cli queries the game's leaderboards, parties and guilds from a terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}
		ephemeral, err := cmd.Flags().GetBool("ephemeral")
		if err != nil {
			return err
		}

		telemetry.InitSlog(telemetry.LogOptions{Verbose: verbose})
		tel := telemetry.SlogAPI{}

		cfg, err := app.LoadConfig(configPath, tel)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		// a watcher would outlive a one shot command
		cfg.Identity.Watch = false
		a, err := app.Open(cmd.Context(), cfg, tel, app.OpenOptions{WithoutDatabase: ephemeral})
		if err != nil {
			return err
		}
		opened = &a

		if cmd.Annotations[offline] == "" {
			err = a.Client.Start(cmd.Context())
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
		}

		cmd.SetContext(globals.Set(cmd.Context(), &globals.Value{App: a}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.json5", "Path to the configuration file.")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
	rootCmd.PersistentFlags().Bool("ephemeral", false, "Do not load or save the profile cache.")
}

// closeApp persists whatever the command observed, including the profiles
// seen before a failure.
func closeApp() error {
	if opened == nil {
		return nil
	}
	a := opened
	opened = nil

	var saveErr error
	if a.DB != nil {
		serviceutil.Bounded(time.Second*15, func(ctx context.Context) {
			saveErr = a.Service.Save(ctx)
		})
	}
	return errors.Join(saveErr, a.Close())
}

func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	err = errors.Join(err, closeApp())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
