// Package cmd implements the visadesk command line.
//
// visadesk               - Start the terminal client
// visadesk login         - Sign in and store the session in the keyring
// visadesk logout        - Forget the stored session
// visadesk notifications - Print unread notifications
// visadesk version       - Print the build version
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/visadesk/internal/app"
	"github.com/nhle/visadesk/internal/model"
	"github.com/nhle/visadesk/internal/store"
)

// BuildVersion is set at link time.
var BuildVersion = ""

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "visadesk",
	Short:         "Terminal client for the visa assistance platform",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	setupCLI()
	if errExecute := rootCmd.Execute(); errExecute != nil {
		fmt.Fprintln(os.Stderr, "Error:", errExecute)
		os.Exit(1)
	}
}

func setupCLI() {
	if BuildVersion == "" {
		BuildVersion = "dev"
	}
	rootCmd.Version = BuildVersion
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(notificationsCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", model.DefaultConfigPath(), "config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")
}

func runTUI(cmd *cobra.Command, _ []string) error {
	env, errEnv := newEnv()
	if errEnv != nil {
		return errEnv
	}
	defer env.Close()

	deps := app.Deps{
		Config:     env.cfg,
		API:        env.client,
		Session:    env.session,
		ConfigPath: cfgFile,
	}

	history, errHistory := store.NewSQLiteStore(model.DefaultDBPath())
	if errHistory != nil {
		// The client works without history; toasts are just not kept.
		slog.Warn("Toast history unavailable", slog.String("error", errHistory.Error()))
	} else {
		defer func() {
			if errClose := history.Close(); errClose != nil {
				slog.Error("Failed to close toast history", slog.String("error", errClose.Error()))
			}
		}()
		deps.History = history
	}

	m := app.New(deps)
	defer m.Close()

	start := time.Now()
	slog.Info("Starting visadesk", slog.String("version", BuildVersion), slog.String("api", env.client.BaseURL()))

	if _, errRun := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); errRun != nil {
		return fmt.Errorf("running terminal client: %w", errRun)
	}

	slog.Info("Exiting visadesk", slog.Duration("uptime", time.Since(start)))

	return nil
}
