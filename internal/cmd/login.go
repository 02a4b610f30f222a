package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/visadesk/internal/api"
	"github.com/nhle/visadesk/internal/ui/login"
)

func loginCmd() *cobra.Command {
	var email string

	c := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, errEnv := newEnv()
			if errEnv != nil {
				return errEnv
			}
			defer env.Close()

			var password string
			form := huh.NewForm(huh.NewGroup(login.Fields(&email, &password)...))
			if errForm := form.RunWithContext(cmd.Context()); errForm != nil {
				return errForm
			}

			user, errLogin := env.session.Login(cmd.Context(), strings.TrimSpace(email), password)
			if errLogin != nil {
				slog.Debug("Login failed", slog.String("error", errLogin.Error()))
				return errors.New(api.UserMessage(errLogin))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", user.Email, user.Role.Label())

			return nil
		},
	}
	c.Flags().StringVar(&email, "email", "", "prefill the email address")

	return c
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, errEnv := newEnv()
			if errEnv != nil {
				return errEnv
			}
			defer env.Close()

			if errLogout := env.session.Logout(); errLogout != nil {
				return errLogout
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")

			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "visadesk %s\n", BuildVersion)
		},
	}
}
