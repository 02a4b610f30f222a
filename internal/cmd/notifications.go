package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nhle/visadesk/internal/model"
)

func notificationsCmd() *cobra.Command {
	var markAll bool

	c := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notifs"},
		Short:   "Print unread notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			env, errEnv := newEnv()
			if errEnv != nil {
				return errEnv
			}
			defer env.Close()

			if _, errSession := env.requireSession(ctx); errSession != nil {
				return errSession
			}

			unread, errList := env.client.ListUnreadNotifications(ctx)
			if errList != nil {
				return errList
			}
			printNotifications(cmd.OutOrStdout(), unread, time.Now())

			if markAll && len(unread) > 0 {
				if errMark := env.client.MarkAllNotificationsRead(ctx); errMark != nil {
					return errMark
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Marked %d as read\n", len(unread))
			}

			return nil
		},
	}
	c.Flags().BoolVar(&markAll, "all-read", false, "mark every notification as read after printing")

	return c
}

func printNotifications(w io.Writer, list []model.Notification, now time.Time) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No unread notifications")
		return
	}

	for _, n := range list {
		icon, _ := n.Kind.Appearance()
		fmt.Fprintf(w, "%s %s  (%s)\n", icon, n.Title, humanize.RelTime(n.CreatedAt, now, "ago", "from now"))
		if n.Body != "" {
			fmt.Fprintf(w, "   %s\n", n.Body)
		}
	}
}
