package cli

import (
	"context"

	"github.com/spf13/cobra"

	"huntx-client/internal/app"
)

func newNotificationsCmd(opts *options) *cobra.Command {
	var markRead bool
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				if err := a.Notifications.Load(ctx); err != nil {
					return err
				}

				w := table(cmd.OutOrStdout())
				printfTo(w, "\tTYPE\tMESSAGE\tAT\n")
				for _, n := range a.Notifications.List() {
					marker := " "
					if !n.Read {
						marker = "*"
					}
					printfTo(w, "%s\t%s\t%s\t%s\n", marker, n.Type, orDash(n.Message), ago(n.CreatedAt))
				}
				printfTo(w, "\n%d unread\n", a.Notifications.UnreadCount())
				if err := w.Flush(); err != nil {
					return err
				}

				if markRead {
					if err := a.Notifications.MarkAllRead(ctx); err != nil {
						return err
					}
					printf(cmd, "marked all read\n")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&markRead, "mark-read", false, "mark every notification read after listing")
	return cmd
}
