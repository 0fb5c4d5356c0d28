package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"huntx-client/internal/app"
	"huntx-client/internal/models"
)

func newNetworkCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Connections and connection requests",
	}
	cmd.AddCommand(newNetworkListCmd(opts), newNetworkSearchCmd(opts))
	actions := []struct {
		use, short string
		do         func(a *app.App) func(context.Context, string) error
	}{
		{"connect", "Send a connection request", func(a *app.App) func(context.Context, string) error { return a.Connections.Connect }},
		{"accept", "Accept a request you received", func(a *app.App) func(context.Context, string) error { return a.Connections.Accept }},
		{"reject", "Decline a request you received", func(a *app.App) func(context.Context, string) error { return a.Connections.Reject }},
		{"remove", "Remove an existing connection", func(a *app.App) func(context.Context, string) error { return a.Connections.Remove }},
	}
	for _, action := range actions {
		cmd.AddCommand(&cobra.Command{
			Use:   action.use + " <user-id>",
			Short: action.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
					if _, err := a.Connections.Load(ctx); err != nil {
						return err
					}
					if err := action.do(a)(ctx, args[0]); err != nil {
						return err
					}
					printf(cmd, "%s %s\n", args[0], a.Connections.Status(args[0]))
					return nil
				})
			},
		})
	}
	return cmd
}

func newNetworkListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connections and pending requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				list, err := a.Connections.Load(ctx)
				if err != nil {
					return err
				}
				w := table(cmd.OutOrStdout())
				printfTo(w, "ID\tNAME\tROLE\tSTATUS\n")
				printContacts(w, list.Connections, "connected")
				printContacts(w, list.PendingRequests, "wants to connect")
				printContacts(w, list.SentRequests, "request sent")
				return w.Flush()
			})
		},
	}
}

func newNetworkSearchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find people by name or role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				if _, err := a.Connections.Load(ctx); err != nil {
					return err
				}
				users, err := a.Connections.Search(ctx, args[0])
				if err != nil {
					return err
				}
				w := table(cmd.OutOrStdout())
				printfTo(w, "ID\tNAME\tROLE\tSTATUS\n")
				for _, u := range users {
					printfTo(w, "%s\t%s\t%s\t%s\n", u.ID, orDash(u.Name), orDash(string(u.Role)), a.Connections.Status(u.ID))
				}
				return w.Flush()
			})
		},
	}
}

func printContacts(w io.Writer, list []models.Contact, status string) {
	for _, c := range list {
		printfTo(w, "%s\t%s\t%s\t%s\n", c.ID, orDash(c.Name), orDash(string(c.Role)), status)
	}
}
