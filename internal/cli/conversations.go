package cli

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"huntx-client/internal/app"
)

// relayWait bounds how long send waits for the realtime channel before the
// message goes out over REST only.
const relayWait = 5 * time.Second

func newConversationsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv", "messages"},
		Short:   "Private conversations",
	}
	cmd.AddCommand(newConversationsListCmd(opts), newConversationsStartCmd(opts), newConversationsSendCmd(opts), newConversationsShowCmd(opts))
	return cmd
}

func newConversationsListCmd(opts *options) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				if _, err := a.Conversations.LoadConversations(ctx); err != nil {
					return err
				}
				list := a.Conversations.Conversations()
				if search != "" {
					list = a.Conversations.Search(search)
				}
				sess, _ := a.Session.Current()

				w := table(cmd.OutOrStdout())
				printfTo(w, "ID\tWITH\tLAST MESSAGE\tAT\n")
				for _, conv := range list {
					other, _ := conv.Other(sess.UserID)
					last, _ := conv.LastMessage()
					printfTo(w, "%s\t%s\t%s\t%s\n", conv.ID, orDash(other.Name), orDash(truncate(last.Content, 40)), ago(last.CreatedAt))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by the other participant's name")
	return cmd
}

func newConversationsShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Print the messages of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				if _, err := a.Conversations.LoadConversations(ctx); err != nil {
					return err
				}
				if err := a.Conversations.Select(args[0]); err != nil {
					return err
				}
				conv, _ := a.Conversations.Selected()
				names := map[string]string{}
				for _, p := range conv.Participants {
					names[p.ID] = p.Name
				}
				for _, msg := range conv.Messages {
					name := msg.SenderName
					if name == "" {
						name = orDash(names[msg.SenderID])
					}
					printf(cmd, "[%s] %s: %s\n", ago(msg.CreatedAt), name, msg.Content)
				}
				return nil
			})
		},
	}
}

func newConversationsStartCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "start <user-id>",
		Short: "Open (or reuse) a conversation with a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				if _, err := a.Conversations.LoadConversations(ctx); err != nil {
					return err
				}
				conv, err := a.Conversations.StartConversation(ctx, args[0])
				if err != nil {
					return err
				}
				printf(cmd, "%s\n", conv.ID)
				return nil
			})
		},
	}
}

func newConversationsSendCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "send <conversation-id> <message>...",
		Short: "Send a message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				if _, err := a.Conversations.LoadConversations(ctx); err != nil {
					return err
				}
				waitCtx, cancel := context.WithTimeout(ctx, relayWait)
				err := a.WaitConnected(waitCtx)
				cancel()
				if err != nil {
					log.Printf("realtime channel not connected, recipient sees the message on next load: %v", err)
				}

				msg, err := a.Conversations.SendMessage(ctx, args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				printf(cmd, "sent %s\n", orDash(msg.ID))
				return nil
			})
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

