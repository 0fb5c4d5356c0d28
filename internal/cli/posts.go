package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"huntx-client/internal/app"
	"huntx-client/internal/models"
)

func newPostsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "News feed",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the feed",
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
					list, err := a.Posts.Load(ctx)
					if err != nil {
						return err
					}
					sess, _ := a.Session.Current()
					for _, p := range list {
						printPost(cmd, p, sess.UserID)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "create <content>...",
			Short: "Publish a post",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
					p, err := a.Posts.Create(ctx, strings.Join(args, " "))
					if err != nil {
						return err
					}
					printf(cmd, "posted %s\n", p.ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "like <post-id>",
			Short: "Toggle your like on a post",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
					p, err := a.Posts.Like(ctx, args[0])
					if err != nil {
						return err
					}
					printf(cmd, "%s has %d likes\n", p.ID, len(p.Likes))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "comment <post-id> <content>...",
			Short: "Comment on a post",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
					p, err := a.Posts.Comment(ctx, args[0], strings.Join(args[1:], " "))
					if err != nil {
						return err
					}
					printf(cmd, "%s has %d comments\n", p.ID, len(p.Comments))
					return nil
				})
			},
		},
	)
	return cmd
}

func printPost(cmd *cobra.Command, p models.Post, me string) {
	liked := ""
	if p.LikedBy(me) {
		liked = ", liked by you"
	}
	printf(cmd, "%s  %s  %s\n%s\n(%d likes%s, %d comments)\n", p.ID, orDash(p.Author.Name), ago(p.CreatedAt), p.Content, len(p.Likes), liked, len(p.Comments))
	for _, c := range p.Comments {
		printf(cmd, "    %s: %s\n", orDash(c.Author.Name), c.Content)
	}
	printf(cmd, "\n")
}
