package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"huntx-client/internal/app"
	"huntx-client/internal/models"
)

func newProfileCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				p, err := a.Profile.Get(ctx)
				if err != nil {
					return err
				}
				printProfile(cmd, p)
				return nil
			})
		},
	}

	var (
		name, headline, bio, location, company string
		skills                                 []string
	)
	update := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields; only the flags given are sent",
		RunE: func(cmd *cobra.Command, args []string) error {
			var u models.ProfileUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				u.Name = &name
			}
			if flags.Changed("headline") {
				u.Headline = &headline
			}
			if flags.Changed("bio") {
				u.Bio = &bio
			}
			if flags.Changed("location") {
				u.Location = &location
			}
			if flags.Changed("company") {
				u.Company = &company
			}
			if flags.Changed("skills") {
				u.Skills = skills
			}
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				p, err := a.Profile.Update(ctx, u)
				if err != nil {
					return err
				}
				printProfile(cmd, p)
				return nil
			})
		},
	}
	update.Flags().StringVar(&name, "name", "", "display name")
	update.Flags().StringVar(&headline, "headline", "", "headline")
	update.Flags().StringVar(&bio, "bio", "", "short bio")
	update.Flags().StringVar(&location, "location", "", "location")
	update.Flags().StringVar(&company, "company", "", "company")
	update.Flags().StringSliceVar(&skills, "skills", nil, "comma separated skills")
	cmd.AddCommand(update)
	return cmd
}

func printProfile(cmd *cobra.Command, p models.Profile) {
	w := table(cmd.OutOrStdout())
	printfTo(w, "name\t%s\n", p.Name)
	printfTo(w, "email\t%s\n", orDash(p.Email))
	printfTo(w, "role\t%s\n", p.Role)
	printfTo(w, "headline\t%s\n", orDash(p.Headline))
	printfTo(w, "location\t%s\n", orDash(p.Location))
	printfTo(w, "company\t%s\n", orDash(p.Company))
	printfTo(w, "skills\t%s\n", orDash(strings.Join(p.Skills, ", ")))
	_ = w.Flush()
	if p.Bio != "" {
		printf(cmd, "\n%s\n", p.Bio)
	}
}
