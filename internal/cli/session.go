package cli

import (
	"bufio"
	"context"
	"strings"

	"github.com/spf13/cobra"

	"huntx-client/internal/app"
	"huntx-client/internal/models"
)

func newSignInCmd(opts *options) *cobra.Command {
	var creds models.Credentials
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if creds.Password == "" {
				creds.Password = readLine(cmd)
			}
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				sess, err := a.Session.SignIn(ctx, creds)
				if err != nil {
					return err
				}
				printf(cmd, "Signed in as %s (%s)\n", orDash(sess.DisplayName), sess.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&creds.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "account password (read from stdin when omitted)")
	return cmd
}

func newSignUpCmd(opts *options) *cobra.Command {
	var (
		req  models.SignUpRequest
		role string
	)
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Role = models.Role(role)
			if req.Password == "" {
				req.Password = readLine(cmd)
			}
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				msg, err := a.Session.SignUp(ctx, req)
				if err != nil {
					return err
				}
				if msg == "" {
					msg = "Account created, you can sign in now"
				}
				printf(cmd, "%s\n", msg)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "account password (read from stdin when omitted)")
	cmd.Flags().StringVarP(&role, "role", "r", "seeker", `"seeker" or "employer"`)
	return cmd
}

func newSignOutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				if err := a.Session.SignOut(ctx); err != nil {
					return err
				}
				printf(cmd, "Signed out\n")
				return nil
			})
		},
	}
}

func newWhoAmICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				sess, ok := a.Session.Current()
				if !ok {
					printf(cmd, "Not signed in (theme %s)\n", a.Session.Theme())
					return nil
				}
				w := table(cmd.OutOrStdout())
				printfTo(w, "user id\t%s\n", sess.UserID)
				printfTo(w, "name\t%s\n", orDash(sess.DisplayName))
				printfTo(w, "role\t%s\n", sess.Role)
				printfTo(w, "theme\t%s\n", sess.Theme)
				return w.Flush()
			})
		},
	}
}

func newThemeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [toggle]",
		Short:     "Show or toggle the color theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				theme := a.Session.Theme()
				if len(args) == 1 {
					var err error
					if theme, err = a.Session.ToggleTheme(ctx); err != nil {
						return err
					}
				}
				printf(cmd, "%s\n", theme)
				return nil
			})
		},
	}
}

func readLine(cmd *cobra.Command) string {
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
