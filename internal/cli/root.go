// Package cli implements the huntx command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"huntx-client/internal/app"
	"huntx-client/internal/config"
)

const closeTimeout = 5 * time.Second

type options struct {
	configPath string
	timeout    time.Duration
}

// NewRootCmd builds the huntx command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "huntx",
		Short:         "HuntX job board client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./configs/config.yaml)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "time limit for one command")

	root.AddCommand(
		newSignInCmd(opts),
		newSignUpCmd(opts),
		newSignOutCmd(opts),
		newWhoAmICmd(opts),
		newThemeCmd(opts),
		newConversationsCmd(opts),
		newNotificationsCmd(opts),
		newJobsCmd(opts),
		newNetworkCmd(opts),
		newPostsCmd(opts),
		newProfileCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// run builds the client, restores the persisted session and hands both to fn.
// The command is bounded by --timeout unless bounded is false.
func (o *options) run(cmd *cobra.Command, bounded bool, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if bounded && o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			log.Printf("close client: %v", err)
		}
	}()

	if err := a.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func printfTo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
