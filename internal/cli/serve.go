package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"huntx-client/internal/app"
	"huntx-client/internal/handlers"
	"huntx-client/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	var (
		addr  string
		debug bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local view bridge (HTTP + websocket updates)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				if addr == "" {
					addr = a.Config.Bridge.Addr
				}
				bridge := handlers.NewBridge(a, ws.NewHub())
				stop := bridge.Follow()
				defer stop()

				srv := &http.Server{
					Addr:              addr,
					Handler:           bridge.Router(a.Config.Bridge.Token, debug),
					ReadHeaderTimeout: 10 * time.Second,
				}
				errCh := make(chan error, 1)
				go func() {
					log.Printf("bridge listening addr=%s auth=%t", addr, a.Config.Bridge.Token != "")
					errCh <- srv.ListenAndServe()
				}()

				select {
				case err := <-errCh:
					if errors.Is(err, http.ErrServerClosed) {
						return nil
					}
					return err
				case <-ctx.Done():
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				log.Printf("bridge shutting down")
				return srv.Shutdown(shutdownCtx)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default bridge.addr)")
	cmd.Flags().BoolVar(&debug, "debug", false, "expose /debug routes")
	return cmd
}
