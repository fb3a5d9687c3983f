package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdxmph/hangs-tui/internal/api"
	"github.com/pdxmph/hangs-tui/internal/db"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the friends database over a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			log := a.consoleLogger(cmd.ErrOrStderr())

			database, err := a.openDB(log)
			if err != nil {
				return err
			}
			defer database.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if a.cfg.Watch.Enabled {
				watcher, err := db.NewWatcher(database, a.cfg.Watch.Debounce.Duration)
				if err != nil {
					log.WithError(err).Warn("file watching disabled")
				} else {
					go func() {
						if err := watcher.Run(ctx); err != nil {
							log.WithError(err).Warn("watcher stopped")
						}
					}()
				}
			}

			server := api.NewServer(database, api.Options{
				Logger:         log,
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
			})
			httpServer := &http.Server{
				Addr:              a.cfg.Server.Addr,
				Handler:           server,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("listening", "addr", httpServer.Addr)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config")
	return cmd
}
