package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"finanze/internal/cli"
	"finanze/internal/config"
	apphttp "finanze/internal/http"
	"finanze/internal/log"
)

const shutdownTimeout = 30 * time.Second

func serveCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI and the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := cli.GracefulShutdown(cmd.Context(), e.logger)
			defer cancel()

			rt, err := e.runtime(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := rt.Close(); err != nil {
					e.logger.Error("Failed to release resources", log.FieldError, err)
				}
			}()

			srv := apphttp.NewServer(":"+e.cfg.Port, rt.App, apphttp.Options{
				Logger: e.logger,
				Ready:  rt.Ready,
			})
			srv.ReadTimeout = 10 * time.Second
			srv.MaxHeaderBytes = 1 << 16 // 64KB

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				e.logger.Info("Starting HTTP server",
					"port", e.cfg.Port,
					"backend", e.cfg.DataBackend,
					"events", rt.Publisher != nil,
					log.FieldOperation, log.OpStartup)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer shutdownCancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					e.logger.Error("Server shutdown error", log.FieldError, err)
					return err
				}
				e.logger.Info("Server stopped", log.FieldOperation, log.OpShutdown)
				return nil
			})
			return g.Wait()
		},
	}
	cmd.Flags().String("port", "", "HTTP port")
	_ = e.v.BindPFlag(config.KeyPort, cmd.Flags().Lookup("port"))
	return cmd
}
