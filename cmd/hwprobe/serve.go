package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/api"
	"github.com/Guliveer/hwprobe/internal/service"
)

func serveCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports over a local HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Serve.Addr
			}
			srv := api.NewServer(addr, a.service(), a.logger.Named("api"))

			// Check if running as Windows service
			if service.IsWindowsService() {
				a.logger.Info("Running as Windows service")
				var runErr error
				svc := service.New(a.logger, func(ctx context.Context) {
					runErr = srv.Run(ctx)
				})
				if err := svc.Run(); err != nil {
					return err
				}
				return runErr
			}

			ctx, cancel := a.signalContext(cmd.Context())
			defer cancel()
			if err := srv.Run(ctx); err != nil {
				a.logger.Error("HTTP API failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: serve.addr)")
	return cmd
}
