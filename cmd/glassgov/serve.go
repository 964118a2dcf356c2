package main

import (
	"github.com/spf13/cobra"

	"github.com/StreetLamp05/glassgov-be/internal/bootstrap"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
	"github.com/StreetLamp05/glassgov-be/internal/telemetry"
)

func newServeCommand() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if port > 0 {
				cfg.Service.Port = port
			}
			cfg.Service.Version = version

			app, err := bootstrap.NewApp(cmd.Context(), cfg, logger, telemetry.NewProvider())
			if err != nil {
				logger.Error("Failed to start", infralogger.Error(err))
				return err
			}
			return app.Serve(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides service.port)")
	return cmd
}
