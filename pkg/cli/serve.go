package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nimburion/remotestore/pkg/config"
	"github.com/nimburion/remotestore/pkg/health"
	"github.com/nimburion/remotestore/pkg/observability/logger"
	"github.com/nimburion/remotestore/pkg/observability/metrics"
	"github.com/nimburion/remotestore/pkg/server"
	"github.com/nimburion/remotestore/pkg/store/factory"
	"github.com/nimburion/remotestore/pkg/version"
)

func newServeCommand(name string, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := flags.load(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return RunServer(ctx, name, cfg, log)
		},
	}
	cmd.Flags().Int("http-port", 0, "HTTP listen port override")
	return cmd
}

// RunServer opens the configured data store and serves the HTTP API until
// ctx is cancelled. A data store that fails to initialize does not stop the
// server; its requests answer 503 and /healthz reports it.
func RunServer(ctx context.Context, name string, cfg *config.Config, log logger.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log.Info("starting service", version.Current(name).Fields()...)

	backend, initResult, err := factory.Open(ctx, cfg.DataStore, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("failed to close data store", "error", err)
		}
	}()

	var reg *metrics.Registry
	if cfg.Observability.MetricsEnabled {
		reg = metrics.NewRegistry()
	}

	checks := health.NewRegistry()
	checks.Register(health.NewStoreChecker(backend, initResult, 0))

	router := server.NewRouter(server.Options{
		Service:        metrics.InstrumentService(backend, reg),
		Health:         checks,
		Metrics:        reg,
		Logger:         log,
		MaxRequestSize: cfg.HTTP.MaxRequestSize,
	})

	srv := server.NewServer(server.Config{
		Port:            cfg.HTTP.Port,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		IdleTimeout:     cfg.HTTP.IdleTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, router, log)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
