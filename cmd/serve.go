package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/api"
	"github.com/JakeFAU/govjobs-ingestor/internal/app"
	"github.com/JakeFAU/govjobs-ingestor/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serves the HTTP API and runs the ingestion schedule",
		Long: `Starts the HTTP API (manual trigger, notice queries, health and metrics)
and, unless schedule.enabled is false, the cron trigger plus one run shortly
after startup. SIGINT or SIGTERM shuts both down gracefully. A manual run
still in flight delays exit by up to server.shutdown_timeout, after which
its connection is closed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(e *env, a *app.App) error {
				return serve(cmd.Context(), e, a)
			})
		},
	}
}

func serve(ctx context.Context, e *env, a *app.App) error {
	cfg, logger := e.cfg, e.logger

	apiCfg := api.Config{RequestTimeout: cfg.Server.RequestTimeout}
	if cfg.Auth.Enabled {
		apiCfg.APIKey = cfg.Auth.APIKey
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewServer(a.Runner(), a.Store(), apiCfg, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if cfg.Schedule.Enabled {
		sched, err := scheduler.New(scheduler.Config{
			Spec:         cfg.Schedule.Cron,
			Location:     cfg.Location(),
			RunOnStartup: cfg.Schedule.RunOnStartup,
			StartupDelay: cfg.Schedule.StartupDelay,
		}, a.Runner(), logger)
		if err != nil {
			return err
		}
		sched.Start(ctx)
		defer sched.Stop()
	} else {
		logger.Info("schedule disabled; runs are triggered through the API only")
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	return shutdown(context.WithoutCancel(ctx), srv, cfg.Server.ShutdownTimeout, logger)
}

// shutdown drains srv for at most timeout. A request still running at the
// deadline, such as a manual run, has its connection closed instead of
// failing the command.
func shutdown(ctx context.Context, srv *http.Server, timeout time.Duration, logger *zap.Logger) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("graceful shutdown timed out; closing open connections", zap.Duration("timeout", timeout))
		err = srv.Close()
	}
	if err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}
