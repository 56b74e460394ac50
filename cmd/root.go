// Package cmd defines the govjobs command line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/app"
	"github.com/JakeFAU/govjobs-ingestor/internal/config"
	"github.com/JakeFAU/govjobs-ingestor/internal/logging"
)

// envKeyType is the context key for the loaded environment.
type envKeyType string

const envKey envKeyType = "env"

// env is what PersistentPreRunE hands to every subcommand.
type env struct {
	cfg    config.Config
	logger *zap.Logger
}

// newApp is the application factory. Tests replace it to inject fakes.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app.App, error) {
	return app.New(ctx, cfg, logger)
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "govjobs",
		Short: "Collects government recruitment notices from Indian portals.",
		Long: `govjobs scrapes recruitment notices from central and state government
portals (SSC, RRB, IBPS, SBI, UPSC, PSUs, state commissions and more),
normalises them and stores each notice once.

Run "govjobs serve" for the long-running service with the cron trigger and
HTTP API, or "govjobs run" for a single ingestion run.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)
			cmd.SetContext(context.WithValue(cmd.Context(), envKey, &env{cfg: cfg, logger: logger}))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if e, err := resolveEnv(cmd.Context()); err == nil {
				_ = e.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, JSON or TOML); GOVJOBS_* env vars override it")

	cmd.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newNoticesCmd(),
		newSourcesCmd(),
		newMigrateCmd(),
	)
	return cmd
}

func resolveEnv(ctx context.Context) (*env, error) {
	e, ok := ctx.Value(envKey).(*env)
	if !ok || e == nil {
		return nil, errors.New("configuration not loaded")
	}
	return e, nil
}

// withApp builds the application for the duration of fn.
func withApp(cmd *cobra.Command, fn func(*env, *app.App) error) error {
	e, err := resolveEnv(cmd.Context())
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), e.cfg, e.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application services: %w", err)
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			e.logger.Warn("close application services", zap.Error(cerr))
		}
	}()
	return fn(e, a)
}

// Execute runs the root command until it returns or the process is signalled.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
