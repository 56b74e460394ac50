package cmd

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/config"
	"github.com/JakeFAU/govjobs-ingestor/internal/storage/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manages the notices schema of the configured database",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Reverts migrations (one step by default, --steps 0 for all)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSchema(cmd, func(db *sql.DB, d migrations.Dialect) (migrations.Version, error) {
				return migrations.Down(db, d, steps)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert; 0 reverts everything")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Applies all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withSchema(cmd, migrations.Up)
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Prints the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withSchema(cmd, migrations.Current)
			},
		},
	)
	return cmd
}

// withSchema opens the configured database, applies fn and prints the
// resulting version.
func withSchema(cmd *cobra.Command, fn func(*sql.DB, migrations.Dialect) (migrations.Version, error)) error {
	e, err := resolveEnv(cmd.Context())
	if err != nil {
		return err
	}
	if e.cfg.Storage.Backend == config.BackendMemory {
		return fmt.Errorf("storage.backend %q has no schema", e.cfg.Storage.Backend)
	}
	dialect, err := migrations.ParseDialect(e.cfg.Storage.Backend)
	if err != nil {
		return err
	}
	db, err := migrations.Open(dialect, e.cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	v, err := fn(db, dialect)
	if err != nil {
		return err
	}
	e.logger.Info("schema version", zap.String("dialect", string(dialect)), zap.Uint("version", v.Version), zap.Bool("dirty", v.Dirty))
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s schema version %d (dirty=%t)\n", dialect, v.Version, v.Dirty)
	return err
}
