// Package migrations owns the notices schema for every supported database.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx/v5 database/sql driver
	_ "modernc.org/sqlite"             // registers the sqlite database/sql driver
)

//go:embed postgres/*.sql sqlite/*.sql
var migrationFS embed.FS

// Dialect selects a schema flavour.
type Dialect string

// Supported dialects.
const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect validates a configured dialect name.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case Postgres, SQLite:
		return Dialect(s), nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", s)
	}
}

// Open opens a database/sql handle for dialect.
func Open(dialect Dialect, dsn string) (*sql.DB, error) {
	driverName := "sqlite"
	if dialect == Postgres {
		driverName = "pgx/v5"
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	return db, nil
}

// Version reports the applied schema version. A fresh database is version 0.
type Version struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// Up applies all pending migrations. An already current schema is not an error.
func Up(db *sql.DB, dialect Dialect) (Version, error) {
	m, err := newMigrate(db, dialect)
	if err != nil {
		return Version{}, err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return Version{}, fmt.Errorf("apply migrations: %w", err)
	}
	return version(m)
}

// Down rolls back steps migrations, or all of them when steps <= 0.
func Down(db *sql.DB, dialect Dialect, steps int) (Version, error) {
	m, err := newMigrate(db, dialect)
	if err != nil {
		return Version{}, err
	}
	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return Version{}, fmt.Errorf("roll back migrations: %w", err)
	}
	return version(m)
}

// Current reports the applied version without migrating.
func Current(db *sql.DB, dialect Dialect) (Version, error) {
	m, err := newMigrate(db, dialect)
	if err != nil {
		return Version{}, err
	}
	return version(m)
}

// The migrate instance is never closed: Close would close db, which the
// caller still owns.
func newMigrate(db *sql.DB, dialect Dialect) (*migrate.Migrate, error) {
	if db == nil {
		return nil, errors.New("migrations: db is required")
	}
	var (
		driver database.Driver
		err    error
	)
	switch dialect {
	case Postgres:
		driver, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	case SQLite:
		driver, err = sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s migration driver: %w", dialect, err)
	}

	source, err := iofs.New(migrationFS, string(dialect))
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, string(dialect), driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

func version(m *migrate.Migrate) (Version, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Version{}, nil
	}
	if err != nil {
		return Version{}, fmt.Errorf("read migration version: %w", err)
	}
	return Version{Version: v, Dirty: dirty}, nil
}
