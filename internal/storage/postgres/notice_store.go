// Package postgres provides the Postgres-backed notice store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

const (
	defaultTable = "notices"
	// uniqueViolation is the SQLSTATE for unique_violation.
	uniqueViolation = "23505"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Ping(context.Context) error
	Close()
}

// NoticeStore implements notice.Store on Postgres. The content_hash column
// carries a unique index, which is what makes concurrent inserts safe.
type NoticeStore struct {
	pool  pool
	table string
}

// NewNoticeStore connects a pool using cfg.
func NewNoticeStore(ctx context.Context, cfg Config) (*NoticeStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &NoticeStore{pool: p, table: table}, nil
}

// NewNoticeStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewNoticeStoreWithPool(p pool, table string) (*NoticeStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &NoticeStore{pool: p, table: table}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		return defaultTable, nil
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *NoticeStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Ping checks connectivity.
func (s *NoticeStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// ExistsByContentHash implements notice.Store.
func (s *NoticeStore) ExistsByContentHash(ctx context.Context, hash string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE content_hash = $1)`, s.table)
	var exists bool
	if err := s.pool.QueryRow(ctx, query, hash).Scan(&exists); err != nil {
		return false, fmt.Errorf("check content hash: %w", err)
	}
	return exists, nil
}

// Insert implements notice.Store.
func (s *NoticeStore) Insert(ctx context.Context, n notice.StoredNotice) error {
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	title,
	category,
	state,
	notice_type,
	engineering_branches,
	source_name,
	source_url,
	apply_url,
	published_date,
	last_date,
	content_hash,
	fetched_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
)`, s.table)

	args := []any{
		n.ID,
		n.Title,
		string(n.Category),
		n.State,
		string(n.NoticeType),
		nonNil(n.EngineeringBranches),
		n.SourceName,
		n.SourceURL,
		n.ApplyURL,
		dateArg(n.PublishedDate),
		dateArg(n.LastDate),
		n.ContentHash,
		n.FetchedAt,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert notice %s: %w", n.ContentHash, notice.ErrDuplicate)
		}
		return fmt.Errorf("insert notice: %w", err)
	}
	return nil
}

const selectColumns = `id, title, category, state, notice_type, engineering_branches, source_name,
	source_url, apply_url, published_date, last_date, content_hash, fetched_at`

// GetByID implements notice.Store.
func (s *NoticeStore) GetByID(ctx context.Context, id string) (notice.StoredNotice, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, selectColumns, s.table)
	n, err := scanNotice(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return notice.StoredNotice{}, fmt.Errorf("notice %s: %w", id, notice.ErrNotFound)
	}
	if err != nil {
		return notice.StoredNotice{}, fmt.Errorf("get notice: %w", err)
	}
	return n, nil
}

// ListRecent implements notice.Store.
func (s *NoticeStore) ListRecent(ctx context.Context, limit int) ([]notice.StoredNotice, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY fetched_at DESC, id DESC LIMIT $1`, selectColumns, s.table)
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	defer rows.Close()

	var out []notice.StoredNotice
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notice: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return out, nil
}

func scanNotice(row pgx.Row) (notice.StoredNotice, error) {
	var (
		n                   notice.StoredNotice
		category, typ       string
		published, lastDate *time.Time
	)
	if err := row.Scan(
		&n.ID,
		&n.Title,
		&category,
		&n.State,
		&typ,
		&n.EngineeringBranches,
		&n.SourceName,
		&n.SourceURL,
		&n.ApplyURL,
		&published,
		&lastDate,
		&n.ContentHash,
		&n.FetchedAt,
	); err != nil {
		return notice.StoredNotice{}, err //nolint:wrapcheck // wrapped by callers
	}
	n.Category = notice.Category(category)
	n.NoticeType = notice.Type(typ)
	if len(n.EngineeringBranches) == 0 {
		n.EngineeringBranches = nil
	}
	n.PublishedDate = datePtr(published)
	n.LastDate = datePtr(lastDate)
	return n, nil
}

// nonNil keeps pgx from encoding an untagged notice as NULL, which the
// NOT NULL array column rejects.
func nonNil(branches []string) []string {
	if branches == nil {
		return []string{}
	}
	return branches
}

func dateArg(d *notice.Date) any {
	if d == nil {
		return nil
	}
	return d.Time()
}

func datePtr(t *time.Time) *notice.Date {
	if t == nil {
		return nil
	}
	return notice.DatePtr(notice.DateOf(*t))
}
