// Package sqlite provides a single-file notice store for local runs.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

// fetchedAtLayout is fixed width so text ordering matches time ordering.
const fetchedAtLayout = "2006-01-02T15:04:05.000000000Z"

// NoticeStore implements notice.Store on SQLite.
type NoticeStore struct {
	db *sql.DB
}

// Open opens dsn with the modernc driver. In-memory databases are pinned to
// one connection, since each connection would otherwise see its own database.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("sqlite dsn is required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// NewNoticeStore wraps db. The notices schema must already be migrated.
func NewNoticeStore(db *sql.DB) (*NoticeStore, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &NoticeStore{db: db}, nil
}

// Close closes the database handle.
func (s *NoticeStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}

// Ping checks the database is reachable.
func (s *NoticeStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

// ExistsByContentHash implements notice.Store.
func (s *NoticeStore) ExistsByContentHash(ctx context.Context, hash string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM notices WHERE content_hash = ?)`, hash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check content hash: %w", err)
	}
	return exists, nil
}

// Insert implements notice.Store.
func (s *NoticeStore) Insert(ctx context.Context, n notice.StoredNotice) error {
	branches, err := json.Marshal(nonNil(n.EngineeringBranches))
	if err != nil {
		return fmt.Errorf("encode branches: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO notices (
	id, title, category, state, notice_type, engineering_branches, source_name,
	source_url, apply_url, published_date, last_date, content_hash, fetched_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		n.Title,
		string(n.Category),
		n.State,
		string(n.NoticeType),
		string(branches),
		n.SourceName,
		n.SourceURL,
		n.ApplyURL,
		dateArg(n.PublishedDate),
		dateArg(n.LastDate),
		n.ContentHash,
		n.FetchedAt.UTC().Format(fetchedAtLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
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
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM notices WHERE id = ?`, id)
	n, err := scanNotice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return notice.StoredNotice{}, fmt.Errorf("notice %s: %w", id, notice.ErrNotFound)
	}
	if err != nil {
		return notice.StoredNotice{}, fmt.Errorf("get notice: %w", err)
	}
	return n, nil
}

// ListRecent implements notice.Store.
func (s *NoticeStore) ListRecent(ctx context.Context, limit int) ([]notice.StoredNotice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM notices ORDER BY fetched_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	defer func() { _ = rows.Close() }()

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

type scanner interface {
	Scan(dest ...any) error
}

func scanNotice(row scanner) (notice.StoredNotice, error) {
	var (
		n                   notice.StoredNotice
		category, typ       string
		branches, fetchedAt string
		published, lastDate sql.NullString
	)
	if err := row.Scan(
		&n.ID,
		&n.Title,
		&category,
		&n.State,
		&typ,
		&branches,
		&n.SourceName,
		&n.SourceURL,
		&n.ApplyURL,
		&published,
		&lastDate,
		&n.ContentHash,
		&fetchedAt,
	); err != nil {
		return notice.StoredNotice{}, err //nolint:wrapcheck // wrapped by callers
	}
	n.Category = notice.Category(category)
	n.NoticeType = notice.Type(typ)
	if err := json.Unmarshal([]byte(branches), &n.EngineeringBranches); err != nil {
		return notice.StoredNotice{}, fmt.Errorf("decode branches: %w", err)
	}
	if len(n.EngineeringBranches) == 0 {
		n.EngineeringBranches = nil
	}
	var err error
	if n.PublishedDate, err = parseDate(published); err != nil {
		return notice.StoredNotice{}, err
	}
	if n.LastDate, err = parseDate(lastDate); err != nil {
		return notice.StoredNotice{}, err
	}
	if n.FetchedAt, err = time.Parse(fetchedAtLayout, fetchedAt); err != nil {
		return notice.StoredNotice{}, fmt.Errorf("parse fetched_at: %w", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func dateArg(d *notice.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func parseDate(s sql.NullString) (*notice.Date, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := notice.ParseISODate(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nonNil(branches []string) []string {
	if branches == nil {
		return []string{}
	}
	return branches
}
