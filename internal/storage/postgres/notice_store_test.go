package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

var (
	fetchedAt = time.Date(2025, time.March, 1, 6, 0, 0, 0, time.UTC)
	columns   = []string{
		"id", "title", "category", "state", "notice_type", "engineering_branches", "source_name",
		"source_url", "apply_url", "published_date", "last_date", "content_hash", "fetched_at",
	}
)

func newMockStore(t *testing.T) (*NoticeStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store, err := NewNoticeStoreWithPool(mock, "")
	require.NoError(t, err)
	return store, mock
}

func sampleNotice() notice.StoredNotice {
	return notice.StoredNotice{
		ID:                  "0195a3c4-0000-7000-8000-000000000001",
		Title:               "Recruitment of Junior Engineer (Civil) 2025",
		Category:            notice.CategoryRailways,
		State:               notice.StateCentral,
		NoticeType:          notice.TypeRecruitment,
		EngineeringBranches: []string{"CIVIL"},
		SourceName:          "Railway Recruitment Board (RRB)",
		SourceURL:           "https://indianrailways.gov.in",
		ApplyURL:            "https://www.rrcnr.org/je.pdf",
		PublishedDate:       notice.DatePtr(notice.NewDate(2025, time.March, 1)),
		ContentHash:         "abc123",
		FetchedAt:           fetchedAt,
	}
}

func TestInsertWritesRow(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	n := sampleNotice()

	mock.ExpectExec("INSERT INTO notices").
		WithArgs(
			n.ID,
			n.Title,
			"RAILWAYS",
			"Central",
			"RECRUITMENT",
			pgxmock.AnyArg(),
			n.SourceName,
			n.SourceURL,
			n.ApplyURL,
			n.PublishedDate.Time(),
			nil,
			n.ContentHash,
			n.FetchedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Insert(context.Background(), n))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMapsUniqueViolation(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO notices").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "notices_content_hash_key"})
	mock.ExpectExec("INSERT INTO notices").
		WillReturnError(errors.New("connection reset"))

	err := store.Insert(context.Background(), sampleNotice())
	require.ErrorIs(t, err, notice.ErrDuplicate)

	err = store.Insert(context.Background(), sampleNotice())
	require.Error(t, err)
	require.NotErrorIs(t, err, notice.ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsByContentHash(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("abc123").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := store.ExistsByContentHash(context.Background(), "abc123")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = store.ExistsByContentHash(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	n := sampleNotice()
	published := n.PublishedDate.Time()

	mock.ExpectQuery("SELECT .+ FROM notices WHERE id").
		WithArgs(n.ID).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(
			n.ID, n.Title, "RAILWAYS", "Central", "RECRUITMENT", []string{"CIVIL"}, n.SourceName,
			n.SourceURL, n.ApplyURL, &published, nil, n.ContentHash, n.FetchedAt,
		))
	mock.ExpectQuery("SELECT .+ FROM notices WHERE id").
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows(columns))

	got, err := store.GetByID(context.Background(), n.ID)
	require.NoError(t, err)
	require.Equal(t, n, got)

	_, err = store.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, notice.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecent(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	n := sampleNotice()
	older := n
	older.ID = "0195a3c4-0000-7000-8000-000000000000"
	older.FetchedAt = fetchedAt.Add(-time.Hour)
	older.PublishedDate = nil

	published := n.PublishedDate.Time()
	mock.ExpectQuery("SELECT .+ FROM notices ORDER BY fetched_at DESC").
		WithArgs(2).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(n.ID, n.Title, "RAILWAYS", "Central", "RECRUITMENT", []string{"CIVIL"}, n.SourceName,
				n.SourceURL, n.ApplyURL, &published, nil, n.ContentHash, n.FetchedAt).
			AddRow(older.ID, older.Title, "RAILWAYS", "Central", "RECRUITMENT", []string{"CIVIL"}, older.SourceName,
				older.SourceURL, older.ApplyURL, nil, nil, older.ContentHash, older.FetchedAt))

	got, err := store.ListRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, []notice.StoredNotice{n, older}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPingAndTableValidation(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectPing()
	require.NoError(t, store.Ping(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())

	_, err := NewNoticeStoreWithPool(mock, "notices; drop table x")
	require.Error(t, err)
	_, err = NewNoticeStoreWithPool(nil, "notices")
	require.Error(t, err)
	_, err = NewNoticeStore(context.Background(), Config{})
	require.Error(t, err)
}

func TestInsertUntaggedNoticeSendsEmptyArray(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	n := sampleNotice()
	n.Title = "SSC CGL 2025 Recruitment Notification"
	n.EngineeringBranches = nil

	mock.ExpectExec("INSERT INTO notices").
		WithArgs(
			n.ID,
			n.Title,
			"RAILWAYS",
			"Central",
			"RECRUITMENT",
			[]string{},
			n.SourceName,
			n.SourceURL,
			n.ApplyURL,
			n.PublishedDate.Time(),
			nil,
			n.ContentHash,
			n.FetchedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Insert(context.Background(), n))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDReadsEmptyBranchesAsNil(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	n := sampleNotice()
	n.EngineeringBranches = nil
	published := n.PublishedDate.Time()

	mock.ExpectQuery("SELECT .+ FROM notices WHERE id").
		WithArgs(n.ID).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(
			n.ID, n.Title, "RAILWAYS", "Central", "RECRUITMENT", []string{}, n.SourceName,
			n.SourceURL, n.ApplyURL, &published, nil, n.ContentHash, n.FetchedAt,
		))

	got, err := store.GetByID(context.Background(), n.ID)
	require.NoError(t, err)
	require.Nil(t, got.EngineeringBranches)
	require.Equal(t, n, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
