package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

func TestNoticeStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := NewNoticeStore()
	ctx := context.Background()
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	first := notice.StoredNotice{
		ID:                  "n-1",
		Title:               "Recruitment of Junior Engineer (Civil)",
		ContentHash:         "hash-1",
		EngineeringBranches: []string{"CIVIL"},
		FetchedAt:           base,
	}
	require.NoError(t, store.Insert(ctx, first))

	exists, err := store.ExistsByContentHash(ctx, "hash-1")
	require.NoError(t, err)
	require.True(t, exists)

	dup := first
	dup.ID = "n-2"
	err = store.Insert(ctx, dup)
	require.True(t, errors.Is(err, notice.ErrDuplicate))
	require.Equal(t, 1, store.Len())

	second := notice.StoredNotice{ID: "n-3", ContentHash: "hash-3", FetchedAt: base.Add(time.Hour)}
	require.NoError(t, store.Insert(ctx, second))

	got, err := store.GetByID(ctx, "n-1")
	require.NoError(t, err)
	got.EngineeringBranches[0] = "MECH"
	again, err := store.GetByID(ctx, "n-1")
	require.NoError(t, err)
	require.Equal(t, []string{"CIVIL"}, again.EngineeringBranches)

	_, err = store.GetByID(ctx, "missing")
	require.ErrorIs(t, err, notice.ErrNotFound)

	recent, err := store.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "n-3", recent[0].ID)

	all, err := store.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NoError(t, store.Ping(ctx))
}
