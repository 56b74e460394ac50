package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

// NoticeStore provides an in-memory implementation for development/testing.
type NoticeStore struct {
	mu     sync.RWMutex
	byID   map[string]notice.StoredNotice
	byHash map[string]string
	order  []string
}

// NewNoticeStore constructs a NoticeStore.
func NewNoticeStore() *NoticeStore {
	return &NoticeStore{
		byID:   make(map[string]notice.StoredNotice),
		byHash: make(map[string]string),
	}
}

// ExistsByContentHash reports whether the hash has been stored.
func (s *NoticeStore) ExistsByContentHash(_ context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byHash[hash]
	return ok, nil
}

// Insert stores n unless its hash or ID is already present.
func (s *NoticeStore) Insert(_ context.Context, n notice.StoredNotice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byHash[n.ContentHash]; exists {
		return fmt.Errorf("insert notice %s: %w", n.ID, notice.ErrDuplicate)
	}
	if _, exists := s.byID[n.ID]; exists {
		return fmt.Errorf("insert notice: id %s already exists", n.ID)
	}
	n.EngineeringBranches = slices.Clone(n.EngineeringBranches)
	s.byID[n.ID] = n
	s.byHash[n.ContentHash] = n.ID
	s.order = append(s.order, n.ID)
	return nil
}

// GetByID fetches a notice by ID.
func (s *NoticeStore) GetByID(_ context.Context, id string) (notice.StoredNotice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.byID[id]
	if !ok {
		return notice.StoredNotice{}, notice.ErrNotFound
	}
	n.EngineeringBranches = slices.Clone(n.EngineeringBranches)
	return n, nil
}

// ListRecent returns up to limit notices, newest FetchedAt first. Ties keep
// reverse insertion order.
func (s *NoticeStore) ListRecent(_ context.Context, limit int) ([]notice.StoredNotice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]notice.StoredNotice, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		n := s.byID[s.order[i]]
		n.EngineeringBranches = slices.Clone(n.EngineeringBranches)
		out = append(out, n)
	}
	slices.SortStableFunc(out, func(a, b notice.StoredNotice) int {
		return b.FetchedAt.Compare(a.FetchedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Ping always succeeds.
func (s *NoticeStore) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored notices.
func (s *NoticeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
