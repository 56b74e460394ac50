package notice

import (
	"context"
	"time"
)

// Store persists stored notices with a uniqueness constraint on ContentHash.
type Store interface {
	// ExistsByContentHash reports whether a notice with the hash was already stored.
	ExistsByContentHash(ctx context.Context, hash string) (bool, error)
	// Insert persists n. It returns ErrDuplicate when the hash is already present.
	Insert(ctx context.Context, n StoredNotice) error
	GetByID(ctx context.Context, id string) (StoredNotice, error)
	// ListRecent returns up to limit notices ordered by FetchedAt descending.
	ListRecent(ctx context.Context, limit int) ([]StoredNotice, error)
	Ping(ctx context.Context) error
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Hasher computes hex digests of strings.
type Hasher interface {
	Sum(s string) string
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces notice IDs.
type IDGenerator interface {
	NewID() (string, error)
}
