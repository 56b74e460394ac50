package fetcher

import (
	"context"
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/hash/sha256"
	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

// Snapshotter copies every fetched body to a blob store so extraction
// heuristics can be debugged against the exact markup a run saw. Snapshot
// failures are logged and never fail the fetch.
type Snapshotter struct {
	next   Fetcher
	blobs  notice.BlobStore
	clock  notice.Clock
	hasher *sha256.Hasher
	prefix string
	logger *zap.Logger
}

// WithSnapshots wraps next.
func WithSnapshots(next Fetcher, blobs notice.BlobStore, clock notice.Clock, prefix string, logger *zap.Logger) *Snapshotter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Snapshotter{
		next:   next,
		blobs:  blobs,
		clock:  clock,
		hasher: sha256.New(),
		prefix: strings.Trim(prefix, "/"),
		logger: logger.Named("snapshot"),
	}
}

// Fetch delegates to the wrapped fetcher and stores the body on success.
func (s *Snapshotter) Fetch(ctx context.Context, req Request) (Page, error) {
	page, err := s.next.Fetch(ctx, req)
	if err != nil || len(page.Body) == 0 {
		return page, err
	}
	objectPath := s.objectPath(page)
	uri, putErr := s.blobs.PutObject(ctx, objectPath, "text/html; charset=utf-8", page.Body)
	if putErr != nil {
		s.logger.Warn("store page snapshot failed", zap.String("url", page.URL), zap.Error(putErr))
		return page, nil
	}
	s.logger.Debug("page snapshot stored", zap.String("url", page.URL), zap.String("uri", uri))
	return page, nil
}

// objectPath is <prefix>/<host>/<yyyy-mm-dd>/<sha256 of body>.html, so
// identical bodies fetched on the same day share one object.
func (s *Snapshotter) objectPath(page Page) string {
	host := "unknown"
	if u, err := url.Parse(page.URL); err == nil && u.Host != "" {
		host = u.Host
	}
	day := s.clock.Now().UTC().Format(notice.DateLayout)
	return path.Join(s.prefix, host, day, s.hasher.SumBytes(page.Body)+".html")
}
