package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlobStorePutObjectCopiesData(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	payload := []byte("<html>listing</html>")
	uri, err := store.PutObject(context.Background(), "snapshots/upsc.gov.in/page.html", "text/html", payload)
	require.NoError(t, err)
	require.Equal(t, "memory://snapshots/upsc.gov.in/page.html", uri)

	payload[0] = 'X'
	stored, ok := store.Object("snapshots/upsc.gov.in/page.html")
	require.True(t, ok)
	require.Equal(t, "<html>listing</html>", string(stored))
	require.Equal(t, []string{"snapshots/upsc.gov.in/page.html"}, store.Paths())
}
