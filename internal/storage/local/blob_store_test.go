package local_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/govjobs-ingestor/internal/storage/local"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("CreatesMissingDirectory", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "snapshots")
		store, err := local.New(local.Config{BaseDir: dir})
		require.NoError(t, err)
		assert.NotNil(t, store)
		assert.DirExists(t, dir)
	})

	t.Run("MissingBaseDir", func(t *testing.T) {
		t.Parallel()
		_, err := local.New(local.Config{BaseDir: "  "})
		require.Error(t, err)
	})

	t.Run("BaseDirIsAFile", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
		_, err := local.New(local.Config{BaseDir: file})
		require.ErrorContains(t, err, "not a directory")
	})

	t.Run("BaseDirNotWritable", func(t *testing.T) {
		t.Parallel()
		if os.Geteuid() == 0 {
			t.Skip("root ignores directory permissions")
		}
		dir := t.TempDir()
		// #nosec G302 -- read-only directory for the test.
		require.NoError(t, os.Chmod(dir, 0o500))
		t.Cleanup(func() { _ = os.Chmod(dir, 0o700) }) // #nosec G302
		_, err := local.New(local.Config{BaseDir: dir})
		require.Error(t, err)
	})
}

func TestPutObject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := local.New(local.Config{BaseDir: dir})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("WritesNestedObject", func(t *testing.T) {
		t.Parallel()
		uri, err := store.PutObject(ctx, "ssc.nic.in/2025-03-01/abc.html", "text/html", []byte("<html/>"))
		require.NoError(t, err)
		full := filepath.Join(dir, "ssc.nic.in", "2025-03-01", "abc.html")
		assert.Equal(t, "file://"+filepath.ToSlash(full), uri)
		// #nosec G304 -- test reads from the controlled temp directory.
		got, err := os.ReadFile(full)
		require.NoError(t, err)
		assert.Equal(t, "<html/>", string(got))
	})

	t.Run("ExistingObjectIsKept", func(t *testing.T) {
		t.Parallel()
		_, err := store.PutObject(ctx, "dup/x.html", "text/html", []byte("first"))
		require.NoError(t, err)
		_, err = store.PutObject(ctx, "dup/x.html", "text/html", []byte("second"))
		require.NoError(t, err)
		// #nosec G304 -- test reads from the controlled temp directory.
		got, err := os.ReadFile(filepath.Join(dir, "dup", "x.html"))
		require.NoError(t, err)
		assert.Equal(t, "first", string(got))
	})

	t.Run("RejectsEmptyPath", func(t *testing.T) {
		t.Parallel()
		_, err := store.PutObject(ctx, "", "text/html", []byte("x"))
		require.Error(t, err)
	})

	t.Run("RejectsTraversal", func(t *testing.T) {
		t.Parallel()
		_, err := store.PutObject(ctx, "../../etc/passwd", "text/plain", []byte("x"))
		require.ErrorContains(t, err, "escapes")
	})
}
