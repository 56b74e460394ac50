// Package local writes page snapshots under a directory on disk.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config captures the parameters for the local snapshot directory.
type Config struct {
	BaseDir string `mapstructure:"base_dir"`
}

// BlobStore writes snapshots to the local filesystem.
type BlobStore struct {
	baseDir string
}

// New validates cfg.BaseDir, creating it when missing.
func New(cfg Config) (*BlobStore, error) {
	base := strings.TrimSpace(cfg.BaseDir)
	if base == "" {
		return nil, errors.New("snapshot base directory is required")
	}
	info, err := os.Stat(base)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(base, 0o750); err != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("stat snapshot directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("snapshot path %s is not a directory", base)
	}

	probe, err := os.CreateTemp(base, ".probe-*")
	if err != nil {
		return nil, fmt.Errorf("snapshot directory is not writable: %w", err)
	}
	_ = probe.Close()
	if err := os.Remove(probe.Name()); err != nil {
		return nil, fmt.Errorf("remove probe file: %w", err)
	}
	return &BlobStore{baseDir: filepath.Clean(base)}, nil
}

// PutObject writes data to baseDir/path and returns a file:// URI. Objects
// are content addressed, so an existing file is left untouched.
func (s *BlobStore) PutObject(_ context.Context, path string, _ string, data []byte) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("object path is required")
	}
	full := filepath.Join(s.baseDir, filepath.FromSlash(path))
	if !strings.HasPrefix(full, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("object path %q escapes the snapshot directory", path)
	}
	uri := "file://" + filepath.ToSlash(full)
	if _, err := os.Stat(full); err == nil {
		return uri, nil
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return "", fmt.Errorf("create object directory: %w", err)
	}

	// Write then rename so readers never observe a partial snapshot.
	tmp, err := os.CreateTemp(filepath.Dir(full), ".snapshot-*")
	if err != nil {
		return "", fmt.Errorf("create temp object: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("publish object: %w", err)
	}
	return uri, nil
}
