package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes uploads under a media root that the HTTP server serves
// at mediaURL
type LocalStore struct {
	root     string
	mediaURL string
}

// NewLocalStore creates the media root if needed
func NewLocalStore(root, mediaURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create media root %s: %w", root, err)
	}
	return &LocalStore{root: root, mediaURL: mediaURL}, nil
}

// Save streams r to a temp file, syncs it and renames it into place. The
// locator is the public path, e.g. "/media/report_<id>.pdf".
func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	filename := storageName(name)
	fullPath := filepath.Join(s.root, filename)
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to sync upload: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close upload: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move upload into place: %w", err)
	}

	return s.mediaURL + filename, nil
}

// ResolveURL prefixes the locator with the request origin
func (s *LocalStore) ResolveURL(locator, origin string) string {
	return origin + locator
}

// Delete removes the file behind a locator under this store's media URL
func (s *LocalStore) Delete(ctx context.Context, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	filename := strings.TrimPrefix(locator, s.mediaURL)
	if filename == locator || filename == "" || strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("locator %q is not a file under %s", locator, s.mediaURL)
	}
	if err := os.Remove(filepath.Join(s.root, filename)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}
