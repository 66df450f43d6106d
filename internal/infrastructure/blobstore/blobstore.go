// Package blobstore keeps uploaded files on the local disk or in a remote
// object store.
package blobstore

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/Josh-IE/risk-management/internal/config"
	"github.com/Josh-IE/risk-management/internal/domain/ports"
)

// New returns the store selected by cfg.BlobStorage
func New(cfg *config.Config) (ports.BlobStore, error) {
	switch cfg.BlobStorage {
	case config.StorageLocal:
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	case config.StorageRemote:
		return NewRemoteStore(cfg.RemoteStorageEndpoint, cfg.RemoteStoragePublic, cfg.RemoteStorageToken, cfg.RemoteStorageTimeout), nil
	}
	return nil, fmt.Errorf("unsupported blob storage %q", cfg.BlobStorage)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// storageName keeps the uploaded base name recognisable and makes it unique:
// "report.pdf" becomes "report_<32 hex chars>.pdf"
func storageName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	ext := filepath.Ext(base)
	stem := unsafeChars.ReplaceAllString(strings.TrimSuffix(base, ext), "_")
	ext = unsafeChars.ReplaceAllString(ext, "")
	if stem == "" {
		stem = "upload"
	}
	if len(stem) > 100 {
		stem = stem[:100]
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_%s%s", stem, id, ext)
}
