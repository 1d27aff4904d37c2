// Package receipts stores receipt files on local disk under a base
// directory. Paths handed out are relative (owner/workEntryId/expenseId.ext)
// so the base directory can move without invalidating stored references.
package receipts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type DiskStorage struct {
	baseDir string
	logger  *slog.Logger
}

func NewDiskStorage(baseDir string, logger *slog.Logger) *DiskStorage {
	return &DiskStorage{baseDir: baseDir, logger: logger}
}

// Upload writes one receipt file and returns its path. The write is
// atomic: data goes to a temp file first, then a rename.
func (d *DiskStorage) Upload(path string, data []byte) (string, error) {
	full, err := d.resolve(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o700); err != nil {
		return "", fmt.Errorf("receipt storage: creating directories: %w", err)
	}

	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return "", fmt.Errorf("receipt storage: writing temp file: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("receipt storage: renaming temp file: %w", err)
	}

	return path, nil
}

// UploadBatch writes all files or none: a failure part-way deletes the
// files already written in this batch before the error is returned.
func (d *DiskStorage) UploadBatch(paths []string, blobs [][]byte) ([]string, error) {
	if len(paths) != len(blobs) {
		return nil, fmt.Errorf("receipt storage: %d paths for %d blobs", len(paths), len(blobs))
	}

	uploaded := make([]string, 0, len(paths))
	for i, path := range paths {
		stored, err := d.Upload(path, blobs[i])
		if err != nil {
			if delErr := d.Delete(uploaded); delErr != nil {
				d.logger.Warn("rollback of partial upload batch failed", "error", delErr, "paths", uploaded)
			}
			return nil, err
		}
		uploaded = append(uploaded, stored)
	}

	return uploaded, nil
}

// Delete removes the given receipt files. Missing files are skipped; the
// first real failure is returned after attempting the rest.
func (d *DiskStorage) Delete(paths []string) error {
	var firstErr error
	for _, path := range paths {
		full, err := d.resolve(path)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("receipt storage: deleting %s: %w", path, err)
			}
		}
	}
	return firstErr
}

func (d *DiskStorage) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("receipt storage: invalid path %q", path)
	}
	return filepath.Join(d.baseDir, clean), nil
}
