package fileutil

import (
	"bytes"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// WriteIfChangedTracked writes data unless path already holds it, and
// reports whether it wrote.
func WriteIfChangedTracked(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, errors.Errorf("failed to read %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, errors.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// WriteIfMissing creates path with data unless it exists, and reports
// whether it wrote.
func WriteIfMissing(path string, data []byte, perm os.FileMode) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, errors.Errorf("failed to inspect %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, errors.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return false, errors.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
