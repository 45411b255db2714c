// Package fileutil provides filesystem helpers for config and cache files.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrEmptyPath indicates an empty file path was provided.
var ErrEmptyPath = errors.New("path is empty")

// EnsureDir creates the parent directory of path with perm if it is missing.
func EnsureDir(path string, perm os.FileMode) error {
	if path == "" {
		return ErrEmptyPath
	}
	return os.MkdirAll(filepath.Dir(path), perm)
}

// WriteAtomic replaces path with data. Readers see either the old or the new
// content, never a partial write. The parent directory must exist.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return ErrEmptyPath
	}

	tmpPath, err := writeTemp(filepath.Dir(path), filepath.Base(path), data, perm)
	if err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil { //nolint:gosec // G703: path comes from configuration, not request input
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	syncDir(filepath.Dir(path))
	return nil
}

// writeTemp writes data to a synced temp file next to the target and returns its path.
func writeTemp(dir, base string, data []byte, perm os.FileMode) (string, error) {
	f, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	fail := func(step string, err error) (string, error) {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("%s temp file: %w", step, err)
	}

	if _, err := f.Write(data); err != nil {
		return fail("writing", err)
	}
	if err := f.Chmod(perm); err != nil {
		return fail("setting permissions on", err)
	}
	if err := f.Sync(); err != nil {
		return fail("syncing", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	return f.Name(), nil
}

// syncDir flushes a directory entry so a rename survives a crash. Best effort.
func syncDir(dir string) {
	d, err := os.Open(dir) //nolint:gosec // G304: dir is derived from the target path
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
