package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mrz1836/payreq/internal/fileutil"
)

const (
	// cacheFilePermissions is the permission mode for cache files.
	cacheFilePermissions = 0o640

	// cacheDirPermissions is the permission mode for cache directories.
	cacheDirPermissions = 0o750
)

// ErrCorruptCache indicates the cache file is malformed JSON.
var ErrCorruptCache = errors.New("cache file is corrupted")

// FileStorage persists a ResolutionCache as JSON.
type FileStorage struct {
	path string
}

// NewFileStorage creates a new file-based cache storage.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Save writes the cache atomically, creating parent directories as needed.
func (s *FileStorage) Save(cache *ResolutionCache) error {
	cache.mu.RLock()
	data, err := json.MarshalIndent(cache, "", "  ")
	cache.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	if err := fileutil.EnsureDir(s.path, cacheDirPermissions); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	if err := fileutil.WriteAtomic(s.path, data, cacheFilePermissions); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Load reads the cache from the filesystem.
// Returns an empty cache if the file doesn't exist. A corrupt file is moved
// aside and an empty cache is returned with ErrCorruptCache.
func (s *FileStorage) Load() (*ResolutionCache, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return NewResolutionCache(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache file: %w", err)
	}

	var cache ResolutionCache
	if err := json.Unmarshal(data, &cache); err != nil {
		corruptPath := fmt.Sprintf("%s.corrupt.%d", s.path, time.Now().UTC().UnixNano())
		if renameErr := os.Rename(s.path, corruptPath); renameErr != nil {
			return NewResolutionCache(), fmt.Errorf("%w: %w (also failed to move file: %w)", ErrCorruptCache, err, renameErr)
		}
		return NewResolutionCache(), fmt.Errorf("%w: %w (moved to %s)", ErrCorruptCache, err, corruptPath)
	}

	if cache.Entries == nil {
		cache.Entries = make(map[string]Entry)
	}

	return &cache, nil
}

// Delete removes the cache file.
func (s *FileStorage) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing cache file: %w", err)
	}
	return nil
}

// Exists checks if the cache file exists.
func (s *FileStorage) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Path returns the cache file path.
func (s *FileStorage) Path() string {
	return s.path
}
