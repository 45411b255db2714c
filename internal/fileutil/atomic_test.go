package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomic_ReplacesContent(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "cache.json")

	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644)) //nolint:gosec // G306: Test file, relaxed perms OK
	require.NoError(t, WriteAtomic(target, []byte("new"), 0o600))

	data, err := os.ReadFile(target) //nolint:gosec // G304: Test path from t.TempDir()
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteAtomic_LeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, WriteAtomic(filepath.Join(dir, "config.yaml"), []byte("a: 1"), 0o600))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.yaml", entries[0].Name())
}

func TestWriteAtomic_MissingDirectory(t *testing.T) {
	t.Parallel()

	err := WriteAtomic(filepath.Join(t.TempDir(), "missing", "file"), []byte("x"), 0o600)
	require.Error(t, err)
}

func TestWriteAtomic_EmptyPath(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, WriteAtomic("", []byte("data"), 0o600), ErrEmptyPath)
}

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "a", "b", "cache.json")
	require.NoError(t, EnsureDir(target, 0o750))

	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, EnsureDir(target, 0o750))
	require.ErrorIs(t, EnsureDir("", 0o750), ErrEmptyPath)
}
