package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestValidateSourceDir(t *testing.T) {
	t.Parallel()

	t.Run("existing directory passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, ValidateSourceDir(t.TempDir()))
	})

	t.Run("missing path fails", func(t *testing.T) {
		t.Parallel()
		err := ValidateSourceDir(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not point to an existing directory")
	})

	t.Run("plain file fails", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "file.txt")
		touch(t, path)
		assert.Error(t, ValidateSourceDir(path))
	})
}

func TestFirstMatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "pumpon_+00001.500ps_b.tif"))
	touch(t, filepath.Join(dir, "pumpon_+00001.500ps_a.tif"))
	touch(t, filepath.Join(dir, "pumpon_-00001.500ps_c.tif"))

	t.Run("returns first match in sorted order", func(t *testing.T) {
		t.Parallel()
		match, ok, err := FirstMatch(filepath.Join(dir, "pumpon_+00001.500ps_*.tif"))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(dir, "pumpon_+00001.500ps_a.tif"), match)
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()
		_, ok, err := FirstMatch(filepath.Join(dir, "pumpon_+00099.000ps_*.tif"))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestListFilesWithExt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.tif"))
	touch(t, filepath.Join(dir, "a.tiff"))
	touch(t, filepath.Join(dir, "notes.txt"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub.tif"), 0o755))

	names, err := ListFilesWithExt(dir, ".tif", ".tiff")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.tiff", "b.tif"}, names)
}
