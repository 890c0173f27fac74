package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFSRoundTrip(t *testing.T) {
	fs := NewOS()
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b.md")

	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, fs.WriteFile(path, []byte("hello"), 0644))

	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	entries, err := fs.ReadDir(filepath.Join(dir, "a"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b.md", entries[0].Name())
}

func TestOSFSSymlink(t *testing.T) {
	fs := NewOS()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.md")
	link := filepath.Join(dir, "link.md")

	require.NoError(t, fs.WriteFile(src, []byte("x"), 0644))
	require.NoError(t, fs.Symlink(src, link))

	target, err := fs.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, src, target)

	info, err := fs.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
}

func TestMemoryFS(t *testing.T) {
	fs := NewMemory()

	require.NoError(t, fs.MkdirAll("/p/rules", 0755))
	require.NoError(t, fs.WriteFile("/p/rules/base.md", []byte("body"), 0644))

	data, err := fs.ReadFile("/p/rules/base.md")
	require.NoError(t, err)
	assert.Equal(t, "body", string(data))

	// Reading a directory as a file must fail.
	_, err = fs.ReadFile("/p/rules")
	assert.Error(t, err)
}
