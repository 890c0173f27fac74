package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/rulesmith/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	fs := filesystem.NewOS()
	dir := t.TempDir()
	store := NewStore(fs, filepath.Join(dir, ".rulesmith", "manifest.json"))

	m := Empty()
	m.Files = []string{"/p/b.md", "/p/a.md", "/p/a.md"}
	m.Directories = []string{"/p/out/", "/p/out"}
	m.Symlinks = []string{"/p/link.md"}
	require.NoError(t, store.Save(m))

	got := store.Load()
	assert.Equal(t, SchemaVersion, got.Version)
	// Sorted, de-duplicated, directories without trailing separators.
	assert.Equal(t, []string{"/p/a.md", "/p/b.md"}, got.Files)
	assert.Equal(t, []string{"/p/out"}, got.Directories)
	assert.Equal(t, []string{"/p/link.md"}, got.Symlinks)
}

func TestLoadMissingManifest(t *testing.T) {
	fs := filesystem.NewOS()
	store := NewStore(fs, filepath.Join(t.TempDir(), "absent.json"))

	m := store.Load()
	assert.Equal(t, SchemaVersion, m.Version)
	assert.Empty(t, m.Files)
}

func TestLoadCorruptManifestIsFreshState(t *testing.T) {
	fs := filesystem.NewOS()
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	m := NewStore(fs, path).Load()
	assert.Empty(t, m.Files, "corrupt state is a cache miss, not an error")
}

func TestLoadSchemaMismatchIsFreshState(t *testing.T) {
	fs := filesystem.NewOS()
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"version": 99, "files": ["/x"]}`), 0644))

	m := NewStore(fs, path).Load()
	assert.Empty(t, m.Files)
}

func TestReconcilePrunesStaleFiles(t *testing.T) {
	fs := filesystem.NewOS()
	dir := t.TempDir()
	x := filepath.Join(dir, "x.md")
	y := filepath.Join(dir, "y.md")
	require.NoError(t, os.WriteFile(x, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(y, []byte("y"), 0644))

	prior := Empty()
	prior.Files = []string{x, y}
	current := Empty()
	current.Files = []string{x}

	report := Reconcile(fs, prior, current)

	assert.Equal(t, []string{y}, report.Files)
	_, err := os.Stat(y)
	assert.True(t, os.IsNotExist(err), "stale file must be deleted")
	data, err := os.ReadFile(x)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data), "retained file must be untouched")
}

func TestReconcileIgnoresAlreadyGoneFiles(t *testing.T) {
	fs := filesystem.NewOS()
	dir := t.TempDir()

	prior := Empty()
	prior.Files = []string{filepath.Join(dir, "ghost.md")}

	report := Reconcile(fs, prior, Empty())
	assert.Empty(t, report.Files, "missing files are silently skipped")
}

func TestReconcileRemovesOnlyEmptyDirectories(t *testing.T) {
	fs := filesystem.NewOS()
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	occupied := filepath.Join(dir, "occupied")
	require.NoError(t, os.MkdirAll(empty, 0755))
	require.NoError(t, os.MkdirAll(occupied, 0755))
	// A file this engine did not create.
	require.NoError(t, os.WriteFile(filepath.Join(occupied, "user.txt"), []byte("u"), 0644))

	prior := Empty()
	prior.Directories = []string{empty, occupied}

	report := Reconcile(fs, prior, Empty())

	assert.Equal(t, []string{empty}, report.Directories)
	_, err := os.Stat(empty)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(occupied)
	assert.NoError(t, err, "non-empty directory must never be removed")
}

func TestReconcileRemovesNestedDirsDeepestFirst(t *testing.T) {
	fs := filesystem.NewOS()
	dir := t.TempDir()
	parent := filepath.Join(dir, "a")
	child := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(child, 0755))

	prior := Empty()
	prior.Directories = []string{parent, child}

	report := Reconcile(fs, prior, Empty())

	assert.Equal(t, []string{parent, child}, report.Directories)
	_, err := os.Stat(parent)
	assert.True(t, os.IsNotExist(err))
}

func TestReconcilePrunesStaleSymlinks(t *testing.T) {
	fs := filesystem.NewOS()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.md")
	link := filepath.Join(dir, "link.md")
	require.NoError(t, os.WriteFile(src, []byte("s"), 0644))
	require.NoError(t, os.Symlink(src, link))

	prior := Empty()
	prior.Symlinks = []string{link}

	report := Reconcile(fs, prior, Empty())

	assert.Equal(t, []string{link}, report.Files)
	_, err := os.Lstat(link)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(src)
	assert.NoError(t, err, "the link target is never touched")
}

func TestReconcileIdempotentManifest(t *testing.T) {
	fs := filesystem.NewOS()
	dir := t.TempDir()
	x := filepath.Join(dir, "x.md")
	require.NoError(t, os.WriteFile(x, []byte("x"), 0644))

	current := Empty()
	current.Files = []string{x}

	first := Reconcile(fs, current, current)
	second := Reconcile(fs, current, current)
	assert.Empty(t, first.Files)
	assert.Empty(t, second.Files)
	_, err := os.Stat(x)
	assert.NoError(t, err)
}
