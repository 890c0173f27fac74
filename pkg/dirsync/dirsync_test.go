package dirsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/rulesmith/pkg/errors"
	"github.com/arthur-debert/rulesmith/pkg/filesystem"
	"github.com/arthur-debert/rulesmith/pkg/transform"
	"github.com/arthur-debert/rulesmith/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
}

func TestSyncPreservesStructure(t *testing.T) {
	fs := filesystem.NewOS()
	root := t.TempDir()
	src := filepath.Join(root, "skills")
	dst := filepath.Join(root, ".claude", "skills")
	writeTree(t, src, map[string]string{
		"a/b.md": "nested",
		"c.md":   "top",
	})

	res, err := Sync(context.Background(), fs, Request{
		SourceDir:   src,
		DestDir:     dst,
		ProjectRoot: root,
		Mode:        types.ModeCopy,
	})
	require.NoError(t, err)

	for rel, want := range map[string]string{"a/b.md": "nested", "c.md": "top"} {
		data, err := os.ReadFile(filepath.Join(dst, rel))
		require.NoError(t, err, rel)
		assert.Equal(t, want, string(data), rel)
	}

	assert.ElementsMatch(t, []string{
		filepath.Join(dst, "a", "b.md"),
		filepath.Join(dst, "c.md"),
	}, res.Files)
	assert.Contains(t, res.Dirs, dst)
	assert.Contains(t, res.Dirs, filepath.Join(dst, "a"))
}

func TestSyncMarkdownGoesThroughPipelineOnly(t *testing.T) {
	fs := filesystem.NewOS()
	root := t.TempDir()
	src := filepath.Join(root, "agents")
	dst := filepath.Join(root, "out")
	writeTree(t, src, map[string]string{
		"reviewer.md": "hello ${RULESMITH_DS_TEST}",
		"data.json":   `{"k": "${RULESMITH_DS_TEST}"}`,
	})
	t.Setenv("RULESMITH_DS_TEST", "expanded")

	_, err := Sync(context.Background(), fs, Request{
		SourceDir:   src,
		DestDir:     dst,
		ProjectRoot: root,
		Mode:        types.ModeCopy,
		Pipeline:    transform.New([]string{"env"}, nil),
	})
	require.NoError(t, err)

	md, err := os.ReadFile(filepath.Join(dst, "reviewer.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello expanded", string(md))

	// Non-markdown files are byte-copied, never transformed.
	raw, err := os.ReadFile(filepath.Join(dst, "data.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"k": "${RULESMITH_DS_TEST}"}`, string(raw))
}

func TestSyncGlobFilter(t *testing.T) {
	fs := filesystem.NewOS()
	root := t.TempDir()
	src := filepath.Join(root, "rules")
	dst := filepath.Join(root, "out")
	writeTree(t, src, map[string]string{
		"keep/one.md":  "1",
		"skip/two.txt": "2",
	})

	res, err := Sync(context.Background(), fs, Request{
		SourceDir:   src,
		DestDir:     dst,
		ProjectRoot: root,
		Mode:        types.ModeCopy,
		Glob:        "**/*.md",
	})
	require.NoError(t, err)

	assert.Len(t, res.Files, 1)
	_, err = os.Stat(filepath.Join(dst, "skip", "two.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestSyncSymlinkLinksEachLeaf(t *testing.T) {
	fs := filesystem.NewOS()
	root := t.TempDir()
	src := filepath.Join(root, "cmds")
	dst := filepath.Join(root, ".claude", "commands")
	writeTree(t, src, map[string]string{
		"deploy.md":     "d",
		"sub/verify.md": "v",
	})

	res, err := Sync(context.Background(), fs, Request{
		SourceDir:   src,
		DestDir:     dst,
		ProjectRoot: root,
		Mode:        types.ModeSymlink,
	})
	require.NoError(t, err)
	require.Len(t, res.Symlinks, 2)

	// Leaves are linked individually; the destination root is a real
	// directory so parts of the tree can be overridden later.
	info, err := os.Lstat(dst)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	link := filepath.Join(dst, "deploy.md")
	info, err = os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)

	data, err := os.ReadFile(filepath.Join(dst, "sub", "verify.md"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(data))
}

func TestSyncMissingSource(t *testing.T) {
	fs := filesystem.NewOS()
	root := t.TempDir()

	_, err := Sync(context.Background(), fs, Request{
		SourceDir:   filepath.Join(root, "absent"),
		DestDir:     filepath.Join(root, "out"),
		ProjectRoot: root,
		Mode:        types.ModeCopy,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSourceMissing))
}

func TestSyncSymlinkFailureNamesContext(t *testing.T) {
	fs := filesystem.NewOS()
	outside := t.TempDir()
	root := filepath.Join(outside, "project")
	src := filepath.Join(root, "cmds")
	writeTree(t, src, map[string]string{"x.md": "x"})

	// Source dir outside the project root: every leaf link must be
	// rejected, aborting the sync with file context.
	_, err := Sync(context.Background(), fs, Request{
		SourceDir:   src,
		DestDir:     filepath.Join(root, "out"),
		ProjectRoot: filepath.Join(outside, "elsewhere"),
		Mode:        types.ModeSymlink,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x.md")
	assert.Contains(t, err.Error(), src)
}
