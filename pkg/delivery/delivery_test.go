package delivery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/rulesmith/pkg/agents"
	"github.com/arthur-debert/rulesmith/pkg/errors"
	"github.com/arthur-debert/rulesmith/pkg/filesystem"
	"github.com/arthur-debert/rulesmith/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeFor(t *testing.T) {
	tests := []struct {
		name          string
		ruleMode      types.DeliveryMode
		configDefault types.DeliveryMode
		want          types.DeliveryMode
	}{
		{"rule override wins", types.ModeSymlink, types.ModeCopy, types.ModeSymlink},
		{"config default applies", types.ModeUnset, types.ModeSymlink, types.ModeSymlink},
		{"copy is the last resort", types.ModeUnset, types.ModeUnset, types.ModeCopy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &types.Rule{Mode: tt.ruleMode}
			assert.Equal(t, tt.want, ModeFor(rule, tt.configDefault))
		})
	}
}

func TestCopyPlain(t *testing.T) {
	fs := filesystem.NewMemory()
	sc := &types.SyncContext{
		Content:  "Rule body.",
		DestPath: "/p/.clinerules/base.md",
	}

	require.NoError(t, Copy(fs, sc, WriterFor(agents.FormatPlain)))

	data, err := fs.ReadFile("/p/.clinerules/base.md")
	require.NoError(t, err)
	assert.Equal(t, "Rule body.", string(data))
}

func TestCopyMDCFraming(t *testing.T) {
	fs := filesystem.NewMemory()
	sc := &types.SyncContext{
		Rule:     &types.Rule{Name: "style", Glob: "**/*.go"},
		Content:  "Go style rules.",
		DestPath: "/p/.cursor/rules/style.mdc",
	}

	require.NoError(t, Copy(fs, sc, WriterFor(agents.FormatMDC)))

	data, err := fs.ReadFile("/p/.cursor/rules/style.mdc")
	require.NoError(t, err)
	got := string(data)
	assert.Contains(t, got, "---\n")
	assert.Contains(t, got, "description: style")
	assert.Contains(t, got, "globs: '**/*.go'")
	assert.Contains(t, got, "alwaysApply: false")
	assert.Contains(t, got, "Go style rules.")
}

func TestMDCWriterKeepsAuthoredFrontmatter(t *testing.T) {
	sc := &types.SyncContext{
		Rule:    &types.Rule{Name: "style"},
		Content: "---\ndescription: authored\n---\nBody.",
	}

	framed, err := WriterFor(agents.FormatMDC).Frame(sc)
	require.NoError(t, err)
	assert.Equal(t, sc.Content, framed)
}

func TestSymlinkCreatesRelativeLink(t *testing.T) {
	fs := filesystem.NewOS()
	root := t.TempDir()
	src := filepath.Join(root, "rules", "base.md")
	dest := filepath.Join(root, ".clinerules", "base.md")

	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0755))
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))

	require.NoError(t, Symlink(fs, SymlinkRequest{
		ProjectRoot: root,
		Source:      "rules/base.md",
		Dest:        dest,
	}))

	link, err := os.Readlink(dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("..", "rules", "base.md"), link)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestSymlinkMissingSource(t *testing.T) {
	fs := filesystem.NewOS()
	root := t.TempDir()

	err := Symlink(fs, SymlinkRequest{
		ProjectRoot: root,
		Source:      "rules/absent.md",
		Dest:        filepath.Join(root, "out.md"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSourceMissing))
}

func TestSymlinkRejectsRootEscapeBeforeMutation(t *testing.T) {
	fs := filesystem.NewOS()
	outside := t.TempDir()
	root := filepath.Join(t.TempDir(), "project")
	require.NoError(t, os.MkdirAll(root, 0755))

	// The source exists but lives outside the project root.
	src := filepath.Join(outside, "secret.md")
	require.NoError(t, os.WriteFile(src, []byte("s"), 0644))

	dest := filepath.Join(root, "out.md")
	require.NoError(t, os.WriteFile(dest, []byte("keep me"), 0644))

	err := Symlink(fs, SymlinkRequest{
		ProjectRoot: root,
		Source:      src,
		Dest:        dest,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSymlinkEscape))

	// The check runs before any mutation: dest is untouched.
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestSymlinkTraversalSourceRejected(t *testing.T) {
	fs := filesystem.NewOS()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "..", "escape.md"), []byte("e"), 0644))

	err := Symlink(fs, SymlinkRequest{
		ProjectRoot: root,
		Source:      "../escape.md",
		Dest:        filepath.Join(root, "out.md"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSymlinkEscape))
}

func TestSymlinkOverwritesExistingDestinationWithWarning(t *testing.T) {
	fs := filesystem.NewOS()
	root := t.TempDir()
	src := filepath.Join(root, "base.md")
	dest := filepath.Join(root, "out", "base.md")

	require.NoError(t, os.WriteFile(src, []byte("new"), 0644))
	// The destination is a non-empty directory; it must be removed
	// recursively.
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "nested"), 0755))

	var warned []string
	require.NoError(t, Symlink(fs, SymlinkRequest{
		ProjectRoot: root,
		Source:      "base.md",
		Dest:        dest,
		Warn:        func(msg string) { warned = append(warned, msg) },
	}))

	require.Len(t, warned, 1)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}
