package paths

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/rulesmith/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	root := t.TempDir()

	p, err := New(root, "")
	require.NoError(t, err)

	assert.Equal(t, root, p.ProjectRoot())
	assert.Equal(t, filepath.Join(root, WorkDirName), p.WorkDir())
	assert.Equal(t, filepath.Join(root, WorkDirName, ManifestFileName), p.ManifestPath())
}

func TestNewWorkDirOverride(t *testing.T) {
	root := t.TempDir()

	p, err := New(root, "state/rules")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "state", "rules"), p.WorkDir())

	abs := t.TempDir()
	p, err = New(root, abs)
	require.NoError(t, err)
	assert.Equal(t, abs, p.WorkDir())
}

func TestInRoot(t *testing.T) {
	root := t.TempDir()
	p, err := New(root, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "rules", "base.md"), p.InRoot("rules/base.md"))
	assert.Equal(t, "/elsewhere/x", p.InRoot("/elsewhere/x"))
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/home/u/.claude", ExpandHome("~/.claude", "/home/u"))
	assert.Equal(t, "/home/u", ExpandHome("~", "/home/u"))
	assert.Equal(t, "rules/base.md", ExpandHome("rules/base.md", "/home/u"))
}

func TestContainsPath(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		child  string
		want   bool
	}{
		{"direct child", "/project", "/project/rules", true},
		{"nested child", "/project", "/project/a/b/c.md", true},
		{"same path", "/project", "/project", true},
		{"sibling", "/project", "/other", false},
		{"parent traversal", "/project", "/project/../other", false},
		{"prefix but not child", "/project", "/project2/file", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsPath(tt.parent, tt.child))
		})
	}
}

func TestRelativeToRoot(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"relative inside", "rules/base.md", "rules/base.md", false},
		{"absolute inside", "/project/rules/base.md", "rules/base.md", false},
		{"dot segments collapsed", "rules/../rules/base.md", "rules/base.md", false},
		{"leading traversal", "../outside.md", "", true},
		{"nested traversal escaping", "rules/../../outside.md", "", true},
		{"absolute outside", "/etc/passwd", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RelativeToRoot("/project", tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrSymlinkEscape),
					"expected SYMLINK_ESCAPE, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
