package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/rulesmith/pkg/errors"
)

// ValidatePath performs basic validation on a path.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "path cannot be empty")
	}
	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrInvalidInput, "path contains null bytes")
	}
	if len(path) > 4096 {
		return errors.New(errors.ErrInvalidInput, "path exceeds maximum length")
	}
	return nil
}

// SanitizePath cleans a path: normalizes separators, resolves . and ..
// elements, strips trailing separators.
func SanitizePath(path string) string {
	cleaned := filepath.Clean(path)
	if cleaned == "" {
		return "."
	}
	return cleaned
}

// ContainsPath checks if child is contained within parent. Both paths
// are normalized before comparison.
func ContainsPath(parent, child string) bool {
	parent = SanitizePath(parent)
	child = SanitizePath(child)

	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// RelativeToRoot normalizes path against root and returns its relative
// form. It fails with a security error when the path escapes the root:
// a leading parent-traversal segment, or an absolute location outside
// the root.
func RelativeToRoot(root, path string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, path)
	}
	abs = SanitizePath(abs)

	rel, err := filepath.Rel(SanitizePath(root), abs)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrSymlinkEscape,
			"cannot resolve %q against project root %q", path, root)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrSymlinkEscape,
			"path %q resolves outside the project root %q", path, root)
	}
	return rel, nil
}
