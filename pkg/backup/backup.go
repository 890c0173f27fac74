// Package backup snapshots generated output so a distribution can be
// reverted. A snapshot is a JSON document capturing each generated
// path and, for files, its content. Snapshots consume the same flat
// path list the gitignore rewriter does; the manifest is never
// involved.
package backup

import (
	"encoding/base64"
	"encoding/json"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/rulesmith/pkg/errors"
	"github.com/arthur-debert/rulesmith/pkg/logging"
	"github.com/arthur-debert/rulesmith/pkg/types"
)

// EntryKind tags what a snapshot entry captured.
type EntryKind string

const (
	KindFile    EntryKind = "file"
	KindDir     EntryKind = "dir"
	KindSymlink EntryKind = "symlink"
	KindAbsent  EntryKind = "absent"
)

// Entry is one captured path.
type Entry struct {
	Path string    `json:"path"`
	Kind EntryKind `json:"kind"`

	// Content is the base64-encoded file body (KindFile) or the link
	// target (KindSymlink).
	Content string `json:"content,omitempty"`
}

// Snapshot is the persisted document.
type Snapshot struct {
	CreatedAt time.Time `json:"created_at"`
	Root      string    `json:"root"`
	Entries   []Entry   `json:"entries"`
}

// Take captures the current on-disk state of the given generated paths
// (project-relative; directories carry a trailing separator) and
// persists it under backupDir. Returns the snapshot file path.
func Take(fsys types.FS, projectRoot, backupDir string, generated []string) (string, error) {
	logger := logging.GetLogger("backup")

	snap := Snapshot{
		CreatedAt: time.Now().UTC(),
		Root:      projectRoot,
	}

	sorted := append([]string(nil), generated...)
	sort.Strings(sorted)

	for _, rel := range sorted {
		abs := filepath.Join(projectRoot, strings.TrimSuffix(rel, "/"))
		entry := Entry{Path: rel}

		info, err := fsys.Lstat(abs)
		switch {
		case err != nil:
			entry.Kind = KindAbsent
		case info.Mode()&fs.ModeSymlink != 0:
			entry.Kind = KindSymlink
			target, err := fsys.Readlink(abs)
			if err != nil {
				return "", errors.Wrapf(err, errors.ErrFileAccess,
					"reading link %q for snapshot", abs)
			}
			entry.Content = target
		case info.IsDir():
			entry.Kind = KindDir
		default:
			entry.Kind = KindFile
			data, err := fsys.ReadFile(abs)
			if err != nil {
				return "", errors.Wrapf(err, errors.ErrFileAccess,
					"reading %q for snapshot", abs)
			}
			entry.Content = base64.StdEncoding.EncodeToString(data)
		}

		snap.Entries = append(snap.Entries, entry)
	}

	data, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "encoding snapshot")
	}

	if err := fsys.MkdirAll(backupDir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate,
			"creating backup directory %q", backupDir)
	}

	name := snap.CreatedAt.Format("20060102-150405") + ".json"
	path := filepath.Join(backupDir, name)
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite,
			"writing snapshot %q", path)
	}

	logger.Info().Str("path", path).Int("entries", len(snap.Entries)).
		Msg("snapshot taken")
	return path, nil
}

// Restore re-materializes a snapshot: captured files and links are
// recreated, paths captured as absent are removed again.
func Restore(fsys types.FS, snapshotPath string) error {
	logger := logging.GetLogger("backup")

	data, err := fsys.ReadFile(snapshotPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess,
			"reading snapshot %q", snapshotPath)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput,
			"decoding snapshot %q", snapshotPath)
	}

	for _, entry := range snap.Entries {
		abs := filepath.Join(snap.Root, strings.TrimSuffix(entry.Path, "/"))

		switch entry.Kind {
		case KindAbsent:
			if err := fsys.RemoveAll(abs); err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess,
					"removing %q while restoring", abs)
			}
		case KindDir:
			if err := fsys.MkdirAll(abs, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate,
					"restoring directory %q", abs)
			}
		case KindSymlink:
			if err := fsys.MkdirAll(filepath.Dir(abs), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate,
					"restoring parent of %q", abs)
			}
			if _, err := fsys.Lstat(abs); err == nil {
				if err := fsys.RemoveAll(abs); err != nil {
					return errors.Wrapf(err, errors.ErrFileAccess,
						"replacing %q while restoring", abs)
				}
			}
			if err := fsys.Symlink(entry.Content, abs); err != nil {
				return errors.Wrapf(err, errors.ErrSymlinkCreate,
					"restoring link %q", abs)
			}
		case KindFile:
			body, err := base64.StdEncoding.DecodeString(entry.Content)
			if err != nil {
				return errors.Wrapf(err, errors.ErrInvalidInput,
					"decoding snapshot content for %q", entry.Path)
			}
			if err := fsys.MkdirAll(filepath.Dir(abs), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate,
					"restoring parent of %q", abs)
			}
			if err := fsys.WriteFile(abs, body, 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite,
					"restoring %q", abs)
			}
		}
	}

	logger.Info().Str("path", snapshotPath).Int("entries", len(snap.Entries)).
		Msg("snapshot restored")
	return nil
}
