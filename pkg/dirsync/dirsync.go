// Package dirsync recursively synchronizes a source directory tree to
// an agent destination, preserving relative structure. Markdown files
// pass through the transform pipeline; other files are byte-copied.
// Directory-synced content carries its own authored frontmatter, so
// agent Writer framing never applies here.
package dirsync

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arthur-debert/rulesmith/pkg/delivery"
	"github.com/arthur-debert/rulesmith/pkg/errors"
	"github.com/arthur-debert/rulesmith/pkg/logging"
	"github.com/arthur-debert/rulesmith/pkg/transform"
	"github.com/arthur-debert/rulesmith/pkg/types"
)

// markdownExt marks files that run through the transform pipeline.
const markdownExt = ".md"

// Request describes one directory synchronization.
type Request struct {
	// Rule is the directory-sync rule being applied.
	Rule *types.Rule

	// Agent is the resolved consumer id.
	Agent string

	// SourceDir is the source tree, absolute.
	SourceDir string

	// DestDir is the destination tree root, absolute.
	DestDir string

	// ProjectRoot bounds symlink sources.
	ProjectRoot string

	// Mode is the effective delivery mode (Copy or Symlink).
	Mode types.DeliveryMode

	// Glob optionally filters relative paths (doublestar syntax).
	Glob string

	// Pipeline transforms markdown content in Copy mode. May be nil.
	Pipeline *transform.Pipeline

	// Warn receives advisory messages. May be nil.
	Warn func(msg string)
}

// Result reports what a synchronization produced, for manifest
// bookkeeping.
type Result struct {
	// Files are materialized file paths (Copy mode).
	Files []string

	// Symlinks are created link paths (Symlink mode).
	Symlinks []string

	// Dirs are destination directories the sync created or relied on,
	// including DestDir itself.
	Dirs []string
}

// Sync walks the source tree and mirrors it at the destination.
// Enumeration order is irrelevant to the outcome; results come back
// sorted for stable bookkeeping.
func Sync(ctx context.Context, fs types.FS, req Request) (*Result, error) {
	logger := logging.GetLogger("dirsync").With().
		Str("source", req.SourceDir).
		Str("destination", req.DestDir).
		Logger()

	info, err := fs.Stat(req.SourceDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceMissing,
			"sync source %q does not exist", req.SourceDir)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrRuleInvalid,
			"sync source %q is not a directory", req.SourceDir)
	}

	res := &Result{}
	seenDirs := map[string]struct{}{req.DestDir: {}}

	if err := syncDir(ctx, fs, req, "", res, seenDirs); err != nil {
		return nil, err
	}

	for d := range seenDirs {
		res.Dirs = append(res.Dirs, d)
	}
	sort.Strings(res.Files)
	sort.Strings(res.Symlinks)
	sort.Strings(res.Dirs)

	logger.Info().
		Int("files", len(res.Files)).
		Int("symlinks", len(res.Symlinks)).
		Msg("directory synchronized")
	return res, nil
}

// syncDir recurses over one source subdirectory. rel is the relative
// position under the source root; the filesystem is acyclic and
// depth-bounded, so plain recursion suffices.
func syncDir(ctx context.Context, fs types.FS, req Request, rel string, res *Result, seenDirs map[string]struct{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	srcDir := filepath.Join(req.SourceDir, rel)
	entries, err := fs.ReadDir(srcDir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrTreeWalk,
			"reading directory %q", srcDir)
	}

	for _, entry := range entries {
		entryRel := filepath.Join(rel, entry.Name())
		if entry.IsDir() {
			if err := syncDir(ctx, fs, req, entryRel, res, seenDirs); err != nil {
				return err
			}
			continue
		}

		if req.Glob != "" {
			matched, err := doublestar.Match(req.Glob, filepath.ToSlash(entryRel))
			if err != nil {
				return errors.Wrapf(err, errors.ErrRuleInvalid,
					"invalid glob pattern %q", req.Glob)
			}
			if !matched {
				continue
			}
		}

		if err := syncFile(ctx, fs, req, entryRel, res, seenDirs); err != nil {
			return err
		}
	}
	return nil
}

// syncFile mirrors one leaf file.
func syncFile(ctx context.Context, fs types.FS, req Request, rel string, res *Result, seenDirs map[string]struct{}) error {
	srcPath := filepath.Join(req.SourceDir, rel)
	destPath := filepath.Join(req.DestDir, rel)

	// Record every intermediate destination directory for the
	// manifest.
	for d := filepath.Dir(destPath); strings.HasPrefix(d, req.DestDir); d = filepath.Dir(d) {
		seenDirs[d] = struct{}{}
		if d == req.DestDir {
			break
		}
	}

	if req.Mode == types.ModeSymlink {
		// Each leaf is linked individually, never the directory, so
		// users can override parts of a synced tree.
		err := delivery.Symlink(fs, delivery.SymlinkRequest{
			ProjectRoot: req.ProjectRoot,
			Source:      srcPath,
			Dest:        destPath,
			Warn:        req.Warn,
		})
		if err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate,
				"linking %q while syncing %q to %q", rel, req.SourceDir, req.DestDir)
		}
		res.Symlinks = append(res.Symlinks, destPath)
		return nil
	}

	data, err := fs.ReadFile(srcPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceRead,
			"reading %q while syncing %q", srcPath, req.SourceDir)
	}

	out := data
	if filepath.Ext(rel) == markdownExt && req.Pipeline != nil {
		sc := &types.SyncContext{
			Rule:        req.Rule,
			Agent:       req.Agent,
			DestPath:    destPath,
			ProjectRoot: req.ProjectRoot,
			Content:     string(data),
		}
		if err := req.Pipeline.Apply(ctx, sc); err != nil {
			return err
		}
		out = []byte(sc.Content)
	}

	if err := fs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate,
			"creating directory for %q", destPath)
	}
	if err := fs.WriteFile(destPath, out, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"writing %q", destPath)
	}
	res.Files = append(res.Files, destPath)
	return nil
}
