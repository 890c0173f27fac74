// Package delivery materializes rule content at destinations. Copy
// mode writes transformed, agent-framed content; symlink mode links
// the destination back to the original source, after validating the
// source cannot escape the project root.
package delivery

import (
	"path/filepath"

	"github.com/arthur-debert/rulesmith/pkg/errors"
	"github.com/arthur-debert/rulesmith/pkg/logging"
	"github.com/arthur-debert/rulesmith/pkg/paths"
	"github.com/arthur-debert/rulesmith/pkg/types"
)

// ModeFor applies the delivery mode precedence: rule override, then
// the config default, then Copy.
func ModeFor(rule *types.Rule, configDefault types.DeliveryMode) types.DeliveryMode {
	if rule != nil && rule.Mode != types.ModeUnset {
		return rule.Mode
	}
	if configDefault != types.ModeUnset {
		return configDefault
	}
	return types.ModeCopy
}

// Copy frames the accumulated content through the agent writer and
// persists it at the resolved destination, creating parent directories
// as needed.
func Copy(fs types.FS, sc *types.SyncContext, w Writer) error {
	logger := logging.GetLogger("delivery.copy")

	framed, err := w.Frame(sc)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"framing content for %q", sc.DestPath)
	}

	if err := fs.MkdirAll(filepath.Dir(sc.DestPath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate,
			"creating parent directory for %q", sc.DestPath)
	}

	if err := fs.WriteFile(sc.DestPath, []byte(framed), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"writing %q", sc.DestPath)
	}

	logger.Debug().
		Str("destination", sc.DestPath).
		Int("bytes", len(framed)).
		Msg("materialized content")
	return nil
}

// SymlinkRequest describes one link creation.
type SymlinkRequest struct {
	// ProjectRoot bounds where link sources may live.
	ProjectRoot string

	// Source is the original source file, absolute or root-relative.
	Source string

	// Dest is the resolved destination, absolute.
	Dest string

	// Warn receives advisory messages. May be nil.
	Warn func(msg string)
}

// Symlink links req.Dest to req.Source. Order matters: the missing
// source and root-escape checks run before any filesystem mutation.
func Symlink(fs types.FS, req SymlinkRequest) error {
	logger := logging.GetLogger("delivery.symlink")

	source := req.Source
	if !filepath.IsAbs(source) {
		source = filepath.Join(req.ProjectRoot, source)
	}

	if _, err := fs.Stat(source); err != nil {
		return errors.Wrapf(err, errors.ErrSourceMissing,
			"symlink source %q does not exist", req.Source)
	}

	if _, err := paths.RelativeToRoot(req.ProjectRoot, req.Source); err != nil {
		return err
	}

	if _, err := fs.Lstat(req.Dest); err == nil {
		if err := fs.RemoveAll(req.Dest); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess,
				"removing existing destination %q", req.Dest)
		}
		warn(req.Warn, "overwrote existing destination "+req.Dest)
		logger.Warn().Str("destination", req.Dest).Msg("removed existing destination for symlink")
	}

	if err := fs.MkdirAll(filepath.Dir(req.Dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate,
			"creating parent directory for %q", req.Dest)
	}

	// Prefer a relative link value; fall back to absolute when the two
	// paths do not share a filesystem root.
	linkValue := source
	if rel, err := filepath.Rel(filepath.Dir(req.Dest), source); err == nil {
		linkValue = rel
	}

	if err := fs.Symlink(linkValue, req.Dest); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate,
			"linking %q -> %q", req.Dest, source).
			WithDetail("source", source).
			WithDetail("destination", req.Dest)
	}

	logger.Debug().
		Str("source", source).
		Str("destination", req.Dest).
		Str("link", linkValue).
		Msg("created symlink")
	return nil
}

func warn(fn func(string), msg string) {
	if fn != nil {
		fn(msg)
	}
}
