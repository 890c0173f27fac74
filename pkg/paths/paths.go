// Package paths provides centralized path handling for rulesmith.
// All path resolution is explicit: the project root, working directory
// and home directory are parameters fixed at construction, never read
// from ambient global state at use sites.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/rulesmith/pkg/errors"
)

// Environment variable names
const (
	// EnvProjectRoot overrides the project root discovery
	EnvProjectRoot = "RULESMITH_ROOT"

	// EnvWorkDir overrides the working directory for persisted state
	EnvWorkDir = "RULESMITH_WORK_DIR"
)

// Defaults for the engine's on-disk layout. These are internal
// structure, not user-configurable.
const (
	// WorkDirName is the default working directory under the project root
	WorkDirName = ".rulesmith"

	// ManifestFileName is the manifest document inside the working directory
	ManifestFileName = "manifest.json"

	// BackupDirName holds backup snapshots inside the working directory
	BackupDirName = "backups"
)

// Paths resolves the fixed locations a run operates against.
type Paths struct {
	projectRoot string
	workDir     string
}

// New builds a Paths anchored at projectRoot. An empty projectRoot
// falls back to EnvProjectRoot, then the current directory. workDir
// may be relative to the project root; empty means the default.
func New(projectRoot, workDir string) (*Paths, error) {
	if projectRoot == "" {
		projectRoot = os.Getenv(EnvProjectRoot)
	}
	if projectRoot == "" {
		projectRoot = "."
	}

	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput,
			"cannot resolve project root %q", projectRoot)
	}

	if workDir == "" {
		workDir = os.Getenv(EnvWorkDir)
	}
	if workDir == "" {
		workDir = WorkDirName
	}
	if !filepath.IsAbs(workDir) {
		workDir = filepath.Join(abs, workDir)
	}

	return &Paths{projectRoot: abs, workDir: workDir}, nil
}

// ProjectRoot returns the absolute project root.
func (p *Paths) ProjectRoot() string {
	return p.projectRoot
}

// WorkDir returns the absolute working directory for persisted state.
func (p *Paths) WorkDir() string {
	return p.workDir
}

// ManifestPath returns the manifest document location.
func (p *Paths) ManifestPath() string {
	return filepath.Join(p.workDir, ManifestFileName)
}

// BackupDir returns the snapshot directory location.
func (p *Paths) BackupDir() string {
	return filepath.Join(p.workDir, BackupDirName)
}

// InRoot joins rel under the project root; absolute paths pass through.
func (p *Paths) InRoot(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.projectRoot, rel)
}

// StateHome returns the XDG state directory for rulesmith, used for
// logs and other machine-local byproducts outside the project tree.
func StateHome() string {
	return filepath.Join(xdg.StateHome, "rulesmith")
}

// ExpandHome replaces a leading "~/" with the given home directory.
// The home directory is an explicit parameter so that sandboxed runs
// can redirect it; no ambient lookup happens here.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
