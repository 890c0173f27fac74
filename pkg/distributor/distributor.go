// Package distributor orchestrates a full distribution run: per rule,
// resolve targets, load and merge content, transform, deliver or
// directory-sync; then render MCP outputs; then reconcile against the
// prior manifest. The distributor owns the per-run warned-rule set and
// the generated-path bookkeeping that the gitignore rewriter and the
// backup snapshotter consume.
package distributor

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/rulesmith/pkg/agents"
	"github.com/arthur-debert/rulesmith/pkg/config"
	"github.com/arthur-debert/rulesmith/pkg/logging"
	"github.com/arthur-debert/rulesmith/pkg/manifest"
	"github.com/arthur-debert/rulesmith/pkg/paths"
	"github.com/arthur-debert/rulesmith/pkg/transform"
	"github.com/arthur-debert/rulesmith/pkg/types"
)

// ErrorHook observes errors before they propagate out of Run. Hooks
// must not panic; their own failures are not recoverable here.
type ErrorHook func(err error)

// Options configures a Distributor.
type Options struct {
	FS     types.FS
	Config *config.Config
	Paths  *paths.Paths

	// Resolver resolves agent catalog paths for this run's scope.
	Resolver *agents.Resolver

	// Transforms are global functions appended after every rule's
	// built-in hooks.
	Transforms []transform.Func

	// ErrorHooks are invoked, in order, on every error before it is
	// returned.
	ErrorHooks []ErrorHook

	// Warn receives user-facing advisory messages. May be nil; the
	// messages still reach the log.
	Warn func(msg string)
}

// Distributor runs one distribution pass. It is single-use: bookkeeping
// accumulates across Run and feeds GeneratedPaths afterwards.
type Distributor struct {
	fs       types.FS
	cfg      *config.Config
	paths    *paths.Paths
	resolver *agents.Resolver

	transforms []transform.Func
	errorHooks []ErrorHook
	warnFn     func(string)

	logger zerolog.Logger

	// warned dedupes advisory messages per rule identity and topic.
	warned map[string]struct{}

	// Absolute generated paths, accumulated as rules complete.
	files    []string
	symlinks []string
	dirs     []string

	// gitignoreExempt holds generated paths whose rule opted out of
	// the managed gitignore block.
	gitignoreExempt map[string]struct{}
}

// Summary reports what a run produced.
type Summary struct {
	Rules    int
	Files    int
	Symlinks int
	MCP      []string
	Warnings []string
	Pruned   *manifest.PruneReport
}

// New builds a Distributor.
func New(opts Options) *Distributor {
	return &Distributor{
		fs:              opts.FS,
		cfg:             opts.Config,
		paths:           opts.Paths,
		resolver:        opts.Resolver,
		transforms:      opts.Transforms,
		errorHooks:      opts.ErrorHooks,
		warnFn:          opts.Warn,
		logger:          logging.GetLogger("distributor"),
		warned:          make(map[string]struct{}),
		gitignoreExempt: make(map[string]struct{}),
	}
}

// GeneratedPaths returns every path the run generated, project-relative,
// de-duplicated and sorted, with directories carrying a trailing
// separator. Paths outside the project root (home-scoped MCP outputs)
// are omitted.
func (d *Distributor) GeneratedPaths() []string {
	return d.relativePaths(false)
}

// GitignorePaths is GeneratedPaths minus output from rules that opted
// out of the managed gitignore block.
func (d *Distributor) GitignorePaths() []string {
	return d.relativePaths(true)
}

func (d *Distributor) relativePaths(honorExempt bool) []string {
	root := d.paths.ProjectRoot()
	seen := make(map[string]struct{})
	var out []string

	add := func(abs, suffix string) {
		if honorExempt {
			if _, exempt := d.gitignoreExempt[abs]; exempt {
				return
			}
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			return
		}
		p := filepath.ToSlash(rel) + suffix
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, f := range d.files {
		add(f, "")
	}
	for _, l := range d.symlinks {
		add(l, "")
	}
	for _, dir := range d.dirs {
		add(dir, "/")
	}

	sort.Strings(out)
	return out
}

// warnOnce emits one advisory per rule identity and topic. Repeats for
// the same rule are dropped; distinct rules warn independently.
func (d *Distributor) warnOnce(identity, topic, msg string) {
	key := identity + "\x00" + topic
	if _, ok := d.warned[key]; ok {
		return
	}
	d.warned[key] = struct{}{}
	d.warn(msg)
}

func (d *Distributor) warn(msg string) {
	d.logger.Warn().Msg(msg)
	if d.warnFn != nil {
		d.warnFn(msg)
	}
}

// fail routes an error through the registered hooks before it
// propagates.
func (d *Distributor) fail(err error) error {
	for _, hook := range d.errorHooks {
		hook(err)
	}
	return err
}

// record books one generated artifact and its parent directory chain.
func (d *Distributor) record(abs string, kind recordKind, exemptGitignore bool) {
	switch kind {
	case recordFile:
		d.files = append(d.files, abs)
	case recordSymlink:
		d.symlinks = append(d.symlinks, abs)
	case recordDir:
		d.dirs = append(d.dirs, abs)
	}
	if exemptGitignore {
		d.gitignoreExempt[abs] = struct{}{}
	}
	d.recordParents(filepath.Dir(abs), exemptGitignore)
}

type recordKind int

const (
	recordFile recordKind = iota
	recordSymlink
	recordDir
)

// recordParents books every directory strictly between the project
// root and dir, inclusive of dir. Pruning only removes empty stale
// directories, so over-recording is safe.
func (d *Distributor) recordParents(dir string, exemptGitignore bool) {
	root := d.paths.ProjectRoot()
	for dir != root && strings.HasPrefix(dir, root+string(filepath.Separator)) {
		d.dirs = append(d.dirs, dir)
		if exemptGitignore {
			d.gitignoreExempt[dir] = struct{}{}
		}
		dir = filepath.Dir(dir)
	}
}
