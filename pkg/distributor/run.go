package distributor

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/arthur-debert/rulesmith/pkg/agents"
	"github.com/arthur-debert/rulesmith/pkg/config"
	"github.com/arthur-debert/rulesmith/pkg/content"
	"github.com/arthur-debert/rulesmith/pkg/delivery"
	"github.com/arthur-debert/rulesmith/pkg/dirsync"
	"github.com/arthur-debert/rulesmith/pkg/errors"
	"github.com/arthur-debert/rulesmith/pkg/gitignore"
	"github.com/arthur-debert/rulesmith/pkg/manifest"
	"github.com/arthur-debert/rulesmith/pkg/transform"
	"github.com/arthur-debert/rulesmith/pkg/types"
)

// Run executes the full distribution pass: every rule, MCP outputs,
// then reconciliation against the prior manifest. Usage errors abort
// before anything is written; later errors abort mid-run and leave the
// manifest unsaved, so the next run re-reconciles from the prior
// state.
func (d *Distributor) Run(ctx context.Context) (*Summary, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, d.fail(err)
	}

	summary := &Summary{}
	collectWarn := d.warnFn
	d.warnFn = func(msg string) {
		summary.Warnings = append(summary.Warnings, msg)
		if collectWarn != nil {
			collectWarn(msg)
		}
	}

	for i := range d.cfg.Rules {
		rule := &d.cfg.Rules[i]
		if err := d.runRule(ctx, rule, i); err != nil {
			return summary, d.fail(err)
		}
		summary.Rules++
	}

	mcp, err := d.renderMCP()
	if err != nil {
		return summary, d.fail(err)
	}
	summary.MCP = mcp

	store := manifest.NewStore(d.fs, d.paths.ManifestPath())
	prior := store.Load()
	current := &manifest.Manifest{
		Version:     manifest.SchemaVersion,
		Files:       d.files,
		Directories: d.dirs,
		Symlinks:    d.symlinks,
	}
	summary.Pruned = manifest.Reconcile(d.fs, prior, current)
	if err := store.Save(current); err != nil {
		return summary, d.fail(err)
	}

	if d.cfg.Gitignore {
		if err := gitignore.Rewrite(d.fs, d.paths.ProjectRoot(), d.GitignorePaths()); err != nil {
			return summary, d.fail(err)
		}
	}

	summary.Files = len(current.Files)
	summary.Symlinks = len(current.Symlinks)

	d.logger.Info().
		Int("rules", summary.Rules).
		Int("files", summary.Files).
		Int("symlinks", summary.Symlinks).
		Int("pruned", len(summary.Pruned.Files)).
		Msg("distribution complete")
	return summary, nil
}

// runRule distributes one rule to all of its targets.
func (d *Distributor) runRule(ctx context.Context, rule *types.Rule, index int) error {
	identity := rule.Identity(index)
	mode := delivery.ModeFor(rule, d.cfg.DefaultMode)

	pipeline := transform.New(append(append([]string(nil), d.cfg.GlobalHooks...), rule.Hooks...), d.transforms)

	// Merge rules cannot symlink: there is no single source file to
	// point at.
	if mode == types.ModeSymlink && rule.IsMerge() {
		d.warnOnce(identity, "merge-symlink",
			"rule "+identity+" merges multiple sources; falling back to copy")
		mode = types.ModeCopy
	}
	if mode == types.ModeSymlink && pipeline.Len() > 0 {
		d.warnOnce(identity, "symlink-transforms",
			"rule "+identity+" links to its source; hooks and transforms are skipped")
	}

	if dir, ok := d.directorySource(rule); ok {
		return d.runDirRule(ctx, rule, identity, dir, mode, pipeline)
	}
	return d.runFileRule(ctx, rule, identity, mode, pipeline)
}

// directorySource reports whether the rule's single source is a
// directory.
func (d *Distributor) directorySource(rule *types.Rule) (string, bool) {
	var src string
	n := 0
	for _, s := range rule.Sources {
		if s != "" {
			src = s
			n++
		}
	}
	if n != 1 {
		return "", false
	}
	abs := d.paths.InRoot(src)
	info, err := d.fs.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return abs, true
}

// runFileRule delivers single-source or merged content to each target.
func (d *Distributor) runFileRule(ctx context.Context, rule *types.Rule, identity string, mode types.DeliveryMode, pipeline *transform.Pipeline) error {
	var body string
	if mode == types.ModeCopy {
		loaded, err := content.Load(d.fs, d.absoluteSources(rule))
		if err != nil {
			return errors.Wrapf(err, errors.GetErrorCode(err),
				"rule %s", identity)
		}
		body = loaded
	}

	for _, target := range rule.Targets {
		dest, err := d.resolveFileDest(rule, target)
		if err != nil {
			return err
		}

		if mode == types.ModeSymlink {
			err := delivery.Symlink(d.fs, delivery.SymlinkRequest{
				ProjectRoot: d.paths.ProjectRoot(),
				Source:      d.firstSource(rule),
				Dest:        dest,
				Warn:        d.warn,
			})
			if err != nil {
				return errors.Wrapf(err, errors.GetErrorCode(err),
					"rule %s, agent %s", identity, target.Agent)
			}
			d.record(dest, recordSymlink, rule.NoGitignore)
			continue
		}

		sc := &types.SyncContext{
			Rule:        rule,
			Agent:       target.Agent,
			DestPath:    dest,
			ProjectRoot: d.paths.ProjectRoot(),
			Content:     body,
		}
		if err := pipeline.Apply(ctx, sc); err != nil {
			return d.failCtx(err, identity, target.Agent, dest)
		}

		entry, _ := agents.Lookup(target.Agent)
		if err := delivery.Copy(d.fs, sc, delivery.WriterFor(entry.Format)); err != nil {
			return d.failCtx(err, identity, target.Agent, dest)
		}
		d.record(dest, recordFile, rule.NoGitignore)
	}
	return nil
}

// runDirRule synchronizes a source directory to each target.
func (d *Distributor) runDirRule(ctx context.Context, rule *types.Rule, identity, sourceDir string, mode types.DeliveryMode, pipeline *transform.Pipeline) error {
	if mode == types.ModeSymlink {
		pipeline = nil
	}

	for _, target := range rule.Targets {
		destDir, err := d.resolveDirDest(rule, identity, target, sourceDir)
		if err != nil {
			return err
		}

		res, err := dirsync.Sync(ctx, d.fs, dirsync.Request{
			Rule:        rule,
			Agent:       target.Agent,
			SourceDir:   sourceDir,
			DestDir:     destDir,
			ProjectRoot: d.paths.ProjectRoot(),
			Mode:        mode,
			Glob:        rule.Glob,
			Pipeline:    pipeline,
			Warn:        d.warn,
		})
		if err != nil {
			return d.failCtx(err, identity, target.Agent, destDir)
		}

		for _, f := range res.Files {
			d.record(f, recordFile, rule.NoGitignore)
		}
		for _, l := range res.Symlinks {
			d.record(l, recordSymlink, rule.NoGitignore)
		}
		for _, dir := range res.Dirs {
			d.record(dir, recordDir, rule.NoGitignore)
		}
	}
	return nil
}

// resolveFileDest resolves one target's destination for a file rule.
func (d *Distributor) resolveFileDest(rule *types.Rule, target types.Target) (string, error) {
	base := d.paths.InRoot(rule.BaseDir)

	if target.Kind == types.TargetOverride {
		return anchor(base, target.Path), nil
	}

	rel, err := d.resolver.ResolvePath(target.Agent, rule.LogicalName())
	if err != nil {
		return "", err
	}
	return anchor(base, rel), nil
}

// resolveDirDest resolves one target's destination directory. Named
// targets map through the catalog by directory type: the rule's name
// when set, else the source directory's base name.
func (d *Distributor) resolveDirDest(rule *types.Rule, identity string, target types.Target, sourceDir string) (string, error) {
	base := d.paths.InRoot(rule.BaseDir)

	if target.Kind == types.TargetOverride {
		return anchor(base, target.Path), nil
	}

	dirType := rule.Name
	if dirType == "" {
		dirType = filepath.Base(sourceDir)
	}
	if !knownDirType(dirType) {
		return "", errors.Newf(errors.ErrDirTypeUnknown,
			"rule %s syncs directory type %q, which no agent defines; name the rule %s/%s/%s/%s or set an explicit target path",
			identity, dirType, agents.DirAgents, agents.DirCommands, agents.DirSkills, agents.DirRules)
	}

	rel, ok, err := d.resolver.ResolveDirectory(target.Agent, dirType)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.Newf(errors.ErrAgentUnsupported,
			"rule %s: agent %q has no %s directory; set an explicit target path",
			identity, target.Agent, dirType)
	}
	return anchor(base, rel), nil
}

// renderMCP writes the mcpServers document to each selected agent's
// MCP path. Outputs under the project root join the manifest like any
// generated file.
func (d *Distributor) renderMCP() ([]string, error) {
	if len(d.cfg.MCPServers) == 0 || len(d.cfg.MCPAgents) == 0 {
		return nil, nil
	}

	doc := struct {
		Servers map[string]config.MCPServer `json:"mcpServers"`
	}{Servers: d.cfg.MCPServers}

	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "encoding mcp servers")
	}
	data = append(data, '\n')

	var written []string
	for _, agent := range d.cfg.MCPAgents {
		rel, err := d.resolver.ResolveMCPPath(agent)
		if err != nil {
			return written, err
		}
		dest := anchor(d.paths.ProjectRoot(), rel)

		if err := d.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return written, errors.Wrapf(err, errors.ErrDirCreate,
				"creating directory for mcp output %q", dest)
		}
		if err := d.fs.WriteFile(dest, data, 0644); err != nil {
			return written, errors.Wrapf(err, errors.ErrFileWrite,
				"writing mcp output %q", dest)
		}

		d.record(dest, recordFile, false)
		written = append(written, dest)
		d.logger.Debug().Str("agent", agent).Str("path", dest).Msg("wrote mcp output")
	}
	return written, nil
}

// failCtx wraps an I/O error with the rule, agent and destination it
// occurred in.
func (d *Distributor) failCtx(err error, identity, agent, dest string) error {
	return errors.Wrapf(err, errors.GetErrorCode(err),
		"rule %s, agent %s, destination %s", identity, agent, dest).
		WithDetail("rule", identity).
		WithDetail("agent", agent).
		WithDetail("destination", dest)
}

// firstSource returns the rule's first effective source, absolute.
func (d *Distributor) firstSource(rule *types.Rule) string {
	for _, s := range rule.Sources {
		if s != "" {
			return d.paths.InRoot(s)
		}
	}
	return ""
}

// absoluteSources anchors every effective source under the project
// root.
func (d *Distributor) absoluteSources(rule *types.Rule) []string {
	out := make([]string, 0, len(rule.Sources))
	for _, s := range rule.Sources {
		if s == "" {
			continue
		}
		out = append(out, d.paths.InRoot(s))
	}
	return out
}

func knownDirType(t string) bool {
	switch t {
	case agents.DirAgents, agents.DirCommands, agents.DirSkills, agents.DirRules:
		return true
	default:
		return false
	}
}

// anchor joins rel under base; absolute paths pass through.
func anchor(base, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(base, rel)
}
