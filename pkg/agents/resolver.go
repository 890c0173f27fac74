package agents

import (
	"strings"

	"github.com/arthur-debert/rulesmith/pkg/errors"
	"github.com/arthur-debert/rulesmith/pkg/paths"
)

// Scope controls how home-scoped catalog paths expand. It is an
// explicit construction-time parameter: resolution never inspects
// ambient process state.
type Scope int

const (
	// ScopeHome expands "~/" paths against the resolver's home dir.
	ScopeHome Scope = iota

	// ScopeProject rewrites "~/" paths to project-relative locations,
	// for sandboxed and test runs.
	ScopeProject
)

// Resolver resolves catalog paths deterministically for one run.
// Project-relative paths are returned relative; home-scoped paths come
// back absolute under ScopeHome and relative (tilde stripped) under
// ScopeProject. Anchoring under the project root is the caller's job.
type Resolver struct {
	scope Scope
	home  string
}

// NewResolver builds a resolver. home is only consulted under
// ScopeHome.
func NewResolver(scope Scope, home string) *Resolver {
	return &Resolver{scope: scope, home: home}
}

// ResolvePath substitutes logicalName into the agent's path template.
func (r *Resolver) ResolvePath(agent, logicalName string) (string, error) {
	entry, ok := Lookup(agent)
	if !ok {
		return "", errors.Newf(errors.ErrAgentUnknown,
			"unknown agent %q (supported: %s)", agent, strings.Join(IDs(), ", "))
	}
	return r.expand(strings.ReplaceAll(entry.PathTemplate, NamePlaceholder, logicalName)), nil
}

// ResolveDirectory returns the agent's destination for a directory
// type, or ok=false when the agent does not support it. An unknown
// agent is an error, not a missing mapping.
func (r *Resolver) ResolveDirectory(agent, directoryType string) (string, bool, error) {
	entry, ok := Lookup(agent)
	if !ok {
		return "", false, errors.Newf(errors.ErrAgentUnknown,
			"unknown agent %q (supported: %s)", agent, strings.Join(IDs(), ", "))
	}
	if directoryType == DirRules && entry.RulesDir != "" {
		return r.expand(entry.RulesDir), true, nil
	}
	dir, ok := entry.Directories[directoryType]
	if !ok {
		return "", false, nil
	}
	return r.expand(dir), true, nil
}

// ResolveMCPPath returns the agent's MCP configuration output path.
func (r *Resolver) ResolveMCPPath(agent string) (string, error) {
	entry, ok := Lookup(agent)
	if !ok {
		return "", errors.Newf(errors.ErrAgentUnknown,
			"unknown agent %q (supported: %s)", agent, strings.Join(IDs(), ", "))
	}
	return r.expand(entry.MCPPath), nil
}

// expand resolves home-scoping. Under ScopeProject the tilde is
// stripped so the path lands inside the project tree.
func (r *Resolver) expand(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if r.scope == ScopeHome {
			return paths.ExpandHome(path, r.home)
		}
		return strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/")
	}
	return path
}
