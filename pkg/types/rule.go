package types

import (
	"fmt"
	"path/filepath"
)

// DeliveryMode selects how a rule's content reaches its destination.
type DeliveryMode string

const (
	// ModeUnset means no explicit choice; the config default (or Copy) applies.
	ModeUnset DeliveryMode = ""

	// ModeCopy materializes transformed, agent-formatted content.
	ModeCopy DeliveryMode = "copy"

	// ModeSymlink links the destination to the original source file.
	ModeSymlink DeliveryMode = "symlink"
)

// ParseDeliveryMode converts a config string to a DeliveryMode.
func ParseDeliveryMode(s string) (DeliveryMode, bool) {
	switch s {
	case "":
		return ModeUnset, true
	case "copy":
		return ModeCopy, true
	case "symlink":
		return ModeSymlink, true
	default:
		return ModeUnset, false
	}
}

// Rule is a declared mapping from one or more source files to one or
// more agent destinations. Sources with two or more entries make a
// merge rule; a single source that is a directory makes a
// directory-sync rule.
type Rule struct {
	// Name is optional. Unnamed rules get a synthesized identity from
	// their position in the config.
	Name string

	// Sources is an ordered list of source paths, relative to the
	// project root. Empty entries are skipped during loading.
	Sources []string

	// BaseDir is the destination base for targets without an explicit
	// override. Defaults to the project root.
	BaseDir string

	// Targets lists the agents this rule is distributed to.
	Targets []Target

	// Hooks names built-in content hooks to run before global
	// transforms. Unknown names are silently skipped.
	Hooks []string

	// Glob optionally filters which relative paths a directory-sync
	// rule copies. Uses doublestar syntax.
	Glob string

	// NoGitignore opts this rule's output out of the managed
	// .gitignore block.
	NoGitignore bool

	// Mode overrides the config-level delivery mode default.
	Mode DeliveryMode
}

// IsMerge reports whether this rule concatenates multiple sources.
func (r *Rule) IsMerge() bool {
	n := 0
	for _, s := range r.Sources {
		if s != "" {
			n++
		}
	}
	return n > 1
}

// LogicalName returns the name used for path-template substitution:
// the rule name when set, else the first source's base name without
// extension.
func (r *Rule) LogicalName() string {
	if r.Name != "" {
		return r.Name
	}
	for _, s := range r.Sources {
		if s == "" {
			continue
		}
		base := filepath.Base(s)
		ext := filepath.Ext(base)
		return base[:len(base)-len(ext)]
	}
	return ""
}

// Identity returns a stable per-run identity for warning deduplication:
// the rule name, or a synthesized one for unnamed rules.
func (r *Rule) Identity(index int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("rule#%d", index)
}

// TargetKind discriminates the two normalized target shapes.
type TargetKind int

const (
	// TargetNamed resolves through the agent catalog's path template.
	TargetNamed TargetKind = iota

	// TargetOverride carries an explicit destination path.
	TargetOverride
)

// Target is an agent destination, normalized once at resolution time.
// Config may spell a target as a bare agent id or as an object with an
// explicit path; both collapse into this shape.
type Target struct {
	Kind  TargetKind
	Agent string

	// Path is the explicit destination override, relative to the
	// rule's BaseDir unless absolute. Only set for TargetOverride.
	Path string
}

// NamedTarget builds a catalog-resolved target.
func NamedTarget(agent string) Target {
	return Target{Kind: TargetNamed, Agent: agent}
}

// OverrideTarget builds a target with an explicit destination.
func OverrideTarget(agent, path string) Target {
	return Target{Kind: TargetOverride, Agent: agent, Path: path}
}
