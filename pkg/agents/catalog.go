// Package agents holds the static catalog of supported AI agent
// conventions: where each agent expects rule files, what framing it
// wants, which bulk content directories it supports and where its MCP
// configuration lives.
package agents

import (
	"sort"
	"strings"
)

// FormatKind selects the per-agent Writer framing applied in Copy mode.
type FormatKind int

const (
	// FormatPlain passes content through unchanged.
	FormatPlain FormatKind = iota

	// FormatMDC adds the metadata frontmatter block the Cursor family
	// expects in .mdc rule files.
	FormatMDC
)

// NamePlaceholder is substituted with the rule's logical name in path
// templates.
const NamePlaceholder = "{name}"

// Directory type keys recognized across agents.
const (
	DirAgents   = "agents"
	DirCommands = "commands"
	DirSkills   = "skills"
	DirRules    = "rules"
)

// Entry describes one agent convention. Entries are static and
// read-only.
type Entry struct {
	// ID is the agent identifier used in config targets.
	ID string

	// PathTemplate is the default rule file location, relative to the
	// project root, with a NamePlaceholder for the rule's logical name.
	PathTemplate string

	// Format is the Writer framing for Copy mode.
	Format FormatKind

	// RulesDir is the agent's shared rules directory, when it has one.
	// Doubles as the DirRules directory-type mapping.
	RulesDir string

	// Directories maps directory-type keys to destination directories
	// for bulk synchronization. A missing key means the agent does not
	// support that content category.
	Directories map[string]string

	// MCPPath is the default MCP configuration output path. Paths with
	// a leading "~/" are home-scoped and expand per resolver scope.
	MCPPath string
}

// catalog is the static agent table. IDs follow each tool's own
// naming; path conventions follow each tool's documentation.
var catalog = map[string]Entry{
	"claude": {
		ID:           "claude",
		PathTemplate: ".claude/memories/{name}.md",
		Format:       FormatPlain,
		RulesDir:     ".claude/memories",
		Directories: map[string]string{
			DirAgents:   ".claude/agents",
			DirCommands: ".claude/commands",
			DirSkills:   ".claude/skills",
		},
		MCPPath: ".mcp.json",
	},
	"cursor": {
		ID:           "cursor",
		PathTemplate: ".cursor/rules/{name}.mdc",
		Format:       FormatMDC,
		RulesDir:     ".cursor/rules",
		Directories: map[string]string{
			DirCommands: ".cursor/commands",
		},
		MCPPath: ".cursor/mcp.json",
	},
	"cline": {
		ID:           "cline",
		PathTemplate: ".clinerules/{name}.md",
		Format:       FormatPlain,
		RulesDir:     ".clinerules",
		MCPPath:      ".cline/mcp.json",
	},
	"windsurf": {
		ID:           "windsurf",
		PathTemplate: ".windsurf/rules/{name}.md",
		Format:       FormatPlain,
		RulesDir:     ".windsurf/rules",
		MCPPath:      "~/.codeium/windsurf/mcp_config.json",
	},
	"copilot": {
		ID:           "copilot",
		PathTemplate: ".github/instructions/{name}.instructions.md",
		Format:       FormatPlain,
		RulesDir:     ".github/instructions",
		MCPPath:      ".vscode/mcp.json",
	},
	"codex": {
		ID:           "codex",
		PathTemplate: ".codex/rules/{name}.md",
		Format:       FormatPlain,
		RulesDir:     ".codex/rules",
		MCPPath:      ".codex/mcp.json",
	},
	"gemini": {
		ID:           "gemini",
		PathTemplate: ".gemini/memories/{name}.md",
		Format:       FormatPlain,
		RulesDir:     ".gemini/memories",
		Directories: map[string]string{
			DirCommands: ".gemini/commands",
		},
		MCPPath: ".gemini/settings.json",
	},
	"roo": {
		ID:           "roo",
		PathTemplate: ".roo/rules/{name}.md",
		Format:       FormatPlain,
		RulesDir:     ".roo/rules",
		MCPPath:      ".roo/mcp.json",
	},
}

// Lookup returns the catalog entry for an agent id.
func Lookup(id string) (Entry, bool) {
	e, ok := catalog[strings.ToLower(id)]
	return e, ok
}

// IsSupported checks if an agent id is in the catalog.
func IsSupported(id string) bool {
	_, ok := Lookup(id)
	return ok
}

// All returns every catalog entry, sorted by id.
func All() []Entry {
	out := make([]Entry, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns every supported agent id, sorted.
func IDs() []string {
	out := make([]string, 0, len(catalog))
	for id := range catalog {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
