// Package config loads and validates the rulesmith configuration.
// Loading layers the embedded defaults under the project config file,
// TOML or YAML. Validation happens once here; downstream components
// receive an already-normalized Config and never re-inspect raw
// shapes.
package config

import (
	"fmt"

	"github.com/arthur-debert/rulesmith/pkg/agents"
	"github.com/arthur-debert/rulesmith/pkg/errors"
	"github.com/arthur-debert/rulesmith/pkg/types"
)

// MCPServer describes one MCP server entry rendered into each
// selected agent's MCP configuration file.
type MCPServer struct {
	Command string            `koanf:"command" json:"command,omitempty"`
	Args    []string          `koanf:"args" json:"args,omitempty"`
	Env     map[string]string `koanf:"env" json:"env,omitempty"`
	URL     string            `koanf:"url" json:"url,omitempty"`
}

// Config is the validated configuration object the distributor
// consumes.
type Config struct {
	// DefaultMode applies to rules without their own delivery mode.
	DefaultMode types.DeliveryMode

	// Gitignore toggles the managed .gitignore block globally.
	Gitignore bool

	// WorkDir is the state directory, relative to the project root
	// unless absolute.
	WorkDir string

	// DefaultTargets apply to rules that declare no targets.
	DefaultTargets []string

	// GlobalHooks are built-in hook names prepended to every rule's
	// own hooks.
	GlobalHooks []string

	// Rules in config-declared order. Directory-sync shortcuts are
	// normalized into trailing rules at load time.
	Rules []types.Rule

	// MCPServers render into each MCP-selected agent's config file.
	MCPServers map[string]MCPServer

	// MCPAgents selects which agents receive MCP output. Empty means
	// no MCP output.
	MCPAgents []string
}

// Validate checks the config against the agent catalog. Violations are
// usage errors: they abort the run before anything is written.
func (c *Config) Validate() error {
	if _, ok := types.ParseDeliveryMode(string(c.DefaultMode)); !ok {
		return errors.Newf(errors.ErrConfigValid,
			"unknown delivery mode %q", c.DefaultMode)
	}

	for _, agent := range c.DefaultTargets {
		if !agents.IsSupported(agent) {
			return errors.Newf(errors.ErrConfigValid,
				"default target names unknown agent %q", agent)
		}
	}
	for _, agent := range c.MCPAgents {
		if !agents.IsSupported(agent) {
			return errors.Newf(errors.ErrConfigValid,
				"mcp agents list names unknown agent %q", agent)
		}
	}

	for i := range c.Rules {
		if err := c.validateRule(&c.Rules[i], i); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateRule(rule *types.Rule, index int) error {
	identity := rule.Identity(index)

	effective := 0
	for _, s := range rule.Sources {
		if s != "" {
			effective++
		}
	}
	if effective == 0 {
		return errors.Newf(errors.ErrRuleInvalid,
			"rule %s has no sources", identity)
	}

	targets := rule.Targets
	if len(targets) == 0 {
		if len(c.DefaultTargets) == 0 {
			return errors.Newf(errors.ErrRuleInvalid,
				"rule %s has no targets and no default targets are configured", identity)
		}
		targets = make([]types.Target, 0, len(c.DefaultTargets))
		for _, agent := range c.DefaultTargets {
			targets = append(targets, types.NamedTarget(agent))
		}
		rule.Targets = targets
	}

	for _, target := range targets {
		if !agents.IsSupported(target.Agent) {
			return errors.Newf(errors.ErrAgentUnknown,
				"rule %s targets unknown agent %q", identity, target.Agent)
		}
		// No implicit naming scheme exists across N merged sources, so
		// merge rules must say where each target's output goes.
		if rule.IsMerge() && target.Kind != types.TargetOverride {
			return errors.Newf(errors.ErrMergeNoOverride,
				"rule %s merges %d sources: every target needs an explicit destination (agent %q has none)",
				identity, effective, target.Agent)
		}
	}
	return nil
}

// normalizeTarget converts a raw config target (bare agent string, or
// a map with agent and path keys) into the canonical Target shape.
func normalizeTarget(raw interface{}) (types.Target, error) {
	switch v := raw.(type) {
	case string:
		return types.NamedTarget(v), nil
	case map[string]interface{}:
		agent, _ := v["agent"].(string)
		path, _ := v["path"].(string)
		if agent == "" {
			return types.Target{}, errors.Newf(errors.ErrConfigParse,
				"target object missing agent: %v", v)
		}
		if path == "" {
			return types.NamedTarget(agent), nil
		}
		return types.OverrideTarget(agent, path), nil
	default:
		return types.Target{}, errors.Newf(errors.ErrConfigParse,
			"target must be an agent id or {agent, path} object, got %T", raw)
	}
}

// ruleIdentityForError names a raw rule during parsing.
func ruleIdentityForError(name string, index int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("rule#%d", index)
}
