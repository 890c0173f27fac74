package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ktoml "github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/rulesmith/pkg/errors"
	"github.com/arthur-debert/rulesmith/pkg/logging"
	"github.com/arthur-debert/rulesmith/pkg/types"
)

// configFileNames are tried in order at the project root; the first
// match wins.
var configFileNames = []string{
	".rulesmith.toml",
	"rulesmith.toml",
	".rulesmith.yaml",
	"rulesmith.yaml",
}

// rawRule mirrors the config file's rule shape before normalization.
type rawRule struct {
	Name      string        `koanf:"name"`
	Source    string        `koanf:"source"`
	Sources   []string      `koanf:"sources"`
	Base      string        `koanf:"base"`
	Targets   []interface{} `koanf:"targets"`
	Hooks     []string      `koanf:"hooks"`
	Glob      string        `koanf:"glob"`
	Gitignore *bool         `koanf:"gitignore"`
	Mode      string        `koanf:"mode"`
}

// rawConfig mirrors the config file's top-level shape.
type rawConfig struct {
	Settings struct {
		Mode      string   `koanf:"mode"`
		Gitignore bool     `koanf:"gitignore"`
		WorkDir   string   `koanf:"workdir"`
		Targets   []string `koanf:"targets"`
		Hooks     []string `koanf:"hooks"`
	} `koanf:"settings"`
	Rules []rawRule         `koanf:"rules"`
	Sync  map[string]string `koanf:"sync"`
	MCP   struct {
		Servers map[string]MCPServer `koanf:"servers"`
		Agents  []string             `koanf:"agents"`
	} `koanf:"mcp"`
}

// Load reads, normalizes and validates configuration for a project
// root: embedded defaults first, then the first project config file
// found.
func Load(projectRoot string) (*Config, error) {
	logger := logging.GetLogger("config")

	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, ktoml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "loading embedded defaults")
	}

	for _, filename := range configFileNames {
		path := filepath.Join(projectRoot, filename)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		parser := pickParser(filename)
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse,
				"parsing config file %q", path)
		}
		logger.Debug().Str("path", path).Msg("loaded project config")
		break
	}

	var raw rawConfig
	if err := k.Unmarshal("", &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "decoding configuration")
	}

	cfg, err := normalize(&raw)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func pickParser(filename string) koanf.Parser {
	if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return kyaml.Parser()
	}
	return ktoml.Parser()
}

// normalize converts the raw file shape into the canonical Config.
// Targets collapse into the tagged shape exactly once, here.
func normalize(raw *rawConfig) (*Config, error) {
	mode, ok := types.ParseDeliveryMode(raw.Settings.Mode)
	if !ok {
		return nil, errors.Newf(errors.ErrConfigValid,
			"unknown delivery mode %q", raw.Settings.Mode)
	}

	cfg := &Config{
		DefaultMode:    mode,
		Gitignore:      raw.Settings.Gitignore,
		WorkDir:        raw.Settings.WorkDir,
		DefaultTargets: raw.Settings.Targets,
		GlobalHooks:    raw.Settings.Hooks,
		MCPServers:     raw.MCP.Servers,
		MCPAgents:      raw.MCP.Agents,
	}

	for i, rr := range raw.Rules {
		rule, err := normalizeRule(&rr, i)
		if err != nil {
			return nil, err
		}
		cfg.Rules = append(cfg.Rules, rule)
	}

	// Directory-sync shortcuts become trailing directory rules keyed
	// by their type name, in sorted order for determinism.
	for _, key := range sortedKeys(raw.Sync) {
		cfg.Rules = append(cfg.Rules, types.Rule{
			Name:    key,
			Sources: []string{raw.Sync[key]},
		})
	}

	return cfg, nil
}

func normalizeRule(rr *rawRule, index int) (types.Rule, error) {
	rule := types.Rule{
		Name:    rr.Name,
		BaseDir: rr.Base,
		Hooks:   rr.Hooks,
		Glob:    rr.Glob,
	}

	if rr.Source != "" && len(rr.Sources) > 0 {
		return types.Rule{}, errors.Newf(errors.ErrConfigParse,
			"rule %s declares both source and sources", ruleIdentityForError(rr.Name, index))
	}
	if rr.Source != "" {
		rule.Sources = []string{rr.Source}
	} else {
		rule.Sources = rr.Sources
	}

	for _, rawTarget := range rr.Targets {
		target, err := normalizeTarget(rawTarget)
		if err != nil {
			return types.Rule{}, errors.Wrapf(err, errors.ErrConfigParse,
				"rule %s", ruleIdentityForError(rr.Name, index))
		}
		rule.Targets = append(rule.Targets, target)
	}

	if rr.Gitignore != nil && !*rr.Gitignore {
		rule.NoGitignore = true
	}

	ruleMode, ok := types.ParseDeliveryMode(rr.Mode)
	if !ok {
		return types.Rule{}, errors.Newf(errors.ErrConfigValid,
			"rule %s has unknown delivery mode %q", ruleIdentityForError(rr.Name, index), rr.Mode)
	}
	rule.Mode = ruleMode

	return rule, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
