package config

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/rulesmith/pkg/errors"
	"github.com/arthur-debert/rulesmith/pkg/types"
)

// defaultsDoc mirrors the embedded defaults file.
type defaultsDoc struct {
	Settings struct {
		Mode      string `toml:"mode"`
		Gitignore bool   `toml:"gitignore"`
		WorkDir   string `toml:"workdir"`
	} `toml:"settings"`
}

// Defaults returns a Config carrying only the embedded defaults,
// without touching the filesystem. Useful for callers that need the
// baseline without a project.
func Defaults() (*Config, error) {
	var doc defaultsDoc
	if err := toml.Unmarshal(defaultConfig, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "parsing embedded defaults")
	}

	mode, ok := types.ParseDeliveryMode(doc.Settings.Mode)
	if !ok {
		return nil, errors.Newf(errors.ErrConfigLoad,
			"embedded defaults carry unknown delivery mode %q", doc.Settings.Mode)
	}

	return &Config{
		DefaultMode: mode,
		Gitignore:   doc.Settings.Gitignore,
		WorkDir:     doc.Settings.WorkDir,
	}, nil
}
