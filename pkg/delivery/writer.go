package delivery

import (
	"strings"

	"github.com/arthur-debert/rulesmith/pkg/agents"
	"github.com/arthur-debert/rulesmith/pkg/types"
	"gopkg.in/yaml.v3"
)

// Writer applies agent-specific framing to content before it is
// persisted. Most agents take the content as-is; the Cursor family
// expects an mdc metadata block.
type Writer interface {
	Frame(sc *types.SyncContext) (string, error)
}

// WriterFor returns the writer for an agent's format kind.
func WriterFor(format agents.FormatKind) Writer {
	switch format {
	case agents.FormatMDC:
		return &mdcWriter{}
	default:
		return &passWriter{}
	}
}

// passWriter leaves content untouched.
type passWriter struct{}

func (w *passWriter) Frame(sc *types.SyncContext) (string, error) {
	return sc.Content, nil
}

// mdcWriter prepends the metadata block Cursor expects in .mdc files.
// Content that already carries a frontmatter block keeps it; the rule
// authored its own metadata and framing must not overwrite it.
type mdcWriter struct{}

// mdcMeta is the generated metadata block.
type mdcMeta struct {
	Description string `yaml:"description"`
	Globs       string `yaml:"globs,omitempty"`
	AlwaysApply bool   `yaml:"alwaysApply"`
}

func (w *mdcWriter) Frame(sc *types.SyncContext) (string, error) {
	if strings.HasPrefix(sc.Content, "---\n") || strings.HasPrefix(sc.Content, "---\r\n") {
		return sc.Content, nil
	}

	meta := mdcMeta{AlwaysApply: true}
	if sc.Rule != nil {
		meta.Description = sc.Rule.LogicalName()
		if sc.Rule.Glob != "" {
			meta.Globs = sc.Rule.Glob
			meta.AlwaysApply = false
		}
	}

	encoded, err := yaml.Marshal(meta)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(encoded)
	b.WriteString("---\n")
	b.WriteString(sc.Content)
	return b.String(), nil
}
