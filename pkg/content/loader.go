// Package content loads rule sources. A single source is returned
// unchanged; merge rules concatenate bodies with frontmatter stripped,
// since frontmatter is agent-specific metadata that does not survive a
// merge across sources.
package content

import (
	"strings"

	"github.com/arthur-debert/rulesmith/pkg/errors"
	"github.com/arthur-debert/rulesmith/pkg/types"
	"gopkg.in/yaml.v3"
)

// MergeSeparator joins merged source bodies.
const MergeSeparator = "\n---\n"

// Load reads the rule's sources. Empty path entries are skipped. With
// one effective source the content comes back verbatim, frontmatter
// included. With two or more, each source has exactly one leading
// frontmatter block stripped and the bodies are concatenated in input
// order. Any unreadable source fails the whole load.
func Load(fs types.FS, sources []string) (string, error) {
	effective := make([]string, 0, len(sources))
	for _, s := range sources {
		if s != "" {
			effective = append(effective, s)
		}
	}
	if len(effective) == 0 {
		return "", errors.New(errors.ErrRuleInvalid, "rule has no sources")
	}

	if len(effective) == 1 {
		data, err := fs.ReadFile(effective[0])
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrSourceRead,
				"reading source %q", effective[0])
		}
		return string(data), nil
	}

	bodies := make([]string, 0, len(effective))
	for _, src := range effective {
		data, err := fs.ReadFile(src)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrSourceRead,
				"reading merge source %q", src)
		}
		bodies = append(bodies, StripFrontmatter(string(data)))
	}
	return strings.Join(bodies, MergeSeparator), nil
}

// StripFrontmatter removes exactly one leading YAML frontmatter block:
// text starting with a "---" line and ending at the next "---" line.
// Content without a leading block, or without a closing delimiter,
// comes back unchanged.
func StripFrontmatter(content string) string {
	if !strings.HasPrefix(content, "---\n") && !strings.HasPrefix(content, "---\r\n") {
		return content
	}

	start := len("---")
	if content[start] == '\r' {
		start++
	}
	start++ // the newline

	closeIdx := strings.Index(content[start:], "\n---")
	if closeIdx == -1 {
		return content
	}

	bodyStart := start + closeIdx + 1 + len("---")
	for bodyStart < len(content) && (content[bodyStart] == '\n' || content[bodyStart] == '\r') {
		bodyStart++
	}
	if bodyStart >= len(content) {
		return ""
	}
	return content[bodyStart:]
}

// Frontmatter parses the leading YAML frontmatter block into a map.
// Returns nil when there is no block or it is not valid YAML.
func Frontmatter(content string) map[string]any {
	if !strings.HasPrefix(content, "---\n") && !strings.HasPrefix(content, "---\r\n") {
		return nil
	}

	start := len("---")
	if content[start] == '\r' {
		start++
	}
	start++

	closeIdx := strings.Index(content[start:], "\n---")
	if closeIdx == -1 {
		return nil
	}

	var meta map[string]any
	if err := yaml.Unmarshal([]byte(content[start:start+closeIdx]), &meta); err != nil {
		return nil
	}
	return meta
}
