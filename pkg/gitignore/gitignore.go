// Package gitignore maintains a fenced block in the project
// .gitignore listing every path the current configuration generates.
// It consumes the flat path list from the distributor and never
// touches user content outside the block.
package gitignore

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/rulesmith/pkg/errors"
	"github.com/arthur-debert/rulesmith/pkg/logging"
	"github.com/arthur-debert/rulesmith/pkg/types"
)

// Block markers. Everything between them belongs to rulesmith.
const (
	BeginMarker = "# rulesmith:begin"
	EndMarker   = "# rulesmith:end"
)

// Rewrite replaces the managed block in the .gitignore at the project
// root with the given generated paths (project-relative, directories
// carrying a trailing separator). An empty path list removes the
// block. A missing .gitignore is created only when there is something
// to write.
func Rewrite(fs types.FS, projectRoot string, generated []string) error {
	logger := logging.GetLogger("gitignore")
	path := filepath.Join(projectRoot, ".gitignore")

	var existing string
	if data, err := fs.ReadFile(path); err == nil {
		existing = string(data)
	}

	head, tail := splitAroundBlock(existing)

	var block string
	if len(generated) > 0 {
		var b strings.Builder
		b.WriteString(BeginMarker + "\n")
		for _, p := range generated {
			b.WriteString(p + "\n")
		}
		b.WriteString(EndMarker + "\n")
		block = b.String()
	}

	out := assemble(head, block, tail)
	if out == existing {
		return nil
	}
	if out == "" && existing == "" {
		return nil
	}

	if err := fs.WriteFile(path, []byte(out), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "rewriting %q", path)
	}

	logger.Debug().Int("paths", len(generated)).Str("path", path).
		Msg("rewrote managed gitignore block")
	return nil
}

// splitAroundBlock separates the content before and after the managed
// block. Without markers, everything is head.
func splitAroundBlock(content string) (head, tail string) {
	begin := strings.Index(content, BeginMarker)
	if begin == -1 {
		return content, ""
	}
	end := strings.Index(content[begin:], EndMarker)
	if end == -1 {
		// An unterminated block swallows the remainder; writing a
		// well-formed block repairs it.
		return content[:begin], ""
	}
	after := begin + end + len(EndMarker)
	if after < len(content) && content[after] == '\n' {
		after++
	}
	return content[:begin], content[after:]
}

// assemble joins the user content around the managed block, keeping
// exactly one blank line between sections.
func assemble(head, block, tail string) string {
	head = strings.TrimRight(head, "\n")
	tail = strings.Trim(tail, "\n")

	var parts []string
	if head != "" {
		parts = append(parts, head)
	}
	if block != "" {
		parts = append(parts, strings.TrimRight(block, "\n"))
	}
	if tail != "" {
		parts = append(parts, tail)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}
