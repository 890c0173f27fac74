// Package transform applies content transforms to rule content before
// delivery. A pipeline has two sequential stages: rule-declared
// built-in hooks, then global "after" functions. Stages never run
// concurrently for the same unit of content; each depends on the
// prior stage's output.
package transform

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/arthur-debert/rulesmith/pkg/logging"
	"github.com/arthur-debert/rulesmith/pkg/types"
)

// Func is a global transform. It receives the accumulated context and
// returns replacement content. An empty return leaves content
// unchanged, so funcs that only observe can return "".
type Func func(ctx context.Context, sc *types.SyncContext) (string, error)

// hookKind discriminates the closed set of built-in hooks. Keeping the
// set closed gives compile-time exhaustiveness in apply; the string
// names only exist at the config boundary.
type hookKind int

const (
	hookTimestamp hookKind = iota
	hookEnvVars
)

// hook is one resolved built-in stage.
type hook struct {
	kind hookKind
}

// resolveHook maps a config name to a built-in hook. Unknown names
// report ok=false; the caller treats them as silent no-ops for forward
// compatibility.
func resolveHook(name string) (hook, bool) {
	switch name {
	case "timestamp":
		return hook{kind: hookTimestamp}, true
	case "env":
		return hook{kind: hookEnvVars}, true
	default:
		return hook{}, false
	}
}

// Pipeline is an ordered, strictly sequential transform chain.
type Pipeline struct {
	hooks []hook
	after []Func

	// now is swappable for tests.
	now func() time.Time
}

// New builds a pipeline from rule-declared hook names and global after
// funcs. Unrecognized hook names are dropped here, once, with a debug
// log; they never error.
func New(hookNames []string, after []Func) *Pipeline {
	logger := logging.GetLogger("transform")

	hooks := make([]hook, 0, len(hookNames))
	for _, name := range hookNames {
		h, ok := resolveHook(name)
		if !ok {
			logger.Debug().Str("hook", name).Msg("unknown hook name, skipping")
			continue
		}
		hooks = append(hooks, h)
	}

	return &Pipeline{hooks: hooks, after: after, now: time.Now}
}

// Len reports the number of active stages.
func (p *Pipeline) Len() int {
	return len(p.hooks) + len(p.after)
}

// Apply runs every stage in order against sc.Content, reassigning the
// content buffer after each stage.
func (p *Pipeline) Apply(ctx context.Context, sc *types.SyncContext) error {
	for _, h := range p.hooks {
		if err := ctx.Err(); err != nil {
			return err
		}
		sc.Content = p.applyHook(h, sc.Content)
	}

	for _, fn := range p.after {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := fn(ctx, sc)
		if err != nil {
			return err
		}
		if out != "" {
			sc.Content = out
		}
	}

	return nil
}

// applyHook runs one built-in hook. The switch is exhaustive over
// hookKind.
func (p *Pipeline) applyHook(h hook, content string) string {
	switch h.kind {
	case hookTimestamp:
		return strings.ReplaceAll(content, "{{timestamp}}",
			p.now().UTC().Format(time.RFC3339))
	case hookEnvVars:
		return os.Expand(content, func(key string) string {
			return os.Getenv(key)
		})
	}
	return content
}
