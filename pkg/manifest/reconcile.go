package manifest

import (
	"sort"
	"strings"

	"github.com/arthur-debert/rulesmith/pkg/logging"
	"github.com/arthur-debert/rulesmith/pkg/types"
)

// PruneReport lists what reconciliation removed.
type PruneReport struct {
	Files       []string
	Directories []string
}

// Reconcile diffs the prior manifest against the current run's sets
// and prunes stale output. It must run only after the complete current
// run has been computed:
//
//   - files in the prior manifest but absent from the current set are
//     deleted; deletion failure is ignored (already gone, or
//     permission-protected).
//   - stale directories are removed only when empty. A directory
//     holding anything, even content this engine did not create, is
//     kept.
//   - symlinks are membership bookkeeping only; stale ones are removed
//     like files.
func Reconcile(fs types.FS, prior, current *Manifest) *PruneReport {
	logger := logging.GetLogger("manifest.reconcile")
	report := &PruneReport{}

	current.normalize()

	currentFiles := toSet(current.Files)
	for _, link := range current.Symlinks {
		currentFiles[link] = struct{}{}
	}
	currentDirs := toSet(current.Directories)

	for _, f := range append(append([]string(nil), prior.Files...), prior.Symlinks...) {
		if _, ok := currentFiles[f]; ok {
			continue
		}
		if _, err := fs.Lstat(f); err != nil {
			continue
		}
		if err := fs.Remove(f); err != nil {
			logger.Debug().Err(err).Str("path", f).Msg("could not prune stale file")
			continue
		}
		report.Files = append(report.Files, f)
		logger.Info().Str("path", f).Msg("pruned stale file")
	}

	// Deepest directories first, so emptied children free their
	// parents within the same pass.
	staleDirs := make([]string, 0, len(prior.Directories))
	for _, d := range prior.Directories {
		if _, ok := currentDirs[d]; !ok {
			staleDirs = append(staleDirs, d)
		}
	}
	sort.Slice(staleDirs, func(i, j int) bool {
		return strings.Count(staleDirs[i], "/") > strings.Count(staleDirs[j], "/")
	})

	for _, d := range staleDirs {
		entries, err := fs.ReadDir(d)
		if err != nil {
			continue
		}
		if len(entries) > 0 {
			logger.Debug().Str("path", d).Int("entries", len(entries)).
				Msg("stale directory not empty, keeping")
			continue
		}
		if err := fs.Remove(d); err != nil {
			logger.Debug().Err(err).Str("path", d).Msg("could not prune stale directory")
			continue
		}
		report.Directories = append(report.Directories, d)
		logger.Info().Str("path", d).Msg("pruned stale directory")
	}

	sort.Strings(report.Files)
	sort.Strings(report.Directories)
	return report
}

func toSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}
