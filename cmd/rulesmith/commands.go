package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulesmith/pkg/agents"
	"github.com/arthur-debert/rulesmith/pkg/backup"
	"github.com/arthur-debert/rulesmith/pkg/config"
	"github.com/arthur-debert/rulesmith/pkg/distributor"
	"github.com/arthur-debert/rulesmith/pkg/filesystem"
	"github.com/arthur-debert/rulesmith/pkg/manifest"
	"github.com/arthur-debert/rulesmith/pkg/paths"
	"github.com/arthur-debert/rulesmith/pkg/types"
)

// runEnv bundles what every command needs: the resolved locations, the
// loaded config and the OS filesystem.
type runEnv struct {
	fs    types.FS
	cfg   *config.Config
	paths *paths.Paths
}

func newRunEnv() (*runEnv, error) {
	p, err := paths.New(projectRoot, "")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(p.ProjectRoot())
	if err != nil {
		return nil, err
	}
	// The config may relocate the working directory.
	p, err = paths.New(p.ProjectRoot(), cfg.WorkDir)
	if err != nil {
		return nil, err
	}
	return &runEnv{fs: filesystem.NewOS(), cfg: cfg, paths: p}, nil
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Distribute rules to every configured agent",
		Long: `Loads the project configuration, distributes every rule to its targets,
renders MCP outputs, rewrites the managed .gitignore block and prunes
output the configuration no longer generates.`,
		Example: `  # Distribute everything declared in rulesmith.toml
  rulesmith sync

  # From elsewhere
  rulesmith sync --root ~/src/myproject`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newRunEnv()
			if err != nil {
				return err
			}

			home, _ := os.UserHomeDir()
			d := distributor.New(distributor.Options{
				FS:       env.fs,
				Config:   env.cfg,
				Paths:    env.paths,
				Resolver: agents.NewResolver(agents.ScopeHome, home),
				Warn:     printWarning,
			})

			summary, err := d.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(renderSummary(summary))
			return nil
		},
	}
}

func newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show resolved locations and the agent catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newRunEnv()
			if err != nil {
				return err
			}

			fmt.Println(renderHeading("locations"))
			fmt.Printf("  project root:  %s\n", env.paths.ProjectRoot())
			fmt.Printf("  working dir:   %s\n", env.paths.WorkDir())
			fmt.Printf("  manifest:      %s\n", env.paths.ManifestPath())
			fmt.Printf("  backups:       %s\n", env.paths.BackupDir())

			fmt.Println(renderHeading("agents"))
			for _, entry := range agents.All() {
				fmt.Printf("  %-10s %-32s mcp: %s\n", entry.ID, entry.PathTemplate, entry.MCPPath)
			}
			return nil
		},
	}
}

func newGenConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genconfig",
		Short: "Print a starter configuration",
		Long: `Generates a commented configuration showing every setting with its
default value, plus inert examples of the common rule shapes.`,
		Example: `  # Inspect the defaults
  rulesmith genconfig

  # Start a project config
  rulesmith genconfig --write`,
		RunE: func(cmd *cobra.Command, args []string) error {
			content := config.GenerateConfigContent()

			write, _ := cmd.Flags().GetBool("write")
			if !write {
				fmt.Print(content)
				return nil
			}

			p, err := paths.New(projectRoot, "")
			if err != nil {
				return err
			}
			target := filepath.Join(p.ProjectRoot(), "rulesmith.toml")
			if _, err := os.Stat(target); err == nil {
				return fmt.Errorf("%s already exists", target)
			}
			if err := os.WriteFile(target, []byte(content), 0644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", target)
			return nil
		},
	}
	cmd.Flags().BoolP("write", "w", false, "Write the config to rulesmith.toml instead of stdout")
	return cmd
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Snapshot everything the last sync generated",
		Long: `Reads the manifest from the last sync and writes a snapshot of every
generated path under the working directory. Restore with 'rulesmith restore'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newRunEnv()
			if err != nil {
				return err
			}

			store := manifest.NewStore(env.fs, env.paths.ManifestPath())
			generated := manifestPathsRelative(store.Load(), env.paths.ProjectRoot())
			if len(generated) == 0 {
				return fmt.Errorf("nothing to back up; run 'rulesmith sync' first")
			}

			path, err := backup.Take(env.fs, env.paths.ProjectRoot(), env.paths.BackupDir(), generated)
			if err != nil {
				return err
			}
			fmt.Printf("snapshot written to %s\n", path)
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore [snapshot]",
		Short: "Re-materialize a snapshot",
		Long: `Restores a snapshot taken with 'rulesmith backup'. Without an argument
the most recent snapshot is restored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newRunEnv()
			if err != nil {
				return err
			}

			var snapshot string
			if len(args) == 1 {
				snapshot = args[0]
			} else {
				snapshot, err = latestSnapshot(env)
				if err != nil {
					return err
				}
			}

			if err := backup.Restore(env.fs, snapshot); err != nil {
				return err
			}
			fmt.Printf("restored %s\n", snapshot)
			return nil
		},
	}
}

// latestSnapshot picks the newest snapshot file; names sort
// chronologically.
func latestSnapshot(env *runEnv) (string, error) {
	entries, err := env.fs.ReadDir(env.paths.BackupDir())
	if err != nil {
		return "", fmt.Errorf("no snapshots found; run 'rulesmith backup' first")
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no snapshots found; run 'rulesmith backup' first")
	}
	sort.Strings(names)
	return filepath.Join(env.paths.BackupDir(), names[len(names)-1]), nil
}

// manifestPathsRelative flattens a manifest into the project-relative
// path list the snapshotter consumes.
func manifestPathsRelative(m *manifest.Manifest, root string) []string {
	var out []string
	add := func(abs, suffix string) {
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			return
		}
		out = append(out, filepath.ToSlash(rel)+suffix)
	}
	for _, f := range m.Files {
		add(f, "")
	}
	for _, l := range m.Symlinks {
		add(l, "")
	}
	for _, d := range m.Directories {
		add(d, "/")
	}
	sort.Strings(out)
	return out
}
