package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulesmith/internal/version"
	"github.com/arthur-debert/rulesmith/pkg/logging"
)

var (
	verbosity   int
	projectRoot string

	rootCmd = &cobra.Command{
		Use:   "rulesmith",
		Short: "Distribute AI rule files to every agent convention",
		Long: `rulesmith lets you author AI rule files once and distributes them to the
locations and formats each agent tool expects, keeping previously generated
output reconciled as your configuration changes.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&projectRoot, "root", "", "Project root (default: $RULESMITH_ROOT or the current directory)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newPathsCmd())
	rootCmd.AddCommand(newGenConfigCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newRestoreCmd())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print version information for rulesmith`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rulesmith version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}
