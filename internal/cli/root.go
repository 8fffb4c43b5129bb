// Package cli provides the Cobra command structure for stylegrade.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/stylegrade/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root stylegrade command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "stylegrade",
		Short: "Grade Python submissions with the output of several style checkers",
		Long: `stylegrade runs Python style and documentation checkers over student
submissions, merges what they report into one ordered list per submission,
and folds a whole batch into a per-student table of diagnostic counts.

Checkers can be run directly, or their recorded output can be replayed from
files or a manifest. A submission that does not parse gets a single syntax
diagnostic in front of whatever the checkers reported.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
			cmd.SetContext(logging.WithLogger(commandContext(cmd), logging.Default()))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newToolsCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
