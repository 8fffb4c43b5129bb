package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/stylegrade/internal/logging"
	"github.com/yaklabco/stylegrade/pkg/config"
	"github.com/yaklabco/stylegrade/pkg/fsutil"
)

// defaultConfigFile is the project config written by init.
const defaultConfigFile = ".stylegrade.yml"

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	full   bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new stylegrade configuration file",
		Long: `Create a new .stylegrade.yml configuration file in the current directory.
The minimal template only holds an ignore list; the full template lists the
default checkers, the parse check and the batch settings so they can be edited.

Examples:
  stylegrade init                      Create minimal .stylegrade.yml
  stylegrade init --full               Create full config with all checkers documented
  stylegrade init --output custom.yml  Write to a custom file path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "Generate full template with all checkers documented")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: .stylegrade.yml)")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewInteractive()

	outputPath := flags.output
	if outputPath == "" {
		outputPath = defaultConfigFile
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return fmt.Errorf("%w: file %q already exists; use --force to overwrite", errInvalidArgument, outputPath)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{Full: flags.full})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := fsutil.WriteAtomic(commandContext(cmd), absPath, content, fsutil.DefaultFileMode); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)

	if flags.full {
		logger.Info("full template lists the default checkers and batch settings")
	}

	logger.Info("customize your configuration by editing the file")
	logger.Info("run 'stylegrade tools' to see the resolved checkers")

	return nil
}
