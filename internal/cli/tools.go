package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/stylegrade/internal/logging"
	"github.com/yaklabco/stylegrade/pkg/config"
)

type toolsFlags struct {
	format string
}

const formatJSON = "json"

// toolInfo represents a configured analyzer in JSON output.
type toolInfo struct {
	Name    string `json:"name"`
	Command string `json:"command"`
	Format  string `json:"format"`
	Class   string `json:"class,omitempty"`
	Enabled bool   `json:"enabled"`
}

func newToolsCommand() *cobra.Command {
	flags := &toolsFlags{}

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List configured checkers",
		Long: `List the checkers stylegrade runs on each submission, after merging
defaults, config files, environment variables and flags, together with the
parse-check command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			cfg, err := loadConfig(ctx, cmd, nil, logging.FromContext(ctx))
			if err != nil {
				return err
			}

			if flags.format == formatJSON {
				return outputToolsJSON(cmd, cfg.Tools)
			}

			out := logging.NewInteractive()

			if len(cfg.Tools) == 0 {
				out.Info("no checkers configured")
				out.Info("run 'stylegrade init --full' to generate a config with the defaults")
				return nil
			}

			out.Info("configured checkers")
			for _, tool := range cfg.Tools {
				status := "enabled"
				if !tool.IsEnabled() {
					status = "disabled"
				}
				out.Info(tool.Name,
					logging.FieldFormat, formatOrDefault(tool.Format),
					"class", tool.Class,
					"status", status,
					logging.FieldCommand, tool.Command,
				)
			}

			if cfg.ParseCheck.IsEnabled() {
				out.Info("parse check", logging.FieldCommand, cfg.ParseCheck.Command)
			} else {
				out.Info("parse check disabled")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")

	return cmd
}

// formatOrDefault returns the tool output format, text when unset.
func formatOrDefault(format string) string {
	if format == "" {
		return config.ToolFormatText
	}
	return format
}

// outputToolsJSON writes the tools as a JSON array.
func outputToolsJSON(cmd *cobra.Command, tools []config.ToolConfig) error {
	infos := make([]toolInfo, 0, len(tools))
	for _, tool := range tools {
		infos = append(infos, toolInfo{
			Name:    tool.Name,
			Command: tool.Command,
			Format:  formatOrDefault(tool.Format),
			Class:   tool.Class,
			Enabled: tool.IsEnabled(),
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("encoding tools: %w", err)
	}
	return nil
}
