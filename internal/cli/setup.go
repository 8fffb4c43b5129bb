package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/stylegrade/internal/configloader"
	"github.com/yaklabco/stylegrade/internal/logging"
	"github.com/yaklabco/stylegrade/pkg/config"
	"github.com/yaklabco/stylegrade/pkg/engine"
	"github.com/yaklabco/stylegrade/pkg/normalize"
)

// errInvalidArgument marks malformed command-line arguments.
var errInvalidArgument = errors.New("invalid argument")

// commandContext returns the command's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadConfig resolves configuration layers with cliCfg on top.
func loadConfig(ctx context.Context, cmd *cobra.Command, cliCfg *config.Config, logger *log.Logger) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}

	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}

	cfg := loadResult.Config
	logger.Debug("configuration loaded",
		logging.FieldJobs, cfg.Jobs,
		logging.FieldTimeout, cfg.Timeout,
		logging.FieldSeparator, cfg.Separator,
		"ignore", cfg.Ignore,
		"tools", len(cfg.EnabledTools()),
	)

	return cfg, nil
}

// newEngine builds the processing engine for cfg's ignore list.
func newEngine(cfg *config.Config, logger *log.Logger) *engine.Engine {
	return engine.New(normalize.New(cfg.Ignore), engine.WithLogger(logger))
}

// colorMode returns the --color flag value, defaulting to auto.
func colorMode(cmd *cobra.Command) string {
	mode, err := cmd.Flags().GetString("color")
	if err != nil || mode == "" {
		return "auto"
	}
	return mode
}

// parseCheckOverride returns a config fragment that disables the parse check.
func parseCheckOverride(disable bool) config.ParseCheckConfig {
	if !disable {
		return config.ParseCheckConfig{}
	}
	enabled := false
	return config.ParseCheckConfig{Enabled: &enabled}
}
