package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/stylegrade/internal/logging"
	"github.com/yaklabco/stylegrade/pkg/collect"
	"github.com/yaklabco/stylegrade/pkg/config"
	"github.com/yaklabco/stylegrade/pkg/fsutil"
	"github.com/yaklabco/stylegrade/pkg/langdetect"
	"github.com/yaklabco/stylegrade/pkg/reporter"
	"github.com/yaklabco/stylegrade/pkg/runner"
)

type checkFlags struct {
	format       string
	toolOutputs  []string
	noParseCheck bool
	strict       bool
	noContext    bool
	compact      bool
	anyLanguage  bool
}

func newCheckCommand() *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Check a single submission",
		Long:  checkLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0], flags)
		},
	}

	addCheckFlags(cmd, flags)

	return cmd
}

const checkLongDescription = `Check one Python submission and print its merged diagnostics.

By default the configured checkers are run on FILE. With --tool-output,
recorded checker output is read from files instead; the output format of each
named tool is taken from the configuration (text when the tool is unknown).

The command fails when an error (E), fatal (F) or syntax (SYN) diagnostic is
found, or on any diagnostic with --strict.

Examples:
  stylegrade check hw1.py
  stylegrade check hw1.py --format result > hw1.txt
  stylegrade check hw1.py --tool-output pycodestyle=pep8.txt --tool-output pydocstyle=doc.txt
  stylegrade check hw1.py --format json --no-parse-check`

func addCheckFlags(cmd *cobra.Command, flags *checkFlags) {
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, result")
	cmd.Flags().StringArrayVar(&flags.toolOutputs, "tool-output", nil,
		"read a tool's recorded output instead of running it (NAME=PATH, repeatable)")
	cmd.Flags().BoolVar(&flags.noParseCheck, "no-parse-check", false, "assume the submission parses")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail on any diagnostic")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON output")
	cmd.Flags().BoolVar(&flags.anyLanguage, "any-language", false, "skip the Python source check")
}

func runCheck(cmd *cobra.Command, path string, flags *checkFlags) error {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	cliCfg := &config.Config{
		Strict:     flags.strict,
		ParseCheck: parseCheckOverride(flags.noParseCheck),
	}
	if cmd.Flags().Changed("format") {
		cliCfg.Format = config.OutputFormat(flags.format)
	}

	cfg, err := loadConfig(ctx, cmd, cliCfg, logger)
	if err != nil {
		return err
	}

	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidArgument, err)
	}
	if format != reporter.FormatText && format != reporter.FormatJSON && format != reporter.FormatResult {
		return fmt.Errorf("%w: check supports text, json and result output, not %s", errInvalidArgument, format)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return fmt.Errorf("check %s: %w", path, err)
	}

	target := runner.Target{
		ID:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path: absPath,
	}

	var execOpts []collect.ExecOption
	if flags.anyLanguage {
		execOpts = append(execOpts, collect.WithAnyLanguage())
	}
	exec := collect.NewExec(cfg, execOpts...)

	var collector runner.Collector = exec
	if len(flags.toolOutputs) > 0 {
		collector, err = recordedCollector(ctx, exec, cfg, target, flags.toolOutputs, flags.anyLanguage)
		if err != nil {
			return err
		}
	}

	checkRunner := runner.New(collector, newEngine(cfg, logger))

	logger.Debug("checking submission",
		logging.FieldSubmitter, target.ID,
		logging.FieldPath, target.Path,
		logging.FieldFormat, format,
	)

	result, err := checkRunner.Run(ctx, runner.Options{
		Targets: []runner.Target{target},
		Jobs:    1,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return fmt.Errorf("check run failed: %w", err)
	}
	if failures := result.Failures(); len(failures) > 0 {
		return failures[0].Err
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		ErrorWriter: cmd.ErrOrStderr(),
		Format:      format,
		Color:       colorMode(cmd),
		ShowContext: !flags.noContext,
		ShowSummary: true,
		Compact:     flags.compact,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return fmt.Errorf("report results: %w", err)
	}

	if ExitCodeFromResult(result, cfg.Strict) != ExitSuccess {
		return ErrIssuesFound
	}

	return nil
}

// recordedCollector replays tool output files for target. The parse check
// still runs on the submission itself.
func recordedCollector(
	ctx context.Context,
	exec *collect.Exec,
	cfg *config.Config,
	target runner.Target,
	specs []string,
	anyLanguage bool,
) (runner.Collector, error) {
	source, _, err := fsutil.ReadFile(ctx, target.Path)
	if err != nil {
		return nil, fmt.Errorf("read submission: %w", err)
	}
	if !anyLanguage && !langdetect.IsPython(target.Path, source) {
		return nil, fmt.Errorf("%w: %s", collect.ErrNotPython, target.Path)
	}

	parsed, err := exec.CheckParse(ctx, target.Path)
	if err != nil {
		return nil, err
	}

	tools := make([]collect.RecordedTool, 0, len(specs))
	for _, spec := range specs {
		name, file, ok := strings.Cut(spec, "=")
		if !ok || name == "" || file == "" {
			return nil, fmt.Errorf("%w: --tool-output %q: expected NAME=PATH", errInvalidArgument, spec)
		}
		absFile, err := filepath.Abs(file)
		if err != nil {
			return nil, fmt.Errorf("resolve path: %w", err)
		}
		tools = append(tools, collect.RecordedTool{Name: name, OutputFile: absFile})
	}

	manifest, err := collect.NewManifest("", collect.ManifestSubmission{
		ID:     target.ID,
		Source: target.Path,
		Parsed: &parsed,
		Tools:  tools,
	})
	if err != nil {
		return nil, err
	}
	manifest.UseTools(cfg.Tools)

	return manifest, nil
}
