package collect

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/stylegrade/internal/logging"
	"github.com/yaklabco/stylegrade/pkg/config"
	"github.com/yaklabco/stylegrade/pkg/engine"
	"github.com/yaklabco/stylegrade/pkg/fsutil"
	"github.com/yaklabco/stylegrade/pkg/langdetect"
	"github.com/yaklabco/stylegrade/pkg/normalize"
	"github.com/yaklabco/stylegrade/pkg/runner"
)

// Exec collects submissions by running the configured analyzers on the
// submission file. A submission's analyzers run in parallel.
type Exec struct {
	tools      []config.ToolConfig
	parseCheck config.ParseCheckConfig
	run        CommandRunner
	anyFile    bool
}

// ExecOption configures an Exec collector.
type ExecOption func(*Exec)

// WithCommandRunner replaces the process runner, mainly for tests.
func WithCommandRunner(run CommandRunner) ExecOption {
	return func(e *Exec) {
		e.run = run
	}
}

// WithoutParseCheck assumes every submission parses.
func WithoutParseCheck() ExecOption {
	return func(e *Exec) {
		e.parseCheck = config.ParseCheckConfig{}
	}
}

// WithAnyLanguage skips the check that submissions are Python source.
func WithAnyLanguage() ExecOption {
	return func(e *Exec) {
		e.anyFile = true
	}
}

// NewExec creates an Exec collector for the enabled tools of cfg.
func NewExec(cfg *config.Config, opts ...ExecOption) *Exec {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	e := &Exec{
		tools:      cfg.EnabledTools(),
		parseCheck: cfg.ParseCheck,
		run:        RunCommand,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Collect reads the submission, runs the parse check and every analyzer.
// Analyzer crashes are recorded in the outcomes; only problems with the
// submission itself or ctx cancellation return an error.
func (e *Exec) Collect(ctx context.Context, target runner.Target) (engine.Submission, error) {
	source, snapshot, err := fsutil.ReadFile(ctx, target.Path)
	if err != nil {
		return engine.Submission{}, fmt.Errorf("read submission: %w", err)
	}
	if !e.anyFile && !langdetect.IsPython(target.Path, source) {
		return engine.Submission{}, fmt.Errorf("%w: %s", ErrNotPython, target.Path)
	}

	parsed, err := e.CheckParse(ctx, target.Path)
	if err != nil {
		return engine.Submission{}, err
	}

	outcomes, err := e.RunTools(ctx, target.Path)
	if err != nil {
		return engine.Submission{}, err
	}

	// Analyzer positions refer to the file they saw, not to source.
	modified, err := fsutil.CheckModified(ctx, snapshot)
	if err != nil {
		return engine.Submission{}, err
	}
	if modified {
		return engine.Submission{}, fmt.Errorf("%w: %s", ErrSubmissionModified, target.Path)
	}

	return engine.Submission{
		ID:       target.ID,
		Path:     target.Path,
		Source:   string(source),
		Parsed:   parsed,
		Outcomes: outcomes,
	}, nil
}

// CheckParse runs the parse-check command on path. It reports false when the
// command exits non-zero and true when the check is disabled.
func (e *Exec) CheckParse(ctx context.Context, path string) (bool, error) {
	if !e.parseCheck.IsEnabled() {
		return true, nil
	}

	argv, err := BuildArgv(e.parseCheck.Command, path)
	if err != nil {
		return false, fmt.Errorf("parse check: %w", err)
	}

	res, err := e.run(ctx, argv)
	if err != nil {
		return false, fmt.Errorf("parse check: %w", err)
	}
	if res.ExitCode != 0 {
		debug(ctx, "submission does not parse",
			logging.FieldPath, path,
			logging.FieldReason, firstLine(res.Stderr))
		return false, nil
	}
	return true, nil
}

// RunTools runs every analyzer on path concurrently and returns one outcome
// per tool in configuration order.
func (e *Exec) RunTools(ctx context.Context, path string) ([]normalize.Outcome, error) {
	outcomes := make([]normalize.Outcome, len(e.tools))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, tool := range e.tools {
		group.Go(func() error {
			outcome := e.runTool(groupCtx, tool, path)
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}
			outcomes[i] = outcome
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("run analyzers: %w", err)
	}
	return outcomes, nil
}

// runTool runs one analyzer. A tool that exits non-zero with no output but
// with a diagnostic on stderr is treated as crashed.
func (e *Exec) runTool(ctx context.Context, tool config.ToolConfig, path string) normalize.Outcome {
	format, err := normalize.ParseFormat(tool.Format)
	outcome := normalize.Outcome{Tool: tool.Name, Format: format, Class: tool.Class, ColumnOffset: tool.Offset()}
	if err != nil {
		outcome.Err = err
		return outcome
	}

	argv, err := BuildArgv(tool.Command, path)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	res, err := e.run(ctx, argv)
	switch {
	case err != nil:
		outcome.Err = err
	case res.ExitCode != 0 && len(res.Stdout) == 0 && len(res.Stderr) > 0:
		outcome.Err = fmt.Errorf("exit status %d: %s", res.ExitCode, firstLine(res.Stderr))
	default:
		outcome.Output = string(res.Stdout)
	}

	if outcome.Err != nil && !errors.Is(outcome.Err, context.Canceled) {
		warn(ctx, "analyzer failed",
			logging.FieldTool, tool.Name,
			logging.FieldPath, path,
			logging.FieldError, outcome.Err)
	}
	return outcome
}

func debug(ctx context.Context, msg string, keyvals ...any) {
	if logger := logging.Attached(ctx); logger != nil {
		logger.Debug(msg, keyvals...)
	}
}

func warn(ctx context.Context, msg string, keyvals ...any) {
	if logger := logging.Attached(ctx); logger != nil {
		logger.Warn(msg, keyvals...)
	}
}
