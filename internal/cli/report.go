package cli

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/stylegrade/internal/logging"
	"github.com/yaklabco/stylegrade/pkg/collect"
	"github.com/yaklabco/stylegrade/pkg/config"
	"github.com/yaklabco/stylegrade/pkg/fsutil"
	"github.com/yaklabco/stylegrade/pkg/reporter"
	"github.com/yaklabco/stylegrade/pkg/runner"
)

type reportFlags struct {
	manifest     string
	separator    string
	jobs         int
	timeout      time.Duration
	output       string
	format       string
	exclude      []string
	noParseCheck bool
	anyLanguage  bool
	compact      bool
	backup       bool
}

func newReportCommand() *cobra.Command {
	flags := &reportFlags{}

	cmd := &cobra.Command{
		Use:   "report [DIR]",
		Short: "Grade a batch of submissions",
		Long:  reportLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runReport(cmd, dir, flags)
		},
	}

	addReportFlags(cmd, flags)

	return cmd
}

const reportLongDescription = `Grade every submission in a batch and print the per-student report.

Submissions are the .py files under DIR (default: the current directory); a
submitter's id is the file path relative to DIR without its extension. With
--manifest, submissions and their recorded checker output are read from a YAML
manifest instead and no checker is run.

Submissions that fail (unreadable, not Python, over the time budget) are
reported on stderr and left out of the report.

Examples:
  stylegrade report submissions/
  stylegrade report submissions/ --output grades.csv
  stylegrade report submissions/ --output grades.csv --backup
  stylegrade report --manifest batch.yaml --format summary
  stylegrade report submissions/ --separator ';' --jobs 4 --timeout 30s`

func addReportFlags(cmd *cobra.Command, flags *reportFlags) {
	cmd.Flags().StringVar(&flags.manifest, "manifest", "", "read submissions and recorded output from a YAML manifest")
	cmd.Flags().StringVar(&flags.separator, "separator", "", "field separator for csv output (default \",\")")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of submissions analyzed in parallel (0 = auto)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "time budget per submission (0 = none)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().StringVar(&flags.format, "format", "csv", "output format: csv, summary, json")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "glob patterns of files to skip")
	cmd.Flags().BoolVar(&flags.noParseCheck, "no-parse-check", false, "assume every submission parses")
	cmd.Flags().BoolVar(&flags.anyLanguage, "any-language", false, "skip the Python source check")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON output")
	cmd.Flags().BoolVar(&flags.backup, "backup", false, "keep the previous --output file as FILE"+fsutil.BackupSuffix)
}

func runReport(cmd *cobra.Command, dir string, flags *reportFlags) error {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	format, err := reporter.ParseFormat(flags.format)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidArgument, err)
	}
	if format != reporter.FormatCSV && format != reporter.FormatSummary && format != reporter.FormatJSON {
		return fmt.Errorf("%w: report supports csv, summary and json output, not %s", errInvalidArgument, format)
	}

	cfg, err := loadConfig(ctx, cmd, &config.Config{
		Separator:  flags.separator,
		Jobs:       flags.jobs,
		Timeout:    flags.timeout,
		ParseCheck: parseCheckOverride(flags.noParseCheck),
	}, logger)
	if err != nil {
		return err
	}

	runOpts := runner.Options{
		Paths:        []string{dir},
		Extensions:   runner.DefaultExtensions(),
		ExcludeGlobs: flags.exclude,
		Jobs:         cfg.Jobs,
		Timeout:      cfg.Timeout,
	}

	var collector runner.Collector
	if flags.manifest != "" {
		manifest, err := collect.LoadManifest(flags.manifest)
		if err != nil {
			return err
		}
		manifest.UseTools(cfg.Tools)
		collector = manifest
		runOpts.Targets = manifest.Targets()
		logger.Debug("loaded manifest",
			logging.FieldManifest, flags.manifest,
			logging.FieldSubmissions, len(runOpts.Targets),
		)
	} else {
		var execOpts []collect.ExecOption
		if flags.anyLanguage {
			execOpts = append(execOpts, collect.WithAnyLanguage())
		}
		collector = collect.NewExec(cfg, execOpts...)
	}

	batchRunner := runner.New(collector, newEngine(cfg, logger))

	logger.Debug("starting batch",
		logging.FieldInput, dir,
		logging.FieldJobs, runOpts.Jobs,
		logging.FieldTimeout, runOpts.Timeout,
	)

	result, err := batchRunner.Run(ctx, runOpts)
	if err != nil {
		return fmt.Errorf("batch run failed: %w", err)
	}

	logger.Debug("batch finished",
		logging.FieldProcessed, result.Stats.Processed,
		logging.FieldFailed, result.Stats.Failed,
		logging.FieldDiagnosticsTotal, result.Stats.DiagnosticsTotal,
	)

	// Buffer file output so a failed run never leaves a partial report.
	var out io.Writer = cmd.OutOrStdout()
	var buf bytes.Buffer
	color := colorMode(cmd)
	if flags.output != "" {
		out = &buf
		color = "never"
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      out,
		ErrorWriter: cmd.ErrOrStderr(),
		Format:      format,
		Color:       color,
		ShowSummary: true,
		Separator:   cfg.Separator,
		Compact:     flags.compact,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	if format != reporter.FormatSummary {
		for _, failed := range result.Failures() {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", failed.Target.ID, failed.Err)
		}
	}

	if flags.output != "" {
		if flags.backup {
			if _, err := fsutil.CreateBackup(ctx, flags.output); err != nil {
				return fmt.Errorf("back up report: %w", err)
			}
		}
		written, err := fsutil.WriteAtomicIfChanged(ctx, flags.output, buf.Bytes(), fsutil.DefaultFileMode)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		if !written {
			logger.Info("report unchanged", logging.FieldOutput, flags.output)
			return nil
		}
		logger.Info("report written",
			logging.FieldOutput, flags.output,
			logging.FieldSubmissions, result.Stats.Processed,
		)
	}

	return nil
}
