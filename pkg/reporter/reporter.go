// Package reporter renders runner results in the supported output formats.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/stylegrade/pkg/runner"
)

// Reporter formats and writes run results.
type Reporter interface {
	// Report writes formatted output for the given result.
	// It returns the number of issues reported and any write errors.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	defaults := DefaultOptions()
	if opts.Writer == nil {
		opts.Writer = defaults.Writer
	}
	if opts.ErrorWriter == nil {
		opts.ErrorWriter = defaults.ErrorWriter
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}
	if !format.IsValid() {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	switch format {
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatResult:
		return NewResultReporter(opts), nil
	case FormatCSV:
		return NewCSVReporter(opts), nil
	case FormatSummary:
		return NewSummaryReporter(opts), nil
	case FormatText:
		return NewTextReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// displayName returns the path of a submission when known, otherwise its ID.
func displayName(outcome runner.Outcome) string {
	if outcome.Target.Path != "" {
		return outcome.Target.Path
	}
	return outcome.Target.ID
}

// issueCount returns the number of merged diagnostics in result.
func issueCount(result *runner.Result) int {
	if result == nil {
		return 0
	}
	return result.Stats.DiagnosticsTotal
}
