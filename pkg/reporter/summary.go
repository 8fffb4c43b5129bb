package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/stylegrade/internal/ui/pretty"
	"github.com/yaklabco/stylegrade/pkg/report"
	"github.com/yaklabco/stylegrade/pkg/runner"
)

// SummaryReporter renders the batch report as a terminal table followed by
// the run statistics.
type SummaryReporter struct {
	opts   Options
	styles *pretty.Styles
	table  *pretty.TableFormatter
	bw     *bufio.Writer
}

// NewSummaryReporter creates a new summary reporter.
func NewSummaryReporter(opts Options) *SummaryReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	styles := pretty.NewStyles(colorEnabled)

	width := opts.TermWidth
	if width <= 0 {
		width = pretty.TerminalWidth(opts.Writer)
	}

	return &SummaryReporter{
		opts:   opts,
		styles: styles,
		table:  pretty.NewTableFormatter(styles, colorEnabled, width),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *SummaryReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	rep := report.Build(result.Batch())
	if len(rep.Rows) == 0 {
		fmt.Fprintln(r.bw, r.styles.Success.Render("No submissions processed"))
	} else {
		fmt.Fprint(r.bw, r.table.FormatReport(rep))
	}

	if result != nil {
		for _, failed := range result.Failures() {
			fmt.Fprintf(r.bw, "%s: %s\n",
				r.styles.FilePath.Render(displayName(failed)),
				r.styles.Failure.Render(fmt.Sprintf("error: %v", failed.Err)))
		}
		if r.opts.ShowSummary {
			fmt.Fprint(r.bw, r.styles.FormatSummary(result.Stats))
		}
	}

	return issueCount(result), nil
}
