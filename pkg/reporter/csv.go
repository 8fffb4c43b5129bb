package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/stylegrade/pkg/report"
	"github.com/yaklabco/stylegrade/pkg/runner"
)

// CSVReporter writes the batch report: one row per processed submitter and
// one column per diagnostic key. Failed submissions are left out.
type CSVReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewCSVReporter creates a new batch-report reporter.
func NewCSVReporter(opts Options) *CSVReporter {
	return &CSVReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter. The report text is followed by a single newline.
func (r *CSVReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	rep := report.Build(result.Batch())
	if _, err := fmt.Fprintln(r.bw, rep.Format(r.opts.Separator)); err != nil {
		return 0, fmt.Errorf("write report: %w", err)
	}

	return issueCount(result), nil
}
