package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/stylegrade/pkg/report"
	"github.com/yaklabco/stylegrade/pkg/runner"
)

// ResultReporter writes the downloadable result export of each processed
// submission: the diagnostic lines followed by the original source.
type ResultReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewResultReporter creates a new result-export reporter.
func NewResultReporter(opts Options) *ResultReporter {
	return &ResultReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter. Failed submissions are reported on ErrorWriter.
func (r *ResultReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		return 0, nil
	}

	first := true
	for _, outcome := range result.Submissions {
		if outcome.Failed() {
			if r.opts.ErrorWriter != nil {
				fmt.Fprintf(r.opts.ErrorWriter, "%s: error: %v\n", displayName(outcome), outcome.Err)
			}
			continue
		}
		if !first {
			fmt.Fprintln(r.bw)
		}
		first = false
		fmt.Fprintln(r.bw, report.ResultText(outcome.Result.Diagnostics, outcome.Source))
	}

	return issueCount(result), nil
}
