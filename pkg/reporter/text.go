package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/stylegrade/internal/ui/pretty"
	"github.com/yaklabco/stylegrade/pkg/runner"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter. Diagnostics are grouped by submission.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Submissions) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No submissions to check."))
		}
		return 0, nil
	}

	for _, outcome := range result.Submissions {
		if outcome.Failed() {
			fmt.Fprintf(r.bw, "%s: %s\n",
				r.styles.FilePath.Render(displayName(outcome)),
				r.styles.Error.Render(fmt.Sprintf("error: %v", outcome.Err)),
			)
			continue
		}

		diagnostics := outcome.Result.Diagnostics
		if len(diagnostics) == 0 {
			continue
		}

		fmt.Fprintln(r.bw, r.styles.FormatFileHeader(displayName(outcome), len(diagnostics)))

		for i := range diagnostics {
			var sourceLine string
			if r.opts.ShowContext {
				sourceLine = pretty.SourceLine(outcome.Source, diagnostics[i].Line)
			}
			fmt.Fprint(r.bw, r.styles.FormatDiagnostic(&diagnostics[i], r.opts.ShowContext, sourceLine))
		}

		for _, tool := range outcome.Result.FailedTools {
			fmt.Fprintf(r.bw, "  %s\n", r.styles.Dim.Render("analyzer failed: "+tool))
		}

		// Blank line between submissions
		fmt.Fprintln(r.bw)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return issueCount(result), nil
}
