package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/stylegrade/pkg/report"
	"github.com/yaklabco/stylegrade/pkg/runner"
)

// jsonSchemaVersion is bumped on incompatible output changes.
const jsonSchemaVersion = "1.0.0"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version     string           `json:"version"`
	Submissions []JSONSubmission `json:"submissions"`
	Report      *report.Report   `json:"report"`
	Summary     JSONSummary      `json:"summary"`
}

// JSONSubmission represents a single submission's results.
type JSONSubmission struct {
	ID           string           `json:"id"`
	Path         string           `json:"path,omitempty"`
	Diagnostics  []JSONDiagnostic `json:"diagnostics"`
	Counts       map[string]int   `json:"counts,omitempty"`
	FailedTools  []string         `json:"failedTools,omitempty"`
	SkippedLines int              `json:"skippedLines,omitempty"`
	IgnoredLines int              `json:"ignoredLines,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// JSONDiagnostic represents a single merged diagnostic.
type JSONDiagnostic struct {
	ID        string   `json:"id"`
	Class     string   `json:"class"`
	Code      string   `json:"code"`
	Line      int      `json:"line"`
	Column    int      `json:"column"`
	Message   string   `json:"message"`
	Tools     []string `json:"tools"`
	Synthetic bool     `json:"synthetic,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	Submissions       int            `json:"submissions"`
	Processed         int            `json:"processed"`
	Failed            int            `json:"failed"`
	Unparseable       int            `json:"unparseable"`
	WithIssues        int            `json:"withIssues"`
	TotalIssues       int            `json:"totalIssues"`
	ByClass           map[string]int `json:"byClass"`
	AnalyzerFailures  int            `json:"analyzerFailures"`
	SkippedLinesTotal int            `json:"skippedLines"`
	IgnoredLinesTotal int            `json:"ignoredLines"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := buildJSONOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.TotalIssues, nil
}

func buildJSONOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version:     jsonSchemaVersion,
		Submissions: make([]JSONSubmission, 0),
		Report:      report.Build(result.Batch()),
		Summary: JSONSummary{
			ByClass: make(map[string]int),
		},
	}

	if result == nil {
		return output
	}

	output.Submissions = make([]JSONSubmission, 0, len(result.Submissions))
	for _, outcome := range result.Submissions {
		sub := JSONSubmission{
			ID:           outcome.Target.ID,
			Path:         outcome.Target.Path,
			Diagnostics:  make([]JSONDiagnostic, 0, len(outcome.Result.Diagnostics)),
			FailedTools:  outcome.Result.FailedTools,
			SkippedLines: len(outcome.Result.Skipped),
			IgnoredLines: outcome.Result.Ignored,
			Counts:       codeCounts(output.Report, outcome.Target.ID),
		}
		if outcome.Err != nil {
			sub.Error = outcome.Err.Error()
		}
		for i := range outcome.Result.Diagnostics {
			d := &outcome.Result.Diagnostics[i]
			sub.Diagnostics = append(sub.Diagnostics, JSONDiagnostic{
				ID:        d.ID(),
				Class:     d.Class,
				Code:      d.Code,
				Line:      d.Line,
				Column:    d.Column,
				Message:   d.Message,
				Tools:     d.Tools,
				Synthetic: d.IsSynthetic(),
			})
		}
		output.Submissions = append(output.Submissions, sub)
	}

	stats := result.Stats
	output.Summary.Submissions = stats.Discovered
	output.Summary.Processed = stats.Processed
	output.Summary.Failed = stats.Failed
	output.Summary.Unparseable = stats.Unparseable
	output.Summary.WithIssues = stats.WithIssues
	output.Summary.TotalIssues = stats.DiagnosticsTotal
	output.Summary.AnalyzerFailures = stats.ToolFailures
	output.Summary.SkippedLinesTotal = stats.LinesSkipped
	output.Summary.IgnoredLinesTotal = stats.LinesIgnored
	for class, n := range stats.DiagnosticsByClass {
		output.Summary.ByClass[class] = n
	}

	return output
}

// codeCounts returns the non-zero report columns of a submitter's row.
// Failed submissions have no row.
func codeCounts(rep *report.Report, id string) map[string]int {
	row, ok := rep.Row(id)
	if !ok {
		return nil
	}
	counts := make(map[string]int)
	for i, n := range row.Counts {
		if n > 0 {
			counts[rep.Columns[i]] = n
		}
	}
	return counts
}
