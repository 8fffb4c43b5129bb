package runner

import (
	"github.com/yaklabco/stylegrade/pkg/diag"
	"github.com/yaklabco/stylegrade/pkg/engine"
)

// Outcome is the processing result of one target.
type Outcome struct {
	// Target is the submission that was processed.
	Target Target

	// Result holds the engine result. It is the zero value when Err is set.
	Result engine.Result

	// Source is the submitted text, kept for the result export.
	Source string

	// Err is set if the submission could not be collected in time or at all.
	// Failed submissions are excluded from the batch report.
	Err error
}

// Failed reports whether the submission could not be processed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Stats captures aggregate information about a run.
type Stats struct {
	// Discovered is the number of targets scheduled.
	Discovered int

	// Processed is the number of submissions analyzed successfully.
	Processed int

	// Failed is the number of submissions that could not be processed.
	Failed int

	// Unparseable is the number of processed submissions that failed the parse check.
	Unparseable int

	// WithIssues is the number of processed submissions with at least one diagnostic.
	WithIssues int

	// DiagnosticsTotal is the total number of merged diagnostics.
	DiagnosticsTotal int

	// DiagnosticsByClass maps severity classes to counts.
	DiagnosticsByClass map[string]int

	// LinesSkipped is the number of raw tool lines dropped as malformed or ignored.
	LinesSkipped int

	// LinesIgnored is the part of LinesSkipped dropped by the ignore list.
	LinesIgnored int

	// ToolFailures is the number of analyzer crashes across all submissions.
	ToolFailures int
}

// Result is the overall runner result.
type Result struct {
	// Submissions contains the outcome for each target, in target order.
	Submissions []Outcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// Batch returns the merged diagnostics of every successfully processed
// submission, keyed by submitter id, ready for report.Build.
func (r *Result) Batch() map[string][]diag.Diagnostic {
	if r == nil {
		return map[string][]diag.Diagnostic{}
	}
	out := make(map[string][]diag.Diagnostic, len(r.Submissions))
	for _, sub := range r.Submissions {
		if sub.Failed() {
			continue
		}
		out[sub.Target.ID] = sub.Result.Diagnostics
	}
	return out
}

// Failures returns the outcomes of submissions that could not be processed.
func (r *Result) Failures() []Outcome {
	if r == nil {
		return nil
	}
	var out []Outcome
	for _, sub := range r.Submissions {
		if sub.Failed() {
			out = append(out, sub)
		}
	}
	return out
}

// HasIssues reports whether any diagnostics were found.
func (r *Result) HasIssues() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsTotal > 0
}

// newStats creates a new Stats with initialized maps.
func newStats() Stats {
	return Stats{
		DiagnosticsByClass: make(map[string]int),
	}
}

// accumulate updates the result with a submission outcome.
func (r *Result) accumulate(outcome Outcome) {
	r.Submissions = append(r.Submissions, outcome)

	if outcome.Failed() {
		r.Stats.Failed++
		return
	}

	r.Stats.Processed++
	r.Stats.LinesSkipped += len(outcome.Result.Skipped)
	r.Stats.LinesIgnored += outcome.Result.Ignored
	r.Stats.ToolFailures += len(outcome.Result.FailedTools)

	diagCount := len(outcome.Result.Diagnostics)
	r.Stats.DiagnosticsTotal += diagCount
	if diagCount > 0 {
		r.Stats.WithIssues++
	}

	for _, d := range outcome.Result.Diagnostics {
		if d.Class == diag.ClassSyntax {
			r.Stats.Unparseable++
		}
		r.Stats.DiagnosticsByClass[d.Class]++
	}
}
