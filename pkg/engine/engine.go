// Package engine runs the per-submission aggregation pipeline:
// parse-failure guard, normalization, ordering and merging.
package engine

import (
	"github.com/charmbracelet/log"

	"github.com/yaklabco/stylegrade/internal/logging"
	"github.com/yaklabco/stylegrade/pkg/diag"
	"github.com/yaklabco/stylegrade/pkg/normalize"
)

// Submission is everything the collaborators gathered for one submitter.
type Submission struct {
	// ID identifies the submitter.
	ID string

	// Path is the source file that was analyzed, if any.
	Path string

	// Source is the submitted text, kept for result export.
	Source string

	// Parsed is false when the source failed to parse or compile.
	// Analyzer outcomes are still processed in that case.
	Parsed bool

	// Outcomes holds one entry per analyzer that was run.
	Outcomes []normalize.Outcome
}

// Result is the ordered, merged diagnostic list for one submission.
type Result struct {
	// Submitter is the submission ID.
	Submitter string

	// Diagnostics are unique by (class, code, line) and ordered by (line, column).
	Diagnostics []diag.Diagnostic

	// Skipped lists raw input that could not be normalized or was ignored.
	Skipped []normalize.Skip

	// Ignored counts the entries of Skipped dropped by the ignore list.
	Ignored int

	// FailedTools names analyzers that crashed on this submission.
	FailedTools []string
}

// Engine processes submissions. The zero value uses an empty ignore list.
type Engine struct {
	normalizer *normalize.Normalizer
	logger     *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for skipped input and analyzer failures.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine that normalizes with the given normalizer.
func New(normalizer *normalize.Normalizer, opts ...Option) *Engine {
	if normalizer == nil {
		normalizer = normalize.New(nil)
	}
	e := &Engine{normalizer: normalizer}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process runs the pipeline for one submission. It never fails: malformed
// input is skipped and crashed analyzers become synthetic diagnostics.
func (e *Engine) Process(sub Submission) Result {
	normalizer := e.normalizer
	if normalizer == nil {
		normalizer = normalize.New(nil)
	}

	result := Result{Submitter: sub.ID}

	var collected []diag.Diagnostic
	if !sub.Parsed {
		// Analyzers still ran on the broken source; both signals are shown.
		collected = append(collected, diag.ParseFailure())
	}

	for _, outcome := range sub.Outcomes {
		if outcome.Failed() {
			result.FailedTools = append(result.FailedTools, outcome.Tool)
			e.debug("analyzer failed",
				logging.FieldSubmitter, sub.ID, logging.FieldTool, outcome.Tool, logging.FieldError, outcome.Err)
		}
		parsed := normalizer.Normalize(outcome)
		collected = append(collected, parsed.Diagnostics...)
		result.Skipped = append(result.Skipped, parsed.Skipped...)
		result.Ignored += parsed.Ignored()
	}

	for _, skip := range result.Skipped {
		e.debug("skipped raw diagnostic",
			logging.FieldSubmitter, sub.ID, logging.FieldTool, skip.Tool, logging.FieldReason, skip.Reason)
	}

	result.Diagnostics = diag.Merge(diag.Sort(collected))
	return result
}

func (e *Engine) debug(msg string, keyvals ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, keyvals...)
	}
}
