// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Submission fields.
	FieldSubmitter = "submitter"
	FieldTool      = "tool"
	FieldFormat    = "format"
	FieldCommand   = "command"
	FieldParsed    = "parsed"
	FieldReason    = "reason"
	FieldDuration  = "duration"

	// Run configuration fields.
	FieldJobs      = "jobs"
	FieldTimeout   = "timeout"
	FieldSeparator = "separator"
	FieldManifest  = "manifest"

	// Statistics fields.
	FieldSubmissions      = "submissions"
	FieldProcessed        = "processed"
	FieldFailed           = "failed"
	FieldSkipped          = "skipped"
	FieldDiagnosticsTotal = "diagnostics_total"
	FieldColumns          = "columns"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
