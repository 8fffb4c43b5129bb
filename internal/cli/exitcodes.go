package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/stylegrade/internal/configloader"
	"github.com/yaklabco/stylegrade/pkg/collect"
	"github.com/yaklabco/stylegrade/pkg/diag"
	"github.com/yaklabco/stylegrade/pkg/runner"
)

// ErrIssuesFound is returned when a check finds failing diagnostics.
var ErrIssuesFound = errors.New("issues found")

// Exit codes for stylegrade.
const (
	// ExitSuccess indicates successful execution with no failing issues.
	ExitSuccess = 0

	// ExitIssuesFound indicates the check completed but found failing issues.
	ExitIssuesFound = 1

	// ExitInvalidUsage indicates invalid command-line usage or input.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration or manifest errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// failingClasses fail a check regardless of --strict.
//
//nolint:gochecknoglobals // Read-only lookup table.
var failingClasses = []string{"E", "F", diag.ClassSyntax}

// ExitCodeFromResult determines the exit code based on result and strict mode.
// Errors, fatal findings and parse failures always fail; with strict, any
// diagnostic does.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}

	for _, class := range failingClasses {
		if result.Stats.DiagnosticsByClass[class] > 0 {
			return ExitIssuesFound
		}
	}

	if strict && result.Stats.DiagnosticsTotal > 0 {
		return ExitIssuesFound
	}

	return ExitSuccess
}

// ExitCodeForError maps a command error to a process exit code.
func ExitCodeForError(err error) int {
	var validationErr *configloader.ValidationError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrIssuesFound):
		return ExitIssuesFound
	case errors.As(err, &validationErr), errors.Is(err, collect.ErrInvalidManifest):
		return ExitConfigError
	case errors.Is(err, collect.ErrNotPython), errors.Is(err, errInvalidArgument):
		return ExitInvalidUsage
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission),
		errors.Is(err, collect.ErrSubmissionModified):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
