// Package collect gathers what the aggregation engine consumes: the
// submission source, whether it parses, and each analyzer's raw output.
// Exec runs configured analyzer commands; Manifest replays recorded output.
package collect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/google/shlex"
)

// Sentinel errors.
var (
	// ErrToolNotFound is returned when an analyzer executable is not installed.
	ErrToolNotFound = errors.New("analyzer not found")

	// ErrNotPython is returned for submissions that are not Python source.
	ErrNotPython = errors.New("submission is not Python source")

	// ErrEmptyCommand is returned for a tool with no command configured.
	ErrEmptyCommand = errors.New("empty command")

	// ErrSubmissionModified is returned when a submission file changes while
	// its analyzers run.
	ErrSubmissionModified = errors.New("submission modified during analysis")
)

// FilePlaceholder is replaced with the submission path in tool commands.
const FilePlaceholder = "{file}"

// BuildArgv splits a configured command line with shell quoting rules and
// substitutes the submission path. If no argument contains the placeholder,
// the path is appended.
func BuildArgv(command, path string) ([]string, error) {
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("split command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}

	substituted := false
	for i, arg := range argv {
		if strings.Contains(arg, FilePlaceholder) {
			argv[i] = strings.ReplaceAll(arg, FilePlaceholder, path)
			substituted = true
		}
	}
	if !substituted {
		argv = append(argv, path)
	}
	return argv, nil
}

// CommandResult is what a finished process produced.
type CommandResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// CommandRunner runs argv to completion. A non-zero exit status is not an
// error; err is reserved for processes that could not start or were killed.
type CommandRunner func(ctx context.Context, argv []string) (CommandResult, error)

// RunCommand is the CommandRunner backed by os/exec.
func RunCommand(ctx context.Context, argv []string) (CommandResult, error) {
	if len(argv) == 0 {
		return CommandResult{}, ErrEmptyCommand
	}

	//nolint:gosec // Commands come from the user's own configuration.
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return result, fmt.Errorf("%w: %s", ErrToolNotFound, argv[0])
	default:
		return result, fmt.Errorf("run %s: %w", argv[0], err)
	}
}

// firstLine returns the first non-empty line of b, trimmed.
func firstLine(b []byte) string {
	for _, line := range strings.Split(string(b), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
