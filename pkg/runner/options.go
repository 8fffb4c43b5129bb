// Package runner provides concurrent batch orchestration over submissions.
package runner

import "time"

// Target identifies one submission to collect and analyze.
type Target struct {
	// ID is the submitter identifier used as the report row key.
	ID string

	// Path is the submission's source file. It may be empty for
	// pre-recorded submissions without source.
	Path string
}

// Options controls discovery and batch processing.
type Options struct {
	// Targets, when non-nil, are processed as given and discovery is skipped.
	Targets []Target

	// Paths are the user-specified paths (files or directories) to discover.
	// If empty, defaults to the current working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions is the set of file extensions (lowercase, with leading dot)
	// considered submissions. Defaults to [".py"] via DefaultExtensions().
	Extensions []string

	// ExcludeGlobs are glob patterns used to skip files or directories.
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// Timeout bounds collecting and analyzing one submission.
	// 0 or negative means no limit.
	Timeout time.Duration
}

// DefaultExtensions returns the default set of submission file extensions.
func DefaultExtensions() []string {
	return []string{".py"}
}

// effectiveExtensions returns the extensions to use, defaulting if empty.
func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

// effectivePaths returns the paths to process, defaulting to "." if empty.
func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
