// Package diag defines the canonical diagnostic record shared by every
// analyzer, together with the ordering and merge stages that turn a raw
// collection of findings into a per-submission result.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDiagnostic is returned when a diagnostic is missing a required field.
var ErrInvalidDiagnostic = errors.New("invalid diagnostic")

// Diagnostic represents a single finding reported for a submission.
type Diagnostic struct {
	// Class is the severity class (e.g. "E", "W", "C", "D").
	// Tools always report a single character; the parse guard uses "SYN".
	Class string

	// Code is the identifier within the class (e.g. "501").
	Code string

	// Line is the 1-based line number. 0 marks whole-file findings.
	Line int

	// Column is the 1-based column number. 0 marks whole-file findings.
	Column int

	// Message is the human-readable description of the finding.
	Message string

	// Tools lists the analyzers that reported this finding, in arrival order.
	// Duplicates are allowed.
	Tools []string
}

// MergeKey identifies "the same defect" across tools. Column is deliberately
// not part of it: tools that tokenize differently disagree on columns.
type MergeKey struct {
	Class string
	Code  string
	Line  int
}

// Identity is the full tuple used for equality.
type Identity struct {
	Class  string
	Code   string
	Line   int
	Column int
}

// New creates a diagnostic reported by a single tool and validates it.
func New(class, code string, line, column int, message, tool string) (Diagnostic, error) {
	switch {
	case class == "":
		return Diagnostic{}, fmt.Errorf("%w: empty severity class", ErrInvalidDiagnostic)
	case code == "":
		return Diagnostic{}, fmt.Errorf("%w: empty code", ErrInvalidDiagnostic)
	case line < 0:
		return Diagnostic{}, fmt.Errorf("%w: negative line %d", ErrInvalidDiagnostic, line)
	case column < 0:
		return Diagnostic{}, fmt.Errorf("%w: negative column %d", ErrInvalidDiagnostic, column)
	case tool == "":
		return Diagnostic{}, fmt.Errorf("%w: empty tool", ErrInvalidDiagnostic)
	}

	return Diagnostic{
		Class:   class,
		Code:    code,
		Line:    line,
		Column:  column,
		Message: message,
		Tools:   []string{tool},
	}, nil
}

// Key returns the merge key of the diagnostic.
func (d *Diagnostic) Key() MergeKey {
	return MergeKey{Class: d.Class, Code: d.Code, Line: d.Line}
}

// Identity returns the (class, code, line, column) tuple.
func (d *Diagnostic) Identity() Identity {
	return Identity{Class: d.Class, Code: d.Code, Line: d.Line, Column: d.Column}
}

// Equal reports whether two diagnostics have the same identity.
// Message and tool attribution do not participate.
func (d *Diagnostic) Equal(other *Diagnostic) bool {
	if other == nil {
		return false
	}
	return d.Identity() == other.Identity()
}

// ID returns the class and code concatenated, as tools print them (e.g. "E501").
func (d *Diagnostic) ID() string {
	return d.Class + d.Code
}

// ReportKey returns the aggregation key: the class lowercased followed by the code.
func (d *Diagnostic) ReportKey() string {
	return strings.ToLower(d.Class) + d.Code
}

// ToolList returns the reporting tools joined with ", ".
func (d *Diagnostic) ToolList() string {
	return strings.Join(d.Tools, ", ")
}

// Text renders the diagnostic as a single human-readable line.
func (d *Diagnostic) Text() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "line %d, col %d: %s", d.Line, d.Column, d.ID())
	if d.Message != "" {
		builder.WriteString(" " + d.Message)
	}
	if len(d.Tools) > 0 {
		builder.WriteString(" (" + d.ToolList() + ")")
	}
	return builder.String()
}

// Clone returns a deep copy of the diagnostic.
func (d *Diagnostic) Clone() Diagnostic {
	out := *d
	out.Tools = append([]string(nil), d.Tools...)
	return out
}
