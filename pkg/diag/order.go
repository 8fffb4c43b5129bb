package diag

import (
	"cmp"
	"slices"
)

// Compare orders diagnostics by line, then column.
func Compare(left, right Diagnostic) int {
	if c := cmp.Compare(left.Line, right.Line); c != 0 {
		return c
	}
	return cmp.Compare(left.Column, right.Column)
}

// Sort returns a copy of diagnostics stably sorted by (line, column).
// Diagnostics at the same position keep their arrival order, which keeps
// same-line entries contiguous for Merge.
func Sort(diagnostics []Diagnostic) []Diagnostic {
	out := make([]Diagnostic, len(diagnostics))
	for i := range diagnostics {
		out[i] = diagnostics[i].Clone()
	}
	slices.SortStableFunc(out, Compare)
	return out
}

// IsSorted reports whether diagnostics are non-decreasing in (line, column).
func IsSorted(diagnostics []Diagnostic) bool {
	return slices.IsSortedFunc(diagnostics, Compare)
}
