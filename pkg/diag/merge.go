package diag

// Merge collapses diagnostics that several tools raised for the same defect.
//
// The input must already be ordered by Sort. For each diagnostic the tail of
// the output is scanned backward while entries share its line; an entry with
// the same class and code absorbs the newcomer's tools and the newcomer is
// dropped. Otherwise the diagnostic is appended. The input is not modified.
func Merge(diagnostics []Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(diagnostics))

	for i := range diagnostics {
		incoming := &diagnostics[i]
		if idx := findSameLine(out, incoming); idx >= 0 {
			out[idx].Tools = append(out[idx].Tools, incoming.Tools...)
			continue
		}
		out = append(out, incoming.Clone())
	}

	return out
}

// findSameLine returns the index of the entry in out that shares the
// incoming diagnostic's line, class and code, or -1.
func findSameLine(out []Diagnostic, incoming *Diagnostic) int {
	for i := len(out) - 1; i >= 0; i-- {
		if out[i].Line != incoming.Line {
			break
		}
		if out[i].Class == incoming.Class && out[i].Code == incoming.Code {
			return i
		}
	}
	return -1
}

// Collapse sorts and then merges, producing a per-submission result.
func Collapse(diagnostics []Diagnostic) []Diagnostic {
	return Merge(Sort(diagnostics))
}
