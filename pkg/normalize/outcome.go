package normalize

import (
	"github.com/yaklabco/stylegrade/pkg/diag"
)

// Outcome is what one analyzer produced for one submission. A tool that ran
// and found nothing has an empty Output and a nil Err; a tool that crashed
// has a non-nil Err and its Output is not parsed.
type Outcome struct {
	// Tool is the analyzer identity used when the output names none.
	Tool string

	// Format is the shape of Output (or Records for structured tools).
	Format Format

	// Class is the severity class used for the synthetic failure diagnostic.
	// Empty means "D" for doc-style tools and "E" otherwise.
	Class string

	// Output is the raw text the tool printed.
	Output string

	// Records holds structured findings when the tool exposes them directly.
	Records []Record

	// ColumnOffset is added to the column of every parsed finding.
	ColumnOffset int

	// Err is set when the tool could not analyze the submission at all.
	Err error
}

// Failed reports whether the analyzer crashed.
func (o *Outcome) Failed() bool {
	return o.Err != nil
}

// FailureClass returns the class of the synthetic diagnostic for a crash.
func (o *Outcome) FailureClass() string {
	if o.Class != "" {
		return o.Class
	}
	if o.Format == FormatDoc {
		return diag.ClassDoc
	}
	return "E"
}

// Normalize converts an outcome into diagnostics. A crashed analyzer becomes
// exactly one synthetic diagnostic.
func (n *Normalizer) Normalize(o Outcome) Parsed {
	if o.Failed() {
		return Parsed{Diagnostics: []diag.Diagnostic{diag.AnalyzerFailure(o.FailureClass(), o.Tool, o.Err)}}
	}

	var out Parsed
	if len(o.Records) > 0 {
		out = n.ParseRecords(o.Records, o.Tool)
	}
	if o.Output != "" {
		more := n.Parse(o.Format, o.Output, o.Tool)
		out.Diagnostics = append(out.Diagnostics, more.Diagnostics...)
		out.Skipped = append(out.Skipped, more.Skipped...)
	}
	if o.ColumnOffset != 0 {
		for i := range out.Diagnostics {
			out.Diagnostics[i].Column += o.ColumnOffset
		}
	}
	return out
}
