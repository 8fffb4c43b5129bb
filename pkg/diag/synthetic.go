package diag

import "fmt"

// Synthetic diagnostic constants.
const (
	// ClassSyntax marks a submission that could not be parsed.
	ClassSyntax = "SYN"

	// ClassDoc is the class of doc-style analyzers.
	ClassDoc = "D"

	// CodeSynthetic is the code shared by all engine-generated diagnostics.
	CodeSynthetic = "000"

	// ParserTool is the tool attributed to the parse-failure diagnostic.
	ParserTool = "parser"

	// ParseFailureMessage is shown when the submission does not parse.
	ParseFailureMessage = "cannot parse file — fix syntax errors and retry"
)

// ParseFailure returns the whole-file diagnostic injected when a submission
// failed to parse.
func ParseFailure() Diagnostic {
	return Diagnostic{
		Class:   ClassSyntax,
		Code:    CodeSynthetic,
		Message: ParseFailureMessage,
		Tools:   []string{ParserTool},
	}
}

// AnalyzerFailure returns the whole-file diagnostic that stands in for every
// finding of an analyzer that crashed on this submission.
func AnalyzerFailure(class, tool string, cause error) Diagnostic {
	if class == "" {
		class = "E"
	}
	msg := tool + " could not analyze this file"
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return Diagnostic{
		Class:   class,
		Code:    CodeSynthetic,
		Message: msg,
		Tools:   []string{tool},
	}
}

// IsSynthetic reports whether the diagnostic was generated by the engine
// rather than reported by an analyzer.
func (d *Diagnostic) IsSynthetic() bool {
	return d.Code == CodeSynthetic && d.Line == 0 && d.Column == 0
}
