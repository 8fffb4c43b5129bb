package report

import (
	"strings"

	"github.com/yaklabco/stylegrade/pkg/diag"
)

const resultRule = "============="

// ResultText renders the downloadable result for one submission: the
// diagnostics, one per line, followed by the original source verbatim.
func ResultText(diagnostics []diag.Diagnostic, source string) string {
	lines := make([]string, 0, len(diagnostics))
	for i := range diagnostics {
		lines = append(lines, diagnostics[i].Text())
	}
	return ResultTextLines(lines, source)
}

// ResultTextLines renders the result export from already formatted lines.
func ResultTextLines(lines []string, source string) string {
	parts := make([]string, 0, len(lines)+7)
	parts = append(parts, "Check results", resultRule, "")
	parts = append(parts, lines...)
	parts = append(parts, "", "Code", resultRule, source)
	return strings.Join(parts, "\n")
}
