package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/stylegrade/pkg/diag"
)

// FormatDiagnostic formats a single merged diagnostic for terminal output:
//
//	  10:3  E501  line too long  (pycodestyle, pylint)
func (s *Styles) FormatDiagnostic(d *diag.Diagnostic, showContext bool, sourceLine string) string {
	var builder strings.Builder

	location := s.Location.Render(fmt.Sprintf("%d:%d", d.Line, d.Column))
	id := s.ClassStyle(d.Class).Render(d.ID())
	tools := s.Tools.Render("(" + d.ToolList() + ")")

	builder.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
		location,
		id,
		s.Message.Render(d.Message),
		tools,
	))

	if showContext && sourceLine != "" && d.Line > 0 {
		builder.WriteString(s.FormatSourceContext(sourceLine, d.Column))
	}

	return builder.String()
}

// FormatSourceContext formats the source line with a caret marker.
func (s *Styles) FormatSourceContext(line string, column int) string {
	var builder strings.Builder

	// Indent to align with diagnostic output
	const indent = "        "

	builder.WriteString(indent + s.SourceLine.Render(line) + "\n")

	if column > 0 {
		padding := indent + strings.Repeat(" ", column-1)
		builder.WriteString(padding + s.Caret.Render("^") + "\n")
	}

	return builder.String()
}

// FormatFileHeader formats a submission header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	if issueCount > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d issues)", issueCount))
	}
	return header
}

// SourceLine returns the 1-based line of source, or "" when out of range.
func SourceLine(source string, line int) string {
	if line <= 0 {
		return ""
	}
	for i := 1; ; i++ {
		idx := strings.IndexByte(source, '\n')
		if i == line {
			if idx < 0 {
				return strings.TrimSuffix(source, "\r")
			}
			return strings.TrimSuffix(source[:idx], "\r")
		}
		if idx < 0 {
			return ""
		}
		source = source[idx+1:]
	}
}
