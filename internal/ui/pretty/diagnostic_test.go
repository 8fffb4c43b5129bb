package pretty_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/stylegrade/internal/ui/pretty"
	"github.com/yaklabco/stylegrade/pkg/diag"
)

func TestFormatDiagnostic_Basic(t *testing.T) {
	styles := pretty.NewStyles(false) // No colors for easier testing

	d := &diag.Diagnostic{
		Class:   "E",
		Code:    "501",
		Line:    10,
		Column:  3,
		Message: "line too long (82 > 79 characters)",
		Tools:   []string{"pycodestyle", "pylint"},
	}

	result := styles.FormatDiagnostic(d, false, "")

	assert.Equal(t, "  10:3  E501  line too long (82 > 79 characters)  (pycodestyle, pylint)\n", result)
}

func TestFormatDiagnostic_WithContext(t *testing.T) {
	styles := pretty.NewStyles(false)

	d := &diag.Diagnostic{Class: "E", Code: "225", Line: 2, Column: 2, Message: "missing whitespace", Tools: []string{"pycodestyle"}}

	result := styles.FormatDiagnostic(d, true, "x=1")

	lines := strings.Split(strings.TrimSuffix(result, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "        x=1", lines[1])
	assert.Equal(t, "         ^", lines[2])
}

func TestFormatDiagnostic_WholeFileHasNoContext(t *testing.T) {
	styles := pretty.NewStyles(false)

	d := diag.ParseFailure()
	result := styles.FormatDiagnostic(&d, true, "def broken(:")

	assert.NotContains(t, result, "def broken")
	assert.Contains(t, result, "SYN000")
	assert.Contains(t, result, "(parser)")
}

func TestFormatSourceContext_ZeroColumn(t *testing.T) {
	styles := pretty.NewStyles(false)

	result := styles.FormatSourceContext("\"\"\"Module.\"\"\"", 0)

	assert.Contains(t, result, "Module.")
	assert.NotContains(t, result, "^")
}

func TestFormatFileHeader_WithIssues(t *testing.T) {
	styles := pretty.NewStyles(false)

	assert.Equal(t, "alice.py (3 issues)", styles.FormatFileHeader("alice.py", 3))
}

func TestFormatFileHeader_NoIssues(t *testing.T) {
	styles := pretty.NewStyles(false)

	assert.Equal(t, "alice.py", styles.FormatFileHeader("alice.py", 0))
}

func TestSourceLine(t *testing.T) {
	source := "import os\r\nx=1\nprint(x)"

	assert.Equal(t, "import os", pretty.SourceLine(source, 1))
	assert.Equal(t, "x=1", pretty.SourceLine(source, 2))
	assert.Equal(t, "print(x)", pretty.SourceLine(source, 3))
	assert.Empty(t, pretty.SourceLine(source, 4))
	assert.Empty(t, pretty.SourceLine(source, 0))
	assert.Empty(t, pretty.SourceLine("", 1))
}
