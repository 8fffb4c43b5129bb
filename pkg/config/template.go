package config

import (
	"bytes"
	"fmt"
	"strings"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every default tool with documentation.
	// If false, generates a minimal template.
	Full bool
}

// toolDescriptions documents the default tools in full templates.
//
//nolint:gochecknoglobals // Read-only lookup table.
var toolDescriptions = map[string]string{
	"pycodestyle": "PEP 8 layout checks: indentation, whitespace, line length and blank lines. Reports one finding per line as file:line:column: code message.",
	"pydocstyle":  "PEP 257 docstring checks. Reports each finding on two lines: a position header followed by an indented code and message.",
	"pylint":      "General static analysis: naming, unused names, refactoring hints and likely errors. The message template makes it print the same shape as pycodestyle.",
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Full {
		return generateFullTemplate()
	}
	return generateMinimalTemplate(), nil
}

// generateMinimalTemplate creates a minimal commented template.
func generateMinimalTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# Diagnostic codes to ignore, matched as prefixes of class+code
# (e.g. "E501" ignores one code, "D1" ignores every D1xx code).
ignore: []

# Field separator of the batch report
# separator: ","

# Number of submissions analyzed in parallel (0 = auto)
# jobs: 0

# Maximum time spent on one submission (0 = no limit)
# timeout: 30s

# Command that exits non-zero when a submission does not parse
# parse_check:
#   command: python3 -m py_compile {file}

# Analyzers to run; omit to use the built-in pycodestyle, pydocstyle and pylint
# tools:
#   - name: pycodestyle
#     command: pycodestyle {file}
#     format: text
`)

	return buf.Bytes()
}

// generateFullTemplate creates a full template with all default tools documented.
func generateFullTemplate() ([]byte, error) {
	cfg := NewConfig()

	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`
#
# This template lists every option with its default value.

# Diagnostic codes to ignore, matched as prefixes of class+code
ignore: []

# Field separator of the batch report
separator: "` + cfg.Separator + `"

# Number of submissions analyzed in parallel (0 = auto based on CPU cores)
jobs: 0

# Maximum time spent on one submission (0 = no limit)
timeout: 0s

# Command that exits non-zero when a submission does not parse.
# Analyzers still run on sources that fail this check.
parse_check:
  command: ` + quoteIfNeeded(cfg.ParseCheck.Command) + `

# Analyzers. format is one of text, structured or doc; class is the
# severity class reported when the tool itself crashes; column_offset is
# added to reported columns (1 for tools that count columns from 0).
tools:
`)

	for _, tool := range cfg.Tools {
		if desc, ok := toolDescriptions[tool.Name]; ok {
			buf.WriteString(fmt.Sprintf("\n  # %s\n", wrapComment(desc, commentWrapWidth)))
		}
		buf.WriteString(fmt.Sprintf("  - name: %s\n", tool.Name))
		buf.WriteString(fmt.Sprintf("    command: %s\n", quoteIfNeeded(tool.Command)))
		buf.WriteString(fmt.Sprintf("    format: %s\n", tool.Format))
		if tool.Class != "" {
			buf.WriteString(fmt.Sprintf("    class: %s\n", tool.Class))
		}
		if tool.ColumnOffset != nil {
			buf.WriteString(fmt.Sprintf("    column_offset: %d\n", *tool.ColumnOffset))
		}
	}

	return buf.Bytes(), nil
}

// quoteIfNeeded double-quotes YAML scalars that contain characters with
// special meaning.
func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, "{}:'#[]") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	currentLine := ""

	for _, word := range words {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n  # ")
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# stylegrade configuration
# See: https://github.com/yaklabco/stylegrade`
}
