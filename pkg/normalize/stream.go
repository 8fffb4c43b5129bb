package normalize

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/stylegrade/pkg/diag"
)

// Format identifies the raw shape an analyzer emits.
type Format string

// Supported raw formats.
const (
	FormatStructured Format = "structured"
	FormatText       Format = "text"
	FormatDoc        Format = "doc"
)

// ParseFormat parses a format string, returning an error for unknown formats.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatStructured:
		return FormatStructured, nil
	case FormatDoc:
		return FormatDoc, nil
	default:
		return "", fmt.Errorf("unknown tool output format %q; valid formats: text, structured, doc", s)
	}
}

// IsValid returns true if the format is known.
func (f Format) IsValid() bool {
	switch f {
	case FormatStructured, FormatText, FormatDoc:
		return true
	default:
		return false
	}
}

// Skip records one piece of raw input that did not become a diagnostic.
type Skip struct {
	Tool   string
	Input  string
	Reason error
}

// Parsed is the result of normalizing a whole tool output.
type Parsed struct {
	Diagnostics []diag.Diagnostic
	Skipped     []Skip
}

func (p *Parsed) add(tool, input string, d diag.Diagnostic, err error) {
	if err != nil {
		p.Skipped = append(p.Skipped, Skip{Tool: tool, Input: input, Reason: err})
		return
	}
	p.Diagnostics = append(p.Diagnostics, d)
}

// Ignored returns the number of skips caused by the ignore list.
func (p *Parsed) Ignored() int {
	var n int
	for _, s := range p.Skipped {
		if errors.Is(s.Reason, ErrIgnored) {
			n++
		}
	}
	return n
}

// ParseRecords normalizes a batch of structured records.
func (n *Normalizer) ParseRecords(records []Record, tool string) Parsed {
	var out Parsed
	for _, rec := range records {
		d, err := n.Structured(rec, tool)
		out.add(tool, rec.Text, d, err)
	}
	return out
}

// ParseText normalizes line-oriented tool output. Blank lines are ignored;
// lines that do not match the expected shape are skipped.
func (n *Normalizer) ParseText(output, tool string) Parsed {
	var out Parsed
	for _, line := range splitLines(output) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		d, err := n.Line(line, tool)
		out.add(tool, line, d, err)
	}
	return out
}

// ParseDoc normalizes doc-style output, where each finding spans a header
// line with a position and a "<code>: <text>" body line, indented or not.
// A header without a body is skipped.
func (n *Normalizer) ParseDoc(output, tool string) Parsed {
	var out Parsed
	var lines []string
	for _, line := range splitLines(output) {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	for i := 0; i < len(lines); i++ {
		header := lines[i]
		if i+1 >= len(lines) || !hasDocPosition(header) || !isDocBody(lines[i+1]) {
			out.add(tool, header, diag.Diagnostic{}, fmt.Errorf("%w: header without message line", ErrMalformed))
			continue
		}
		body := lines[i+1]
		i++
		d, err := n.Doc(header, body, tool)
		out.add(tool, header+"\n"+body, d, err)
	}
	return out
}

// Parse dispatches on the raw format.
func (n *Normalizer) Parse(format Format, output, tool string) Parsed {
	switch format {
	case FormatDoc:
		return n.ParseDoc(output, tool)
	case FormatStructured:
		return n.ParseStructured(output, tool)
	default:
		return n.ParseText(output, tool)
	}
}

// ParseStructured reads structured records either as a JSON array of
// {"lnum", "col", "text"} objects or in the line form of ParseStructuredText.
// A JSON document that does not decode is skipped as a whole.
func (n *Normalizer) ParseStructured(output, tool string) Parsed {
	trimmed := strings.TrimSpace(output)
	if !strings.HasPrefix(trimmed, "[") {
		return n.ParseStructuredText(output, tool)
	}

	var records []Record
	if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
		var out Parsed
		out.add(tool, trimmed, diag.Diagnostic{}, fmt.Errorf("%w: %w", ErrMalformed, err))
		return out
	}
	return n.ParseRecords(records, tool)
}

// ParseStructuredText reads structured records serialized one per line as
// "<line> <column> <text>", fields separated by any run of whitespace. It
// lets structured output be recorded in files.
func (n *Normalizer) ParseStructuredText(output, tool string) Parsed {
	var out Parsed
	for _, line := range splitLines(output) {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		rec, ok := structuredRecord(fields)
		if !ok {
			out.add(tool, line, diag.Diagnostic{}, fmt.Errorf("%w: expected \"<line> <column> <text>\"", ErrMalformed))
			continue
		}
		d, err := n.Structured(rec, tool)
		out.add(tool, line, d, err)
	}
	return out
}

func structuredRecord(fields []string) (Record, bool) {
	if len(fields) < 3 {
		return Record{}, false
	}
	line, err := strconv.Atoi(fields[0])
	if err != nil {
		return Record{}, false
	}
	column, err := strconv.Atoi(fields[1])
	if err != nil {
		return Record{}, false
	}
	return Record{Line: line, Column: column, Text: strings.Join(fields[2:], " ")}, true
}

// isDocBody reports whether a line is the message line of a doc-style
// finding: "<code>: <text>", where code is a single token.
func isDocBody(line string) bool {
	id, text, found := strings.Cut(strings.TrimSpace(line), ": ")
	if !found || len(id) < 2 || strings.TrimSpace(text) == "" {
		return false
	}
	return !strings.ContainsAny(id, " \t:")
}

// hasDocPosition reports whether a header carries a ":"-delimited line number.
func hasDocPosition(header string) bool {
	_, err := docLine(header)
	return err == nil
}

func splitLines(s string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(s))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}
