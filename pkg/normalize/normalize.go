// Package normalize converts raw analyzer output into canonical diagnostics.
//
// Three raw shapes are accepted: structured records that already carry a
// numeric position, colon-delimited text lines, and two-line doc-style
// findings. Malformed input is reported with ErrMalformed so callers can skip
// it without aborting the rest of the output.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/stylegrade/pkg/diag"
)

var (
	// ErrMalformed is returned when raw input does not have the expected shape.
	ErrMalformed = errors.New("malformed diagnostic")

	// ErrIgnored is returned when a diagnostic matches the ignore list.
	ErrIgnored = errors.New("ignored diagnostic")
)

// linePattern matches "<file>:<line>:<column>:<rest>".
var linePattern = regexp.MustCompile(`^(.*?):(\d+):(\d+):(.*)$`)

// Record is a raw structured finding as exposed by analyzers that report
// positions numerically.
type Record struct {
	Line   int    `json:"lnum" yaml:"lnum"`
	Column int    `json:"col" yaml:"col"`
	Text   string `json:"text" yaml:"text"`
}

// Normalizer turns raw findings into diagnostics.
// The zero value ignores nothing.
type Normalizer struct {
	// Ignore lists class+code prefixes to drop (e.g. "E501", "D1", "W").
	Ignore []string
}

// New creates a Normalizer with the given ignore list.
func New(ignore []string) *Normalizer {
	return &Normalizer{Ignore: append([]string(nil), ignore...)}
}

// Structured normalizes a structured record. The text's first token is the
// class and code, its last token the bracketed tool name, and everything in
// between the message. The tool argument is used when the last token names
// no tool.
func (n *Normalizer) Structured(rec Record, tool string) (diag.Diagnostic, error) {
	tokens := strings.Fields(rec.Text)
	if len(tokens) < 2 {
		return diag.Diagnostic{}, fmt.Errorf("%w: expected at least 2 tokens in %q", ErrMalformed, rec.Text)
	}

	if name := stripBrackets(tokens[len(tokens)-1]); name != "" {
		tool = name
	}

	return n.build(tokens[0], rec.Line, rec.Column, strings.Join(tokens[1:len(tokens)-1], " "), tool)
}

// Line normalizes one "<file>:<line>:<column>:<rest>" line.
func (n *Normalizer) Line(line, tool string) (diag.Diagnostic, error) {
	match := linePattern.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if match == nil {
		return diag.Diagnostic{}, fmt.Errorf("%w: not a file:line:column line: %q", ErrMalformed, line)
	}

	lineNum, err := strconv.Atoi(match[2])
	if err != nil {
		return diag.Diagnostic{}, fmt.Errorf("%w: line number %q", ErrMalformed, match[2])
	}
	column, err := strconv.Atoi(match[3])
	if err != nil {
		return diag.Diagnostic{}, fmt.Errorf("%w: column %q", ErrMalformed, match[3])
	}

	tokens := strings.Fields(match[4])
	if len(tokens) == 0 {
		return diag.Diagnostic{}, fmt.Errorf("%w: no code in %q", ErrMalformed, line)
	}

	messageTokens := tokens[1:]
	if len(tokens) >= 2 && isBracketed(tokens[len(tokens)-1]) {
		if name := stripBrackets(tokens[len(tokens)-1]); name != "" {
			tool = name
		}
		messageTokens = tokens[1 : len(tokens)-1]
	}

	return n.build(tokens[0], lineNum, column, strings.Join(messageTokens, " "), tool)
}

// Doc normalizes a doc-style finding made of a header line carrying the
// position (e.g. "main.py:12 in public function `f`:") and a body line of
// the form "<code>: <text>". Doc-style tools report no column.
func (n *Normalizer) Doc(header, body, tool string) (diag.Diagnostic, error) {
	lineNum, err := docLine(header)
	if err != nil {
		return diag.Diagnostic{}, err
	}

	id, message, found := strings.Cut(strings.TrimSpace(body), ": ")
	if !found {
		return diag.Diagnostic{}, fmt.Errorf("%w: expected \"<code>: <text>\" in %q", ErrMalformed, body)
	}

	return n.build(id, lineNum, 0, strings.TrimSpace(message), tool)
}

// docLine extracts the line number following the first ":" of a doc-style
// header.
func docLine(header string) (int, error) {
	_, afterColon, found := strings.Cut(header, ":")
	if !found {
		return 0, fmt.Errorf("%w: no position in %q", ErrMalformed, header)
	}
	fields := strings.Fields(afterColon)
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: no position in %q", ErrMalformed, header)
	}
	lineNum, err := strconv.Atoi(strings.TrimSuffix(fields[0], ":"))
	if err != nil {
		return 0, fmt.Errorf("%w: line number %q", ErrMalformed, fields[0])
	}
	return lineNum, nil
}

// Ignored reports whether a class+code identifier matches the ignore list.
func (n *Normalizer) Ignored(id string) bool {
	if n == nil {
		return false
	}
	for _, prefix := range n.Ignore {
		if prefix != "" && strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

// build splits the class+code token and constructs the diagnostic.
func (n *Normalizer) build(id string, line, column int, message, tool string) (diag.Diagnostic, error) {
	_, size := utf8.DecodeRuneInString(id)
	if size == 0 || size == len(id) {
		return diag.Diagnostic{}, fmt.Errorf("%w: %q is not a class and code", ErrMalformed, id)
	}
	if n.Ignored(id) {
		return diag.Diagnostic{}, fmt.Errorf("%w: %s", ErrIgnored, id)
	}

	d, err := diag.New(id[:size], id[size:], line, column, message, tool)
	if err != nil {
		return diag.Diagnostic{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return d, nil
}

func isBracketed(token string) bool {
	return len(token) >= 2 && strings.HasPrefix(token, "[") && strings.HasSuffix(token, "]")
}

// stripBrackets removes one leading "[" and one trailing "]".
func stripBrackets(token string) string {
	return strings.TrimSuffix(strings.TrimPrefix(token, "["), "]")
}
