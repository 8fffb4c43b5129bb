package normalize_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/stylegrade/pkg/diag"
	"github.com/yaklabco/stylegrade/pkg/normalize"
)

const pycodestyleOutput = `main.py:1:1: E265 block comment should start with '# '
this line is garbage

main.py:4:80: E501 line too long (88 > 79 characters)
main.py:7:1: W391 blank line at end of file
`

const pydocstyleOutput = `main.py:1 at module level:
        D100: Missing docstring in public module
main.py:4 in public function ` + "`area`" + `:
        D103: Missing docstring in public function
main.py:9 in public class ` + "`Shape`" + `:
`

func TestParseText_SkipsMalformedLines(t *testing.T) {
	t.Parallel()

	parsed := normalize.New(nil).ParseText(pycodestyleOutput, "pycodestyle")

	require.Len(t, parsed.Diagnostics, 3)
	assert.Equal(t, "E265", parsed.Diagnostics[0].ID())
	assert.Equal(t, "E501", parsed.Diagnostics[1].ID())
	assert.Equal(t, "W391", parsed.Diagnostics[2].ID())

	require.Len(t, parsed.Skipped, 1)
	assert.Equal(t, "this line is garbage", parsed.Skipped[0].Input)
	assert.Equal(t, "pycodestyle", parsed.Skipped[0].Tool)
	assert.True(t, errors.Is(parsed.Skipped[0].Reason, normalize.ErrMalformed))
}

func TestParseDoc(t *testing.T) {
	t.Parallel()

	parsed := normalize.New(nil).ParseDoc(pydocstyleOutput, "pydocstyle")

	require.Len(t, parsed.Diagnostics, 2)
	assert.Equal(t, "D100", parsed.Diagnostics[0].ID())
	assert.Equal(t, 1, parsed.Diagnostics[0].Line)
	assert.Equal(t, "D103", parsed.Diagnostics[1].ID())
	assert.Equal(t, 4, parsed.Diagnostics[1].Line)
	assert.Zero(t, parsed.Diagnostics[1].Column)

	require.Len(t, parsed.Skipped, 1, "dangling header is skipped")
}

func TestParseDoc_UnindentedMessageLine(t *testing.T) {
	t.Parallel()

	output := "main.py:12 in public function `f`:\nD103: Missing docstring in public function\n"

	parsed := normalize.New(nil).ParseDoc(output, "pydocstyle")

	require.Len(t, parsed.Diagnostics, 1)
	assert.Equal(t, "D103", parsed.Diagnostics[0].ID())
	assert.Equal(t, 12, parsed.Diagnostics[0].Line)
	assert.Equal(t, "Missing docstring in public function", parsed.Diagnostics[0].Message)
	assert.Empty(t, parsed.Skipped)
}

func TestParseDoc_HeaderWithoutPosition(t *testing.T) {
	t.Parallel()

	output := "module level:\nD100: Missing docstring in public module\n"

	parsed := normalize.New(nil).ParseDoc(output, "pydocstyle")

	assert.Empty(t, parsed.Diagnostics)
	require.Len(t, parsed.Skipped, 2)
	for _, skip := range parsed.Skipped {
		assert.ErrorIs(t, skip.Reason, normalize.ErrMalformed)
	}
}

func TestParseDoc_Ignored(t *testing.T) {
	t.Parallel()

	parsed := normalize.New([]string{"D100"}).ParseDoc(pydocstyleOutput, "pydocstyle")

	require.Len(t, parsed.Diagnostics, 1)
	assert.Equal(t, 1, parsed.Ignored())
}

func TestParseRecords(t *testing.T) {
	t.Parallel()

	records := []normalize.Record{
		{Line: 2, Column: 1, Text: "W0611 Unused import os [pylint]"},
		{Line: 3, Column: 1, Text: "bad"},
	}

	parsed := normalize.New(nil).ParseRecords(records, "pylama")

	require.Len(t, parsed.Diagnostics, 1)
	assert.Equal(t, []string{"pylint"}, parsed.Diagnostics[0].Tools)
	require.Len(t, parsed.Skipped, 1)
}

func TestParseStructuredText(t *testing.T) {
	t.Parallel()

	output := "10 3 E501 too long [A]\nnot numbers here\n2 1 W291 trailing whitespace [B]\n"

	parsed := normalize.New(nil).Parse(normalize.FormatStructured, output, "x")

	require.Len(t, parsed.Diagnostics, 2)
	assert.Equal(t, 10, parsed.Diagnostics[0].Line)
	assert.Equal(t, 3, parsed.Diagnostics[0].Column)
	assert.Equal(t, []string{"B"}, parsed.Diagnostics[1].Tools)
	assert.Len(t, parsed.Skipped, 1)
}

func TestParseStructuredText_Whitespace(t *testing.T) {
	t.Parallel()

	output := "10  3 E501 too long [A]\n\t4\t2  W291   trailing whitespace [B]\n"

	parsed := normalize.New(nil).ParseStructuredText(output, "x")

	require.Len(t, parsed.Diagnostics, 2)
	assert.Empty(t, parsed.Skipped)
	assert.Equal(t, 10, parsed.Diagnostics[0].Line)
	assert.Equal(t, 3, parsed.Diagnostics[0].Column)
	assert.Equal(t, "too long", parsed.Diagnostics[0].Message)
	assert.Equal(t, 4, parsed.Diagnostics[1].Line)
	assert.Equal(t, "trailing whitespace", parsed.Diagnostics[1].Message)
}

func TestNormalize_Outcome(t *testing.T) {
	t.Parallel()

	n := normalize.New(nil)

	t.Run("ran with no findings", func(t *testing.T) {
		t.Parallel()
		parsed := n.Normalize(normalize.Outcome{Tool: "pycodestyle", Format: normalize.FormatText})
		assert.Empty(t, parsed.Diagnostics)
		assert.Empty(t, parsed.Skipped)
	})

	t.Run("doc tool crashed", func(t *testing.T) {
		t.Parallel()
		parsed := n.Normalize(normalize.Outcome{
			Tool:   "pydocstyle",
			Format: normalize.FormatDoc,
			Output: pydocstyleOutput,
			Err:    errors.New("exit status 2"),
		})
		require.Len(t, parsed.Diagnostics, 1)
		d := parsed.Diagnostics[0]
		assert.Equal(t, "D", d.Class)
		assert.Equal(t, diag.CodeSynthetic, d.Code)
		assert.Zero(t, d.Line)
	})

	t.Run("text tool crashed with explicit class", func(t *testing.T) {
		t.Parallel()
		parsed := n.Normalize(normalize.Outcome{Tool: "pylint", Class: "F", Err: errors.New("boom")})
		require.Len(t, parsed.Diagnostics, 1)
		assert.Equal(t, "F", parsed.Diagnostics[0].Class)
	})

	t.Run("column offset shifts parsed findings", func(t *testing.T) {
		t.Parallel()
		parsed := n.Normalize(normalize.Outcome{
			Tool:         "pylint",
			Format:       normalize.FormatText,
			Output:       "m.py:1:0: C0114 Missing module docstring\nm.py:4:8: W0612 Unused variable 'x'\n",
			ColumnOffset: 1,
		})
		require.Len(t, parsed.Diagnostics, 2)
		assert.Equal(t, 1, parsed.Diagnostics[0].Column)
		assert.Equal(t, 9, parsed.Diagnostics[1].Column)
	})

	t.Run("column offset leaves crash diagnostic alone", func(t *testing.T) {
		t.Parallel()
		parsed := n.Normalize(normalize.Outcome{Tool: "pylint", Err: errors.New("boom"), ColumnOffset: 1})
		require.Len(t, parsed.Diagnostics, 1)
		assert.Zero(t, parsed.Diagnostics[0].Column)
	})

	t.Run("records and output", func(t *testing.T) {
		t.Parallel()
		parsed := n.Normalize(normalize.Outcome{
			Tool:    "pylama",
			Format:  normalize.FormatText,
			Records: []normalize.Record{{Line: 1, Column: 1, Text: "E101 mixed [pycodestyle]"}},
			Output:  "m.py:2:1: W291 trailing whitespace",
		})
		require.Len(t, parsed.Diagnostics, 2)
		assert.Equal(t, []string{"pylama"}, parsed.Diagnostics[1].Tools)
	})
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := normalize.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, normalize.FormatText, f)

	f, err = normalize.ParseFormat("DOC")
	require.NoError(t, err)
	assert.Equal(t, normalize.FormatDoc, f)
	assert.True(t, f.IsValid())

	_, err = normalize.ParseFormat("xml")
	require.Error(t, err)
}

func TestParseStructured_JSON(t *testing.T) {
	t.Parallel()

	n := normalize.New(nil)
	out := n.Parse(normalize.FormatStructured,
		`[{"lnum": 3, "col": 1, "text": "C0111 Missing docstring [pylint]"},
		  {"lnum": 1, "col": 5, "text": "E1"}]`, "pylama")

	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, "C", out.Diagnostics[0].Class)
	assert.Equal(t, "0111", out.Diagnostics[0].Code)
	assert.Equal(t, []string{"pylint"}, out.Diagnostics[0].Tools)
	require.Len(t, out.Skipped, 1, "single-token text is malformed")

	bad := n.Parse(normalize.FormatStructured, `[{"lnum": "x"}]`, "pylama")
	assert.Empty(t, bad.Diagnostics)
	require.Len(t, bad.Skipped, 1)
	assert.True(t, errors.Is(bad.Skipped[0].Reason, normalize.ErrMalformed))
}
