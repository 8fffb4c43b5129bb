package normalize_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/stylegrade/pkg/normalize"
)

func TestStructured(t *testing.T) {
	t.Parallel()

	n := normalize.New(nil)

	d, err := n.Structured(normalize.Record{Line: 10, Column: 3, Text: "E501   line too long (82 > 79 characters) [pycodestyle]"}, "fallback")
	require.NoError(t, err)

	assert.Equal(t, "E", d.Class)
	assert.Equal(t, "501", d.Code)
	assert.Equal(t, 10, d.Line)
	assert.Equal(t, 3, d.Column)
	assert.Equal(t, "line too long (82 > 79 characters)", d.Message)
	assert.Equal(t, []string{"pycodestyle"}, d.Tools)
}

func TestStructured_ExtractsFirstAndLastTokens(t *testing.T) {
	t.Parallel()

	n := normalize.New(nil)

	tests := []struct {
		text    string
		class   string
		code    string
		message string
		tool    string
	}{
		{"C0103 Variable name \"x\" [pylint]", "C", "0103", "Variable name \"x\"", "pylint"},
		{"W0611 [pyflakes]", "W", "0611", "", "pyflakes"},
		{"D100 Missing docstring [pydocstyle]", "D", "100", "Missing docstring", "pydocstyle"},
		{"E1 x [[odd]]", "E", "1", "x", "[odd]"},
		{"E225 missing whitespace []", "E", "225", "missing whitespace", "fallback"},
	}

	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			t.Parallel()

			d, err := n.Structured(normalize.Record{Line: 1, Column: 1, Text: tc.text}, "fallback")
			require.NoError(t, err)
			assert.Equal(t, tc.class, d.Class)
			assert.Equal(t, tc.code, d.Code)
			assert.Equal(t, tc.class+tc.code, d.ID())
			assert.Equal(t, tc.message, d.Message)
			assert.Equal(t, []string{tc.tool}, d.Tools)
		})
	}
}

func TestStructured_Malformed(t *testing.T) {
	t.Parallel()

	n := normalize.New(nil)

	for _, text := range []string{"", "E501", "   ", "E [pylint]"} {
		_, err := n.Structured(normalize.Record{Line: 1, Text: text}, "t")
		require.Error(t, err, "text %q", text)
		assert.True(t, errors.Is(err, normalize.ErrMalformed))
	}

	_, err := n.Structured(normalize.Record{Line: -1, Text: "E501 x [a]"}, "t")
	assert.True(t, errors.Is(err, normalize.ErrMalformed))
}

func TestLine(t *testing.T) {
	t.Parallel()

	n := normalize.New(nil)

	t.Run("bracketed tool", func(t *testing.T) {
		t.Parallel()
		d, err := n.Line("main.py:12:5: C0301 Line too long (120/100) [pylint]", "fallback")
		require.NoError(t, err)
		assert.Equal(t, "C", d.Class)
		assert.Equal(t, "0301", d.Code)
		assert.Equal(t, 12, d.Line)
		assert.Equal(t, 5, d.Column)
		assert.Equal(t, "Line too long (120/100)", d.Message)
		assert.Equal(t, []string{"pylint"}, d.Tools)
	})

	t.Run("plain pycodestyle output", func(t *testing.T) {
		t.Parallel()
		d, err := n.Line("/tmp/x/main.py:3:80: E501 line too long (85 > 79 characters)\n", "pycodestyle")
		require.NoError(t, err)
		assert.Equal(t, "E501", d.ID())
		assert.Equal(t, 3, d.Line)
		assert.Equal(t, 80, d.Column)
		assert.Equal(t, "line too long (85 > 79 characters)", d.Message)
		assert.Equal(t, []string{"pycodestyle"}, d.Tools)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		for _, line := range []string{
			"not a diagnostic",
			"main.py:12: E501 missing column",
			"main.py:x:1: E501 bad line",
			"main.py:1:1:",
			"main.py:1:1: E",
			"************* Module main",
		} {
			_, err := n.Line(line, "t")
			assert.True(t, errors.Is(err, normalize.ErrMalformed), "line %q", line)
		}
	})
}

func TestDoc(t *testing.T) {
	t.Parallel()

	n := normalize.New(nil)

	d, err := n.Doc("main.py:1 at module level:", "        D100: Missing docstring in public module", "pydocstyle")
	require.NoError(t, err)
	assert.Equal(t, "D", d.Class)
	assert.Equal(t, "100", d.Code)
	assert.Equal(t, 1, d.Line)
	assert.Equal(t, 0, d.Column)
	assert.Equal(t, "Missing docstring in public module", d.Message)
	assert.Equal(t, []string{"pydocstyle"}, d.Tools)

	d, err = n.Doc("main.py:14 in public function `area`:", "D103: Missing docstring: see PEP 257", "pydocstyle")
	require.NoError(t, err)
	assert.Equal(t, 14, d.Line)
	assert.Equal(t, "Missing docstring: see PEP 257", d.Message)

	_, err = n.Doc("no position here", "D100: x", "pydocstyle")
	assert.True(t, errors.Is(err, normalize.ErrMalformed))
	_, err = n.Doc("main.py:abc", "D100: x", "pydocstyle")
	assert.True(t, errors.Is(err, normalize.ErrMalformed))
	_, err = n.Doc("main.py:3", "D100 no separator", "pydocstyle")
	assert.True(t, errors.Is(err, normalize.ErrMalformed))
}

func TestIgnore(t *testing.T) {
	t.Parallel()

	n := normalize.New([]string{"E501", "D1"})

	_, err := n.Line("m.py:1:1: E501 long", "pycodestyle")
	assert.True(t, errors.Is(err, normalize.ErrIgnored))

	_, err = n.Doc("m.py:1 at module level:", "  D103: Missing docstring", "pydocstyle")
	assert.True(t, errors.Is(err, normalize.ErrIgnored))

	d, err := n.Line("m.py:1:1: E502 backslash", "pycodestyle")
	require.NoError(t, err)
	assert.Equal(t, "E502", d.ID())

	var zero normalize.Normalizer
	assert.False(t, zero.Ignored("E501"))
}
