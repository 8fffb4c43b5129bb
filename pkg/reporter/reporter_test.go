package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/stylegrade/pkg/diag"
	"github.com/yaklabco/stylegrade/pkg/engine"
	"github.com/yaklabco/stylegrade/pkg/reporter"
	"github.com/yaklabco/stylegrade/pkg/runner"
)

const aliceSource = "import os\nx = 1  \nprint(x)\n"

// sampleResult holds two processed submissions and one failure.
func sampleResult() *runner.Result {
	return &runner.Result{
		Submissions: []runner.Outcome{
			{
				Target: runner.Target{ID: "alice", Path: "alice.py"},
				Result: engine.Result{
					Submitter: "alice",
					Diagnostics: []diag.Diagnostic{
						{Class: "W", Code: "291", Line: 2, Column: 6, Message: "trailing whitespace", Tools: []string{"pycodestyle"}},
						{Class: "E", Code: "501", Line: 3, Column: 1, Message: "line too long", Tools: []string{"pycodestyle", "pylint"}},
					},
				},
				Source: aliceSource,
			},
			{
				Target: runner.Target{ID: "bob", Path: "bob.py"},
				Result: engine.Result{Submitter: "bob"},
				Source: "print('hi')\n",
			},
			{
				Target: runner.Target{ID: "carol", Path: "carol.py"},
				Err:    errors.New("collect carol: context deadline exceeded"),
			},
		},
		Stats: runner.Stats{
			Discovered:         3,
			Processed:          2,
			Failed:             1,
			WithIssues:         1,
			DiagnosticsTotal:   2,
			DiagnosticsByClass: map[string]int{"E": 1, "W": 1},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{name: "empty defaults to text", input: "", want: reporter.FormatText},
		{name: "text", input: "text", want: reporter.FormatText},
		{name: "json", input: "json", want: reporter.FormatJSON},
		{name: "result", input: "result", want: reporter.FormatResult},
		{name: "csv", input: "csv", want: reporter.FormatCSV},
		{name: "summary", input: "summary", want: reporter.FormatSummary},
		{name: "unknown format", input: "sarif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_IsValid(t *testing.T) {
	tests := []struct {
		format reporter.Format
		want   bool
	}{
		{reporter.FormatText, true},
		{reporter.FormatJSON, true},
		{reporter.FormatResult, true},
		{reporter.FormatCSV, true},
		{reporter.FormatSummary, true},
		{reporter.Format("unknown"), false},
		{reporter.Format(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.IsValid())
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		format  reporter.Format
		wantErr bool
	}{
		{name: "text reporter", format: reporter.FormatText},
		{name: "json reporter", format: reporter.FormatJSON},
		{name: "result reporter", format: reporter.FormatResult},
		{name: "csv reporter", format: reporter.FormatCSV},
		{name: "summary reporter", format: reporter.FormatSummary},
		{name: "empty defaults to text", format: ""},
		{name: "unknown format", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			rep, err := reporter.New(reporter.Options{Writer: &buf, Format: tt.format})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, rep)
		})
	}
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowContext: true,
		ShowSummary: true,
	})

	count, err := rep.Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	out := buf.String()
	assert.Contains(t, out, "alice.py (2 issues)")
	assert.Contains(t, out, "  2:6  W291  trailing whitespace  (pycodestyle)")
	assert.Contains(t, out, "  3:1  E501  line too long  (pycodestyle, pylint)")
	assert.Contains(t, out, "        x = 1  \n")
	assert.Contains(t, out, "carol.py: error: collect carol")
	assert.NotContains(t, out, "bob.py")
	assert.Contains(t, out, "2 issues (1 E, 1 W) in 1 submission, 1 failed")
}

func TestTextReporter_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never", ShowSummary: true})

	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, "No submissions to check.\n", buf.String())
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf})

	count, err := rep.Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	require.Len(t, output.Submissions, 3)
	alice := output.Submissions[0]
	assert.Equal(t, "alice", alice.ID)
	require.Len(t, alice.Diagnostics, 2)
	assert.Equal(t, "W291", alice.Diagnostics[0].ID)
	assert.Equal(t, []string{"pycodestyle", "pylint"}, alice.Diagnostics[1].Tools)

	assert.Equal(t, map[string]int{"e501": 1, "w291": 1}, alice.Counts)
	assert.False(t, alice.Diagnostics[0].Synthetic)

	assert.Empty(t, output.Submissions[1].Diagnostics)
	assert.Empty(t, output.Submissions[1].Counts)
	assert.NotEmpty(t, output.Submissions[2].Error)
	assert.Nil(t, output.Submissions[2].Counts, "failed submissions have no report row")

	require.NotNil(t, output.Report)
	assert.Equal(t, []string{"e501", "w291"}, output.Report.Columns)
	require.Len(t, output.Report.Rows, 2, "failed submissions are excluded from the report")

	assert.Equal(t, 3, output.Summary.Submissions)
	assert.Equal(t, 1, output.Summary.Failed)
	assert.Equal(t, map[string]int{"E": 1, "W": 1}, output.Summary.ByClass)
}

func TestJSONReporter_SyntheticAndIgnored(t *testing.T) {
	t.Parallel()

	result := &runner.Result{
		Submissions: []runner.Outcome{{
			Target: runner.Target{ID: "dan", Path: "dan.py"},
			Result: engine.Result{
				Submitter:   "dan",
				Diagnostics: []diag.Diagnostic{diag.ParseFailure()},
				Ignored:     2,
			},
		}},
		Stats: runner.Stats{Discovered: 1, Processed: 1, LinesSkipped: 3, LinesIgnored: 2},
	}

	var buf bytes.Buffer
	_, err := reporter.NewJSONReporter(reporter.Options{Writer: &buf}).Report(context.Background(), result)
	require.NoError(t, err)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	require.Len(t, output.Submissions, 1)
	dan := output.Submissions[0]
	require.Len(t, dan.Diagnostics, 1)
	assert.True(t, dan.Diagnostics[0].Synthetic)
	assert.Equal(t, 2, dan.IgnoredLines)
	assert.Equal(t, map[string]int{"syn000": 1}, dan.Counts)
	assert.Equal(t, 3, output.Summary.SkippedLinesTotal)
	assert.Equal(t, 2, output.Summary.IgnoredLinesTotal)
}

func TestJSONReporter_Compact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Compact: true})

	_, err := rep.Report(context.Background(), &runner.Result{})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), `"submissions":[]`)
}

func TestCSVReporter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		separator string
		want      string
	}{
		{
			name: "default separator",
			want: "student,e501,w291,total\nalice,1,1,2\nbob,0,0,0\n",
		},
		{
			name:      "tab separator",
			separator: "\t",
			want:      "student\te501\tw291\ttotal\nalice\t1\t1\t2\nbob\t0\t0\t0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			rep := reporter.NewCSVReporter(reporter.Options{Writer: &buf, Separator: tt.separator})

			_, err := rep.Report(context.Background(), sampleResult())
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestCSVReporter_EndToEndExample(t *testing.T) {
	t.Parallel()

	result := &runner.Result{
		Submissions: []runner.Outcome{
			{
				Target: runner.Target{ID: "alice"},
				Result: engine.Result{Diagnostics: []diag.Diagnostic{
					{Class: "E", Code: "501", Line: 10, Column: 3, Tools: []string{"A"}},
				}},
			},
			{Target: runner.Target{ID: "bob"}},
		},
	}

	var buf bytes.Buffer
	rep := reporter.NewCSVReporter(reporter.Options{Writer: &buf})
	_, err := rep.Report(context.Background(), result)
	require.NoError(t, err)

	assert.Equal(t, "student,e501,total\nalice,1,1\nbob,0,0\n", buf.String())
}

func TestResultReporter(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	rep := reporter.NewResultReporter(reporter.Options{Writer: &out, ErrorWriter: &errOut})

	_, err := rep.Report(context.Background(), sampleResult())
	require.NoError(t, err)

	want := "Check results\n=============\n\n" +
		"line 2, col 6: W291 trailing whitespace (pycodestyle)\n" +
		"line 3, col 1: E501 line too long (pycodestyle, pylint)\n" +
		"\nCode\n=============\n" + aliceSource + "\n" +
		"\n" +
		"Check results\n=============\n\n" +
		"\nCode\n=============\n" + "print('hi')\n" + "\n"
	assert.Equal(t, want, out.String())
	assert.Contains(t, errOut.String(), "carol.py: error:")
}

func TestSummaryReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewSummaryReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowSummary: true,
		TermWidth:   80,
	})

	count, err := rep.Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	out := buf.String()
	assert.Contains(t, out, "STUDENT")
	assert.Contains(t, out, "E501")
	assert.Contains(t, out, "W291")
	assert.Contains(t, out, "carol.py: error:")
	assert.Contains(t, out, "Submissions checked: 2")
	assert.Contains(t, out, "Failed:              1")
}

func TestSummaryReporter_NoSubmissions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewSummaryReporter(reporter.Options{Writer: &buf, Color: "never"})

	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, "No submissions processed\n", buf.String())
}
