package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/stylegrade/internal/cli"
)

const submissionSource = "import os\nx = 1  \nprint(x)\n"

// testEnv holds a temp directory with an isolating config file.
type testEnv struct {
	dir    string
	config string
}

func newTestEnv(t *testing.T, configContent string) testEnv {
	t.Helper()

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "stylegrade.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(configContent), 0o644))

	return testEnv{dir: dir, config: cfgFile}
}

func (e testEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the CLI with --config and --color never prepended.
func (e testEnv) execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.config, "--color", "never"}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestIntegration_CheckRecordedOutput(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "ignore: [C0114]\n")
	file := env.write(t, "hw1.py", submissionSource)
	pep8 := env.write(t, "pep8.txt", "hw1.py:2:6: W291 trailing whitespace\n")
	lint := env.write(t, "pylint.txt",
		"hw1.py:1:0: C0114 Missing module docstring [pylint]\n"+
			"hw1.py:1:0: W0611 Unused import os [pylint]\n")

	stdout, _, err := env.execute(t, "check", file,
		"--no-parse-check",
		"--format", "result",
		"--tool-output", "pycodestyle="+pep8,
		"--tool-output", "pylint="+lint,
	)
	require.NoError(t, err, "warnings alone do not fail the check")

	want := "Check results\n=============\n\n" +
		"line 1, col 1: W0611 Unused import os (pylint)\n" +
		"line 2, col 6: W291 trailing whitespace (pycodestyle)\n" +
		"\nCode\n=============\n" + submissionSource + "\n"
	assert.Equal(t, want, stdout)
}

func TestIntegration_CheckMergesAcrossTools(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "jobs: 1\n")
	file := env.write(t, "hw1.py", submissionSource)
	first := env.write(t, "a.txt", "hw1.py:3:1: E501 line too long\n")
	second := env.write(t, "b.txt", "hw1.py:3:4: E501 line too long\n")

	stdout, _, err := env.execute(t, "check", file,
		"--no-parse-check",
		"--format", "json",
		"--tool-output", "pycodestyle="+first,
		"--tool-output", "flake8="+second,
	)
	require.ErrorIs(t, err, cli.ErrIssuesFound)

	var output struct {
		Submissions []struct {
			ID          string `json:"id"`
			Diagnostics []struct {
				ID     string   `json:"id"`
				Column int      `json:"column"`
				Tools  []string `json:"tools"`
			} `json:"diagnostics"`
		} `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &output))
	require.Len(t, output.Submissions, 1)

	sub := output.Submissions[0]
	assert.Equal(t, "hw1", sub.ID)
	require.Len(t, sub.Diagnostics, 1)
	assert.Equal(t, "E501", sub.Diagnostics[0].ID)
	assert.Equal(t, 1, sub.Diagnostics[0].Column, "the first reported column is kept")
	assert.Equal(t, []string{"pycodestyle", "flake8"}, sub.Diagnostics[0].Tools)
}

func TestIntegration_CheckStrict(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "jobs: 1\n")
	file := env.write(t, "hw1.py", submissionSource)
	pep8 := env.write(t, "pep8.txt", "hw1.py:2:6: W291 trailing whitespace\n")

	stdout, _, err := env.execute(t, "check", file,
		"--no-parse-check", "--strict",
		"--tool-output", "pycodestyle="+pep8,
	)
	require.ErrorIs(t, err, cli.ErrIssuesFound)
	assert.Contains(t, stdout, "W291")
	assert.Contains(t, stdout, "1 issue (1 W) in 1 submission")
}

func TestIntegration_CheckInvalidToolOutput(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "jobs: 1\n")
	file := env.write(t, "hw1.py", submissionSource)

	_, _, err := env.execute(t, "check", file, "--no-parse-check", "--tool-output", "pycodestyle")
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCodeForError(err))
}

func TestIntegration_CheckMissingFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "jobs: 1\n")

	_, _, err := env.execute(t, "check", filepath.Join(env.dir, "missing.py"))
	require.Error(t, err)
	assert.Equal(t, cli.ExitIOError, cli.ExitCodeForError(err))
}

func TestIntegration_CheckRejectsReportFormats(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "jobs: 1\n")
	file := env.write(t, "hw1.py", submissionSource)

	_, _, err := env.execute(t, "check", file, "--format", "csv")
	require.Error(t, err)
}

const batchManifest = `submissions:
  - id: bob
    tools: []
  - id: alice
    source: alice.py
    tools:
      - name: pycodestyle
        output: "alice.py:10:3: E501 line too long"
      - name: pylint
        error: "pylint crashed"
`

func TestIntegration_ReportManifestToFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "jobs: 2\n")
	env.write(t, "alice.py", submissionSource)
	manifest := env.write(t, "batch.yaml", batchManifest)
	output := filepath.Join(env.dir, "grades.csv")

	stdout, _, err := env.execute(t, "report", "--manifest", manifest, "--output", output)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	// The crashed analyzer shows up as a class E "000" diagnostic.
	assert.Equal(t, "student,e000,e501,total\nalice,1,1,2\nbob,0,0,0\n", string(content))
}

func TestIntegration_ReportBackup(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	env.write(t, "alice.py", submissionSource)
	manifest := env.write(t, "batch.yaml", batchManifest)
	output := env.write(t, "grades.csv", "previous\n")

	_, _, err := env.execute(t, "report", "--manifest", manifest, "--output", output, "--backup")
	require.NoError(t, err)

	backup, err := os.ReadFile(output + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(backup))

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(content), "alice,1,1,2")
}

func TestIntegration_ReportSeparator(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "jobs: 1\n")
	manifest := env.write(t, "batch.yaml", `submissions:
  - id: alice
    tools:
      - name: pycodestyle
        output: "a.py:10:3: E501 line too long"
  - id: bob
    tools: []
`)

	stdout, _, err := env.execute(t, "report", "--manifest", manifest, "--separator", ";")
	require.NoError(t, err)
	assert.Equal(t, "student;e501;total\nalice;1;1\nbob;0;0\n", stdout)
}

func TestIntegration_ReportSummary(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "jobs: 1\n")
	env.write(t, "alice.py", submissionSource)
	manifest := env.write(t, "batch.yaml", batchManifest)

	stdout, _, err := env.execute(t, "report", "--manifest", manifest, "--format", "summary")
	require.NoError(t, err)
	assert.Contains(t, stdout, "STUDENT")
	assert.Contains(t, stdout, "E501")
	assert.Contains(t, stdout, "Submissions checked: 2")
}

func TestIntegration_ReportInvalidManifest(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "jobs: 1\n")
	manifest := env.write(t, "batch.yaml", "submissions:\n  - tools: []\n")

	_, _, err := env.execute(t, "report", "--manifest", manifest)
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCodeForError(err))
}

func TestIntegration_ReportRejectsCheckFormats(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "jobs: 1\n")

	_, _, err := env.execute(t, "report", env.dir, "--format", "result")
	require.Error(t, err)
}

func TestIntegration_Init(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "jobs: 1\n")
	target := filepath.Join(env.dir, "new.yml")

	_, _, err := env.execute(t, "init", "--full", "--output", target)
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "pycodestyle")
	assert.Contains(t, string(content), "parse_check")

	_, _, err = env.execute(t, "init", "--output", target)
	require.Error(t, err, "existing file requires --force")

	_, _, err = env.execute(t, "init", "--output", target, "--force")
	require.NoError(t, err)
}

func TestIntegration_ToolsJSON(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, `tools:
  - name: pylint
    enabled: false
  - name: flake8
    command: flake8 {file}
`)

	stdout, _, err := env.execute(t, "tools", "--format", "json")
	require.NoError(t, err)

	var tools []struct {
		Name    string `json:"name"`
		Format  string `json:"format"`
		Enabled bool   `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &tools))

	byName := make(map[string]bool, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool.Enabled
	}
	assert.Contains(t, byName, "pycodestyle")
	assert.False(t, byName["pylint"])
	assert.True(t, byName["flake8"])
	assert.Equal(t, "text", tools[len(tools)-1].Format)
}

func TestIntegration_HelpListsEnvironment(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "jobs: 1\n")

	stdout, _, err := env.execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Environment:")
	assert.Contains(t, stdout, "STYLEGRADE_JOBS")
	assert.Contains(t, stdout, "Available Commands:")
	assert.Contains(t, stdout, "  check ")
}

func TestIntegration_SubcommandHelp(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "jobs: 1\n")

	stdout, _, err := env.execute(t, "check", "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Usage:\n  stylegrade check")
	assert.Contains(t, stdout, "--tool-output")
	assert.Contains(t, stdout, "Global Flags:")
	assert.NotContains(t, stdout, "Environment:")
	assert.NotContains(t, stdout, "\x1b[", "help is uncolored when not writing to a terminal")
}
