// Package config defines core configuration types for stylegrade.
// These types are pure data structures; loading and layering live in
// internal/configloader.
package config

import "time"

// OutputFormat specifies how results are written.
type OutputFormat string

const (
	// FormatText is styled terminal output for a single submission.
	FormatText OutputFormat = "text"
	// FormatJSON is machine-readable output for checks and reports.
	FormatJSON OutputFormat = "json"
	// FormatResult is the plain-text result export for a single submission.
	FormatResult OutputFormat = "result"
	// FormatCSV is the separator-delimited batch report.
	FormatCSV OutputFormat = "csv"
	// FormatSummary is a styled table view of the batch report.
	FormatSummary OutputFormat = "summary"
)

// Tool output formats, mirrored from the normalize package so config has no
// dependency on it.
const (
	ToolFormatText       = "text"
	ToolFormatStructured = "structured"
	ToolFormatDoc        = "doc"
)

// ToolConfig describes one analyzer.
type ToolConfig struct {
	// Name identifies the tool in diagnostics (e.g. "pycodestyle").
	Name string `yaml:"name"`

	// Command is the command line to run. "{file}" is replaced with the
	// submission path; if absent, the path is appended.
	Command string `yaml:"command"`

	// Format is the raw output shape: text, structured or doc.
	Format string `yaml:"format"`

	// Class is the severity class reported if the tool crashes.
	Class string `yaml:"class,omitempty"`

	// ColumnOffset is added to every column the tool reports. Tools with
	// 0-based columns set it to 1 so that column 0 keeps meaning "whole file".
	ColumnOffset *int `yaml:"column_offset,omitempty"`

	// Enabled disables the tool when set to false.
	Enabled *bool `yaml:"enabled,omitempty"`
}

// Offset returns ColumnOffset, or 0 when unset.
func (t ToolConfig) Offset() int {
	if t.ColumnOffset == nil {
		return 0
	}
	return *t.ColumnOffset
}

// IsEnabled reports whether the tool should run.
func (t ToolConfig) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// ParseCheckConfig describes the command that decides whether a submission parses.
type ParseCheckConfig struct {
	// Command exits non-zero when the file does not parse.
	Command string `yaml:"command"`

	// Enabled disables the check when set to false; submissions are then
	// assumed to parse.
	Enabled *bool `yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the parse check should run.
func (p ParseCheckConfig) IsEnabled() bool {
	return p.Command != "" && (p.Enabled == nil || *p.Enabled)
}

// Config is the root configuration structure.
type Config struct {
	// Ignore lists class+code prefixes to drop from every tool's output.
	Ignore []string `yaml:"ignore"`

	// Separator separates fields in the batch report.
	Separator string `yaml:"separator"`

	// Jobs is the number of submissions analyzed concurrently (0 = auto).
	Jobs int `yaml:"jobs"`

	// Timeout bounds the analysis of a single submission (0 = none).
	Timeout time.Duration `yaml:"timeout"`

	// ParseCheck decides whether a submission parses.
	ParseCheck ParseCheckConfig `yaml:"parse_check"`

	// Tools are the analyzers run on each submission, in order.
	Tools []ToolConfig `yaml:"tools"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Strict makes any diagnostic fail the check exit code.
	Strict bool `yaml:"-"`
}

// EnabledTools returns the tools that should run.
func (c *Config) EnabledTools() []ToolConfig {
	var out []ToolConfig
	for _, tool := range c.Tools {
		if tool.IsEnabled() {
			out = append(out, tool)
		}
	}
	return out
}

// Tool returns the tool with the given name.
func (c *Config) Tool(name string) (ToolConfig, bool) {
	for _, tool := range c.Tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return ToolConfig{}, false
}

// DefaultTools returns the analyzers configured out of the box.
func DefaultTools() []ToolConfig {
	return []ToolConfig{
		{
			Name:    "pycodestyle",
			Command: "pycodestyle {file}",
			Format:  ToolFormatText,
		},
		{
			Name:    "pydocstyle",
			Command: "pydocstyle {file}",
			Format:  ToolFormatDoc,
			Class:   "D",
		},
		{
			Name:    "pylint",
			Command: "pylint --score=n --msg-template='{path}:{line}:{column}: {msg_id} {msg} [pylint]' {file}",
			Format:  ToolFormatText,

			// pylint's {column} is 0-based.
			ColumnOffset: intPtr(1),
		},
	}
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Separator: ",",
		Jobs:      0, // 0 means use NumCPU
		ParseCheck: ParseCheckConfig{
			Command: "python3 -m py_compile {file}",
		},
		Tools:  DefaultTools(),
		Format: FormatText,
	}
}

func intPtr(n int) *int {
	return &n
}
