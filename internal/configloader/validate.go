package configloader

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/stylegrade/pkg/config"
	"github.com/yaklabco/stylegrade/pkg/normalize"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "tools[1].format").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Err joins every validation error, or returns nil when the config is valid.
func (r *ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for i := range r.Errors {
		errs = append(errs, &r.Errors[i])
	}
	return errors.Join(errs...)
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

// knownFormats lists valid output format values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownFormats = map[config.OutputFormat]bool{
	config.FormatText:    true,
	config.FormatJSON:    true,
	config.FormatResult:  true,
	config.FormatCSV:     true,
	config.FormatSummary: true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	if cfg == nil {
		return &ValidationResult{}
	}

	result := &ValidationResult{}

	if cfg.Format != "" && !knownFormats[cfg.Format] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "format",
			Value:   cfg.Format,
			Message: fmt.Sprintf("invalid format %q; must be one of: text, json, result, csv, summary", cfg.Format),
		})
	}

	if cfg.Jobs < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "jobs",
			Value:   cfg.Jobs,
			Message: "jobs must be >= 0 (0 means auto)",
		})
	}

	if cfg.Timeout < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "timeout",
			Value:   cfg.Timeout,
			Message: "timeout must be >= 0 (0 means none)",
		})
	}

	if strings.ContainsAny(cfg.Separator, "\n\r") {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "separator",
			Value:   cfg.Separator,
			Message: "separator must not contain line breaks",
		})
	}

	validateTools(cfg, result)
	validateIgnore(cfg, result)

	return result
}

// validateTools checks analyzer definitions.
func validateTools(cfg *config.Config, result *ValidationResult) {
	seen := make(map[string]bool, len(cfg.Tools))

	for i, tool := range cfg.Tools {
		field := fmt.Sprintf("tools[%d]", i)

		if tool.Name == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field + ".name",
				Message: "tool name is required",
			})
		} else if seen[tool.Name] {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field + ".name",
				Value:   tool.Name,
				Message: fmt.Sprintf("duplicate tool %q", tool.Name),
			})
		}
		seen[tool.Name] = true

		if _, err := normalize.ParseFormat(tool.Format); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field + ".format",
				Value:   tool.Format,
				Message: err.Error(),
			})
		}

		if utf8.RuneCountInString(tool.Class) > 1 {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field + ".class",
				Value:   tool.Class,
				Message: "class must be a single character",
			})
		}

		if tool.Offset() < 0 {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field + ".column_offset",
				Value:   tool.Offset(),
				Message: "column_offset must not be negative",
			})
		}

		if tool.IsEnabled() && strings.TrimSpace(tool.Command) == "" {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   field + ".command",
				Value:   tool.Name,
				Message: fmt.Sprintf("tool %q has no command; it can only be used with recorded output", tool.Name),
			})
		}
	}
}

// validateIgnore checks ignore entries. Entries are id prefixes, so the only
// hard requirement is that they are non-empty.
func validateIgnore(cfg *config.Config, result *ValidationResult) {
	for i, prefix := range cfg.Ignore {
		if strings.TrimSpace(prefix) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("ignore[%d]", i),
				Value:   prefix,
				Message: "ignore entries must not be empty",
			})
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

// IsValidFormat returns true if the format is valid.
func IsValidFormat(f config.OutputFormat) bool {
	return knownFormats[f]
}
