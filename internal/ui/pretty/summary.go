package pretty

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/stylegrade/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordSubmission      = "submission"
	wordSubmissions     = "submissions"
)

// plural returns singular when n is 1 and plural otherwise.
func plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "12 issues (3 E, 9 W) in 2 submissions, 1 failed".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.DiagnosticsTotal == 0 {
		msg := s.Success.Render("No issues found") +
			s.Dim.Render(fmt.Sprintf(" (%d %s checked)", stats.Processed,
				plural(stats.Processed, wordSubmission, wordSubmissions)))
		if stats.Failed > 0 {
			msg += ", " + s.Failure.Render(fmt.Sprintf("%d failed", stats.Failed))
		}
		return msg + "\n"
	}

	var parts []string

	issueWord := plural(stats.DiagnosticsTotal, "issue", "issues")
	classParts := s.classBreakdown(stats.DiagnosticsByClass)
	if len(classParts) > 0 {
		parts = append(parts, fmt.Sprintf("%d %s (%s)", stats.DiagnosticsTotal, issueWord, strings.Join(classParts, ", ")))
	} else {
		parts = append(parts, fmt.Sprintf("%d %s", stats.DiagnosticsTotal, issueWord))
	}

	parts[0] += fmt.Sprintf(" in %d %s", stats.WithIssues,
		plural(stats.WithIssues, wordSubmission, wordSubmissions))

	if stats.Failed > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d failed", stats.Failed)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// classBreakdown renders per-class counts sorted by class.
func (s *Styles) classBreakdown(byClass map[string]int) []string {
	classes := make([]string, 0, len(byClass))
	for class, n := range byClass {
		if n > 0 {
			classes = append(classes, class)
		}
	}
	sort.Strings(classes)

	parts := make([]string, 0, len(classes))
	for _, class := range classes {
		parts = append(parts, s.ClassStyle(class).Render(fmt.Sprintf("%d %s", byClass[class], class)))
	}
	return parts
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Submissions checked: " +
		s.SummaryValue.Render(strconv.Itoa(stats.Processed)) + "\n")

	if stats.WithIssues > 0 {
		builder.WriteString("  With issues:         " +
			s.Warning.Render(strconv.Itoa(stats.WithIssues)) + "\n")
	}
	if stats.Unparseable > 0 {
		builder.WriteString("  Unparseable:         " +
			s.Error.Render(strconv.Itoa(stats.Unparseable)) + "\n")
	}
	if stats.Failed > 0 {
		builder.WriteString("  Failed:              " +
			s.Failure.Render(strconv.Itoa(stats.Failed)) + "\n")
	}

	builder.WriteString("\n")

	builder.WriteString("  Total issues:        " +
		s.SummaryValue.Render(strconv.Itoa(stats.DiagnosticsTotal)) + "\n")
	for _, part := range s.classBreakdown(stats.DiagnosticsByClass) {
		builder.WriteString("    " + part + "\n")
	}
	if stats.ToolFailures > 0 {
		builder.WriteString("  Analyzer crashes:    " +
			s.Failure.Render(strconv.Itoa(stats.ToolFailures)) + "\n")
	}
	if stats.LinesSkipped > 0 {
		builder.WriteString("  Lines skipped:       " +
			s.Dim.Render(strconv.Itoa(stats.LinesSkipped)))
		if stats.LinesIgnored > 0 {
			builder.WriteString(s.Dim.Render(fmt.Sprintf(" (%d ignored)", stats.LinesIgnored)))
		}
		builder.WriteString("\n")
	}

	return builder.String()
}
