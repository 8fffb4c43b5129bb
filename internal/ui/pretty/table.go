package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/stylegrade/pkg/report"
)

// Table formatting constants.
const (
	tablePadding    = 2
	minStudentWidth = 8
	maxStudentWidth = 32
	heavySeparator  = "="
	lightSeparator  = "-"
	studentHeader   = "STUDENT"
	totalHeader     = "TOTAL"
	zeroCell        = "."
)

// TableFormatter formats a batch report as a styled table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

type tableLayout struct {
	student int
	columns []int // widths of the code columns that fit
	total   int
	omitted int
}

// FormatReport renders one row per submitter and one column per code, with
// a totals footer. Code columns that do not fit the terminal are omitted and
// counted in the legend; row totals always cover every column.
func (t *TableFormatter) FormatReport(rep *report.Report) string {
	if rep == nil || len(rep.Rows) == 0 {
		return ""
	}

	perColumn, grand := rep.Totals()
	layout := t.layout(rep, grand)

	var builder strings.Builder

	builder.WriteString(t.formatHeader(rep, layout))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(layout, heavySeparator))
	builder.WriteString("\n")

	for _, row := range rep.Rows {
		builder.WriteString(t.formatRow(row.Submitter, row.Counts, row.Total, layout, false))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatSeparator(layout, lightSeparator))
	builder.WriteString("\n")
	builder.WriteString(t.formatRow(totalHeader, perColumn, grand, layout, true))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(layout, heavySeparator))
	builder.WriteString("\n")

	builder.WriteString(t.formatLegend(layout))
	builder.WriteString("\n")

	return builder.String()
}

// layout sizes the columns and decides how many code columns fit.
func (t *TableFormatter) layout(rep *report.Report, grand int) tableLayout {
	l := tableLayout{
		student: max(minStudentWidth, len(studentHeader), len(totalHeader)),
		total:   max(len(totalHeader), len(strconv.Itoa(grand))),
	}
	for _, row := range rep.Rows {
		l.student = max(l.student, len(row.Submitter))
	}
	l.student = min(l.student, maxStudentWidth)

	perColumn, _ := rep.Totals()
	used := 1 + l.student + tablePadding + l.total
	for i, col := range rep.Columns {
		width := max(len(col), len(strconv.Itoa(perColumn[i])))
		if used+width+tablePadding > t.termWidth {
			l.omitted = len(rep.Columns) - i
			break
		}
		used += width + tablePadding
		l.columns = append(l.columns, width)
	}
	return l
}

func (l tableLayout) width() int {
	w := 1 + l.student + tablePadding + l.total
	for _, c := range l.columns {
		w += c + tablePadding
	}
	return w
}

// formatHeader formats the table header row.
func (t *TableFormatter) formatHeader(rep *report.Report, l tableLayout) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(" %-*s", l.student, studentHeader))
	for i, width := range l.columns {
		builder.WriteString(fmt.Sprintf("  %*s", width, strings.ToUpper(rep.Columns[i])))
	}
	builder.WriteString(fmt.Sprintf("  %*s", l.total, totalHeader))
	return t.styles.TableHeader.Render(builder.String())
}

// formatSeparator formats a separator line.
func (t *TableFormatter) formatSeparator(l tableLayout, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, l.width()))
}

// formatRow formats a submitter row or the totals footer. Padding is applied
// before styling so ANSI codes do not disturb alignment.
func (t *TableFormatter) formatRow(name string, counts []int, total int, l tableLayout, footer bool) string {
	var builder strings.Builder

	label := fmt.Sprintf("%-*s", l.student, truncateString(name, l.student))
	if footer {
		label = t.styles.TableTotal.Render(label)
	}
	builder.WriteString(" " + label)

	for i, width := range l.columns {
		n := counts[i]
		builder.WriteString("  ")
		switch {
		case n == 0:
			builder.WriteString(t.styles.TableZero.Render(fmt.Sprintf("%*s", width, zeroCell)))
		case footer:
			builder.WriteString(t.styles.TableTotal.Render(fmt.Sprintf("%*d", width, n)))
		default:
			builder.WriteString(t.styles.TableCount.Render(fmt.Sprintf("%*d", width, n)))
		}
	}

	builder.WriteString("  " + t.styles.TableTotal.Render(fmt.Sprintf("%*d", l.total, total)))
	return builder.String()
}

// formatLegend explains the table symbols and any omitted columns.
func (t *TableFormatter) formatLegend(l tableLayout) string {
	legend := fmt.Sprintf(" Legend: %s = none", zeroCell)
	if l.omitted > 0 {
		legend += fmt.Sprintf(" | %d more %s not shown (use --format csv)",
			l.omitted, plural(l.omitted, "column", "columns"))
	}
	return t.styles.TableLegend.Render(legend)
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}
