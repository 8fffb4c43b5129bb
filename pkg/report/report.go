// Package report folds per-submission results into the tabular batch report
// and renders single-submission result exports.
package report

import (
	"slices"
	"strconv"
	"strings"

	"github.com/yaklabco/stylegrade/pkg/diag"
)

// DefaultSeparator separates report fields.
const DefaultSeparator = ","

// Header labels.
const (
	submitterHeader = "student"
	totalHeader     = "total"
)

// Row is one submitter's counts.
type Row struct {
	// Submitter is the submitter ID.
	Submitter string `json:"student"`

	// Counts holds one count per report column, in column order.
	Counts []int `json:"counts"`

	// Total is the sum of Counts.
	Total int `json:"total"`
}

// Report is a read-only view of diagnostic counts per submitter.
type Report struct {
	// Columns are the diagnostic keys (class lowercased + code), sorted.
	Columns []string `json:"columns"`

	// Rows are sorted by submitter ID.
	Rows []Row `json:"rows"`
}

// Build aggregates a complete batch. Submitters with no diagnostics still get
// a row of zeros. A nil or empty batch yields an empty report.
func Build(results map[string][]diag.Diagnostic) *Report {
	rep := &Report{
		Columns: []string{},
		Rows:    []Row{},
	}
	if len(results) == 0 {
		return rep
	}

	counts := make(map[string]map[string]int, len(results))
	keys := make(map[string]bool)
	submitters := make([]string, 0, len(results))

	for submitter, diagnostics := range results {
		submitters = append(submitters, submitter)
		perKey := make(map[string]int)
		for i := range diagnostics {
			key := diagnostics[i].ReportKey()
			keys[key] = true
			perKey[key]++
		}
		counts[submitter] = perKey
	}

	for key := range keys {
		rep.Columns = append(rep.Columns, key)
	}
	slices.Sort(rep.Columns)
	slices.Sort(submitters)

	for _, submitter := range submitters {
		row := Row{Submitter: submitter, Counts: make([]int, len(rep.Columns))}
		for i, key := range rep.Columns {
			row.Counts[i] = counts[submitter][key]
			row.Total += row.Counts[i]
		}
		rep.Rows = append(rep.Rows, row)
	}

	return rep
}

// Format serializes the report. Fields are joined with sep (DefaultSeparator
// when empty) and rows with "\n"; there is no quoting and no trailing newline.
func (r *Report) Format(sep string) string {
	if sep == "" {
		sep = DefaultSeparator
	}

	var builder strings.Builder

	header := make([]string, 0, len(r.Columns)+2)
	header = append(header, submitterHeader)
	header = append(header, r.Columns...)
	header = append(header, totalHeader)
	builder.WriteString(strings.Join(header, sep))

	for _, row := range r.Rows {
		fields := make([]string, 0, len(row.Counts)+2)
		fields = append(fields, row.Submitter)
		for _, c := range row.Counts {
			fields = append(fields, strconv.Itoa(c))
		}
		fields = append(fields, strconv.Itoa(row.Total))
		builder.WriteString("\n")
		builder.WriteString(strings.Join(fields, sep))
	}

	return builder.String()
}

// String formats the report with the default separator.
func (r *Report) String() string {
	return r.Format(DefaultSeparator)
}

// Totals returns the per-column totals and the grand total.
func (r *Report) Totals() ([]int, int) {
	perColumn := make([]int, len(r.Columns))
	var grand int
	for _, row := range r.Rows {
		for i, c := range row.Counts {
			perColumn[i] += c
		}
		grand += row.Total
	}
	return perColumn, grand
}

// Row returns the row for a submitter.
func (r *Report) Row(submitter string) (Row, bool) {
	idx, found := slices.BinarySearchFunc(r.Rows, submitter, func(row Row, target string) int {
		return strings.Compare(row.Submitter, target)
	})
	if !found {
		return Row{}, false
	}
	return r.Rows[idx], true
}
