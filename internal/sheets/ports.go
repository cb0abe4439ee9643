// Package sheets exports donation reports to spreadsheet backends.
package sheets

import (
	"context"
)

// Report is a rendered spreadsheet: a title row, a header row, and data
// rows already converted to cell values.
type Report struct {
	Title   string
	Headers []string
	Rows    [][]any
}

// ReportWriter writes a report to its backend and returns a reference to
// where it landed (a sheet range or a synthetic id).
type ReportWriter interface {
	WriteReport(ctx context.Context, r Report) (ref string, err error)
}
