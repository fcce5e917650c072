package export

import "errors"

var (
	// ErrNoData is returned when there is nothing to put in a spreadsheet.
	ErrNoData = errors.New("no data to export")

	// ErrMultipleTables is returned when a spreadsheet export receives more
	// than one datatable.
	ErrMultipleTables = errors.New("multiple datatables are not supported for spreadsheet export")
)
