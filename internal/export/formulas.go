package export

import (
	"strings"

	"github.com/JonMunkholm/reportkit/internal/datatable"
)

// FormulaWarning is shown next to CSV downloads that contain formula cells.
const FormulaWarning = "Your CSV contains characters that spreadsheet applications might interpret as formulas."

const formulaPrefixes = "=+-@"

// CellHasFormula reports whether a formatted value would be read as a formula
// by a spreadsheet application. Only the first character is considered, so a
// value with leading whitespace is plain text.
func CellHasFormula(value string) bool {
	if value == "" || !strings.ContainsRune(formulaPrefixes, rune(value[0])) {
		return false
	}
	return !datatable.IsNumeric(value)
}

// TableHasFormulas reports whether any column label or formatted cell of dt
// is a formula. Labels count because they become the header row.
func TableHasFormulas(dt *datatable.Datatable, lookup datatable.FormatLookup) bool {
	if dt == nil {
		return false
	}
	for _, col := range dt.Columns {
		if CellHasFormula(col.Label()) {
			return true
		}
	}
	for _, row := range dt.Rows {
		for _, col := range dt.Columns {
			if CellHasFormula(datatable.FormatCell(col, row, lookup)) {
				return true
			}
		}
	}
	return false
}

// HasFormulas reports whether any datatable contains a formula.
// Nil datatables are skipped.
func HasFormulas(tables []*datatable.Datatable, lookup datatable.FormatLookup) bool {
	for _, dt := range tables {
		if TableHasFormulas(dt, lookup) {
			return true
		}
	}
	return false
}
