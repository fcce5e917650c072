package export

import (
	"github.com/JonMunkholm/reportkit/internal/datatable"
)

// SheetColumn is a spreadsheet header entry.
type SheetColumn struct {
	Label string
	Key   string
}

// SheetTable is the input of the spreadsheet writer. Header and row value
// order follow the datatable's column order.
type SheetTable struct {
	Header []SheetColumn
	Rows   [][]string
}

// ToSheetTable builds a SheetTable from the formatted values of dt.
// Returns ErrNoData when dt is nil or has no rows or columns.
func ToSheetTable(dt *datatable.Datatable, lookup datatable.FormatLookup) (SheetTable, error) {
	if dt == nil || len(dt.Rows) == 0 || len(dt.Columns) == 0 {
		return SheetTable{}, ErrNoData
	}

	header := make([]SheetColumn, len(dt.Columns))
	for i, col := range dt.Columns {
		label := col.Label()
		header[i] = SheetColumn{Label: label, Key: label}
	}

	rows := make([][]string, len(dt.Rows))
	for r, row := range dt.Rows {
		values := make([]string, len(dt.Columns))
		for i, col := range dt.Columns {
			values[i] = datatable.FormatCell(col, row, lookup)
		}
		rows[r] = values
	}

	return SheetTable{Header: header, Rows: rows}, nil
}
