package export

import (
	"encoding/json"

	"github.com/JonMunkholm/reportkit/internal/datatable"
)

// salesTable is the Name/Amount fixture with a formula in the second row.
func salesTable() *datatable.Datatable {
	return &datatable.Datatable{
		Type: datatable.TypeDatatable,
		Columns: []datatable.Column{
			{ID: "col-0", Name: "Name", Meta: datatable.ColumnMeta{Type: datatable.TypeString}},
			{ID: "col-1", Name: "Amount", Meta: datatable.ColumnMeta{Type: datatable.TypeNumber}},
		},
		Rows: []datatable.Row{
			{"col-0": "Alice", "col-1": json.Number("10")},
			{"col-0": "Bob", "col-1": "=SUM(A1:A2)"},
		},
	}
}

// numericTable has only numeric values, some negative.
func numericTable() *datatable.Datatable {
	return &datatable.Datatable{
		Columns: []datatable.Column{
			{ID: "a", Name: "Delta", Meta: datatable.ColumnMeta{Type: datatable.TypeNumber}},
		},
		Rows: []datatable.Row{
			{"a": json.Number("-5")},
			{"a": json.Number("+3")},
			{"a": json.Number("1234")},
		},
	}
}
