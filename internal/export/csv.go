package export

// csv.go serializes datatables to CSV text. The separator may be any string
// and quoting, when enabled, applies to every field.

import (
	"bytes"
	"strings"

	"github.com/JonMunkholm/reportkit/internal/datatable"
)

// LineTerminator ends every CSV line, including the last.
const LineTerminator = "\r\n"

// CSVMimeType is the content type of CSV downloads.
const CSVMimeType = "text/csv;charset=utf-8"

// DefaultSeparator is used when no separator is configured.
const DefaultSeparator = ","

// CSVOptions controls CSV serialization.
type CSVOptions struct {
	Separator           string
	QuoteValues         bool
	Raw                 bool
	EscapeFormulaValues bool
}

// DefaultCSVOptions returns the export defaults: comma separated, every value quoted.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Separator: DefaultSeparator, QuoteValues: true}
}

// EncodeCSV renders dt as CSV. The header holds column display names; each row
// follows in datatable order with values in column order. Missing values are
// empty fields.
func EncodeCSV(dt *datatable.Datatable, opts CSVOptions, lookup datatable.FormatLookup) []byte {
	if dt == nil {
		return nil
	}
	sep := opts.Separator
	if sep == "" {
		sep = DefaultSeparator
	}

	var buf bytes.Buffer
	fields := make([]string, len(dt.Columns))

	for i, col := range dt.Columns {
		fields[i] = escapeValue(col.Label(), opts)
	}
	writeLine(&buf, fields, sep)

	for _, row := range dt.Rows {
		for i, col := range dt.Columns {
			var v string
			if opts.Raw {
				v = datatable.RawCell(col, row)
			} else {
				v = datatable.FormatCell(col, row, lookup)
			}
			fields[i] = escapeValue(v, opts)
		}
		writeLine(&buf, fields, sep)
	}

	return buf.Bytes()
}

func escapeValue(v string, opts CSVOptions) string {
	if opts.EscapeFormulaValues && CellHasFormula(v) {
		v = "'" + v
	}
	if opts.QuoteValues {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

func writeLine(buf *bytes.Buffer, fields []string, sep string) {
	buf.WriteString(strings.Join(fields, sep))
	buf.WriteString(LineTerminator)
}
